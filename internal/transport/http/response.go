package httptransport

import "github.com/gin-gonic/gin"

// APIResponse 定义统一的接口返回结构体
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
}

// ErrorResponse 是图标接口的错误返回结构，与上传页面约定一致
type ErrorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Stack     string `json:"stack,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// RespondSuccess 返回成功响应
func RespondSuccess(c *gin.Context, httpStatus int, data interface{}, message string) {
	if message == "" {
		message = "ok"
	}

	resp := APIResponse{
		Success: true,
		Message: message,
		Code:    httpStatus,
		Data:    data,
	}

	c.JSON(httpStatus, resp)
}

// AbortWithError 以 ErrorResponse 结构终止请求
func AbortWithError(c *gin.Context, httpStatus int, resp ErrorResponse) {
	if resp.RequestID == "" {
		resp.RequestID = RequestID(c)
	}
	c.AbortWithStatusJSON(httpStatus, resp)
}
