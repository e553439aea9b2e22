package icons

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"app-icon-server-go/internal/domain/eventbus"
	"app-icon-server-go/internal/domain/icon"
	"app-icon-server-go/internal/platform/config"
	platformerrors "app-icon-server-go/internal/platform/errors"
	"app-icon-server-go/internal/platform/logging"
	httptransport "app-icon-server-go/internal/transport/http"
)

// Service 图标生成服务的HTTP传输层实现
type Service struct {
	logger    *logging.Logger
	config    *config.Config
	pipeline  *icon.Pipeline
	events    *eventbus.Bus
	rateLimit gin.HandlerFunc
}

// Options 创建图标服务所需的依赖
type Options struct {
	Config    *config.Config
	Logger    *logging.Logger
	Pipeline  *icon.Pipeline
	Events    *eventbus.Bus
	RateLimit gin.HandlerFunc
}

// NewService 创建新的图标服务实例
func NewService(opts Options) (*Service, error) {
	if opts.Config == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "icons.new", "config is required")
	}
	if opts.Pipeline == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "icons.new", "icon pipeline is required")
	}

	return &Service{
		logger:    opts.Logger,
		config:    opts.Config,
		pipeline:  opts.Pipeline,
		events:    opts.Events,
		rateLimit: opts.RateLimit,
	}, nil
}

// Register 注册图标相关的HTTP路由
func (s *Service) Register(_ context.Context, router *gin.RouterGroup) error {
	group := router.Group("")
	if s.rateLimit != nil {
		group.Use(s.rateLimit)
	}

	group.POST("/generate-icons", s.handleGenerate)
	group.POST("/api/icons/archive", s.handleArchive)
	group.POST("/api/icons/favicon", s.handleFavicon)

	s.logger.InfoTag("HTTP", "图标服务路由注册完成")
	return nil
}

// handleGenerate 生成全部尺寸并以 JSON 返回
// @Summary 生成应用图标
// @Description 上传 1024x1024 图片，返回 16 到 1024 像素共 7 个 PNG 图标（base64）
// @Tags Icons
// @Accept multipart/form-data
// @Produce json
// @Param icon formData file true "1024x1024 图片文件"
// @Success 200 {object} BundleResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 429 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /generate-icons [post]
func (s *Service) handleGenerate(c *gin.Context) {
	bundle, ok := s.generate(c)
	if !ok {
		return
	}

	body, err := sonic.Marshal(bundle.Payload())
	if err != nil {
		s.fail(c, platformerrors.Wrap(platformerrors.KindTransport, "icons.encode", "marshal bundle", err))
		return
	}
	c.Data(http.StatusOK, contentTypeJSON, body)
}

// handleArchive 生成全部尺寸并打包为 ZIP
// @Summary 下载图标压缩包
// @Description 上传 1024x1024 图片，返回包含 icon_NxN.png 的 ZIP 文件
// @Tags Icons
// @Accept multipart/form-data
// @Produce application/zip
// @Param icon formData file true "1024x1024 图片文件"
// @Success 200 {file} file
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 429 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/icons/archive [post]
func (s *Service) handleArchive(c *gin.Context) {
	bundle, ok := s.generate(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := bundle.WriteZip(&buf); err != nil {
		s.fail(c, platformerrors.Wrap(platformerrors.KindTransport, "icons.archive", "write zip", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archiveFilename))
	c.Data(http.StatusOK, contentTypeZip, buf.Bytes())
}

// handleFavicon 生成 favicon.ico
// @Summary 下载 favicon
// @Description 上传 1024x1024 图片，返回指定尺寸（默认 256）的 ICO 文件
// @Tags Icons
// @Accept multipart/form-data
// @Produce image/x-icon
// @Param icon formData file true "1024x1024 图片文件"
// @Param size query int false "图标尺寸，不超过 256" default(256)
// @Success 200 {file} file
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 429 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/icons/favicon [post]
func (s *Service) handleFavicon(c *gin.Context) {
	raw := c.DefaultQuery("size", strconv.Itoa(icon.MaxFaviconSize))
	size, err := strconv.Atoi(raw)
	if err != nil || size <= 0 || size > icon.MaxFaviconSize || !slices.Contains(s.pipeline.Sizes(), size) {
		s.reject(c, httptransport.MsgInvalidSize, raw)
		return
	}

	bundle, ok := s.generate(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := bundle.WriteICO(&buf, size); err != nil {
		s.fail(c, platformerrors.Wrap(platformerrors.KindTransport, "icons.favicon", "write ico", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", faviconFilename))
	c.Data(http.StatusOK, contentTypeICO, buf.Bytes())
}

// generate 读取上传文件并运行图标流水线；失败时已写入响应
func (s *Service) generate(c *gin.Context) (*icon.ResultBundle, bool) {
	maxBytes := s.maxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

	header, err := c.FormFile(s.fieldName())
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.reject(c, httptransport.MsgTooLarge, maxBytes>>20)
			return nil, false
		}
		s.reject(c, httptransport.MsgMissingFile)
		return nil, false
	}

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		s.reject(c, httptransport.MsgNotImage)
		return nil, false
	}
	if header.Size > maxBytes {
		s.reject(c, httptransport.MsgTooLarge, maxBytes>>20)
		return nil, false
	}

	bundle, err := s.process(c, header)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return bundle, true
}

func (s *Service) process(c *gin.Context, header *multipart.FileHeader) (*icon.ResultBundle, error) {
	file, err := header.Open()
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindInput, "icons.open", "open upload", err)
	}
	defer file.Close()

	ctx := icon.WithRequestID(c.Request.Context(), httptransport.RequestID(c))
	return s.pipeline.ProcessReader(ctx, file)
}

func (s *Service) maxBytes() int64 {
	if s.config.Icon.MaxUploadBytes > 0 {
		return s.config.Icon.MaxUploadBytes
	}
	return icon.DefaultMaxBytes
}

func (s *Service) fieldName() string {
	if s.config.Icon.FieldName != "" {
		return s.config.Icon.FieldName
	}
	return "icon"
}

func (s *Service) locale(c *gin.Context) string {
	return httptransport.LocaleFor(c, s.config.Web.Locale)
}

// reject 返回 400，用于流水线之前的上传校验
func (s *Service) reject(c *gin.Context, key httptransport.MessageKey, args ...interface{}) {
	msg := httptransport.Message(s.locale(c), key, args...)
	s.logger.WarnTag("HTTP", "上传被拒绝: %s", msg)
	s.events.PublishAsync(eventbus.EventIconFailed, eventbus.IconFailedData{
		RequestID: httptransport.RequestID(c),
		Kind:      string(platformerrors.KindInput),
		Message:   string(key),
	})
	httptransport.AbortWithError(c, http.StatusBadRequest, httptransport.ErrorResponse{Error: msg})
}

// fail 将流水线错误按类别映射为 HTTP 状态码
func (s *Service) fail(c *gin.Context, err error) {
	locale := s.locale(c)

	switch platformerrors.KindOf(err) {
	case platformerrors.KindInput:
		if errors.Is(err, icon.ErrPayloadTooLarge) {
			s.reject(c, httptransport.MsgTooLarge, s.maxBytes()>>20)
		} else {
			s.reject(c, httptransport.MsgMissingFile)
		}
		return
	case platformerrors.KindValidation:
		expected := s.config.Icon.RequiredDimension
		var validationErr *icon.ValidationError
		if errors.As(err, &validationErr) {
			expected = validationErr.Expected
		}
		msg := httptransport.Message(locale, httptransport.MsgWrongDimensions, expected, expected)
		s.logger.WarnTag("图标", "尺寸校验失败: %v", err)
		httptransport.AbortWithError(c, http.StatusBadRequest, httptransport.ErrorResponse{Error: msg})
		return
	case platformerrors.KindDecode:
		msg := httptransport.Message(locale, httptransport.MsgUnreadableImage)
		s.logger.WarnTag("图标", "图片解码失败: %v", err)
		httptransport.AbortWithError(c, http.StatusBadRequest, httptransport.ErrorResponse{Error: msg})
		return
	}

	s.logger.ErrorTag("图标", "图片处理错误详情: %v", err)
	resp := httptransport.ErrorResponse{Error: httptransport.Message(locale, httptransport.MsgProcessingFailed)}
	if s.config.Server.IsDevelopment() {
		resp.Details = err.Error()
		resp.Stack = string(debug.Stack())
	}
	_ = c.Error(err)
	httptransport.AbortWithError(c, http.StatusInternalServerError, resp)
}
