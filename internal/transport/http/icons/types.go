package icons

import "app-icon-server-go/internal/domain/icon"

// BundleResponse 图标生成接口的返回结构
// swagger 文档使用，实际编码由 sonic 完成
type BundleResponse = icon.BundlePayload

// IconEntry 单个尺寸的图标
type IconEntry = icon.IconPayload

const (
	archiveFilename = "icons.zip"
	faviconFilename = "favicon.ico"

	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeZip  = "application/zip"
	contentTypeICO  = "image/x-icon"

	// multipartOverhead is the slack allowed above the file ceiling for multipart framing.
	multipartOverhead = 64 * 1024
)
