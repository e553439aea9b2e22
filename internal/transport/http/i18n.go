package httptransport

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// Supported locales.
const (
	LocaleZH = "zh"
	LocaleEN = "en"
)

// MessageKey identifies a client-facing message.
type MessageKey string

const (
	MsgMissingFile      MessageKey = "missing_file"
	MsgNotImage         MessageKey = "not_image"
	MsgTooLarge         MessageKey = "too_large"
	MsgWrongDimensions  MessageKey = "wrong_dimensions"
	MsgUnreadableImage  MessageKey = "unreadable_image"
	MsgProcessingFailed MessageKey = "processing_failed"
	MsgRateLimited      MessageKey = "rate_limited"
	MsgInvalidSize      MessageKey = "invalid_size"
)

var messages = map[string]map[MessageKey]string{
	LocaleZH: {
		MsgMissingFile:      "请上传文件",
		MsgNotImage:         "只允许上传图片文件",
		MsgTooLarge:         "文件大小不能超过 %dMB",
		MsgWrongDimensions:  "请上传 %dx%d 像素的图片",
		MsgUnreadableImage:  "无法识别的图片文件",
		MsgProcessingFailed: "图片处理失败",
		MsgRateLimited:      "请求过于频繁，请稍后再试",
		MsgInvalidSize:      "不支持的图标尺寸: %s",
	},
	LocaleEN: {
		MsgMissingFile:      "Please upload a file",
		MsgNotImage:         "Only image files are allowed",
		MsgTooLarge:         "File size must not exceed %dMB",
		MsgWrongDimensions:  "Please upload a %dx%d pixel image",
		MsgUnreadableImage:  "The uploaded file is not a readable image",
		MsgProcessingFailed: "Image processing failed",
		MsgRateLimited:      "Too many requests, please try again later",
		MsgInvalidSize:      "Unsupported icon size: %s",
	},
}

// NormalizeLocale maps a language tag such as "en-US" to a supported locale, or "".
func NormalizeLocale(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	switch {
	case strings.HasPrefix(tag, LocaleZH):
		return LocaleZH
	case strings.HasPrefix(tag, LocaleEN):
		return LocaleEN
	default:
		return ""
	}
}

// LocaleFor picks the first supported language from Accept-Language, falling back to def.
func LocaleFor(c *gin.Context, def string) string {
	for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
		tag, _, _ := strings.Cut(part, ";")
		if locale := NormalizeLocale(tag); locale != "" {
			return locale
		}
	}
	if locale := NormalizeLocale(def); locale != "" {
		return locale
	}
	return LocaleZH
}

// Message renders key in locale with optional printf arguments.
func Message(locale string, key MessageKey, args ...interface{}) string {
	table, ok := messages[locale]
	if !ok {
		table = messages[LocaleZH]
	}
	text := table[key]
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}
