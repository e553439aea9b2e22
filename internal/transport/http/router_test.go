package httptransport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app-icon-server-go/internal/domain/eventbus"
	"app-icon-server-go/internal/domain/ratelimit"
	"app-icon-server-go/internal/platform/config"
)

func TestBuild_RequiresConfig(t *testing.T) {
	_, err := Build(Options{})
	assert.Error(t, err)
}

func TestBuild_ServesStaticAndRequestID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>upload</h1>"), 0o644))

	cfg := config.DefaultConfig()
	router, err := Build(Options{Config: cfg, StaticRoot: dir})
	require.NoError(t, err)
	router.API.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	w := httptest.NewRecorder()
	router.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "upload")

	w = httptest.NewRecorder()
	router.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(HeaderRequestID)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(HeaderRequestID, "client-supplied")
	w = httptest.NewRecorder()
	router.Engine.ServeHTTP(w, req)
	assert.Equal(t, "client-supplied", w.Header().Get(HeaderRequestID))
}

func TestBuild_CORSPreflight(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Web.StaticDir = ""
	cfg.Web.AllowedOrigins = []string{"https://icons.example.com"}
	router, err := Build(Options{Config: cfg})
	require.NoError(t, err)
	router.Engine.POST("/generate-icons", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/generate-icons", nil)
	req.Header.Set("Origin", "https://icons.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://icons.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLocaleFor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		header string
		def    string
		want   string
	}{
		{header: "", def: "", want: LocaleZH},
		{header: "", def: "en", want: LocaleEN},
		{header: "en-US,en;q=0.9", def: "zh", want: LocaleEN},
		{header: "fr-FR, zh-CN;q=0.8", def: "en", want: LocaleZH},
		{header: "fr-FR", def: "en", want: LocaleEN},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			c.Request.Header.Set("Accept-Language", tt.header)
		}
		assert.Equal(t, tt.want, LocaleFor(c, tt.def), "header=%q def=%q", tt.header, tt.def)
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "请上传 1024x1024 像素的图片", Message(LocaleZH, MsgWrongDimensions, 1024, 1024))
	assert.Equal(t, "File size must not exceed 5MB", Message(LocaleEN, MsgTooLarge, 5))
	assert.Equal(t, "请上传文件", Message("de", MsgMissingFile))
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("redis down")
}

func (brokenLimiter) Close(context.Context) error { return nil }

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	bus := eventbus.New(1, 8)
	bus.Start()
	defer bus.Stop()
	stats := eventbus.NewStats()
	require.NoError(t, stats.Attach(bus))

	limiter := ratelimit.NewMemory(ratelimit.Config{Window: time.Minute, Max: 2})
	t.Cleanup(func() { _ = limiter.Close(context.Background()) })

	engine := gin.New()
	engine.Use(RateLimitMiddleware(RateLimitOptions{Limiter: limiter, Events: bus, Locale: LocaleEN}))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		engine.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, last.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Contains(t, last.Body.String(), "Too many requests")

	bus.WaitAsync()
	assert.Equal(t, int64(1), stats.Snapshot().RateLimited)
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(RateLimitMiddleware(RateLimitOptions{Limiter: brokenLimiter{}}))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
