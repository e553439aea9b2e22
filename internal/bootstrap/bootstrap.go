package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
	"golang.org/x/sync/errgroup"

	_ "app-icon-server-go/docs"
	"app-icon-server-go/internal/domain/eventbus"
	"app-icon-server-go/internal/domain/icon"
	"app-icon-server-go/internal/domain/ratelimit"
	platformconfig "app-icon-server-go/internal/platform/config"
	platformerrors "app-icon-server-go/internal/platform/errors"
	platformlogging "app-icon-server-go/internal/platform/logging"
	platformobservability "app-icon-server-go/internal/platform/observability"
	httptransport "app-icon-server-go/internal/transport/http"
	httpicons "app-icon-server-go/internal/transport/http/icons"
	httpsystem "app-icon-server-go/internal/transport/http/system"
)

const scalarHTML = `<!DOCTYPE html>
<html lang="zh-CN">
	<head>
		<meta charset="utf-8" />
		<title>App Icon Server API Reference</title>
		<meta name="viewport" content="width=device-width, initial-scale=1" />
	</head>
	<body>
		<script
			id="api-reference"
			data-url="/openapi.json"
			data-layout="modern"
			src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"
		></script>
	</body>
</html>`

const (
	eventWorkers   = 2
	eventQueueSize = 256
)

// Options controls where Run reads its configuration from.
type Options struct {
	// ConfigPath pins the YAML file; empty means search the default paths.
	ConfigPath string
}

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	options               Options
	config                *platformconfig.Config
	configPath            string
	logger                *platformlogging.Logger
	slogger               *slog.Logger
	observabilityShutdown platformobservability.ShutdownFunc
	events                *eventbus.Bus
	stats                 *eventbus.Stats
	limiter               ratelimit.Limiter
	pipeline              *icon.Pipeline
}

// Run 启动整个服务生命周期，负责加载配置、初始化依赖和优雅关停。
func Run(ctx context.Context, opts Options) error {
	state := &appState{options: opts}
	defer state.close()

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	if state.config == nil || state.logger == nil || state.pipeline == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger/pipeline not initialised",
		)
	}
	logger := state.logger

	logBootstrapGraph(steps, logger)

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(rootCtx)

	signalCtx, stop := signal.NotifyContext(groupCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return fmt.Errorf("启动 Http 服务失败: %w", err)
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("引导", "服务已停止")
	return nil
}

// close releases everything the init steps created, in reverse order.
func (s *appState) close() {
	if s.limiter != nil {
		if err := s.limiter.Close(context.Background()); err != nil {
			s.logger.WarnTag("限流", "限流器未正常关闭: %v", err)
		}
	}
	if s.events != nil {
		s.events.Stop()
		if dropped := s.events.Dropped(); dropped > 0 {
			s.logger.WarnTag("事件", "事件队列已满，丢弃 %d 条事件", dropped)
		}
	}
	if shutdown := s.observabilityShutdown; shutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := shutdown(shutdownCtx); err != nil {
			s.logger.WarnTag("引导", "可观测性未正常关闭: %v", err)
		}
		cancel()
	}
	if s.logger != nil {
		_ = s.logger.Close()
	}
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("引导", "初始化依赖关系概览")

	for _, step := range steps {
		if len(step.DependsOn) == 0 {
			logger.InfoTag("引导", "%s (%s)", step.ID, step.Title)
			continue
		}
		logger.InfoTag("引导", "%s (%s) <- %s", step.ID, step.Title, strings.Join(step.DependsOn, ", "))
	}
	logger.InfoTag("引导", "启动服务")
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "observability:setup-hooks",
			Title:     "Setup observability hooks",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   setupObservabilityStep,
		},
		{
			ID:        "events:start-bus",
			Title:     "Start event bus",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   startEventBusStep,
		},
		{
			ID:        "ratelimit:init-limiter",
			Title:     "Initialise rate limiter",
			DependsOn: []string{"config:load", "logging:init-provider"},
			Kind:      platformerrors.KindStorage,
			Execute:   initRateLimiterStep,
		},
		{
			ID:        "icon:init-pipeline",
			Title:     "Initialise icon pipeline",
			DependsOn: []string{"observability:setup-hooks", "events:start-bus"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initPipelineStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().WithPath(state.options.ConfigPath).Load()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "config:load", "failed to load config", err)
	}

	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init-provider",
			"config not loaded",
		)
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider", "failed to initialize logging provider", err)
	}

	state.logger = logger
	state.slogger = logger.Slog()

	logger.InfoTag(
		"引导",
		"日志模块就绪 [%s] %s",
		state.config.Log.Level,
		state.configPath,
	)
	return nil
}

func setupObservabilityStep(ctx context.Context, state *appState) error {
	if state == nil || state.logger == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"observability:setup-hooks",
			"config/logger not initialised",
		)
	}

	cfg := platformobservability.Config{
		Enabled: strings.EqualFold(state.config.Log.Level, "debug"),
	}

	shutdown, err := platformobservability.Setup(ctx, cfg, state.slogger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "observability:setup-hooks", "failed to setup observability hooks", err)
	}
	state.observabilityShutdown = shutdown
	return nil
}

func startEventBusStep(_ context.Context, state *appState) error {
	bus := eventbus.New(eventWorkers, eventQueueSize)
	stats := eventbus.NewStats()
	if err := stats.Attach(bus); err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "events:start-bus", "failed to attach stats subscriber", err)
	}

	logger := state.logger
	if err := bus.Subscribe(eventbus.EventIconFailed, func(data eventbus.IconFailedData) {
		logger.DebugTag("事件", "图标生成失败 kind=%s id=%s: %s", data.Kind, data.RequestID, data.Message)
	}); err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "events:start-bus", "failed to subscribe failure logger", err)
	}

	bus.Start()
	state.events = bus
	state.stats = stats
	logger.InfoTag("事件", "事件总线已启动，工作协程 %d 个", eventWorkers)
	return nil
}

func initRateLimiterStep(_ context.Context, state *appState) error {
	cfg := state.config.RateLimit
	if !cfg.Enabled {
		state.logger.InfoTag("限流", "限流已关闭")
		return nil
	}

	limiter, err := ratelimit.New(ratelimit.Config{
		Driver: cfg.Driver,
		Window: cfg.Window,
		Max:    cfg.Max,
		Redis: &ratelimit.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		},
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "ratelimit:init-limiter", "failed to create rate limiter", err)
	}

	state.limiter = limiter
	state.logger.InfoTag("限流", "限流已启用 driver=%s 窗口=%s 上限=%d", cfg.Driver, cfg.Window, cfg.Max)
	return nil
}

func initPipelineStep(_ context.Context, state *appState) error {
	cfg := state.config.Icon
	pipeline, err := icon.NewPipeline(icon.Options{
		RequiredDimension: cfg.RequiredDimension,
		Sizes:             cfg.Sizes,
		Resampler:         cfg.Resampler,
		MaxBytes:          cfg.MaxUploadBytes,
		Concurrency:       cfg.Concurrency,
		Logger:            state.logger,
		Events:            state.events,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "icon:init-pipeline", "failed to create icon pipeline", err)
	}

	state.pipeline = pipeline
	state.logger.InfoTag("图标", "图标流水线就绪 resampler=%s sizes=%v concurrency=%d", cfg.Resampler, pipeline.Sizes(), cfg.Concurrency)
	return nil
}

// newRouter builds the gin engine with every service registered.
func newRouter(ctx context.Context, state *appState) (*gin.Engine, error) {
	config := state.config
	logger := state.logger

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	router := httpRouter.Engine
	apiGroup := httpRouter.API

	router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		index := filepath.Join(config.Web.StaticDir, "index.html")
		if !strings.HasPrefix(path, "/api") && config.Web.StaticDir != "" {
			if _, err := os.Stat(index); err == nil {
				c.File(index)
				return
			}
		}
		c.JSON(http.StatusNotFound, httptransport.APIResponse{
			Success: false,
			Data:    gin.H{},
			Message: "api Not found",
			Code:    http.StatusNotFound,
		})
	})

	var rateLimit gin.HandlerFunc
	if state.limiter != nil {
		rateLimit = httptransport.RateLimitMiddleware(httptransport.RateLimitOptions{
			Limiter: state.limiter,
			Logger:  logger,
			Events:  state.events,
			Locale:  config.Web.Locale,
		})
	}

	iconService, err := httpicons.NewService(httpicons.Options{
		Config:    config,
		Logger:    logger,
		Pipeline:  state.pipeline,
		Events:    state.events,
		RateLimit: rateLimit,
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "icons:new-service", "failed to create icon service", err)
	}
	systemService := httpsystem.NewService(logger, state.stats, state.events)

	// 注册服务路由
	if err := iconService.Register(ctx, &router.RouterGroup); err != nil {
		return nil, err
	}
	if err := systemService.Register(ctx, apiGroup); err != nil {
		return nil, err
	}

	router.GET("/openapi.json", func(c *gin.Context) {
		doc, err := swag.ReadDoc()
		if err != nil {
			logger.ErrorTag("HTTP", "生成 OpenAPI 文档失败: %v", err)
			c.JSON(http.StatusInternalServerError, httptransport.APIResponse{
				Success: false,
				Data:    gin.H{"error": err.Error()},
				Message: "failed to generate openapi spec",
				Code:    http.StatusInternalServerError,
			})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	})

	router.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(scalarHTML))
	})

	return router, nil
}

func startHTTPServer(
	state *appState,
	g *errgroup.Group,
	groupCtx context.Context,
) (*http.Server, error) {
	config := state.config
	logger := state.logger

	router, err := newRouter(groupCtx, state)
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(config.Server.IP, strconv.Itoa(config.Server.Port)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "Gin 服务已启动，访问地址 http://localhost:%d", config.Server.Port)
		logger.InfoTag("HTTP", "图标生成入口: http://localhost:%d/generate-icons", config.Server.Port)
		logger.InfoTag("HTTP", "在线文档入口: http://localhost:%d/docs", config.Server.Port)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "HTTP 服务关闭失败: %v", err)
			} else {
				logger.InfoTag("HTTP", "HTTP 服务已优雅关闭")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "HTTP 服务启动失败: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("引导", "收到关闭信号 %v，正在进行资源清理", context.Cause(ctx))

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("引导", "服务关闭过程中出现错误: %v", err)
			return err
		}
		logger.InfoTag("引导", "所有服务已成功关闭")
	case <-time.After(15 * time.Second):
		timeoutErr := errors.New("服务关闭超时")
		logger.ErrorTag("引导", "服务关闭超时，已强制退出")
		return timeoutErr
	}
	return nil
}
