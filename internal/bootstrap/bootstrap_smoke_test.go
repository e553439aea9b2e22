package bootstrap

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformerrors "app-icon-server-go/internal/platform/errors"
	platformlogging "app-icon-server-go/internal/platform/logging"
)

func writeTestConfig(t *testing.T, port int) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`server:
  ip: 127.0.0.1
  port: %d
  mode: development
log:
  log_level: info
  log_dir: %s
  log_file: test.log
web:
  static_dir: ""
icon:
  sizes: [16, 32]
  concurrency: 2
rate_limit:
  enabled: true
  driver: memory
  window: 1m
  max: 10
`, port, filepath.Join(dir, "logs"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func initState(t *testing.T) *appState {
	t.Helper()
	state := &appState{options: Options{ConfigPath: writeTestConfig(t, 3000)}}
	require.NoError(t, executeInitSteps(context.Background(), InitGraph(), state))
	t.Cleanup(state.close)
	return state
}

func TestInitGraphOrder(t *testing.T) {
	steps := InitGraph()
	want := []string{
		"config:load",
		"logging:init-provider",
		"observability:setup-hooks",
		"events:start-bus",
		"ratelimit:init-limiter",
		"icon:init-pipeline",
	}
	if len(steps) != len(want) {
		t.Fatalf("unexpected step count: got %d want %d", len(steps), len(want))
	}
	for i, step := range steps {
		if step.ID != want[i] {
			t.Fatalf("step %d mismatch: got %s want %s", i, step.ID, want[i])
		}
	}
}

func TestExecuteInitGraph(t *testing.T) {
	state := initState(t)

	if state.config == nil {
		t.Fatal("config is nil after init")
	}
	if state.logger == nil {
		t.Fatal("logger is nil after init")
	}
	if state.observabilityShutdown == nil {
		t.Fatal("observability shutdown hook not set")
	}
	if state.events == nil || state.stats == nil {
		t.Fatal("event bus not started")
	}
	if state.limiter == nil {
		t.Fatal("rate limiter not initialised")
	}
	if state.pipeline == nil {
		t.Fatal("icon pipeline not initialised")
	}
	assert.Equal(t, []int{16, 32}, state.pipeline.Sizes())
	assert.Equal(t, 2, state.config.Icon.Concurrency)
}

func TestExecuteInitSteps_Errors(t *testing.T) {
	err := executeInitSteps(context.Background(), []initStep{
		{ID: "b", DependsOn: []string{"a"}, Execute: func(context.Context, *appState) error { return nil }},
	}, &appState{})
	assert.Equal(t, platformerrors.KindBootstrap, platformerrors.KindOf(err))

	err = executeInitSteps(context.Background(), []initStep{
		{ID: "a", Kind: platformerrors.KindStorage, Execute: func(context.Context, *appState) error { return fmt.Errorf("boom") }},
	}, &appState{})
	assert.Equal(t, platformerrors.KindStorage, platformerrors.KindOf(err))

	err = executeInitSteps(context.Background(), InitGraph(), &appState{options: Options{ConfigPath: "/does/not/exist.yaml"}})
	assert.Equal(t, platformerrors.KindConfig, platformerrors.KindOf(err))

	assert.Error(t, executeInitSteps(context.Background(), nil, nil))
}

func TestNewRouter(t *testing.T) {
	state := initState(t)
	router, err := newRouter(context.Background(), state)
	require.NoError(t, err)

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{path: "/api/health", status: http.StatusOK, contains: `"status":"ok"`},
		{path: "/openapi.json", status: http.StatusOK, contains: "/generate-icons"},
		{path: "/docs", status: http.StatusOK, contains: "api-reference"},
		{path: "/api/unknown", status: http.StatusNotFound, contains: "api Not found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate-icons", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
}

func TestLogBootstrapGraphOutput(t *testing.T) {
	tmp := t.TempDir()
	logger, err := platformlogging.New(platformlogging.Config{
		Level:    "info",
		Dir:      tmp,
		Filename: "graph.log",
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logBootstrapGraph(InitGraph(), logger)
	logger.Close()

	data, err := os.ReadFile(filepath.Join(tmp, "graph.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "初始化依赖关系概览") {
		t.Fatalf("graph header missing in log output: %s", content)
	}
	for _, step := range InitGraph() {
		if !strings.Contains(content, step.ID) {
			t.Fatalf("expected graph output to contain %q, got: %s", step.ID, content)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{ConfigPath: writeTestConfig(t, port)})
	}()

	url := fmt.Sprintf("http://127.0.0.1:%d/api/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(20 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
