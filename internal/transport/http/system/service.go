package system

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"app-icon-server-go/internal/domain/eventbus"
	"app-icon-server-go/internal/platform/logging"
	httptransport "app-icon-server-go/internal/transport/http"
)

// HealthData 健康检查返回的数据
type HealthData struct {
	Status        string                 `json:"status"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	Goroutines    int                    `json:"goroutines"`
	Host          *HostData              `json:"host,omitempty"`
	Icons         eventbus.StatsSnapshot `json:"icons"`
	Events        EventBusData           `json:"events"`
}

// HostData 主机资源占用
type HostData struct {
	MemoryTotalMB     uint64  `json:"memory_total_mb"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	CPUPercent        float64 `json:"cpu_percent"`
}

// EventBusData 事件总线状态
type EventBusData struct {
	Dropped int64 `json:"dropped"`
	Panics  int64 `json:"panics"`
}

// Service 提供健康检查接口
type Service struct {
	logger  *logging.Logger
	stats   *eventbus.Stats
	bus     *eventbus.Bus
	started time.Time
}

// NewService 创建健康检查服务；stats 与 bus 可以为空
func NewService(logger *logging.Logger, stats *eventbus.Stats, bus *eventbus.Bus) *Service {
	return &Service{
		logger:  logger,
		stats:   stats,
		bus:     bus,
		started: time.Now(),
	}
}

// Register 注册健康检查路由
func (s *Service) Register(_ context.Context, router *gin.RouterGroup) error {
	router.GET("/health", s.handleHealth)
	return nil
}

// handleHealth 返回服务运行状态
// @Summary 健康检查
// @Description 返回运行时长、主机内存与CPU占用以及图标生成统计
// @Tags System
// @Produce json
// @Success 200 {object} httptransport.APIResponse{data=HealthData}
// @Router /api/health [get]
func (s *Service) handleHealth(c *gin.Context) {
	data := HealthData{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		Host:          s.host(c.Request.Context()),
		Events: EventBusData{
			Dropped: s.bus.Dropped(),
			Panics:  s.bus.Panics(),
		},
	}
	if s.stats != nil {
		data.Icons = s.stats.Snapshot()
	}

	httptransport.RespondSuccess(c, http.StatusOK, data, "")
}

func (s *Service) host(ctx context.Context) *HostData {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		s.logger.WarnTag("HTTP", "读取内存信息失败: %v", err)
		return nil
	}
	data := &HostData{
		MemoryTotalMB:     vm.Total >> 20,
		MemoryUsedPercent: vm.UsedPercent,
	}

	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		s.logger.WarnTag("HTTP", "读取CPU信息失败: %v", err)
	} else if len(percents) > 0 {
		data.CPUPercent = percents[0]
	}
	return data
}
