package health

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// readyProbeKey 就緒檢查讀取的鍵，不存在也視為正常
const readyProbeKey = "rf_ready_probe"

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                            `json:"status"`
	Timestamp time.Time                         `json:"timestamp"`
	Version   string                            `json:"version"`
	Storage   string                            `json:"storage"`
	Runtime   map[string]interface{}            `json:"runtime"`
	Caches    map[string]map[string]interface{} `json:"caches,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	cfg    *config.Config
	store  storage.Store
	caches []*cache.Manager
}

// NewHandler 創建健康檢查處理器
func NewHandler(cfg *config.Config, store storage.Store, caches ...*cache.Manager) *Handler {
	return &Handler{cfg: cfg, store: store, caches: caches}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Storage:   h.cfg.Storage.Driver,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if len(h.caches) > 0 {
		response.Caches = make(map[string]map[string]interface{}, len(h.caches))
		for _, cm := range h.caches {
			if cm == nil {
				continue
			}
			stats := cm.GetStats()
			name, _ := stats["name"].(string)
			response.Caches[name] = stats
		}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：確認儲存後端可讀取
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if _, err := h.store.Get(ctx, readyProbeKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		common.LogWarn("儲存後端未就緒", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
