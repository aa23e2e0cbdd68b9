package handlers

import (
	"net/http"
	"time"

	"taskapi/internal/config"
	"taskapi/internal/storage"

	"github.com/labstack/echo/v4"
)

// SystemHandler はシステム系エンドポイントのハンドラー
type SystemHandler struct {
	store storage.TaskStore
	cfg   *config.Config
}

// NewSystemHandler は新しい SystemHandler を作成
func NewSystemHandler(store storage.TaskStore, cfg *config.Config) *SystemHandler {
	return &SystemHandler{store: store, cfg: cfg}
}

// Root はAPIの概要を返す
// GET /
func (h *SystemHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Welcome to " + h.cfg.AppName,
		"version": h.cfg.Version,
		"endpoints": map[string]string{
			"tasks":            "/tasks",
			"task_by_id":       "/tasks/{task_id}",
			"tasks_by_status":  "/tasks/status/{status}",
			"background_tasks": "/background-tasks",
			"statistics":       "/statistics",
		},
	})
}

// Health はヘルスチェック
// GET /health
func (h *SystemHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   h.cfg.Version,
	})
}

// Statistics はステータスごとのタスク数を返す
// GET /statistics
func (h *SystemHandler) Statistics(c echo.Context) error {
	ctx := c.Request().Context()

	counts, err := h.store.CountByStatus(ctx)
	if err != nil {
		return internalError(c, err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	return c.JSON(http.StatusOK, map[string]any{
		"statistics": map[string]int{
			"total":     total,
			"active":    counts["active"],
			"completed": counts["completed"],
			"archived":  counts["archived"],
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
