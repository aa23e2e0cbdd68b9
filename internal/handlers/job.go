package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"taskapi/internal/jobs"
	"taskapi/internal/models"

	"github.com/labstack/echo/v4"
)

// ジョブ実行時間の制限（秒）
const (
	defaultJobDuration = 10
	maxJobDuration     = 60
)

// JobHandler はバックグラウンドジョブAPIのハンドラー
type JobHandler struct {
	tracker *jobs.Tracker
}

// NewJobHandler は新しい JobHandler を作成
func NewJobHandler(tracker *jobs.Tracker) *JobHandler {
	return &JobHandler{tracker: tracker}
}

// Submit はバックグラウンドジョブを開始
// POST /background-tasks?duration=
func (h *JobHandler) Submit(c echo.Context) error {
	duration := defaultJobDuration
	if v := c.QueryParam("duration"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > maxJobDuration {
			return validationError(c, fmt.Sprintf("duration must be between 1 and %d", maxJobDuration))
		}
		duration = parsed
	}

	job := h.tracker.Submit(duration)

	return c.JSON(http.StatusOK, models.SubmitJobResponse{
		TaskID:  job.ID,
		Status:  string(job.Status),
		Message: fmt.Sprintf("Background task started with duration %ds", duration),
	})
}

// Get はジョブの現在の状態を取得
// GET /background-tasks/:id
func (h *JobHandler) Get(c echo.Context) error {
	id := c.Param("id")

	job, ok := h.tracker.Get(id)
	if !ok {
		return notFound(c, fmt.Sprintf("Background task with ID %s not found", id))
	}
	return c.JSON(http.StatusOK, job)
}

// List は全ジョブの状態を取得
// GET /background-tasks
func (h *JobHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.tracker.List())
}
