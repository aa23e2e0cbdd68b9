package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"taskapi/internal/models"
	"taskapi/internal/storage"

	"github.com/labstack/echo/v4"
)

// TaskHandler はタスクAPIのハンドラー
type TaskHandler struct {
	store storage.TaskStore
}

// NewTaskHandler は新しい TaskHandler を作成
func NewTaskHandler(store storage.TaskStore) *TaskHandler {
	return &TaskHandler{store: store}
}

// List はタスク一覧を取得
// GET /tasks?status=&priority=&tags=&page=&page_size=
func (h *TaskHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	filter := storage.TaskFilter{
		Page:     1,
		PageSize: storage.DefaultPageSize,
	}

	if v := c.QueryParam("status"); v != "" {
		status := models.TaskStatus(v)
		if !status.Valid() {
			return validationError(c, fmt.Sprintf("invalid status: %s", v))
		}
		filter.Status = status
	}
	if v := c.QueryParam("priority"); v != "" {
		priority := models.TaskPriority(v)
		if !priority.Valid() {
			return validationError(c, fmt.Sprintf("invalid priority: %s", v))
		}
		filter.Priority = priority
	}
	// tags は複数指定可。単数形の tag も受け付ける
	tags := c.QueryParams()["tags"]
	if v := c.QueryParam("tag"); v != "" {
		tags = append(tags, v)
	}
	filter.Tags = models.NormalizeTags(tags)

	if v := c.QueryParam("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return validationError(c, "page must be a positive integer")
		}
		filter.Page = page
	}
	if v := c.QueryParam("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 || size > storage.MaxPageSize {
			return validationError(c, fmt.Sprintf("page_size must be between 1 and %d", storage.MaxPageSize))
		}
		filter.PageSize = size
	}

	tasks, total, err := h.store.List(ctx, filter)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(http.StatusOK, models.TasksResponse{
		Tasks:    tasks,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

// ListByStatus はステータスでタスク一覧を取得
// GET /tasks/status/:status
func (h *TaskHandler) ListByStatus(c echo.Context) error {
	ctx := c.Request().Context()

	status := models.TaskStatus(c.Param("status"))
	if !status.Valid() {
		return validationError(c, fmt.Sprintf("invalid status: %s", c.Param("status")))
	}

	tasks, err := h.store.ListByStatus(ctx, status)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// Get はタスクを取得
// GET /tasks/:id
func (h *TaskHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseTaskID(c)
	if err != nil {
		return validationError(c, err.Error())
	}

	task, err := h.store.GetByID(ctx, id)
	if err != nil {
		return internalError(c, err)
	}
	if task == nil {
		return notFound(c, fmt.Sprintf("Task with ID %d not found", id))
	}
	return c.JSON(http.StatusOK, task)
}

// Create は新しいタスクを作成
// POST /tasks
func (h *TaskHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Bad Request", "invalid request body")
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return validationError(c, "title: cannot be empty")
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, validationDetail(err))
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        models.NormalizeTags(req.Tags),
	}
	if err := h.store.Create(ctx, task); err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

// Update はタスクを部分更新
// PUT /tasks/:id
func (h *TaskHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseTaskID(c)
	if err != nil {
		return validationError(c, err.Error())
	}

	// 存在確認を先に行う（更新内容の検証より 404 を優先）
	existing, err := h.store.GetByID(ctx, id)
	if err != nil {
		return internalError(c, err)
	}
	if existing == nil {
		return notFound(c, fmt.Sprintf("Task with ID %d not found", id))
	}

	var req models.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Bad Request", "invalid request body")
	}
	if req.Empty() {
		return errorJSON(c, http.StatusBadRequest, "Bad Request", "No fields provided for update")
	}

	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			return validationError(c, "title: cannot be empty")
		}
		req.Title = &trimmed
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, validationDetail(err))
	}

	patch := storage.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
	if req.Tags != nil {
		tags := models.NormalizeTags(*req.Tags)
		patch.Tags = &tags
	}

	task, err := h.store.Update(ctx, id, patch)
	if err != nil {
		return internalError(c, err)
	}
	if task == nil {
		return notFound(c, fmt.Sprintf("Task with ID %d not found", id))
	}
	return c.JSON(http.StatusOK, task)
}

// Delete はタスクを削除
// DELETE /tasks/:id
func (h *TaskHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseTaskID(c)
	if err != nil {
		return validationError(c, err.Error())
	}

	deleted, err := h.store.Delete(ctx, id)
	if err != nil {
		return internalError(c, err)
	}
	if !deleted {
		return notFound(c, fmt.Sprintf("Task with ID %d not found", id))
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{
		Message: fmt.Sprintf("Task %d deleted successfully", id),
	})
}

func parseTaskID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("task id must be a positive integer")
	}
	return id, nil
}
