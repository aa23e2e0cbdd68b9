package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskapi/internal/config"
	"taskapi/internal/jobs"
	"taskapi/internal/models"
	"taskapi/internal/storage"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer wires handlers onto an echo instance the way main does.
func newTestServer() (*echo.Echo, *jobs.Tracker) {
	store := storage.NewMemoryStore()
	tracker := jobs.NewTracker()
	tracker.SetStepInterval(time.Millisecond)
	cfg := &config.Config{AppName: "Task Management API", Version: "1.0.0"}

	taskHandler := NewTaskHandler(store)
	jobHandler := NewJobHandler(tracker)
	systemHandler := NewSystemHandler(store, cfg)

	e := echo.New()
	e.GET("/", systemHandler.Root)
	e.GET("/health", systemHandler.Health)
	e.GET("/statistics", systemHandler.Statistics)

	e.GET("/tasks", taskHandler.List)
	e.POST("/tasks", taskHandler.Create)
	e.GET("/tasks/status/:status", taskHandler.ListByStatus)
	e.GET("/tasks/:id", taskHandler.Get)
	e.PUT("/tasks/:id", taskHandler.Update)
	e.DELETE("/tasks/:id", taskHandler.Delete)

	e.POST("/background-tasks", jobHandler.Submit)
	e.GET("/background-tasks", jobHandler.List)
	e.GET("/background-tasks/:id", jobHandler.Get)

	return e, tracker
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeTask(t *testing.T, rec *httptest.ResponseRecorder) models.Task {
	t.Helper()
	var task models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	return task
}

func TestCreateTask(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodPost, "/tasks",
		`{"title":"  Buy milk  ","description":"2 liters","priority":"high","tags":["Errand "," Home"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	task := decodeTask(t, rec)
	assert.Equal(t, int64(1), task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2 liters", task.Description)
	assert.Equal(t, models.TaskStatusActive, task.Status)
	assert.Equal(t, models.TaskPriorityHigh, task.Priority)
	assert.Equal(t, []string{"errand", "home"}, task.Tags)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestCreateTaskValidation(t *testing.T) {
	e, _ := newTestServer()

	cases := []struct {
		name string
		body string
	}{
		{"missing title", `{"description":"no title"}`},
		{"blank title", `{"title":"   "}`},
		{"long title", fmt.Sprintf(`{"title":%q}`, strings.Repeat("x", 101))},
		{"long description", fmt.Sprintf(`{"title":"t","description":%q}`, strings.Repeat("x", 501))},
		{"bad status", `{"title":"t","status":"done"}`},
		{"bad priority", `{"title":"t","priority":"urgent"}`},
		{"too many tags", `{"title":"t","tags":["a","b","c","d","e","f"]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/tasks", tc.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Validation Error", resp.Error)
			assert.NotEmpty(t, resp.Detail)
		})
	}
}

func TestCreateTaskMalformedBody(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodPost, "/tasks", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTask(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodPost, "/tasks", `{"title":"Read book","tags":["leisure"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeTask(t, rec)

	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/tasks/%d", created.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeTask(t, rec)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Read book", got.Title)
	assert.Equal(t, []string{"leisure"}, got.Tags)
}

func TestGetTaskNotFound(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodGet, "/tasks/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTaskInvalidID(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodGet, "/tasks/abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateTask(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodPost, "/tasks", `{"title":"Draft","priority":"low"}`)
	created := decodeTask(t, rec)

	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/tasks/%d", created.ID),
		`{"status":"completed","tags":["Done"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeTask(t, rec)
	assert.Equal(t, models.TaskStatusCompleted, updated.Status)
	assert.Equal(t, []string{"done"}, updated.Tags)
	// 指定しなかったフィールドは保持される
	assert.Equal(t, "Draft", updated.Title)
	assert.Equal(t, models.TaskPriorityLow, updated.Priority)
}

func TestUpdateTaskEmptyBody(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodPost, "/tasks", `{"title":"Draft"}`)
	created := decodeTask(t, rec)

	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/tasks/%d", created.ID), `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTaskNotFound(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodPut, "/tasks/99", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTaskValidation(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodPost, "/tasks", `{"title":"Draft"}`)
	created := decodeTask(t, rec)

	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/tasks/%d", created.ID), `{"title":"  "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/tasks/%d", created.ID), `{"status":"done"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteTask(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodPost, "/tasks", `{"title":"Throwaway"}`)
	created := decodeTask(t, rec)

	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/tasks/%d", created.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "deleted")

	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/tasks/%d", created.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/tasks/%d", created.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTasks(t *testing.T) {
	e, _ := newTestServer()

	for i := 0; i < 5; i++ {
		status := "active"
		if i%2 == 1 {
			status = "completed"
		}
		body := fmt.Sprintf(`{"title":"task %d","status":%q}`, i, status)
		rec := doJSON(e, http.MethodPost, "/tasks", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(e, http.MethodGet, "/tasks?status=completed", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.TasksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	for _, task := range resp.Tasks {
		assert.Equal(t, models.TaskStatusCompleted, task.Status)
	}

	// ページング: 2件ずつ 2/2/1
	seen := map[int64]bool{}
	sizes := []int{}
	for page := 1; page <= 3; page++ {
		rec = doJSON(e, http.MethodGet, fmt.Sprintf("/tasks?page=%d&page_size=2", page), "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 5, resp.Total)
		assert.Equal(t, page, resp.Page)
		assert.Equal(t, 2, resp.PageSize)
		sizes = append(sizes, len(resp.Tasks))
		for _, task := range resp.Tasks {
			assert.False(t, seen[task.ID])
			seen[task.ID] = true
		}
	}
	assert.Equal(t, []int{2, 2, 1}, sizes)
	assert.Len(t, seen, 5)
}

func TestListTasksTagFilter(t *testing.T) {
	e, _ := newTestServer()

	doJSON(e, http.MethodPost, "/tasks", `{"title":"a","tags":["work"]}`)
	doJSON(e, http.MethodPost, "/tasks", `{"title":"b","tags":["home"]}`)
	doJSON(e, http.MethodPost, "/tasks", `{"title":"c","tags":["work","home"]}`)

	var resp models.TasksResponse
	rec := doJSON(e, http.MethodGet, "/tasks?tags=work", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)

	// 単数形の tag も同じ意味
	rec = doJSON(e, http.MethodGet, "/tasks?tag=home", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
}

func TestListTasksInvalidParams(t *testing.T) {
	e, _ := newTestServer()

	for _, path := range []string{
		"/tasks?status=done",
		"/tasks?priority=urgent",
		"/tasks?page=0",
		"/tasks?page=abc",
		"/tasks?page_size=0",
		"/tasks?page_size=101",
	} {
		rec := doJSON(e, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, path)
	}
}

func TestListTasksByStatusPath(t *testing.T) {
	e, _ := newTestServer()

	doJSON(e, http.MethodPost, "/tasks", `{"title":"a","status":"archived"}`)
	doJSON(e, http.MethodPost, "/tasks", `{"title":"b"}`)

	rec := doJSON(e, http.MethodGet, "/tasks/status/archived", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].Title)

	rec = doJSON(e, http.MethodGet, "/tasks/status/done", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
