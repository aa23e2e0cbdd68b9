package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"taskapi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitBackgroundTask(t *testing.T) {
	e, tracker := newTestServer()

	rec := doJSON(e, http.MethodPost, "/background-tasks?duration=3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SubmitJobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.TaskID)
	assert.Equal(t, "pending", resp.Status)
	assert.Contains(t, resp.Message, "duration 3s")

	tracker.Wait()

	rec = doJSON(e, http.MethodGet, "/background-tasks/"+resp.TaskID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var job models.BackgroundJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.NotNil(t, job.Result)
}

func TestSubmitBackgroundTaskInvalidDuration(t *testing.T) {
	e, _ := newTestServer()

	for _, path := range []string{
		"/background-tasks?duration=0",
		"/background-tasks?duration=61",
		"/background-tasks?duration=abc",
	} {
		rec := doJSON(e, http.MethodPost, path, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, path)
	}
}

func TestGetBackgroundTaskNotFound(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodGet, "/background-tasks/nonexistent", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListBackgroundTasks(t *testing.T) {
	e, tracker := newTestServer()

	doJSON(e, http.MethodPost, "/background-tasks?duration=1", "")
	doJSON(e, http.MethodPost, "/background-tasks?duration=1", "")
	tracker.Wait()

	rec := doJSON(e, http.MethodGet, "/background-tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var jobs []models.BackgroundJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	assert.Len(t, jobs, 2)
}

func TestBackgroundTaskEventuallyCompletes(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodPost, "/background-tasks?duration=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SubmitJobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	deadline := time.Now().Add(5 * time.Second)
	var job models.BackgroundJob
	for time.Now().Before(deadline) {
		rec = doJSON(e, http.MethodGet, "/background-tasks/"+resp.TaskID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
		if job.Status.Done() {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, job.Status.Done(), "job did not finish before deadline")
}
