package jobs

import (
	"fmt"
	"log"
	"sync"
	"time"

	"taskapi/internal/models"

	"github.com/google/uuid"
)

// Tracker keeps background job snapshots and runs submitted jobs
// in their own goroutines. Jobs are never deleted during the
// process lifetime.
type Tracker struct {
	mu    sync.Mutex
	jobs  map[string]*models.BackgroundJob
	order []string

	step time.Duration
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewTracker creates a new tracker
func NewTracker() *Tracker {
	return &Tracker{
		jobs: make(map[string]*models.BackgroundJob),
		step: 1 * time.Second,
		stop: make(chan struct{}),
	}
}

// SetStepInterval sets the duration of one simulated work step
func (t *Tracker) SetStepInterval(step time.Duration) {
	t.step = step
}

// Submit registers a pending job and starts it asynchronously.
// The returned snapshot reflects the state at submission time.
func (t *Tracker) Submit(duration int) *models.BackgroundJob {
	id := uuid.New().String()
	job := &models.BackgroundJob{
		ID:        id,
		Status:    models.JobStatusPending,
		Progress:  0,
		Message:   fmt.Sprintf("Queued long-running task (duration: %ds)", duration),
		StartedAt: time.Now(),
	}

	t.mu.Lock()
	t.jobs[id] = job
	t.order = append(t.order, id)
	snapshot := cloneJob(job)
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run(id, duration)

	log.Printf("Job %s submitted (duration: %ds)", id, duration)
	return snapshot
}

// Get returns the current snapshot of a job
func (t *Tracker) Get(id string) (*models.BackgroundJob, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return nil, false
	}
	return cloneJob(job), true
}

// List returns snapshots of all jobs, newest first
func (t *Tracker) List() []*models.BackgroundJob {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*models.BackgroundJob, 0, len(t.order))
	for i := len(t.order) - 1; i >= 0; i-- {
		out = append(out, cloneJob(t.jobs[t.order[i]]))
	}
	return out
}

// Shutdown stops running jobs and waits for their goroutines.
// Interrupted jobs are marked failed.
func (t *Tracker) Shutdown() {
	close(t.stop)
	t.wg.Wait()
	log.Println("Job tracker stopped")
}

// Wait blocks until all submitted jobs have finished
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) run(id string, duration int) {
	defer t.wg.Done()

	t.update(id, models.JobStatusRunning, 0, "Starting long-running task")

	for i := 0; i < duration; i++ {
		select {
		case <-t.stop:
			t.fail(id, "task interrupted by shutdown")
			return
		case <-time.After(t.step):
		}
		progress := (i + 1) * 100 / duration
		t.update(id, models.JobStatusRunning, progress, fmt.Sprintf("Processing step %d/%d", i+1, duration))
	}

	t.complete(id, map[string]any{
		"processed_items": duration,
		"success":         true,
		"completion_time": time.Now().Format(time.RFC3339),
	})
	log.Printf("Job %s completed", id)
}

// update advances a job; progress never moves backwards
func (t *Tracker) update(id string, status models.JobStatus, progress int, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return
	}
	job.Status = status
	if progress > job.Progress {
		job.Progress = progress
	}
	job.Message = message
}

func (t *Tracker) complete(id string, result map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return
	}
	now := time.Now()
	job.Status = models.JobStatusCompleted
	job.Progress = 100
	job.Message = "Task completed successfully"
	job.Result = result
	job.CompletedAt = &now
}

func (t *Tracker) fail(id string, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return
	}
	now := time.Now()
	job.Status = models.JobStatusFailed
	job.Message = message
	job.CompletedAt = &now
	log.Printf("Job %s failed: %s", id, message)
}

func cloneJob(job *models.BackgroundJob) *models.BackgroundJob {
	clone := *job
	if job.CompletedAt != nil {
		done := *job.CompletedAt
		clone.CompletedAt = &done
	}
	if job.Result != nil {
		clone.Result = make(map[string]any, len(job.Result))
		for k, v := range job.Result {
			clone.Result[k] = v
		}
	}
	return &clone
}
