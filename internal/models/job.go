package models

import "time"

// JobStatus はバックグラウンドジョブの状態
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Done は終端状態（completed / failed）かどうかを返す
func (s JobStatus) Done() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// BackgroundJob は非同期実行されるジョブのスナップショット
type BackgroundJob struct {
	ID          string         `json:"task_id"`
	Status      JobStatus      `json:"status"`
	Progress    int            `json:"progress"`
	Message     string         `json:"message"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Result      map[string]any `json:"result,omitempty"`
}
