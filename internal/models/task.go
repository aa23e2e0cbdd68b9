package models

import (
	"strings"
	"time"
)

// TaskStatus はタスクの状態
type TaskStatus string

const (
	TaskStatusActive    TaskStatus = "active"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusArchived  TaskStatus = "archived"
)

// Valid は既知のステータスかどうかを返す
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusActive, TaskStatusCompleted, TaskStatusArchived:
		return true
	}
	return false
}

// TaskPriority はタスクの優先度
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid は既知の優先度かどうかを返す
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task は管理対象のタスク
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Tags        []string     `json:"tags"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CreateTaskRequest はタスク作成リクエスト
type CreateTaskRequest struct {
	Title       string       `json:"title" validate:"required,max=100"`
	Description string       `json:"description" validate:"max=500"`
	Status      TaskStatus   `json:"status" validate:"omitempty,oneof=active completed archived"`
	Priority    TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time   `json:"due_date"`
	Tags        []string     `json:"tags" validate:"max=5"`
}

// UpdateTaskRequest はタスクの部分更新リクエスト
// nil のフィールドは更新しない
type UpdateTaskRequest struct {
	Title       *string       `json:"title" validate:"omitempty,max=100"`
	Description *string       `json:"description" validate:"omitempty,max=500"`
	Status      *TaskStatus   `json:"status" validate:"omitempty,oneof=active completed archived"`
	Priority    *TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time    `json:"due_date"`
	Tags        *[]string     `json:"tags" validate:"omitempty,max=5"`
}

// Empty は更新対象のフィールドが1つもない場合に true を返す
func (r *UpdateTaskRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Status == nil &&
		r.Priority == nil && r.DueDate == nil && r.Tags == nil
}

// NormalizeTags は空要素を除去し、trim と小文字化を行う
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, strings.ToLower(tag))
	}
	return out
}
