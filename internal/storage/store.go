package storage

import (
	"context"
	"time"

	"taskapi/internal/models"
)

// ページングの既定値
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TaskFilter はタスク一覧取得の条件
type TaskFilter struct {
	Status   models.TaskStatus
	Priority models.TaskPriority
	Tags     []string
	Page     int
	PageSize int
}

// Normalize はページングの既定値を補う
func (f *TaskFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

// TaskPatch は部分更新の内容。nil のフィールドは変更しない
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     *time.Time
	Tags        *[]string
}

// TaskStore はタスクのデータアクセス層
// 見つからない場合は (nil, nil) を返す
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int, error)
	ListByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error)
	Update(ctx context.Context, id int64, patch TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id int64) (bool, error)
	CountByStatus(ctx context.Context) (map[models.TaskStatus]int, error)
	Close() error
}

// matchesTags はタスクがいずれかのタグを持つかどうかを返す
func matchesTags(task *models.Task, tags []string) bool {
	for _, want := range tags {
		for _, have := range task.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// applyPatch は patch の非 nil フィールドをタスクに反映する
func applyPatch(task *models.Task, patch TaskPatch) {
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		due := *patch.DueDate
		task.DueDate = &due
	}
	if patch.Tags != nil {
		task.Tags = append([]string(nil), (*patch.Tags)...)
	}
	task.UpdatedAt = time.Now()
}

// fillDefaults は新規タスクの既定値を補う
func fillDefaults(task *models.Task) {
	if task.Status == "" {
		task.Status = models.TaskStatusActive
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
}
