package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskapi/internal/models"
)

// MemoryStore はメモリ上のタスクストア（既定の実装）
type MemoryStore struct {
	mu     sync.Mutex
	tasks  map[int64]*models.Task
	nextID int64
}

// NewMemoryStore は新しい MemoryStore を作成
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:  make(map[int64]*models.Task),
		nextID: 1,
	}
}

// Create は新しいタスクを作成し、ID とタイムスタンプを採番する
func (s *MemoryStore) Create(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = s.nextID
	s.nextID++

	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	fillDefaults(task)

	s.tasks[task.ID] = cloneTask(task)
	return nil
}

// GetByID は ID でタスクを取得
func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	return cloneTask(task), nil
}

// List は条件に合うタスクのページと総件数を返す
func (s *MemoryStore) List(ctx context.Context, filter TaskFilter) ([]models.Task, int, error) {
	filter.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.collect(filter.Status, filter.Priority, filter.Tags)
	total := len(matched)

	start := (filter.Page - 1) * filter.PageSize
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}

	page := make([]models.Task, 0, end-start)
	for _, task := range matched[start:end] {
		page = append(page, *cloneTask(task))
	}
	return page, total, nil
}

// ListByStatus はステータスでタスク一覧を取得
func (s *MemoryStore) ListByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.collect(status, "", nil)
	out := make([]models.Task, 0, len(matched))
	for _, task := range matched {
		out = append(out, *cloneTask(task))
	}
	return out, nil
}

// collect は条件に合うタスクを作成日時の降順で返す（要ロック）
func (s *MemoryStore) collect(status models.TaskStatus, priority models.TaskPriority, tags []string) []*models.Task {
	matched := make([]*models.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if status != "" && task.Status != status {
			continue
		}
		if priority != "" && task.Priority != priority {
			continue
		}
		if len(tags) > 0 && !matchesTags(task, tags) {
			continue
		}
		matched = append(matched, task)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}

// Update は patch の内容でタスクを部分更新する
func (s *MemoryStore) Update(ctx context.Context, id int64, patch TaskPatch) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}

	applyPatch(task, patch)
	return cloneTask(task), nil
}

// Delete はタスクを削除。存在しない場合は false を返す
func (s *MemoryStore) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	return true, nil
}

// CountByStatus はステータスごとのタスク数を返す
func (s *MemoryStore) CountByStatus(ctx context.Context) (map[models.TaskStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[models.TaskStatus]int{
		models.TaskStatusActive:    0,
		models.TaskStatusCompleted: 0,
		models.TaskStatusArchived:  0,
	}
	for _, task := range s.tasks {
		counts[task.Status]++
	}
	return counts, nil
}

// Close は何もしない（インターフェース充足のため）
func (s *MemoryStore) Close() error {
	return nil
}

// cloneTask は呼び出し側との共有を避けるための複製
func cloneTask(task *models.Task) *models.Task {
	clone := *task
	clone.Tags = append([]string(nil), task.Tags...)
	if task.DueDate != nil {
		due := *task.DueDate
		clone.DueDate = &due
	}
	return &clone
}
