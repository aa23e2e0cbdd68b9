package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"taskapi/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore は SQLite 上のタスクストア
// DATABASE_PATH が指定された場合に使用する
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite はデータベースに接続し、スキーマを初期化する
func OpenSQLite(path string) (*SQLiteStore, error) {
	// ディレクトリが存在しない場合は作成
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// SQLite接続
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 接続確認
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite設定
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	// スキーマ初期化
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Create は新しいタスクを作成し、ID とタイムスタンプを採番する
func (s *SQLiteStore) Create(ctx context.Context, task *models.Task) error {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	fillDefaults(task)

	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (title, description, status, priority, due_date, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.Title, task.Description, string(task.Status), string(task.Priority),
		encodeTime(task.DueDate), string(tags),
		task.CreatedAt.Format(time.RFC3339Nano), task.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	task.ID = id
	return nil
}

// GetByID は ID でタスクを取得
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// List は条件に合うタスクのページと総件数を返す
// タグ条件は JSON 列のためメモリ側で絞り込む
func (s *SQLiteStore) List(ctx context.Context, filter TaskFilter) ([]models.Task, int, error) {
	filter.Normalize()

	matched, err := s.query(ctx, filter.Status, filter.Priority, filter.Tags)
	if err != nil {
		return nil, 0, err
	}
	total := len(matched)

	start := (filter.Page - 1) * filter.PageSize
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// ListByStatus はステータスでタスク一覧を取得
func (s *SQLiteStore) ListByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error) {
	return s.query(ctx, status, "", nil)
}

func (s *SQLiteStore) query(ctx context.Context, status models.TaskStatus, priority models.TaskPriority, tags []string) ([]models.Task, error) {
	q := selectColumns + ` FROM tasks WHERE 1=1`
	args := []any{}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, string(status))
	}
	if priority != "" {
		q += ` AND priority = ?`
		args = append(args, string(priority))
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	out := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		if len(tags) > 0 && !matchesTags(task, tags) {
			continue
		}
		out = append(out, *task)
	}
	return out, rows.Err()
}

// Update は patch の内容でタスクを部分更新する
func (s *SQLiteStore) Update(ctx context.Context, id int64, patch TaskPatch) (*models.Task, error) {
	task, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil
	}

	applyPatch(task, patch)

	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		task.Title, task.Description, string(task.Status), string(task.Priority),
		encodeTime(task.DueDate), string(tags),
		task.UpdatedAt.Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// Delete はタスクを削除。存在しない場合は false を返す
func (s *SQLiteStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountByStatus はステータスごとのタスク数を返す
func (s *SQLiteStore) CountByStatus(ctx context.Context) (map[models.TaskStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	defer rows.Close()

	counts := map[models.TaskStatus]int{
		models.TaskStatusActive:    0,
		models.TaskStatusCompleted: 0,
		models.TaskStatusArchived:  0,
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.TaskStatus(status)] = n
	}
	return counts, rows.Err()
}

// Close はデータベース接続を閉じる
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectColumns = `SELECT id, title, description, status, priority, due_date, tags, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	var status, priority, tagsJSON, createdAt, updatedAt string
	var dueDate sql.NullString

	err := row.Scan(&task.ID, &task.Title, &task.Description, &status, &priority,
		&dueDate, &tagsJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	task.Status = models.TaskStatus(status)
	task.Priority = models.TaskPriority(priority)

	if err := json.Unmarshal([]byte(tagsJSON), &task.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	if task.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if task.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if dueDate.Valid {
		due, err := time.Parse(time.RFC3339Nano, dueDate.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse due_date: %w", err)
		}
		task.DueDate = &due
	}
	return &task, nil
}

func encodeTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}
