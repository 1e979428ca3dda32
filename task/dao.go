package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const selectTask = `SELECT id, user_id, category_id, name, description, date, location, completed, recurrence, created_at, updated_at FROM tasks`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Name, &t.Description, &t.Date, &t.Location, &t.Completed, &t.Recurrence, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (a *Accessor) CreateTask(ctx context.Context, task Task, now time.Time) (*Task, error) {
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	task.ID = uuid.New()
	task.Recurrence = task.Recurrence.Normalize()
	task.CreatedAt = now
	task.UpdatedAt = now

	query := `INSERT INTO tasks (id, user_id, category_id, name, description, date, location, completed, recurrence, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := a.db.ExecContext(ctx, query, task.ID, task.UserID, task.CategoryID, task.Name, task.Description, task.Date, task.Location, task.Completed, task.Recurrence, now, now); err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}

	return &task, nil
}

func (a *Accessor) GetTask(ctx context.Context, userID, id uuid.UUID) (*Task, error) {
	task, err := scanTask(a.db.QueryRowContext(ctx, selectTask+` WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	return &task, nil
}

// GetTasks lists the user's tasks, dated ones first.
func (a *Accessor) GetTasks(ctx context.Context, userID uuid.UUID) ([]Task, error) {
	return a.query(ctx, selectTask+` WHERE user_id = $1 ORDER BY date NULLS LAST, created_at`, userID)
}

func (a *Accessor) GetTasksByCategory(ctx context.Context, userID, categoryID uuid.UUID) ([]Task, error) {
	return a.query(ctx, selectTask+` WHERE user_id = $1 AND category_id = $2 ORDER BY date NULLS LAST, created_at`, userID, categoryID)
}

func (a *Accessor) query(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return tasks, nil
}

// UpdateTask returns nil when the task does not belong to the user.
func (a *Accessor) UpdateTask(ctx context.Context, task Task, now time.Time) (*Task, error) {
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	query := `UPDATE tasks SET category_id = $1, name = $2, description = $3, date = $4, location = $5, completed = $6, recurrence = $7, updated_at = $8 WHERE id = $9 AND user_id = $10`
	res, err := a.db.ExecContext(ctx, query, task.CategoryID, task.Name, task.Description, task.Date, task.Location, task.Completed, task.Recurrence.Normalize(), now, task.ID, task.UserID)
	if err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return a.GetTask(ctx, task.UserID, task.ID)
}

func (a *Accessor) SetCompleted(ctx context.Context, userID, id uuid.UUID, completed bool, now time.Time) (*Task, error) {
	query := `UPDATE tasks SET completed = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`
	res, err := a.db.ExecContext(ctx, query, completed, now, id, userID)
	if err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return a.GetTask(ctx, userID, id)
}

func (a *Accessor) DeleteTask(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	res, err := a.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("exec context: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (a *Accessor) GetStats(ctx context.Context, userID uuid.UUID) (Stats, error) {
	var stats Stats
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE completed) FROM tasks WHERE user_id = $1`
	if err := a.db.QueryRowContext(ctx, query, userID).Scan(&stats.Total, &stats.Completed); err != nil {
		return Stats{}, fmt.Errorf("scan: %w", err)
	}
	stats.Pending = stats.Total - stats.Completed
	return stats, nil
}
