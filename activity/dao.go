package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"smartcalendar/calendar"
	"time"

	"github.com/google/uuid"
)

const selectActivity = `SELECT id, user_id, category_id, name, description, date, start_time, end_time, location, recurrence, created_at, updated_at FROM activities`

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(row scanner) (Activity, error) {
	var a Activity
	err := row.Scan(&a.ID, &a.UserID, &a.CategoryID, &a.Name, &a.Description, &a.Date, &a.StartTime, &a.EndTime, &a.Location, &a.Recurrence, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (a *Accessor) CreateActivity(ctx context.Context, activity Activity, now time.Time) (*Activity, error) {
	if err := activity.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	activity.ID = uuid.New()
	activity.Recurrence = activity.Recurrence.Normalize()
	activity.CreatedAt = now
	activity.UpdatedAt = now

	query := `INSERT INTO activities (id, user_id, category_id, name, description, date, start_time, end_time, location, recurrence, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err := a.db.ExecContext(ctx, query, activity.ID, activity.UserID, activity.CategoryID, activity.Name, activity.Description, activity.Date, activity.StartTime, activity.EndTime, activity.Location, activity.Recurrence, now, now); err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}

	return &activity, nil
}

// UpdateActivity rewrites everything but the owner and creation time. It
// returns nil when no activity with that id belongs to the user.
func (a *Accessor) UpdateActivity(ctx context.Context, activity Activity, now time.Time) (*Activity, error) {
	if err := activity.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	query := `UPDATE activities SET category_id = $1, name = $2, description = $3, date = $4, start_time = $5, end_time = $6, location = $7, recurrence = $8, updated_at = $9 WHERE id = $10 AND user_id = $11`
	res, err := a.db.ExecContext(ctx, query, activity.CategoryID, activity.Name, activity.Description, activity.Date, activity.StartTime, activity.EndTime, activity.Location, activity.Recurrence.Normalize(), now, activity.ID, activity.UserID)
	if err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}

	// Re-read to return the stored created_at
	updated, err := a.GetActivity(ctx, activity.UserID, activity.ID)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return updated, nil
}

func (a *Accessor) GetActivity(ctx context.Context, userID, id uuid.UUID) (*Activity, error) {
	row := a.db.QueryRowContext(ctx, selectActivity+` WHERE id = $1 AND user_id = $2`, id, userID)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	return &activity, nil
}

func (a *Accessor) DeleteActivity(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	query := `DELETE FROM activities WHERE id = $1 AND user_id = $2`
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

// ListActivities returns the user's activities ordered by date and start
// time, restricted to a single day when date is non-nil.
func (a *Accessor) ListActivities(ctx context.Context, userID uuid.UUID, date *calendar.Date) ([]Activity, error) {
	if date == nil {
		return a.query(ctx, selectActivity+` WHERE user_id = $1 ORDER BY date, start_time`, userID)
	}
	return a.query(ctx, selectActivity+` WHERE user_id = $1 AND date = $2 ORDER BY date, start_time`, userID, *date)
}

func (a *Accessor) ListActivitiesByCategory(ctx context.Context, userID, categoryID uuid.UUID) ([]Activity, error) {
	return a.query(ctx, selectActivity+` WHERE user_id = $1 AND category_id = $2 ORDER BY date, start_time`, userID, categoryID)
}

func (a *Accessor) query(ctx context.Context, query string, args ...any) ([]Activity, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	activities := []Activity{}
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return activities, nil
}
