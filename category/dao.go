package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

func (a *Accessor) CreateCategory(ctx context.Context, category Category) (*Category, error) {
	if err := category.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	category.ID = uuid.New()

	query := `INSERT INTO categories (id, user_id, name, color) VALUES ($1, $2, $3, $4)`
	if _, err := a.db.ExecContext(ctx, query, category.ID, category.UserID, category.Name, category.Color); err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}

	return &category, nil
}

func (a *Accessor) GetCategory(ctx context.Context, userID, id uuid.UUID) (*Category, error) {
	var c Category
	query := `SELECT id, user_id, name, color FROM categories WHERE id = $1 AND user_id = $2`
	if err := a.db.QueryRowContext(ctx, query, id, userID).Scan(&c.ID, &c.UserID, &c.Name, &c.Color); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	return &c, nil
}

func (a *Accessor) GetCategories(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	query := `SELECT id, user_id, name, color FROM categories WHERE user_id = $1 ORDER BY name`
	rows, err := a.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return categories, nil
}

// UpdateCategory returns nil when the category does not belong to the user.
func (a *Accessor) UpdateCategory(ctx context.Context, category Category) (*Category, error) {
	if err := category.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	query := `UPDATE categories SET name = $1, color = $2 WHERE id = $3 AND user_id = $4`
	res, err := a.db.ExecContext(ctx, query, category.Name, category.Color, category.ID, category.UserID)
	if err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return &category, nil
}

// DeleteCategory removes the category. Activities and tasks referencing it
// keep existing with a NULL category.
func (a *Accessor) DeleteCategory(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	query := `DELETE FROM categories WHERE id = $1 AND user_id = $2`
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
