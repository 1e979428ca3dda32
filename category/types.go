package category

import (
	"errors"
	"regexp"

	"github.com/google/uuid"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Category struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Color  string    `json:"color"`
}

func (c *Category) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}
	if c.Color != "" && !colorPattern.MatchString(c.Color) {
		return errors.New("color must look like #RRGGBB")
	}
	return nil
}
