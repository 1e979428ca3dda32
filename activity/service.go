package activity

import (
	"context"
	"fmt"
	"log/slog"
	"smartcalendar/calendar"
	"smartcalendar/metrics"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence the Service needs; *Accessor implements it.
type Store interface {
	ListActivities(ctx context.Context, userID uuid.UUID, date *calendar.Date) ([]Activity, error)
	CreateActivity(ctx context.Context, activity Activity, now time.Time) (*Activity, error)
	UpdateActivity(ctx context.Context, activity Activity, now time.Time) (*Activity, error)
}

// Saved is a persisted activity together with the overlap warnings raised
// while saving it.
type Saved struct {
	Activity *Activity
	Warnings []string
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateActivity persists activity and reports which of the owner's other
// activities on that date it overlaps. Overlaps never prevent the write.
func (s *Service) CreateActivity(ctx context.Context, activity Activity, now time.Time) (*Saved, error) {
	if err := activity.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	warnings, err := s.overlaps(ctx, activity, uuid.Nil)
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateActivity(ctx, activity, now)
	if err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}

	s.record(ctx, "create", created, warnings)
	return &Saved{Activity: created, Warnings: warnings}, nil
}

// UpdateActivity is CreateActivity for an existing row. The activity is
// never reported as overlapping itself.
func (s *Service) UpdateActivity(ctx context.Context, activity Activity, now time.Time) (*Saved, error) {
	if err := activity.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	warnings, err := s.overlaps(ctx, activity, activity.ID)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateActivity(ctx, activity, now)
	if err != nil {
		return nil, fmt.Errorf("update activity: %w", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	s.record(ctx, "update", updated, warnings)
	return &Saved{Activity: updated, Warnings: warnings}, nil
}

func (s *Service) overlaps(ctx context.Context, activity Activity, self uuid.UUID) ([]string, error) {
	existing, err := s.store.ListActivities(ctx, activity.UserID, &activity.Date)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	if self != uuid.Nil {
		existing = Without(existing, self)
	}

	warnings, err := FindOverlaps(CandidateOf(activity), existing)
	if err != nil {
		return nil, fmt.Errorf("find overlaps: %w", err)
	}
	if warnings == nil {
		warnings = []string{}
	}
	return warnings, nil
}

func (s *Service) record(ctx context.Context, kind string, activity *Activity, warnings []string) {
	metrics.ActivitiesSaved.WithLabelValues(kind).Inc()
	if len(warnings) == 0 {
		return
	}
	metrics.OverlapWarnings.Add(float64(len(warnings)))
	slog.InfoContext(ctx, "activity overlaps existing activities",
		"activity_id", activity.ID,
		"user_id", activity.UserID,
		"date", activity.Date.String(),
		"overlaps", len(warnings),
	)
}
