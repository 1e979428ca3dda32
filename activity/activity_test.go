package activity_test

import (
	"context"
	"database/sql"
	"regexp"
	"smartcalendar/activity"
	"smartcalendar/calendar"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var activityColumns = []string{"id", "user_id", "category_id", "name", "description", "date", "start_time", "end_time", "location", "recurrence", "created_at", "updated_at"}

const selectActivityQuery = `SELECT id, user_id, category_id, name, description, date, start_time, end_time, location, recurrence, created_at, updated_at FROM activities`

func activityRow(rows *sqlmock.Rows, a activity.Activity) *sqlmock.Rows {
	return rows.AddRow(a.ID, a.UserID, nil, a.Name, a.Description, a.Date.String(), a.StartTime.String()+":00", a.EndTime.String()+":00", a.Location, string(a.Recurrence), a.CreatedAt, a.UpdatedAt)
}

func TestActivity(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := activity.NewAccessor(db)

	userID := uuid.New()
	now := time.Now().UTC()
	activityData := activity.Activity{
		UserID:      userID,
		Name:        "Test Activity",
		Description: "Testing",
		Date:        jan1,
		StartTime:   at(10, 0),
		EndTime:     at(11, 0),
		Location:    "Test Location",
	}

	t.Run("create activity", func(t *testing.T) {
		insertQuery := `INSERT INTO activities (id, user_id, category_id, name, description, date, start_time, end_time, location, recurrence, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
		dbMock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WithArgs(sqlmock.AnyArg(), userID, nil, "Test Activity", "Testing", "2024-01-01", "10:00:00", "11:00:00", "Test Location", "NONE", now, now).
			WillReturnResult(sqlmock.NewResult(1, 1))

		created, err := a.CreateActivity(t.Context(), activityData, now)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, activityData.Name, created.Name)
		assert.Equal(t, calendar.RecurrenceNone, created.Recurrence)
		assert.Equal(t, now, created.CreatedAt)

		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("create activity validation error", func(t *testing.T) {
		invalid := activityData
		invalid.EndTime = at(9, 0)

		_, err := a.CreateActivity(t.Context(), invalid, now)
		var rangeErr *activity.InvalidRangeError
		require.ErrorAs(t, err, &rangeErr)
		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("get activity", func(t *testing.T) {
		stored := activityData
		stored.ID = uuid.New()
		stored.Recurrence = calendar.RecurrenceWeekly
		stored.CreatedAt, stored.UpdatedAt = now, now

		dbMock.ExpectQuery(regexp.QuoteMeta(selectActivityQuery+` WHERE id = $1 AND user_id = $2`)).
			WithArgs(stored.ID, userID).
			WillReturnRows(activityRow(sqlmock.NewRows(activityColumns), stored))

		got, err := a.GetActivity(t.Context(), userID, stored.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, stored.ID, got.ID)
		assert.Equal(t, jan1, got.Date)
		assert.Equal(t, at(10, 0), got.StartTime)
		assert.Equal(t, at(11, 0), got.EndTime)
		assert.False(t, got.CategoryID.Valid)
		assert.Equal(t, calendar.RecurrenceWeekly, got.Recurrence)

		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("get activity - no rows", func(t *testing.T) {
		id := uuid.New()
		dbMock.ExpectQuery(regexp.QuoteMeta(selectActivityQuery+` WHERE id = $1 AND user_id = $2`)).
			WithArgs(id, userID).
			WillReturnError(sql.ErrNoRows)

		got, err := a.GetActivity(t.Context(), userID, id)
		require.NoError(t, err)
		require.Nil(t, got)

		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("update activity", func(t *testing.T) {
		updated := activityData
		updated.ID = uuid.New()
		updated.Name = "Updated Activity"

		updateQuery := `UPDATE activities SET category_id = $1, name = $2, description = $3, date = $4, start_time = $5, end_time = $6, location = $7, recurrence = $8, updated_at = $9 WHERE id = $10 AND user_id = $11`
		dbMock.ExpectExec(regexp.QuoteMeta(updateQuery)).
			WithArgs(nil, "Updated Activity", "Testing", "2024-01-01", "10:00:00", "11:00:00", "Test Location", "NONE", now, updated.ID, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		stored := updated
		stored.CreatedAt = now.Add(-time.Hour)
		stored.UpdatedAt = now
		stored.Recurrence = calendar.RecurrenceNone
		dbMock.ExpectQuery(regexp.QuoteMeta(selectActivityQuery+` WHERE id = $1 AND user_id = $2`)).
			WithArgs(updated.ID, userID).
			WillReturnRows(activityRow(sqlmock.NewRows(activityColumns), stored))

		got, err := a.UpdateActivity(t.Context(), updated, now)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Updated Activity", got.Name)
		assert.Equal(t, now.Add(-time.Hour), got.CreatedAt)

		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("update activity not owned", func(t *testing.T) {
		updated := activityData
		updated.ID = uuid.New()

		dbMock.ExpectExec(regexp.QuoteMeta(`UPDATE activities SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		got, err := a.UpdateActivity(t.Context(), updated, now)
		require.NoError(t, err)
		assert.Nil(t, got)

		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("delete activity", func(t *testing.T) {
		id := uuid.New()
		dbMock.ExpectExec(regexp.QuoteMeta(`DELETE FROM activities WHERE id = $1 AND user_id = $2`)).
			WithArgs(id, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		deleted, err := a.DeleteActivity(t.Context(), userID, id)
		require.NoError(t, err)
		assert.True(t, deleted)
		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("list activities for date", func(t *testing.T) {
		first := activityData
		first.ID = uuid.New()
		second := activityData
		second.ID = uuid.New()
		second.StartTime, second.EndTime = at(13, 0), at(14, 0)

		rows := sqlmock.NewRows(activityColumns)
		activityRow(rows, first)
		activityRow(rows, second)
		dbMock.ExpectQuery(regexp.QuoteMeta(selectActivityQuery+` WHERE user_id = $1 AND date = $2 ORDER BY date, start_time`)).
			WithArgs(userID, "2024-01-01").
			WillReturnRows(rows)

		date := jan1
		got, err := a.ListActivities(t.Context(), userID, &date)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, first.ID, got[0].ID)
		assert.Equal(t, at(13, 0), got[1].StartTime)

		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("list activities empty", func(t *testing.T) {
		dbMock.ExpectQuery(regexp.QuoteMeta(selectActivityQuery + ` WHERE user_id = $1 ORDER BY date, start_time`)).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(activityColumns))

		got, err := a.ListActivities(t.Context(), userID, nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)

		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("list activities by category", func(t *testing.T) {
		categoryID := uuid.New()
		dbMock.ExpectQuery(regexp.QuoteMeta(selectActivityQuery+` WHERE user_id = $1 AND category_id = $2 ORDER BY date, start_time`)).
			WithArgs(userID, categoryID).
			WillReturnError(sql.ErrConnDone)

		_, err := a.ListActivitiesByCategory(t.Context(), userID, categoryID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query context")

		require.NoError(t, dbMock.ExpectationsWereMet())
	})
}

// MockStore is a mock implementation of the activity Store interface
type MockStore struct {
	testifymock.Mock
}

func (m *MockStore) ListActivities(ctx context.Context, userID uuid.UUID, date *calendar.Date) ([]activity.Activity, error) {
	args := m.Called(ctx, userID, date)
	return args.Get(0).([]activity.Activity), args.Error(1)
}

func (m *MockStore) CreateActivity(ctx context.Context, a activity.Activity, now time.Time) (*activity.Activity, error) {
	args := m.Called(ctx, a, now)
	created, _ := args.Get(0).(*activity.Activity)
	return created, args.Error(1)
}

func (m *MockStore) UpdateActivity(ctx context.Context, a activity.Activity, now time.Time) (*activity.Activity, error) {
	args := m.Called(ctx, a, now)
	updated, _ := args.Get(0).(*activity.Activity)
	return updated, args.Error(1)
}

func TestService(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	onDate := func(d calendar.Date) any {
		return testifymock.MatchedBy(func(got *calendar.Date) bool { return got != nil && *got == d })
	}

	request := activity.Activity{
		UserID:    userID,
		Name:      "Testing Activity",
		Date:      jan1,
		StartTime: at(10, 0),
		EndTime:   at(11, 0),
		Location:  "Test Location",
	}

	t.Run("create without overlap", func(t *testing.T) {
		store := new(MockStore)
		store.On("ListActivities", testifymock.Anything, userID, onDate(jan1)).Return([]activity.Activity{}, nil)
		saved := request
		saved.ID = uuid.New()
		store.On("CreateActivity", testifymock.Anything, request, now).Return(&saved, nil)

		result, err := activity.NewService(store).CreateActivity(t.Context(), request, now)
		require.NoError(t, err)
		assert.Equal(t, "Testing Activity", result.Activity.Name)
		assert.NotNil(t, result.Warnings)
		assert.Empty(t, result.Warnings)
		store.AssertExpectations(t)
	})

	t.Run("create with overlap still saves", func(t *testing.T) {
		store := new(MockStore)
		store.On("ListActivities", testifymock.Anything, userID, onDate(jan1)).
			Return([]activity.Activity{existing("Existing Activity", jan1, at(10, 30), at(11, 30))}, nil)
		saved := request
		saved.ID = uuid.New()
		store.On("CreateActivity", testifymock.Anything, request, now).Return(&saved, nil)

		result, err := activity.NewService(store).CreateActivity(t.Context(), request, now)
		require.NoError(t, err)
		assert.Equal(t, saved.ID, result.Activity.ID)
		require.Len(t, result.Warnings, 1)
		assert.True(t, strings.Contains(result.Warnings[0], "Existing Activity"))
		store.AssertExpectations(t)
	})

	t.Run("create rejects invalid range before touching the store", func(t *testing.T) {
		store := new(MockStore)
		invalid := request
		invalid.StartTime, invalid.EndTime = at(11, 0), at(10, 0)

		_, err := activity.NewService(store).CreateActivity(t.Context(), invalid, now)
		var rangeErr *activity.InvalidRangeError
		require.ErrorAs(t, err, &rangeErr)
		store.AssertNotCalled(t, "ListActivities")
		store.AssertNotCalled(t, "CreateActivity")
	})

	t.Run("create list error", func(t *testing.T) {
		store := new(MockStore)
		store.On("ListActivities", testifymock.Anything, userID, onDate(jan1)).Return([]activity.Activity{}, sql.ErrConnDone)

		_, err := activity.NewService(store).CreateActivity(t.Context(), request, now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "list activities")
		store.AssertNotCalled(t, "CreateActivity")
	})

	t.Run("update excludes itself", func(t *testing.T) {
		self := request
		self.ID = uuid.New()
		other := existing("Other", jan1, at(10, 45), at(12, 0))

		store := new(MockStore)
		store.On("ListActivities", testifymock.Anything, userID, onDate(jan1)).
			Return([]activity.Activity{self, other}, nil)
		store.On("UpdateActivity", testifymock.Anything, self, now).Return(&self, nil)

		result, err := activity.NewService(store).UpdateActivity(t.Context(), self, now)
		require.NoError(t, err)
		assert.Equal(t, []string{`Overlaps with "Other" (10:45-12:00)`}, result.Warnings)
		store.AssertExpectations(t)
	})

	t.Run("update not found", func(t *testing.T) {
		self := request
		self.ID = uuid.New()

		store := new(MockStore)
		store.On("ListActivities", testifymock.Anything, userID, onDate(jan1)).Return([]activity.Activity{}, nil)
		store.On("UpdateActivity", testifymock.Anything, self, now).Return(nil, nil)

		_, err := activity.NewService(store).UpdateActivity(t.Context(), self, now)
		require.ErrorIs(t, err, activity.ErrNotFound)
	})
}
