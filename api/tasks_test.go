package api_test

import (
	"database/sql"
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskColumns = []string{"id", "user_id", "category_id", "name", "description", "date", "location", "completed", "recurrence", "created_at", "updated_at"}

const selectTask = `SELECT id, user_id, category_id, name, description, date, location, completed, recurrence, created_at, updated_at FROM tasks`

func TestTasksAPI(t *testing.T) {
	t.Parallel()

	t.Run("create task", func(t *testing.T) {
		t.Parallel()
		a, dbMock, _ := setupAPI(t)
		userID := uuid.New()

		dbMock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tasks (id, user_id, category_id, name, description, date, location, completed, recurrence, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)).
			WithArgs(sqlmock.AnyArg(), userID, nil, "Buy milk", "", nil, "", false, "NONE", testNow, testNow).
			WillReturnResult(sqlmock.NewResult(1, 1))

		rec := do(t, a, http.MethodPost, "/api/tasks", userID, map[string]any{"name": "Buy milk"})

		require.NoError(t, dbMock.ExpectationsWereMet())
		require.Equal(t, http.StatusCreated, rec.Code)
		created := responseMap(t, rec)
		assert.Equal(t, "Buy milk", created["name"])
		assert.Nil(t, created["date"])
		assert.Equal(t, false, created["completed"])
	})

	t.Run("create task without name", func(t *testing.T) {
		t.Parallel()
		a, dbMock, _ := setupAPI(t)

		rec := do(t, a, http.MethodPost, "/api/tasks", uuid.New(), map[string]any{"description": "nameless"})

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get tasks", func(t *testing.T) {
		t.Parallel()
		a, dbMock, _ := setupAPI(t)
		userID := uuid.New()

		dbMock.ExpectQuery(regexp.QuoteMeta(selectTask + ` WHERE user_id = $1 ORDER BY date NULLS LAST, created_at`)).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(taskColumns).
				AddRow(uuid.New(), userID, nil, "Dated", "", "2024-01-05", "", false, "NONE", testNow, testNow).
				AddRow(uuid.New(), userID, nil, "Someday", "", nil, "", true, "NONE", testNow, testNow))

		rec := do(t, a, http.MethodGet, "/api/tasks", userID, nil)

		require.NoError(t, dbMock.ExpectationsWereMet())
		require.Equal(t, http.StatusOK, rec.Code)
		tasks, ok := responseMap(t, rec)["tasks"].([]any)
		require.True(t, ok)
		require.Len(t, tasks, 2)
		assert.Equal(t, "2024-01-05", tasks[0].(map[string]any)["date"])
		assert.Nil(t, tasks[1].(map[string]any)["date"])
	})

	t.Run("get tasks by category", func(t *testing.T) {
		t.Parallel()
		a, dbMock, _ := setupAPI(t)
		userID := uuid.New()
		categoryID := uuid.New()

		dbMock.ExpectQuery(regexp.QuoteMeta(selectTask+` WHERE user_id = $1 AND category_id = $2`)).
			WithArgs(userID, categoryID).
			WillReturnRows(sqlmock.NewRows(taskColumns))

		rec := do(t, a, http.MethodGet, "/api/tasks?category_id="+categoryID.String(), userID, nil)

		require.NoError(t, dbMock.ExpectationsWereMet())
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []any{}, responseMap(t, rec)["tasks"])
	})

	t.Run("get tasks invalid category", func(t *testing.T) {
		t.Parallel()
		a, _, _ := setupAPI(t)

		rec := do(t, a, http.MethodGet, "/api/tasks?category_id=abc", uuid.New(), nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("task stats", func(t *testing.T) {
		t.Parallel()
		a, dbMock, _ := setupAPI(t)
		userID := uuid.New()

		dbMock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*), COUNT(*) FILTER (WHERE completed) FROM tasks WHERE user_id = $1`)).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"count", "count"}).AddRow(5, 2))

		rec := do(t, a, http.MethodGet, "/api/tasks/stats", userID, nil)

		require.NoError(t, dbMock.ExpectationsWereMet())
		require.Equal(t, http.StatusOK, rec.Code)
		stats := responseMap(t, rec)
		assert.Equal(t, float64(5), stats["total"])
		assert.Equal(t, float64(2), stats["completed"])
		assert.Equal(t, float64(3), stats["pending"])
	})

	t.Run("set completed", func(t *testing.T) {
		t.Parallel()
		a, dbMock, _ := setupAPI(t)
		userID := uuid.New()
		id := uuid.New()

		dbMock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks SET completed = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`)).
			WithArgs(true, testNow, id, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectQuery(regexp.QuoteMeta(selectTask+` WHERE id = $1 AND user_id = $2`)).
			WithArgs(id, userID).
			WillReturnRows(sqlmock.NewRows(taskColumns).
				AddRow(id, userID, nil, "Buy milk", "", nil, "", true, "NONE", testNow, testNow))

		rec := do(t, a, http.MethodPatch, "/api/tasks/"+id.String()+"/completed", userID, map[string]any{"completed": true})

		require.NoError(t, dbMock.ExpectationsWereMet())
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, responseMap(t, rec)["completed"])
	})

	t.Run("set completed not found", func(t *testing.T) {
		t.Parallel()
		a, dbMock, _ := setupAPI(t)

		dbMock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks SET completed`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		rec := do(t, a, http.MethodPatch, "/api/tasks/"+uuid.NewString()+"/completed", uuid.New(), map[string]any{"completed": true})

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("convert task", func(t *testing.T) {
		t.Parallel()
		a, dbMock, _ := setupAPI(t)
		userID := uuid.New()
		id := uuid.New()

		dbMock.ExpectQuery(regexp.QuoteMeta(selectTask+` WHERE id = $1 AND user_id = $2`)).
			WithArgs(id, userID).
			WillReturnRows(sqlmock.NewRows(taskColumns).
				AddRow(id, userID, nil, "Write report", "Q1", nil, "Office", false, "NONE", testNow, testNow))
		dbMock.ExpectQuery(regexp.QuoteMeta(selectActivity+` WHERE user_id = $1 AND date = $2`)).
			WithArgs(userID, "2024-01-02").
			WillReturnRows(sqlmock.NewRows(activityColumns))
		dbMock.ExpectExec(regexp.QuoteMeta(insertActivity)).
			WithArgs(sqlmock.AnyArg(), userID, nil, "Write report", "Q1", "2024-01-02", "13:00:00", "15:00:00", "Office", "NONE", testNow, testNow).
			WillReturnResult(sqlmock.NewResult(1, 1))
		dbMock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tasks WHERE id = $1 AND user_id = $2`)).
			WithArgs(id, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		rec := do(t, a, http.MethodPost, "/api/tasks/"+id.String()+"/convert", userID, map[string]any{
			"date":       "2024-01-02",
			"start_time": "13:00",
			"end_time":   "15:00",
		})

		require.NoError(t, dbMock.ExpectationsWereMet())
		require.Equal(t, http.StatusCreated, rec.Code)
		saved, ok := responseMap(t, rec)["activity"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Write report", saved["name"])
		assert.Equal(t, "Office", saved["location"])
		assert.Equal(t, "13:00", saved["start_time"])
	})

	t.Run("convert task not found", func(t *testing.T) {
		t.Parallel()
		a, dbMock, _ := setupAPI(t)

		dbMock.ExpectQuery(regexp.QuoteMeta(selectTask)).
			WillReturnError(sql.ErrNoRows)

		rec := do(t, a, http.MethodPost, "/api/tasks/"+uuid.NewString()+"/convert", uuid.New(), map[string]any{
			"date":       "2024-01-02",
			"start_time": "13:00",
			"end_time":   "15:00",
		})

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("convert task without date", func(t *testing.T) {
		t.Parallel()
		a, dbMock, _ := setupAPI(t)
		userID := uuid.New()
		id := uuid.New()

		dbMock.ExpectQuery(regexp.QuoteMeta(selectTask)).
			WithArgs(id, userID).
			WillReturnRows(sqlmock.NewRows(taskColumns).
				AddRow(id, userID, nil, "Write report", "", nil, "", false, "NONE", testNow, testNow))

		rec := do(t, a, http.MethodPost, "/api/tasks/"+id.String()+"/convert", userID, map[string]any{
			"start_time": "13:00",
			"end_time":   "15:00",
		})

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete task", func(t *testing.T) {
		t.Parallel()
		a, dbMock, _ := setupAPI(t)
		userID := uuid.New()
		id := uuid.New()

		dbMock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tasks WHERE id = $1 AND user_id = $2`)).
			WithArgs(id, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		rec := do(t, a, http.MethodDelete, "/api/tasks/"+id.String(), userID, nil)

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
