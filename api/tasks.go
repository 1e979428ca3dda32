package api

import (
	"net/http"
	"smartcalendar/activity"
	"smartcalendar/calendar"
	"smartcalendar/task"

	"github.com/google/uuid"
)

type getTasksResponse struct {
	Tasks []task.Task `json:"tasks"`
}

type setCompletedRequest struct {
	Completed bool `json:"completed"`
}

type convertTaskRequest struct {
	Date      calendar.Date  `json:"date"`
	StartTime calendar.Clock `json:"start_time"`
	EndTime   calendar.Clock `json:"end_time"`
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	var payload task.Task
	if !a.decode(w, r, &payload) {
		return
	}
	payload.UserID = userID

	if err := payload.Validate(); err != nil {
		a.Response(w, http.StatusBadRequest, err.Error())
		return
	}
	if !a.ownsCategory(w, r, userID, payload.CategoryID) {
		return
	}

	taskAccessor := task.NewAccessor(a.db)
	created, err := taskAccessor.CreateTask(r.Context(), payload, a.now())
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, created)
}

// getTasks lists the caller's tasks, optionally filtered by ?category_id.
func (a *API) getTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}

	taskAccessor := task.NewAccessor(a.db)
	var (
		tasks []task.Task
		err   error
	)
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		categoryID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			a.Response(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		tasks, err = taskAccessor.GetTasksByCategory(r.Context(), userID, categoryID)
	} else {
		tasks, err = taskAccessor.GetTasks(r.Context(), userID)
	}
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getTasksResponse{Tasks: tasks})
}

func (a *API) getTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}

	taskAccessor := task.NewAccessor(a.db)
	t, err := taskAccessor.GetTask(r.Context(), userID, id)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if t == nil {
		a.Response(w, http.StatusNotFound, "task not found")
		return
	}
	a.Response(w, http.StatusOK, t)
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	var payload task.Task
	if !a.decode(w, r, &payload) {
		return
	}
	payload.ID = id
	payload.UserID = userID

	if err := payload.Validate(); err != nil {
		a.Response(w, http.StatusBadRequest, err.Error())
		return
	}
	if !a.ownsCategory(w, r, userID, payload.CategoryID) {
		return
	}

	taskAccessor := task.NewAccessor(a.db)
	updated, err := taskAccessor.UpdateTask(r.Context(), payload, a.now())
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if updated == nil {
		a.Response(w, http.StatusNotFound, "task not found")
		return
	}
	a.Response(w, http.StatusOK, updated)
}

func (a *API) setTaskCompleted(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	var req setCompletedRequest
	if !a.decode(w, r, &req) {
		return
	}

	taskAccessor := task.NewAccessor(a.db)
	updated, err := taskAccessor.SetCompleted(r.Context(), userID, id, req.Completed, a.now())
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if updated == nil {
		a.Response(w, http.StatusNotFound, "task not found")
		return
	}
	a.Response(w, http.StatusOK, updated)
}

func (a *API) deleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}

	taskAccessor := task.NewAccessor(a.db)
	deleted, err := taskAccessor.DeleteTask(r.Context(), userID, id)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if !deleted {
		a.Response(w, http.StatusNotFound, "task not found")
		return
	}
	a.Response(w, http.StatusNoContent, nil)
}

func (a *API) getTaskStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}

	taskAccessor := task.NewAccessor(a.db)
	stats, err := taskAccessor.GetStats(r.Context(), userID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, stats)
}

// convertTask schedules a task as an activity and removes the task. The
// activity goes through the same overlap check as a direct create.
func (a *API) convertTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	var req convertTaskRequest
	if !a.decode(w, r, &req) {
		return
	}

	taskAccessor := task.NewAccessor(a.db)
	t, err := taskAccessor.GetTask(r.Context(), userID, id)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if t == nil {
		a.Response(w, http.StatusNotFound, "task not found")
		return
	}

	payload := t.Activity(req.Date, req.StartTime, req.EndTime)
	if err := payload.Validate(); err != nil {
		a.Response(w, http.StatusBadRequest, err.Error())
		return
	}

	service := activity.NewService(activity.NewAccessor(a.db))
	saved, err := service.CreateActivity(r.Context(), payload, a.now())
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if _, err := taskAccessor.DeleteTask(r.Context(), userID, id); err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, savedResponse{Activity: saved.Activity, Warnings: saved.Warnings})
}
