package api

import (
	"net/http"
	"smartcalendar/activity"
	"smartcalendar/calendar"
)

type getActivitiesResponse struct {
	Activities []activity.Activity `json:"activities"`
}

type getOccurrencesResponse struct {
	Occurrences []activity.Occurrence `json:"occurrences"`
}

// savedResponse carries overlap warnings next to the stored activity.
type savedResponse struct {
	Activity *activity.Activity `json:"activity"`
	Warnings []string           `json:"warnings"`
}

func (a *API) createActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	var payload activity.Activity
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

	service := activity.NewService(activity.NewAccessor(a.db))
	saved, err := service.CreateActivity(r.Context(), payload, a.now())
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, savedResponse{Activity: saved.Activity, Warnings: saved.Warnings})
}

func (a *API) updateActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	var payload activity.Activity
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

	service := activity.NewService(activity.NewAccessor(a.db))
	saved, err := service.UpdateActivity(r.Context(), payload, a.now())
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, savedResponse{Activity: saved.Activity, Warnings: saved.Warnings})
}

func (a *API) getActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}

	activityAccessor := activity.NewAccessor(a.db)
	act, err := activityAccessor.GetActivity(r.Context(), userID, id)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if act == nil {
		a.Response(w, http.StatusNotFound, "activity not found")
		return
	}
	a.Response(w, http.StatusOK, act)
}

func (a *API) deleteActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}

	activityAccessor := activity.NewAccessor(a.db)
	deleted, err := activityAccessor.DeleteActivity(r.Context(), userID, id)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if !deleted {
		a.Response(w, http.StatusNotFound, "activity not found")
		return
	}
	a.Response(w, http.StatusNoContent, nil)
}

// getActivities lists every activity of the caller, or those of one day
// with ?date=YYYY-MM-DD.
func (a *API) getActivities(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}

	var date *calendar.Date
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := calendar.ParseDate(raw)
		if err != nil {
			a.Response(w, http.StatusBadRequest, "invalid date")
			return
		}
		date = &d
	}

	activityAccessor := activity.NewAccessor(a.db)
	activities, err := activityAccessor.ListActivities(r.Context(), userID, date)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getActivitiesResponse{Activities: activities})
}

func (a *API) getActivitiesByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	categoryID, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}

	activityAccessor := activity.NewAccessor(a.db)
	activities, err := activityAccessor.ListActivitiesByCategory(r.Context(), userID, categoryID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getActivitiesResponse{Activities: activities})
}

// getActivitiesBetween expands recurring activities into the occurrences
// falling inside ?from and ?to, both inclusive.
func (a *API) getActivitiesBetween(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	from, err := calendar.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := calendar.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid to date")
		return
	}
	if to.Before(from) {
		a.Response(w, http.StatusBadRequest, "to must not be before from")
		return
	}

	activityAccessor := activity.NewAccessor(a.db)
	activities, err := activityAccessor.ListActivities(r.Context(), userID, nil)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	occurrences, err := activity.Expand(activities, from, to)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getOccurrencesResponse{Occurrences: occurrences})
}

func (a *API) getActivityStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}

	activityAccessor := activity.NewAccessor(a.db)
	activities, err := activityAccessor.ListActivities(r.Context(), userID, nil)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, activity.ComputeStats(activities, a.now()))
}

func (a *API) exportActivities(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}

	activityAccessor := activity.NewAccessor(a.db)
	activities, err := activityAccessor.ListActivities(r.Context(), userID, nil)
	if err != nil {
		a.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="smartcalendar.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(activity.ExportICS(activities, a.opts.Location, a.now())))
}
