package api

import (
	"net/http"
	"smartcalendar/user"
	"strings"
)

type updateProfileRequest struct {
	FullName    string `json:"full_name"`
	ProfileIcon string `json:"profile_icon"`
}

func (a *API) getMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}

	userAccessor := user.NewAccessor(a.db)
	u, err := userAccessor.GetUser(r.Context(), userID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if u == nil {
		a.Response(w, http.StatusNotFound, "user not found")
		return
	}
	a.Response(w, http.StatusOK, u)
}

func (a *API) updateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	var req updateProfileRequest
	if !a.decode(w, r, &req) {
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		a.Response(w, http.StatusBadRequest, "full name is required")
		return
	}

	userAccessor := user.NewAccessor(a.db)
	if err := userAccessor.UpdateProfile(r.Context(), userID, req.FullName, req.ProfileIcon); err != nil {
		a.Error(w, r, err)
		return
	}

	u, err := userAccessor.GetUser(r.Context(), userID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if u == nil {
		a.Response(w, http.StatusNotFound, "user not found")
		return
	}
	a.Response(w, http.StatusOK, u)
}
