package api

import (
	"net/http"
	"smartcalendar/category"

	"github.com/google/uuid"
)

type getCategoriesResponse struct {
	Categories []category.Category `json:"categories"`
}

func (a *API) createCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	var payload category.Category
	if !a.decode(w, r, &payload) {
		return
	}
	payload.UserID = userID

	if err := payload.Validate(); err != nil {
		a.Response(w, http.StatusBadRequest, err.Error())
		return
	}

	categoryAccessor := category.NewAccessor(a.db)
	created, err := categoryAccessor.CreateCategory(r.Context(), payload)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, created)
}

func (a *API) getCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}

	categoryAccessor := category.NewAccessor(a.db)
	categories, err := categoryAccessor.GetCategories(r.Context(), userID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getCategoriesResponse{Categories: categories})
}

func (a *API) getCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}

	categoryAccessor := category.NewAccessor(a.db)
	c, err := categoryAccessor.GetCategory(r.Context(), userID, id)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if c == nil {
		a.Response(w, http.StatusNotFound, "category not found")
		return
	}
	a.Response(w, http.StatusOK, c)
}

func (a *API) updateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}
	var payload category.Category
	if !a.decode(w, r, &payload) {
		return
	}
	payload.ID = id
	payload.UserID = userID

	if err := payload.Validate(); err != nil {
		a.Response(w, http.StatusBadRequest, err.Error())
		return
	}

	categoryAccessor := category.NewAccessor(a.db)
	updated, err := categoryAccessor.UpdateCategory(r.Context(), payload)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if updated == nil {
		a.Response(w, http.StatusNotFound, "category not found")
		return
	}
	a.Response(w, http.StatusOK, updated)
}

func (a *API) deleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := a.pathID(w, r, "id")
	if !ok {
		return
	}

	categoryAccessor := category.NewAccessor(a.db)
	deleted, err := categoryAccessor.DeleteCategory(r.Context(), userID, id)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if !deleted {
		a.Response(w, http.StatusNotFound, "category not found")
		return
	}
	a.Response(w, http.StatusNoContent, nil)
}

// ownsCategory rejects references to categories of other users.
func (a *API) ownsCategory(w http.ResponseWriter, r *http.Request, userID uuid.UUID, categoryID uuid.NullUUID) bool {
	if !categoryID.Valid {
		return true
	}
	categoryAccessor := category.NewAccessor(a.db)
	found, err := categoryAccessor.GetCategory(r.Context(), userID, categoryID.UUID)
	if err != nil {
		a.Error(w, r, err)
		return false
	}
	if found == nil {
		a.Response(w, http.StatusBadRequest, "category not found")
		return false
	}
	return true
}
