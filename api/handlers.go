package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"smartcalendar/activity"
	"smartcalendar/auth"
	"smartcalendar/user"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Auth   auth.Options
	Mailer auth.Mailer
	// Location is the timezone activity dates and times are interpreted in.
	Location    *time.Location
	CORSOrigins []string
	Now         func() time.Time
}

type API struct {
	root   *mux.Router
	router *mux.Router
	db     *sql.DB
	opts   Options
	auth   *auth.Service
	now    func() time.Time
}

func NewAPI(db *sql.DB, opts Options) *API {
	root := mux.NewRouter()
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &API{
		root:   root,
		router: root.PathPrefix("/api").Subrouter(),
		db:     db,
		opts:   opts,
		auth:   auth.NewService(user.NewAccessor(db), auth.NewAccessor(db), opts.Mailer, opts.Auth),
		now:    func() time.Time { return now().In(opts.Location) },
	}
}

func (a *API) Router() *mux.Router {
	return a.root
}

func (a *API) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(a.opts.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowCredentials(),
	)
	// Use Gorilla's built-in logging handler
	return handlers.LoggingHandler(os.Stdout, cors(a.root))
}

type Response struct {
	Status   int `json:"status"`
	Response any `json:"response"`
}

func (a *API) Response(w http.ResponseWriter, status int, data any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(Response{
		Status:   status,
		Response: data,
	})
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Error maps domain errors onto HTTP status codes. Anything unrecognised is
// logged and reported as a 500.
func (a *API) Error(w http.ResponseWriter, r *http.Request, err error) {
	var rangeErr *activity.InvalidRangeError
	switch {
	case errors.As(err, &rangeErr), errors.Is(err, auth.ErrInvalidInput):
		a.Response(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		a.Response(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrNotVerified):
		a.Response(w, http.StatusForbidden, err.Error())
	case errors.Is(err, activity.ErrNotFound):
		a.Response(w, http.StatusNotFound, err.Error())
	case errors.Is(err, user.ErrEmailTaken):
		a.Response(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrEmailDelivery):
		a.Response(w, http.StatusBadGateway, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		a.Response(w, http.StatusInternalServerError, "internal server error")
	}
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// currentUser returns the id of the authenticated caller.
func (a *API) currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		a.Response(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
		return uuid.Nil, false
	}
	return userID, true
}

func (a *API) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

var publicPaths = []string{
	"/api/health",
	"/api/auth/register",
	"/api/auth/verify",
	"/api/auth/resend-verification",
	"/api/auth/login",
	"/api/auth/refresh",
	"/api/auth/logout",
	"/api/auth/forgot-password",
	"/api/auth/reset-password",
}

func (a *API) RegisterRoutes() {
	a.root.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	a.router.Use(auth.NewMiddleware(a.opts.Auth.Config, auth.PathSkipper(publicPaths...)).Wrap)

	a.router.HandleFunc("/health", a.health).Methods(http.MethodGet)

	a.router.HandleFunc("/auth/register", a.register).Methods(http.MethodPost)
	a.router.HandleFunc("/auth/verify", a.verify).Methods(http.MethodPost)
	a.router.HandleFunc("/auth/resend-verification", a.resendVerification).Methods(http.MethodPost)
	a.router.HandleFunc("/auth/login", a.login).Methods(http.MethodPost)
	a.router.HandleFunc("/auth/refresh", a.refresh).Methods(http.MethodPost)
	a.router.HandleFunc("/auth/logout", a.logout).Methods(http.MethodPost)
	a.router.HandleFunc("/auth/forgot-password", a.forgotPassword).Methods(http.MethodPost)
	a.router.HandleFunc("/auth/reset-password", a.resetPassword).Methods(http.MethodPost)
	a.router.HandleFunc("/auth/change-password", a.changePassword).Methods(http.MethodPost)
	a.router.HandleFunc("/auth/change-email", a.changeEmail).Methods(http.MethodPost)
	a.router.HandleFunc("/auth/delete-account", a.deleteAccount).Methods(http.MethodPost)

	a.router.HandleFunc("/users/me", a.getMe).Methods(http.MethodGet)
	a.router.HandleFunc("/users/me", a.updateMe).Methods(http.MethodPut)

	a.router.HandleFunc("/categories", a.createCategory).Methods(http.MethodPost)
	a.router.HandleFunc("/categories", a.getCategories).Methods(http.MethodGet)
	a.router.HandleFunc("/categories/{id}", a.getCategory).Methods(http.MethodGet)
	a.router.HandleFunc("/categories/{id}", a.updateCategory).Methods(http.MethodPut)
	a.router.HandleFunc("/categories/{id}", a.deleteCategory).Methods(http.MethodDelete)

	a.router.HandleFunc("/tasks", a.createTask).Methods(http.MethodPost)
	a.router.HandleFunc("/tasks", a.getTasks).Methods(http.MethodGet)
	a.router.HandleFunc("/tasks/stats", a.getTaskStats).Methods(http.MethodGet)
	a.router.HandleFunc("/tasks/{id}", a.getTask).Methods(http.MethodGet)
	a.router.HandleFunc("/tasks/{id}", a.updateTask).Methods(http.MethodPut)
	a.router.HandleFunc("/tasks/{id}", a.deleteTask).Methods(http.MethodDelete)
	a.router.HandleFunc("/tasks/{id}/completed", a.setTaskCompleted).Methods(http.MethodPatch)
	a.router.HandleFunc("/tasks/{id}/convert", a.convertTask).Methods(http.MethodPost)

	a.router.HandleFunc("/activities", a.createActivity).Methods(http.MethodPost)
	a.router.HandleFunc("/activities", a.getActivities).Methods(http.MethodGet)
	a.router.HandleFunc("/activities/between", a.getActivitiesBetween).Methods(http.MethodGet)
	a.router.HandleFunc("/activities/stats", a.getActivityStats).Methods(http.MethodGet)
	a.router.HandleFunc("/activities/calendar.ics", a.exportActivities).Methods(http.MethodGet)
	a.router.HandleFunc("/activities/category/{id}", a.getActivitiesByCategory).Methods(http.MethodGet)
	a.router.HandleFunc("/activities/{id}", a.getActivity).Methods(http.MethodGet)
	a.router.HandleFunc("/activities/{id}", a.updateActivity).Methods(http.MethodPut)
	a.router.HandleFunc("/activities/{id}", a.deleteActivity).Methods(http.MethodDelete)
}
