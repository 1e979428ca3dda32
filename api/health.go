package api

import (
	"log/slog"
	"net/http"
)

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	if err := a.db.PingContext(r.Context()); err != nil {
		slog.WarnContext(r.Context(), "health check failed", "error", err)
		a.Response(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	a.Response(w, http.StatusOK, "OK")
}
