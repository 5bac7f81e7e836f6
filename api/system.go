package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type storePinger interface {
	Ping(ctx context.Context) error
}

type SystemHandler struct {
	store storePinger
}

func NewSystemHandler(store storePinger) *SystemHandler {
	return &SystemHandler{store: store}
}

func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	connected := false
	if h.store != nil && h.store.Ping(r.Context()) == nil {
		connected = true
	}

	writeJSON(w, map[string]any{
		"status":         "healthy",
		"time":           time.Now().UTC().Format(time.RFC3339),
		"storeConnected": connected,
	}, http.StatusOK)
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","buildTime":"%s"}`, version, buildTime)
	}
}
