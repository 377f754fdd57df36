package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

type HealthHandler struct {
	base
	// ModelLoaded reports whether a classifier snapshot is active.
	ModelLoaded func() bool
}

func NewHealthHandler(modelLoaded func() bool, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{base: base{Logger: logger}, ModelLoaded: modelLoaded}
}

// Health provides a minimal liveness check endpoint.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	res := map[string]any{"status": "ok"}
	if h.ModelLoaded != nil {
		res["model_loaded"] = h.ModelLoaded()
	}
	h.writeJSON(w, r, http.StatusOK, res)
}
