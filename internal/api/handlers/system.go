package handlers

import (
	"net/http"

	"github.com/ramonehamilton/spellduel/internal/api/response"
	"github.com/ramonehamilton/spellduel/internal/metrics"
	"github.com/ramonehamilton/spellduel/internal/version"
)

// SystemHandler serves server status.
type SystemHandler struct {
	metrics *metrics.RelayMetrics
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(m *metrics.RelayMetrics) *SystemHandler {
	return &SystemHandler{metrics: m}
}

// GetMetrics returns a snapshot of the relay metrics.
func (h *SystemHandler) GetMetrics(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.metrics.GetStats())
}

// GetVersion returns the server build info.
func (h *SystemHandler) GetVersion(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, version.Get())
}
