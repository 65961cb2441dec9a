package handlers

import (
	"context"
	"net/http"

	"github.com/ramonehamilton/spellduel/internal/api/response"
	"github.com/ramonehamilton/spellduel/internal/storage"
)

// Snapshotter takes and reports database snapshots.
type Snapshotter interface {
	Trigger(ctx context.Context) (string, error)
	Status() storage.SchedulerStatus
	List() ([]storage.SnapshotInfo, error)
}

// SnapshotResponse is the scheduler status with the snapshots on disk.
type SnapshotResponse struct {
	Status    storage.SchedulerStatus `json:"status"`
	Snapshots []storage.SnapshotInfo  `json:"snapshots"`
}

// SnapshotHandler handles database snapshot requests.
type SnapshotHandler struct {
	snapshots Snapshotter
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(s Snapshotter) *SnapshotHandler {
	return &SnapshotHandler{snapshots: s}
}

// GetSnapshots returns the scheduler status and the retained snapshots.
func (h *SnapshotHandler) GetSnapshots(w http.ResponseWriter, _ *http.Request) {
	list, err := h.snapshots.List()
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, SnapshotResponse{Status: h.snapshots.Status(), Snapshots: list})
}

// CreateSnapshot takes a snapshot now.
func (h *SnapshotHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	path, err := h.snapshots.Trigger(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Created(w, map[string]string{"path": path})
}
