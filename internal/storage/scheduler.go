package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SchedulerConfig holds configuration for periodic database snapshots.
type SchedulerConfig struct {
	// Dir receives the snapshot files.
	Dir string

	// Interval is how often to snapshot.
	// Default: 24 hours
	Interval time.Duration

	// Keep is how many snapshots to retain; older ones are pruned after
	// each successful snapshot. 0 keeps every snapshot.
	Keep int

	// StartImmediately takes a snapshot as soon as Run starts.
	StartImmediately bool

	// OnSnapshot is called after each attempt, successful or not.
	OnSnapshot func(path string, err error)

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// SchedulerStatus contains information about the scheduler state.
type SchedulerStatus struct {
	Running       bool      `json:"running"`
	Interval      string    `json:"interval"`
	LastSnapshot  time.Time `json:"last_snapshot,omitzero"`
	LastPath      string    `json:"last_path,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	SnapshotCount int       `json:"snapshot_count"`
	FailureCount  int       `json:"failure_count"`
}

// SnapshotScheduler snapshots a database on a fixed interval.
type SnapshotScheduler struct {
	db     *DB
	config SchedulerConfig
	logger *slog.Logger

	// Serializes snapshots started by the ticker and by Trigger.
	runMu sync.Mutex

	mu      sync.RWMutex
	running bool
	status  SchedulerStatus
}

// NewSnapshotScheduler creates a scheduler for db.
func NewSnapshotScheduler(db *DB, config SchedulerConfig) (*SnapshotScheduler, error) {
	if db == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	if config.Dir == "" {
		return nil, fmt.Errorf("snapshot directory cannot be empty")
	}
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	if config.Keep < 0 {
		return nil, fmt.Errorf("snapshot keep count cannot be negative: %d", config.Keep)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &SnapshotScheduler{
		db:     db,
		config: config,
		logger: config.Logger.With("component", "snapshots", "dir", config.Dir),
		status: SchedulerStatus{Interval: config.Interval.String()},
	}, nil
}

// Run snapshots every interval until ctx is cancelled. It returns an error
// if the scheduler is already running.
func (s *SnapshotScheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.status.Running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.status.Running = false
		s.mu.Unlock()
	}()

	if s.config.StartImmediately {
		_, _ = s.Trigger(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_, _ = s.Trigger(ctx)
		}
	}
}

// Trigger takes a snapshot now, prunes old ones and records the outcome.
func (s *SnapshotScheduler) Trigger(ctx context.Context) (string, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	path, err := s.db.Snapshot(ctx, s.config.Dir)
	if err == nil {
		var removed []string
		removed, err = PruneSnapshots(s.config.Dir, s.config.Keep)
		if len(removed) > 0 {
			s.logger.Info("pruned snapshots", "removed", len(removed))
		}
	}

	s.mu.Lock()
	s.status.LastSnapshot = time.Now()
	if err != nil {
		s.status.FailureCount++
		s.status.LastError = err.Error()
	} else {
		s.status.SnapshotCount++
		s.status.LastPath = path
		s.status.LastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("snapshot failed", "error", err)
	} else {
		s.logger.Info("snapshot written", "path", path)
	}
	if s.config.OnSnapshot != nil {
		s.config.OnSnapshot(path, err)
	}
	return path, err
}

// Status returns the current scheduler status.
func (s *SnapshotScheduler) Status() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// List returns the snapshots in the scheduler's directory, oldest first.
func (s *SnapshotScheduler) List() ([]SnapshotInfo, error) {
	return ListSnapshots(s.config.Dir)
}
