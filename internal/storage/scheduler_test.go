package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshotScheduler_Validates(t *testing.T) {
	svc := setupTestService(t)

	_, err := NewSnapshotScheduler(nil, SchedulerConfig{Dir: t.TempDir()})
	assert.Error(t, err)

	_, err = NewSnapshotScheduler(svc.db, SchedulerConfig{})
	assert.Error(t, err)

	_, err = NewSnapshotScheduler(svc.db, SchedulerConfig{Dir: t.TempDir(), Keep: -1})
	assert.Error(t, err)

	s, err := NewSnapshotScheduler(svc.db, SchedulerConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "24h0m0s", s.Status().Interval)
	assert.False(t, s.Status().Running)
}

func TestSnapshotScheduler_TriggerPrunes(t *testing.T) {
	svc := setupTestService(t)
	dir := filepath.Join(t.TempDir(), "snapshots")

	var (
		mu    sync.Mutex
		calls []string
	)
	s, err := NewSnapshotScheduler(svc.db, SchedulerConfig{
		Dir:  dir,
		Keep: 2,
		OnSnapshot: func(path string, err error) {
			mu.Lock()
			defer mu.Unlock()
			assert.NoError(t, err)
			calls = append(calls, path)
		},
	})
	require.NoError(t, err)

	for range 3 {
		_, err := s.Trigger(t.Context())
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	snapshots, err := ListSnapshots(dir)
	require.NoError(t, err)
	assert.Len(t, snapshots, 2)

	status := s.Status()
	assert.Equal(t, 3, status.SnapshotCount)
	assert.Zero(t, status.FailureCount)
	assert.Equal(t, snapshots[1].Path, status.LastPath)

	mu.Lock()
	assert.Len(t, calls, 3)
	mu.Unlock()
}

func TestSnapshotScheduler_Run(t *testing.T) {
	svc := setupTestService(t)
	dir := t.TempDir()

	done := make(chan string, 8)
	s, err := NewSnapshotScheduler(svc.db, SchedulerConfig{
		Dir:              dir,
		Interval:         time.Hour,
		StartImmediately: true,
		OnSnapshot: func(path string, err error) {
			if err == nil {
				done <- path
			}
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	result := make(chan error, 1)
	go func() { result <- s.Run(ctx) }()

	select {
	case path := <-done:
		assert.FileExists(t, path)
	case <-time.After(5 * time.Second):
		t.Fatal("immediate snapshot was not taken")
	}
	assert.True(t, s.Status().Running)
	assert.Error(t, s.Run(ctx), "second Run is refused")

	cancel()
	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, s.Status().Running)
}
