package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	snapshotPrefix = "spellduel_"
	snapshotExt    = ".db"
	snapshotLayout = "20060102_150405.000000"
)

// SnapshotInfo describes a snapshot file on disk.
type SnapshotInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	Created time.Time `json:"created"`
}

// Snapshot copies the live database into dir and returns the new file's path.
// VACUUM INTO produces a consistent copy without blocking writers for long.
func (db *DB) Snapshot(ctx context.Context, dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("snapshot directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	name := snapshotPrefix + time.Now().UTC().Format(snapshotLayout) + snapshotExt
	path := filepath.Join(dir, name)

	if _, err := db.conn.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := VerifySnapshot(ctx, path); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("snapshot verification failed: %w", err)
	}
	return path, nil
}

// VerifySnapshot opens a snapshot read-only and runs SQLite's integrity check.
func VerifySnapshot(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("snapshot not found: %w", err)
	}

	conn, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var result string
	if err := conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("failed to check snapshot: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("snapshot integrity check: %s", result)
	}

	var tables int
	if err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('cards', 'decks', 'matches')`,
	).Scan(&tables); err != nil {
		return fmt.Errorf("failed to read snapshot schema: %w", err)
	}
	if tables != 3 {
		return fmt.Errorf("snapshot is missing tables: found %d of 3", tables)
	}
	return nil
}

// ListSnapshots returns the snapshots in dir, oldest first. A missing
// directory has no snapshots.
func ListSnapshots(dir string) ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []SnapshotInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	snapshots := []SnapshotInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || filepath.Ext(name) != snapshotExt {
			continue
		}
		created, err := time.Parse(snapshotLayout, strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotExt))
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snapshots = append(snapshots, SnapshotInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			Created: created,
		})
	}

	slices.SortFunc(snapshots, func(a, b SnapshotInfo) int { return a.Created.Compare(b.Created) })
	return snapshots, nil
}

// PruneSnapshots deletes all but the newest keep snapshots in dir and
// returns the removed paths. keep <= 0 keeps everything.
func PruneSnapshots(dir string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	snapshots, err := ListSnapshots(dir)
	if err != nil {
		return nil, err
	}
	if len(snapshots) <= keep {
		return nil, nil
	}

	var removed []string
	for _, s := range snapshots[:len(snapshots)-keep] {
		if err := os.Remove(s.Path); err != nil {
			return removed, fmt.Errorf("failed to remove snapshot %s: %w", s.Name, err)
		}
		removed = append(removed, s.Path)
	}
	return removed, nil
}
