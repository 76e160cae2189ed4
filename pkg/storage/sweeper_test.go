package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestSweeper(root string, now time.Time) *Sweeper {
	return &Sweeper{
		root:     root,
		maxAge:   30 * 24 * time.Hour,
		interval: time.Hour,
		now:      func() time.Time { return now },
	}
}

func writeFile(t *testing.T, path string, modTime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestSweepDeletesOnlyExpiredFiles(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)

	oldFile := filepath.Join(root, "2024", "04", "old.csv")
	freshFile := filepath.Join(root, "2024", "06", "fresh.csv")
	writeFile(t, oldFile, now.Add(-31*24*time.Hour))
	writeFile(t, freshFile, now.Add(-time.Hour))

	res := newTestSweeper(root, now).Sweep(context.Background())

	require.Equal(t, 1, res.FilesDeleted)
	require.Equal(t, 1, res.DirsRemoved)
	require.Zero(t, res.Errors)

	require.NoFileExists(t, oldFile)
	require.NoDirExists(t, filepath.Join(root, "2024", "04"))
	require.FileExists(t, freshFile)
}

func TestSweepKeepsSentinelAndRoot(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	old := now.Add(-90 * 24 * time.Hour)

	keep := filepath.Join(root, KeepFile)
	nestedKeep := filepath.Join(root, "2023", KeepFile)
	writeFile(t, keep, old)
	writeFile(t, nestedKeep, old)
	writeFile(t, filepath.Join(root, "2023", "01", "a.csv"), old)
	writeFile(t, filepath.Join(root, "2023", "01", "b.csv"), old)

	res := newTestSweeper(root, now).Sweep(context.Background())

	require.Equal(t, 2, res.FilesDeleted)
	require.Equal(t, 1, res.DirsRemoved)
	require.FileExists(t, keep)
	require.FileExists(t, nestedKeep)
	require.DirExists(t, root)
}

func TestSweepEmptyRootIsNotRemoved(t *testing.T) {
	root := t.TempDir()

	res := newTestSweeper(root, time.Now()).Sweep(context.Background())

	require.Equal(t, SweepResult{}, res)
	require.DirExists(t, root)
}

func TestSweepMissingRootCountsError(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")

	res := newTestSweeper(root, time.Now()).Sweep(context.Background())

	require.Equal(t, 1, res.Errors)
	require.Zero(t, res.FilesDeleted)
}

func TestSweeperStartStop(t *testing.T) {
	root := t.TempDir()
	old := time.Now().Add(-60 * 24 * time.Hour)
	file := filepath.Join(root, "2024", "01", "x.csv")
	writeFile(t, file, old)

	s := newTestSweeper(root, time.Now())
	s.Start()

	require.Eventually(t, func() bool {
		_, err := os.Stat(file)
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop()
	s.Stop()
}
