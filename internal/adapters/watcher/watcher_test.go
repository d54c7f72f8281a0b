package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/affected/internal/adapters/fs"
	"go.trai.ch/affected/internal/adapters/watcher"
	"go.trai.ch/affected/internal/core/ports"
	"go.trai.ch/affected/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestWatcher_ReportsRelativeBatches(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "libs", "core"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o750))

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	w := watcher.NewWatcher(fs.NewWalker(), log, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, root))
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "index"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "libs", "core", "core.go"), []byte("package core"), 0o600))

	events := make(chan ports.WatchEvent, 1)
	go func() {
		for ev := range w.Events() {
			events <- ev
			return
		}
	}()

	select {
	case ev := <-events:
		assert.Equal(t, []string{"libs/core/core.go"}, ev.Paths)
	case <-time.After(5 * time.Second):
		t.Fatal("no watch event received")
	}
}

func TestWatcher_EventsEndOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	w := watcher.NewWatcher(fs.NewWalker(), log, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, t.TempDir()))
	defer func() { _ = w.Stop() }()

	done := make(chan struct{})
	go func() {
		for range w.Events() {
		}
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("events iterator did not end")
	}
}

func TestWatcher_StopBeforeStart(t *testing.T) {
	w := watcher.NewWatcher(fs.NewWalker(), nil, time.Millisecond)
	require.NoError(t, w.Stop())
}
