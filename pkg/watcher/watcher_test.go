package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"standup.mp3", true},
		{"retro.WAV", true},
		{"call.m4a", true},
		{"clip.webm", true},
		{"notes.txt", false},
		{"slides.pdf", false},
		{"noext", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAudioFile(tt.path))
		})
	}
}

func TestWatcherRejectsMissingDir(t *testing.T) {
	_, err := New(Config{Dir: "/does/not/exist"}, func(context.Context, string) error { return nil }, nil)
	require.Error(t, err)
}

func TestWatcherUploadsNewAudioFile(t *testing.T) {
	dir := t.TempDir()
	handled := make(chan string, 1)

	w, err := New(Config{Dir: dir, SettleDelay: 10 * time.Millisecond}, func(ctx context.Context, path string) error {
		handled <- path
		return nil
	}, nil)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	path := filepath.Join(dir, "standup.mp3")
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0o644))

	select {
	case got := <-handled:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called for the new audio file")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcherIgnoresNonAudioFiles(t *testing.T) {
	dir := t.TempDir()
	handled := make(chan string, 1)

	w, err := New(Config{Dir: dir, SettleDelay: 10 * time.Millisecond}, func(ctx context.Context, path string) error {
		handled <- path
		return nil
	}, nil)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0o644))

	select {
	case path := <-handled:
		t.Fatalf("handler should not run for %s", path)
	case <-time.After(300 * time.Millisecond):
	}
}
