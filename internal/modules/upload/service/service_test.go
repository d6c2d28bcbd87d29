package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reshetovitsme/lead-notifier/internal/modules/upload/repository"
	"github.com/reshetovitsme/lead-notifier/internal/shared/config"
	"github.com/reshetovitsme/lead-notifier/internal/shared/errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := repository.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return New(&config.Config{MaxUploadBytes: 1024}, repo)
}

func TestService_SaveResolveRelease(t *testing.T) {
	s := newTestService(t)
	data := []byte("\xff\xd8\xff\xe0 kitchen sink")

	upload, err := s.Save(`C:\photos\sink.jpg`, "", data)
	require.NoError(t, err)
	assert.Equal(t, "sink.jpg", upload.Name)
	assert.Equal(t, "image/jpeg", upload.ContentType)
	assert.EqualValues(t, len(data), upload.Size)

	ref := s.Reference(upload)
	assert.Equal(t, "blob:"+upload.ID.String(), ref)

	got, name, err := s.Resolve(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "sink.jpg", name)

	require.NoError(t, s.Release(ref))

	_, _, err = s.Resolve(context.Background(), ref)
	assert.True(t, stderrors.Is(err, errors.ErrUploadNotFound))
	assert.True(t, stderrors.Is(s.Release(ref), errors.ErrUploadNotFound))
}

func TestService_SaveRejects(t *testing.T) {
	s := newTestService(t)

	_, err := s.Save("empty.jpg", "image/jpeg", nil)
	assert.True(t, stderrors.Is(err, errors.ErrEmptyMedia))

	_, err = s.Save("huge.jpg", "image/jpeg", make([]byte, 2048))
	assert.True(t, stderrors.Is(err, errors.ErrUploadTooLarge))
}

func TestParseReference(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"short form", "blob:" + id.String(), false},
		{"browser form", "blob:https://example.com/" + id.String(), false},
		{"no scheme", id.String(), true},
		{"empty", "blob:", true},
		{"not a uuid", "blob:https://example.com/abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReference(tt.url)
			if tt.wantErr {
				assert.True(t, stderrors.Is(err, errors.ErrInvalidBlobURL))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, id, got)
		})
	}
}

func TestService_ResolveHonoursContext(t *testing.T) {
	s := newTestService(t)
	upload, err := s.Save("a.png", "image/png", []byte("png"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = s.Resolve(ctx, s.Reference(upload))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_SweepRemovesExpiredUploads(t *testing.T) {
	repo, err := repository.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	s := New(&config.Config{MaxUploadBytes: 1024, UploadTTL: time.Hour}, repo)

	start := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }
	stale, err := s.Save("old.jpg", "image/jpeg", []byte("old"))
	require.NoError(t, err)

	s.now = func() time.Time { return start.Add(50 * time.Minute) }
	fresh, err := s.Save("new.jpg", "image/jpeg", []byte("new"))
	require.NoError(t, err)

	s.now = func() time.Time { return start.Add(61 * time.Minute) }
	removed, err := s.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = s.Stat(s.Reference(stale))
	assert.True(t, stderrors.Is(err, errors.ErrUploadNotFound))

	info, err := s.Stat(s.Reference(fresh))
	require.NoError(t, err)
	assert.Equal(t, "new.jpg", info.Name)

	removed, err = s.Sweep()
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestService_RunSweeperStopsWithContext(t *testing.T) {
	s := newTestService(t)
	s.cfg.UploadTTL = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
