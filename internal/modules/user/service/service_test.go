package service

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reshetovitsme/lead-notifier/internal/modules/user/domain"
	"github.com/reshetovitsme/lead-notifier/internal/modules/user/repository"
	"github.com/reshetovitsme/lead-notifier/internal/shared/errors"
)

func newTestService(t *testing.T, allowed ...int64) *Service {
	t.Helper()
	repo, err := repository.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return New(repo, allowed)
}

func TestService_IsAuthorized(t *testing.T) {
	open := newTestService(t)
	assert.True(t, open.IsAuthorized(42))

	restricted := newTestService(t, 1, 2)
	assert.True(t, restricted.IsAuthorized(2))
	assert.False(t, restricted.IsAuthorized(3))
}

func TestService_Register(t *testing.T) {
	s := newTestService(t, 7)

	first := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return first }

	user, err := s.Register(&domain.User{ID: 7, Username: "mike", ChatID: 7})
	require.NoError(t, err)
	assert.Equal(t, first, user.AddedAt)
	assert.Equal(t, first, user.LastSeen)

	later := first.Add(48 * time.Hour)
	s.now = func() time.Time { return later }

	user, err = s.Register(&domain.User{ID: 7, Username: "mike", ChatID: 7})
	require.NoError(t, err)
	assert.True(t, first.Equal(user.AddedAt))
	assert.Equal(t, later, user.LastSeen)

	all, err := s.GetAllUsers()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "@mike", all[0].DisplayName())
}

func TestService_RegisterUnauthorized(t *testing.T) {
	s := newTestService(t, 1)

	_, err := s.Register(&domain.User{ID: 2})
	assert.True(t, stderrors.Is(err, errors.ErrUnauthorized))

	_, err = s.GetUser(2)
	assert.True(t, stderrors.Is(err, errors.ErrUserNotFound))
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "@ann", (&domain.User{Username: "ann", FirstName: "Ann"}).DisplayName())
	assert.Equal(t, "Ann", (&domain.User{FirstName: "Ann"}).DisplayName())
	assert.Equal(t, "Unknown", (&domain.User{}).DisplayName())
}
