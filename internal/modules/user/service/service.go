package service

import (
	stderrors "errors"
	"time"

	"github.com/reshetovitsme/lead-notifier/internal/modules/user/domain"
	"github.com/reshetovitsme/lead-notifier/internal/modules/user/repository"
	"github.com/reshetovitsme/lead-notifier/internal/shared/errors"
	"github.com/samber/lo"
)

// Service handles operator registration and access checks
type Service struct {
	repo         repository.Repository
	allowedUsers []int64
	now          func() time.Time
}

// New creates a new user service. An empty allow list admits everyone.
func New(repo repository.Repository, allowedUsers []int64) *Service {
	return &Service{
		repo:         repo,
		allowedUsers: allowedUsers,
		now:          time.Now,
	}
}

// IsAuthorized checks if a user may use the bot
func (s *Service) IsAuthorized(userID int64) bool {
	if len(s.allowedUsers) == 0 {
		return true
	}
	return lo.Contains(s.allowedUsers, userID)
}

// Register stores an operator on first contact and refreshes LastSeen
// afterwards. Unauthorized users are rejected.
func (s *Service) Register(user *domain.User) (*domain.User, error) {
	if !s.IsAuthorized(user.ID) {
		return nil, errors.ErrUnauthorized
	}

	now := s.now()
	existing, err := s.repo.GetUser(user.ID)
	switch {
	case err == nil:
		user.AddedAt = existing.AddedAt
	case stderrors.Is(err, errors.ErrUserNotFound):
		user.AddedAt = now
	default:
		return nil, err
	}
	user.LastSeen = now

	if err := s.repo.SaveUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves an operator by ID
func (s *Service) GetUser(userID int64) (*domain.User, error) {
	return s.repo.GetUser(userID)
}

// GetAllUsers retrieves all operators
func (s *Service) GetAllUsers() ([]*domain.User, error) {
	return s.repo.GetAllUsers()
}
