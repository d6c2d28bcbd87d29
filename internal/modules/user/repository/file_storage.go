package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/reshetovitsme/lead-notifier/internal/modules/user/domain"
	"github.com/reshetovitsme/lead-notifier/internal/shared/errors"
	"github.com/samber/oops"
)

// FileStorage implements Repository using file system
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStorage creates a new file-based operator repository
func NewFileStorage(basePath string) (Repository, error) {
	userPath := filepath.Join(basePath, "operators")
	if err := os.MkdirAll(userPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create operators directory").Wrap(err)
	}

	return &FileStorage{basePath: userPath}, nil
}

func (s *FileStorage) path(userID int64) string {
	return filepath.Join(s.basePath, strconv.FormatInt(userID, 10)+".json")
}

func (s *FileStorage) SaveUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return oops.With("user_id", user.ID, "context", "failed to marshal operator").Wrap(err)
	}

	if err := os.WriteFile(s.path(user.ID), data, 0644); err != nil {
		return oops.With("user_id", user.ID, "context", "failed to write operator").Wrap(err)
	}
	return nil
}

func (s *FileStorage) GetUser(userID int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oops.With("user_id", userID).Wrap(errors.ErrUserNotFound)
		}
		return nil, oops.With("user_id", userID, "context", "failed to read operator").Wrap(err)
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, oops.With("user_id", userID, "context", "failed to unmarshal operator").Wrap(err)
	}

	return &user, nil
}

// GetAllUsers returns every stored operator, oldest first.
func (s *FileStorage) GetAllUsers() ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, oops.With("directory", s.basePath, "context", "failed to read operators directory").Wrap(err)
	}

	users := []*domain.User{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			continue
		}

		var user domain.User
		if err := json.Unmarshal(data, &user); err != nil {
			continue
		}

		users = append(users, &user)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].AddedAt.Before(users[j].AddedAt)
	})
	return users, nil
}
