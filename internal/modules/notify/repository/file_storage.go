package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/reshetovitsme/lead-notifier/internal/modules/notify/domain"
	"github.com/samber/oops"
)

// FileStorage implements Repository using file system
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStorage creates a new file-based delivery journal
func NewFileStorage(basePath string) (Repository, error) {
	deliveryPath := filepath.Join(basePath, "deliveries")
	if err := os.MkdirAll(deliveryPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create deliveries directory").Wrap(err)
	}

	return &FileStorage{basePath: deliveryPath}, nil
}

// Record writes one entry. File names start with the zero-padded timestamp
// so directory order is chronological.
func (s *FileStorage) Record(delivery *domain.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.basePath, fmt.Sprintf("%020d-%s.json", delivery.At.UnixNano(), delivery.ID))
	data, err := json.MarshalIndent(delivery, "", "  ")
	if err != nil {
		return oops.With("delivery_id", delivery.ID, "context", "failed to marshal delivery").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return oops.With("delivery_id", delivery.ID, "path", path).Wrap(err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *FileStorage) Recent(limit int) ([]*domain.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, oops.With("directory", s.basePath, "context", "failed to read deliveries directory").Wrap(err)
	}

	deliveries := []*domain.Delivery{}
	for i := len(entries) - 1; i >= 0 && len(deliveries) < limit; i-- {
		entry := entries[i]
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			continue
		}

		var delivery domain.Delivery
		if err := json.Unmarshal(data, &delivery); err != nil {
			continue
		}

		deliveries = append(deliveries, &delivery)
	}

	return deliveries, nil
}
