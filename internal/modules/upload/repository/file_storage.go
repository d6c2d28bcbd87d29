package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/reshetovitsme/lead-notifier/internal/modules/upload/domain"
	"github.com/reshetovitsme/lead-notifier/internal/shared/errors"
	"github.com/samber/oops"
)

// FileStorage implements Repository using file system. Each upload is a
// metadata file plus a data file sharing the upload id.
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStorage creates a new file-based upload repository
func NewFileStorage(basePath string) (Repository, error) {
	uploadPath := filepath.Join(basePath, "uploads")
	if err := os.MkdirAll(uploadPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create uploads directory").Wrap(err)
	}

	return &FileStorage{basePath: uploadPath}, nil
}

func (s *FileStorage) paths(id uuid.UUID) (string, string) {
	base := filepath.Join(s.basePath, id.String())
	return base + ".json", base + ".bin"
}

func (s *FileStorage) SaveUpload(upload *domain.Upload, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	metaPath, dataPath := s.paths(upload.ID)
	meta, err := json.MarshalIndent(upload, "", "  ")
	if err != nil {
		return oops.With("upload_id", upload.ID, "context", "failed to marshal upload").Wrap(err)
	}

	if err := os.WriteFile(dataPath, data, 0644); err != nil {
		return oops.With("upload_id", upload.ID, "context", "failed to write upload data").Wrap(err)
	}
	if err := os.WriteFile(metaPath, meta, 0644); err != nil {
		_ = os.Remove(dataPath)
		return oops.With("upload_id", upload.ID, "context", "failed to write upload metadata").Wrap(err)
	}
	return nil
}

func (s *FileStorage) GetUpload(id uuid.UUID) (*domain.Upload, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	upload, err := s.readInfo(id)
	if err != nil {
		return nil, nil, err
	}

	_, dataPath := s.paths(id)
	data, err := os.ReadFile(dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.ErrUploadNotFound
		}
		return nil, nil, oops.With("upload_id", id, "context", "failed to read upload data").Wrap(err)
	}

	return upload, data, nil
}

// GetUploadInfo reads only the metadata of an upload.
func (s *FileStorage) GetUploadInfo(id uuid.UUID) (*domain.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.readInfo(id)
}

// ListUploads returns the metadata of every stored upload.
func (s *FileStorage) ListUploads() ([]*domain.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, oops.With("directory", s.basePath, "context", "failed to read uploads directory").Wrap(err)
	}

	uploads := []*domain.Upload{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		upload, err := s.readInfo(id)
		if err != nil {
			continue
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}

func (s *FileStorage) readInfo(id uuid.UUID) (*domain.Upload, error) {
	metaPath, _ := s.paths(id)
	meta, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrUploadNotFound
		}
		return nil, oops.With("upload_id", id, "context", "failed to read upload metadata").Wrap(err)
	}

	var upload domain.Upload
	if err := json.Unmarshal(meta, &upload); err != nil {
		return nil, oops.With("upload_id", id, "context", "failed to unmarshal upload").Wrap(err)
	}
	return &upload, nil
}

func (s *FileStorage) DeleteUpload(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	metaPath, dataPath := s.paths(id)
	if err := os.Remove(metaPath); err != nil {
		if os.IsNotExist(err) {
			return errors.ErrUploadNotFound
		}
		return oops.With("upload_id", id).Wrap(err)
	}
	if err := os.Remove(dataPath); err != nil && !os.IsNotExist(err) {
		return oops.With("upload_id", id).Wrap(err)
	}
	return nil
}
