package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	notifyDomain "github.com/reshetovitsme/lead-notifier/internal/modules/notify/domain"
	"github.com/reshetovitsme/lead-notifier/internal/modules/upload/domain"
	"github.com/reshetovitsme/lead-notifier/internal/modules/upload/repository"
	"github.com/reshetovitsme/lead-notifier/internal/shared/config"
	"github.com/reshetovitsme/lead-notifier/internal/shared/errors"
	"github.com/samber/oops"
)

// Service stages uploads and resolves "blob:" references to them
type Service struct {
	cfg    *config.Config
	repo   repository.Repository
	now    func() time.Time
	logger *slog.Logger
}

// New creates a new upload service
func New(cfg *config.Config, repo repository.Repository) *Service {
	return &Service{
		cfg:    cfg,
		repo:   repo,
		now:    time.Now,
		logger: slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Save stores data and returns the upload record.
func (s *Service) Save(name, contentType string, data []byte) (*domain.Upload, error) {
	if len(data) == 0 {
		return nil, errors.ErrEmptyMedia
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, oops.With("size", len(data), "limit", s.cfg.MaxUploadBytes).Wrap(errors.ErrUploadTooLarge)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	upload := &domain.Upload{
		ID:          uuid.New(),
		Name:        path.Base(strings.ReplaceAll(name, "\\", "/")),
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   s.now(),
	}
	if upload.Name == "." || upload.Name == "/" {
		upload.Name = upload.ID.String()
	}

	if err := s.repo.SaveUpload(upload, data); err != nil {
		return nil, err
	}
	return upload, nil
}

// Reference returns the blob URL that points at an upload.
func (s *Service) Reference(upload *domain.Upload) string {
	return notifyDomain.LocalScheme + upload.ID.String()
}

// Open returns the upload behind a blob URL.
func (s *Service) Open(url string) (*domain.Upload, []byte, error) {
	id, err := ParseReference(url)
	if err != nil {
		return nil, nil, err
	}
	return s.repo.GetUpload(id)
}

// Stat returns the metadata of the upload behind a blob URL without reading
// its data.
func (s *Service) Stat(url string) (*domain.Upload, error) {
	id, err := ParseReference(url)
	if err != nil {
		return nil, err
	}
	return s.repo.GetUploadInfo(id)
}

// Resolve implements the notifier's BlobResolver.
func (s *Service) Resolve(ctx context.Context, url string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	upload, data, err := s.Open(url)
	if err != nil {
		return nil, "", err
	}
	return data, upload.Name, nil
}

// Release deletes the upload behind a blob URL once it has been sent.
func (s *Service) Release(url string) error {
	id, err := ParseReference(url)
	if err != nil {
		return err
	}
	return s.repo.DeleteUpload(id)
}

// Sweep deletes uploads older than upload_ttl that no booking released.
func (s *Service) Sweep() (int, error) {
	uploads, err := s.repo.ListUploads()
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.cfg.UploadTTL)
	removed := 0
	for _, upload := range uploads {
		if !upload.CreatedAt.Before(cutoff) {
			continue
		}
		if err := s.repo.DeleteUpload(upload.ID); err != nil && !stderrors.Is(err, errors.ErrUploadNotFound) {
			s.logger.Warn("Failed to delete expired upload", "upload_id", upload.ID, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Sweep()
			if err != nil {
				s.logger.Error("Upload sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.Info("Expired uploads removed", "count", removed)
			}
		}
	}
}

// ParseReference extracts the upload id from "blob:<id>" or the browser
// form "blob:<origin>/<id>".
func ParseReference(url string) (uuid.UUID, error) {
	rest, ok := strings.CutPrefix(url, notifyDomain.LocalScheme)
	if !ok || rest == "" {
		return uuid.Nil, oops.With("url", url).Wrap(errors.ErrInvalidBlobURL)
	}

	id, err := uuid.Parse(path.Base(rest))
	if err != nil {
		return uuid.Nil, oops.With("url", url).Wrap(errors.ErrInvalidBlobURL)
	}
	return id, nil
}
