package repository

import (
	"github.com/google/uuid"
	"github.com/reshetovitsme/lead-notifier/internal/modules/upload/domain"
)

// Repository defines the interface for staged upload persistence
type Repository interface {
	SaveUpload(upload *domain.Upload, data []byte) error
	GetUpload(id uuid.UUID) (*domain.Upload, []byte, error)
	GetUploadInfo(id uuid.UUID) (*domain.Upload, error)
	ListUploads() ([]*domain.Upload, error)
	DeleteUpload(id uuid.UUID) error
}
