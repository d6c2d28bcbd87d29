package repository

import (
	"github.com/reshetovitsme/lead-notifier/internal/modules/notify/domain"
)

// Repository defines the interface for the delivery journal
type Repository interface {
	Record(delivery *domain.Delivery) error
	Recent(limit int) ([]*domain.Delivery, error)
}
