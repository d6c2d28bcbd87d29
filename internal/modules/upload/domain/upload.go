package domain

import (
	"time"

	"github.com/google/uuid"
)

// Upload is a file staged by the website before the lead is submitted.
type Upload struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}
