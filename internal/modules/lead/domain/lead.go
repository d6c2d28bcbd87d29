package domain

import (
	"github.com/google/uuid"
	notifyDomain "github.com/reshetovitsme/lead-notifier/internal/modules/notify/domain"
	"github.com/samber/lo"
)

// Attachment is a photo or document sent along with a booking. URL is either
// a "blob:<id>" reference returned by the upload endpoint or a public link.
type Attachment struct {
	URL  string `json:"url" validate:"required"`
	Name string `json:"name"`
}

// Booking is a request submitted through the booking wizard.
type Booking struct {
	Services      []string     `json:"services"`
	Details       string       `json:"details"`
	Name          string       `json:"name" validate:"required"`
	Phone         string       `json:"phone" validate:"required"`
	Email         string       `json:"email" validate:"omitempty,email"`
	Address       string       `json:"address"`
	PreferredDate string       `json:"preferred_date"`
	PreferredTime string       `json:"preferred_time"`
	ContactMethod string       `json:"contact_method"`
	Photos        []Attachment `json:"photos" validate:"dive"`
}

// Contact is a message sent through the contact form.
type Contact struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Message string `json:"message"`
}

// Receipt summarises what was delivered for one submitted lead.
type Receipt struct {
	ID        uuid.UUID                 `json:"id"`
	Message   notifyDomain.Result       `json:"message"`
	Photos    *notifyDomain.MediaResult `json:"photos,omitempty"`
	Documents []notifyDomain.Result     `json:"documents,omitempty"`
}

// Delivered reports whether every send of the lead went through.
func (r *Receipt) Delivered() bool {
	if !r.Message.Delivered() {
		return false
	}
	if r.Photos != nil && !r.Photos.Delivered() {
		return false
	}
	return lo.EveryBy(r.Documents, notifyDomain.Result.Delivered)
}
