package domain

import (
	"time"

	"github.com/google/uuid"
)

// Result describes what happened to a single send. Sends never fail loudly;
// callers inspect the result if they care.
type Result struct {
	Op          Operation `json:"op"`
	Reason      Reason    `json:"reason"`
	Status      int       `json:"status,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Delivered reports whether the provider accepted the request.
func (r Result) Delivered() bool {
	return r.Reason == ReasonDelivered
}

// MediaResult is the outcome of a media group send: one Result per request
// plus the positions of items that could not be resolved.
type MediaResult struct {
	Result
	Groups  []Result `json:"groups,omitempty"`
	Dropped []int    `json:"dropped,omitempty"`
}

// Delivery is a journal entry for one send.
type Delivery struct {
	ID          uuid.UUID `json:"id"`
	Op          Operation `json:"op"`
	Reason      Reason    `json:"reason"`
	Status      int       `json:"status,omitempty"`
	Description string    `json:"description,omitempty"`
	Subject     string    `json:"subject"`
	Groups      int       `json:"groups,omitempty"`
	Dropped     []int     `json:"dropped,omitempty"`
	At          time.Time `json:"at"`
}
