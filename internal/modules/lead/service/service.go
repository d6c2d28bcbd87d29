package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/reshetovitsme/lead-notifier/internal/modules/lead/domain"
	notifyDomain "github.com/reshetovitsme/lead-notifier/internal/modules/notify/domain"
	uploadDomain "github.com/reshetovitsme/lead-notifier/internal/modules/upload/domain"
	"github.com/reshetovitsme/lead-notifier/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const (
	bookingTitle = "New booking request"
	contactTitle = "New contact message"
)

// Notifier is the part of the notify service the intake drives.
type Notifier interface {
	BuildMessage(title string, sections notifyDomain.Sections) string
	SendMessage(ctx context.Context, text string) notifyDomain.Result
	SendMediaGroup(ctx context.Context, items []notifyDomain.MediaItem, caption string) notifyDomain.MediaResult
	SendDocument(ctx context.Context, data []byte, filename, caption string) notifyDomain.Result
}

// Uploads gives access to files staged through the upload endpoint.
type Uploads interface {
	Stat(url string) (*uploadDomain.Upload, error)
	Open(url string) (*uploadDomain.Upload, []byte, error)
	Release(url string) error
}

// Service turns website leads into Telegram notifications
type Service struct {
	notifier Notifier
	uploads  Uploads
	validate *validator.Validate
	logger   *slog.Logger
}

// New creates a new lead service. uploads may be nil, in which case blob
// references are passed to the notifier untouched.
func New(notifier Notifier, uploads Uploads, validate *validator.Validate) *Service {
	return &Service{
		notifier: notifier,
		uploads:  uploads,
		validate: validate,
		logger:   slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// SubmitBooking validates a booking and forwards it: the summary text first,
// then the photos as an album, then any non-image attachments as documents.
// Only validation errors are returned.
func (s *Service) SubmitBooking(ctx context.Context, booking domain.Booking) (*domain.Receipt, error) {
	if err := s.check(booking); err != nil {
		return nil, err
	}

	receipt := &domain.Receipt{ID: uuid.New()}

	text := s.notifier.BuildMessage(bookingTitle, BookingSections(booking))
	receipt.Message = s.notifier.SendMessage(ctx, text)

	media, documents := s.split(booking.Photos)
	if len(media) > 0 {
		result := s.notifier.SendMediaGroup(ctx, media, "Photos for "+booking.Name)
		receipt.Photos = &result
	}
	for _, doc := range documents {
		receipt.Documents = append(receipt.Documents, s.sendDocument(ctx, doc, booking.Name))
	}

	s.release(booking.Photos)

	s.logger.Info("Booking forwarded",
		"receipt_id", receipt.ID,
		"photos", len(media),
		"documents", len(documents),
		"delivered", receipt.Delivered(),
	)
	return receipt, nil
}

// SubmitContact validates a contact form message and forwards it.
func (s *Service) SubmitContact(ctx context.Context, contact domain.Contact) (*domain.Receipt, error) {
	if err := s.check(contact); err != nil {
		return nil, err
	}

	receipt := &domain.Receipt{ID: uuid.New()}
	text := s.notifier.BuildMessage(contactTitle, ContactSections(contact))
	receipt.Message = s.notifier.SendMessage(ctx, text)

	s.logger.Info("Contact message forwarded", "receipt_id", receipt.ID, "delivered", receipt.Delivered())
	return receipt, nil
}

// BookingSections lays out the booking summary. Empty optional fields are
// left out of the message.
func BookingSections(b domain.Booking) notifyDomain.Sections {
	return notifyDomain.Sections{}.
		Add("Services", b.Services).
		Add("Details", notifyDomain.Optional(b.Details)).
		Add("Name", b.Name).
		Add("Phone", b.Phone).
		Add("Email", notifyDomain.Optional(b.Email)).
		Add("Address", notifyDomain.Optional(b.Address)).
		Add("Preferred date", notifyDomain.Optional(b.PreferredDate)).
		Add("Preferred time", notifyDomain.Optional(b.PreferredTime)).
		Add("Contact method", notifyDomain.Optional(b.ContactMethod)).
		Add("Photos", photoCount(len(b.Photos)))
}

// photoCount is nil for a booking without photos so the line is omitted.
func photoCount(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

// ContactSections lays out a contact form message.
func ContactSections(c domain.Contact) notifyDomain.Sections {
	return notifyDomain.Sections{}.
		Add("Name", c.Name).
		Add("Phone", c.Phone).
		Add("Email", notifyDomain.Optional(c.Email)).
		Add("Message", notifyDomain.Optional(c.Message))
}

func (s *Service) check(lead any) error {
	err := s.validate.Struct(lead)
	if err == nil {
		return nil
	}

	var fields []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		fields = lo.Map(verrs, func(fe validator.FieldError, _ int) string {
			return fe.Field() + ":" + fe.Tag()
		})
	}
	return oops.
		With("fields", strings.Join(fields, ",")).
		Wrapf(errors.ErrInvalidLead, "%s", err.Error())
}

type document struct {
	url  string
	name string
}

func (s *Service) sendDocument(ctx context.Context, doc document, customer string) notifyDomain.Result {
	_, data, err := s.uploads.Open(doc.url)
	if err != nil {
		s.logger.Warn("Staged upload unavailable", "url", doc.url, "error", err)
		return notifyDomain.Result{
			Op:          notifyDomain.OperationDocument,
			Reason:      notifyDomain.ReasonEmpty,
			Description: err.Error(),
		}
	}
	return s.notifier.SendDocument(ctx, data, doc.name, fmt.Sprintf("Attachment from %s", customer))
}

// split sorts attachments into album items and documents. Staged uploads
// that are not images are sent as documents; everything else goes into the
// album, where unresolvable items are dropped by the notifier.
func (s *Service) split(attachments []domain.Attachment) ([]notifyDomain.MediaItem, []document) {
	var media []notifyDomain.MediaItem
	var documents []document

	for _, a := range attachments {
		item := notifyDomain.MediaFromURL(a.URL)
		item.Name = a.Name
		if item.Kind != notifyDomain.MediaKindLocal || s.uploads == nil {
			media = append(media, item)
			continue
		}

		upload, err := s.uploads.Stat(a.URL)
		if err != nil {
			s.logger.Warn("Staged upload unavailable", "url", a.URL, "error", err)
			media = append(media, item)
			continue
		}
		if strings.HasPrefix(upload.ContentType, "image/") {
			media = append(media, item)
			continue
		}
		documents = append(documents, document{url: a.URL, name: lo.CoalesceOrEmpty(a.Name, upload.Name)})
	}

	return media, documents
}

// release drops staged uploads once the booking has been handled.
func (s *Service) release(attachments []domain.Attachment) {
	if s.uploads == nil {
		return
	}
	for _, a := range attachments {
		if !strings.HasPrefix(a.URL, notifyDomain.LocalScheme) {
			continue
		}
		if err := s.uploads.Release(a.URL); err != nil {
			s.logger.Debug("Failed to release upload", "url", a.URL, "error", err)
		}
	}
}
