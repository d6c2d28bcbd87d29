package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/reshetovitsme/lead-notifier/internal/modules/notify/domain"
	"github.com/reshetovitsme/lead-notifier/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentResolves bounds attachment fetches within one group.
const maxConcurrentResolves = 4

// inputMediaPhoto is one element of the sendMediaGroup "media" array.
type inputMediaPhoto struct {
	Type    string `json:"type"`
	Media   string `json:"media"`
	Caption string `json:"caption,omitempty"`
}

// resolvedMedia is a MediaItem ready to go on the wire: either bytes to
// attach or a URL to pass through.
type resolvedMedia struct {
	index int
	name  string
	data  []byte
	url   string
	ok    bool
}

// SendMediaGroup sends items as photo albums of at most MaxMediaGroupSize.
// Groups go out one after another; a failed group does not stop the rest.
// The caption is attached to the first surviving item of the first group
// only. Items that cannot be resolved are dropped and listed in the result.
func (s *Service) SendMediaGroup(ctx context.Context, items []domain.MediaItem, caption string) domain.MediaResult {
	result := s.sendMediaGroup(ctx, items, caption)
	s.record(result.Result, caption, len(result.Groups), result.Dropped)
	return result
}

func (s *Service) sendMediaGroup(ctx context.Context, items []domain.MediaItem, caption string) domain.MediaResult {
	op := domain.OperationMediaGroup
	result := domain.MediaResult{Result: domain.Result{Op: op}}

	if !s.configured(op) {
		result.Reason = domain.ReasonNotConfigured
		return result
	}
	if len(items) == 0 {
		s.logger.Warn("No media items to send")
		result.Reason = domain.ReasonEmpty
		return result
	}

	for gi, group := range lo.Chunk(items, domain.MaxMediaGroupSize) {
		offset := gi * domain.MaxMediaGroupSize
		resolved := s.resolveGroup(ctx, offset, group)

		groupCaption := ""
		if gi == 0 {
			groupCaption = caption
		}

		groupResult, dropped := s.sendGroup(ctx, gi, resolved, groupCaption)
		result.Groups = append(result.Groups, groupResult)
		result.Dropped = append(result.Dropped, dropped...)
	}

	failed, found := lo.Find(result.Groups, func(r domain.Result) bool {
		return !r.Delivered()
	})
	if found {
		result.Reason = failed.Reason
		result.Status = failed.Status
		result.Description = failed.Description
	} else {
		result.Reason = domain.ReasonDelivered
		result.Status = lo.LastOrEmpty(result.Groups).Status
	}

	return result
}

// resolveGroup fetches every item of one group concurrently. Failures are
// logged and leave ok unset.
func (s *Service) resolveGroup(ctx context.Context, offset int, group []domain.MediaItem) []resolvedMedia {
	out := make([]resolvedMedia, len(group))

	var g errgroup.Group
	g.SetLimit(maxConcurrentResolves)
	for i, item := range group {
		g.Go(func() error {
			r, err := s.resolve(ctx, item)
			r.index = offset + i
			if err != nil {
				s.logger.Warn("Dropping media item", "index", r.index, "kind", item.Kind, "error", err)
				out[i] = r
				return nil
			}
			r.ok = true
			out[i] = r
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (s *Service) resolve(ctx context.Context, item domain.MediaItem) (resolvedMedia, error) {
	switch item.Kind {
	case domain.MediaKindFile:
		if len(item.Data) == 0 {
			return resolvedMedia{}, oops.With("name", item.Name).Wrap(errors.ErrEmptyMedia)
		}
		return resolvedMedia{name: lo.CoalesceOrEmpty(item.Name, "photo"), data: item.Data}, nil

	case domain.MediaKindLocal:
		if s.resolver == nil {
			return resolvedMedia{}, errors.ErrNoBlobResolver
		}
		data, name, err := s.resolver.Resolve(ctx, item.URL)
		if err != nil {
			return resolvedMedia{}, oops.With("url", item.URL).Wrap(err)
		}
		if len(data) == 0 {
			return resolvedMedia{}, oops.With("url", item.URL).Wrap(errors.ErrEmptyMedia)
		}
		return resolvedMedia{name: lo.CoalesceOrEmpty(name, item.Name, "photo"), data: data}, nil

	case domain.MediaKindRemote:
		u, err := url.Parse(item.URL)
		if err != nil {
			return resolvedMedia{}, oops.With("url", item.URL).Wrap(err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return resolvedMedia{}, oops.With("url", item.URL).Wrap(errors.ErrUnsupportedMedia)
		}
		return resolvedMedia{url: item.URL}, nil

	default:
		return resolvedMedia{}, oops.With("kind", item.Kind).Wrap(errors.ErrUnsupportedMedia)
	}
}

// sendGroup builds and posts one sendMediaGroup request. Binary parts are
// named after the item's position in the group.
func (s *Service) sendGroup(ctx context.Context, gi int, resolved []resolvedMedia, caption string) (domain.Result, []int) {
	op := domain.OperationMediaGroup

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	var dropped []int
	descriptors := make([]inputMediaPhoto, 0, len(resolved))
	for i, r := range resolved {
		if !r.ok {
			dropped = append(dropped, r.index)
			continue
		}

		descriptor := inputMediaPhoto{Type: "photo", Media: r.url}
		if r.url == "" {
			field := fmt.Sprintf("file%d", i)
			if err := writeFilePart(form, field, r.name, r.data); err != nil {
				s.logger.Warn("Dropping media item", "index", r.index, "error", err)
				dropped = append(dropped, r.index)
				continue
			}
			descriptor.Media = "attach://" + field
		}
		if len(descriptors) == 0 {
			descriptor.Caption = caption
		}
		descriptors = append(descriptors, descriptor)
	}

	if len(descriptors) == 0 {
		s.logger.Warn("Media group has no deliverable items", "group", gi)
		return domain.Result{Op: op, Reason: domain.ReasonEmpty}, dropped
	}

	media, err := json.Marshal(descriptors)
	if err != nil {
		s.logger.Error("Failed to encode media group", "group", gi, "error", err)
		return domain.Result{Op: op, Reason: domain.ReasonEncoding, Description: err.Error()}, dropped
	}

	if err := form.WriteField("chat_id", s.cfg.TelegramChatID); err != nil {
		return encodingFailure(s, op, gi, err), dropped
	}
	if err := form.WriteField("media", string(media)); err != nil {
		return encodingFailure(s, op, gi, err), dropped
	}
	if err := form.Close(); err != nil {
		return encodingFailure(s, op, gi, err), dropped
	}

	return s.post(ctx, op, "sendMediaGroup", form.FormDataContentType(), &buf), dropped
}

func encodingFailure(s *Service, op domain.Operation, gi int, err error) domain.Result {
	s.logger.Error("Failed to encode multipart body", "op", op, "group", gi, "error", err)
	return domain.Result{Op: op, Reason: domain.ReasonEncoding, Description: err.Error()}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// writeFilePart is multipart.CreateFormFile with a sniffed content type.
func writeFilePart(form *multipart.Writer, field, filename string, data []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", http.DetectContentType(data))

	part, err := form.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}
