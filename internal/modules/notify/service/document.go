package service

import (
	"bytes"
	"context"
	"mime/multipart"

	"github.com/reshetovitsme/lead-notifier/internal/modules/notify/domain"
	"github.com/samber/lo"
)

// SendDocument uploads a single file. The caption is sent only when set.
func (s *Service) SendDocument(ctx context.Context, data []byte, filename, caption string) domain.Result {
	result := s.sendDocument(ctx, data, filename, caption)
	s.record(result, lo.CoalesceOrEmpty(filename, caption), 0, nil)
	return result
}

func (s *Service) sendDocument(ctx context.Context, data []byte, filename, caption string) domain.Result {
	op := domain.OperationDocument
	if !s.configured(op) {
		return domain.Result{Op: op, Reason: domain.ReasonNotConfigured}
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if err := form.WriteField("chat_id", s.cfg.TelegramChatID); err != nil {
		return encodingFailure(s, op, 0, err)
	}
	if caption != "" {
		if err := form.WriteField("caption", caption); err != nil {
			return encodingFailure(s, op, 0, err)
		}
	}
	if err := writeFilePart(form, "document", lo.CoalesceOrEmpty(filename, "document"), data); err != nil {
		return encodingFailure(s, op, 0, err)
	}
	if err := form.Close(); err != nil {
		return encodingFailure(s, op, 0, err)
	}

	return s.post(ctx, op, "sendDocument", form.FormDataContentType(), &buf)
}
