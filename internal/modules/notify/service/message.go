package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/reshetovitsme/lead-notifier/internal/modules/notify/domain"
)

const timestampLayout = "2006-01-02 15:04:05 MST"

// FormatTimestamp renders the current time in the configured zone, or as
// an ISO-8601 UTC timestamp when the zone could not be loaded.
func (s *Service) FormatTimestamp() string {
	now := s.now()
	if s.location == nil {
		return now.UTC().Format(time.RFC3339)
	}
	return now.In(s.location).Format(timestampLayout)
}

// BuildMessage renders a title, a timestamp line and one "Label: value"
// line per section.
func (s *Service) BuildMessage(title string, sections domain.Sections) string {
	lines := make([]string, 0, len(sections)+2)
	lines = append(lines, title, "Time: "+s.FormatTimestamp())

	for _, section := range sections {
		value, ok := renderValue(section.Value)
		if !ok {
			continue
		}
		lines = append(lines, section.Label+": "+value)
	}

	return strings.Join(lines, "\n")
}

// renderValue returns false when the line should be omitted.
func renderValue(value any) (string, bool) {
	if value == nil {
		return "", false
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Chan, reflect.Func:
		if rv.IsNil() {
			return "", false
		}
	}

	switch v := value.(type) {
	case string:
		return v, true
	case []string:
		if len(v) == 0 {
			return "-", true
		}
		return strings.Join(v, ", "), true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	case error:
		return v.Error(), true
	}

	switch rv.Kind() {
	case reflect.Pointer:
		return renderValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return "-", true
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return strings.Join(parts, ", "), true
	case reflect.Map, reflect.Struct:
		data, err := json.Marshal(value)
		if err != nil {
			return "[object]", true
		}
		return string(data), true
	default:
		return fmt.Sprint(value), true
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// SendMessage posts text to the configured chat.
func (s *Service) SendMessage(ctx context.Context, text string) domain.Result {
	result := s.sendMessage(ctx, text)
	s.record(result, firstLine(text), 0, nil)
	return result
}

func (s *Service) sendMessage(ctx context.Context, text string) domain.Result {
	op := domain.OperationMessage
	if !s.configured(op) {
		return domain.Result{Op: op, Reason: domain.ReasonNotConfigured}
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                s.cfg.TelegramChatID,
		Text:                  text,
		DisableWebPagePreview: true,
	})
	if err != nil {
		s.logger.Error("Failed to encode Telegram message", "error", err)
		return domain.Result{Op: op, Reason: domain.ReasonEncoding, Description: err.Error()}
	}

	return s.post(ctx, op, "sendMessage", "application/json", bytes.NewReader(body))
}
