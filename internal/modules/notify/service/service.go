package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reshetovitsme/lead-notifier/internal/modules/notify/domain"
	"github.com/reshetovitsme/lead-notifier/internal/shared/config"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of a failed response is read for the log.
const maxErrorBody = 4 << 10

// BlobResolver turns a "blob:<id>" reference into the uploaded bytes.
type BlobResolver interface {
	Resolve(ctx context.Context, url string) ([]byte, string, error)
}

// Journal receives one entry per send.
type Journal interface {
	Record(delivery *domain.Delivery) error
}

// Service delivers human-readable text and media to a single Telegram chat.
// It never returns errors to its callers: failures are logged and reported
// through the returned Result.
type Service struct {
	cfg      *config.Config
	client   *http.Client
	resolver BlobResolver
	journal  Journal
	limiter  *rate.Limiter
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a new notifier. resolver and journal may be nil.
func New(cfg *config.Config, resolver BlobResolver, journal Journal) *Service {
	s := &Service{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		resolver: resolver,
		journal:  journal,
		now:      time.Now,
		logger:   slog.Default(),
	}

	if cfg.RatePerSec > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		s.logger.Warn("Unknown time zone, falling back to ISO-8601 timestamps", "timezone", cfg.TimeZone, "error", err)
	} else {
		s.location = loc
	}

	return s
}

// SetLogger sets the logger
func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// SetHTTPClient replaces the client used for bot API calls.
func (s *Service) SetHTTPClient(client *http.Client) {
	s.client = client
}

func (s *Service) configured(op domain.Operation) bool {
	if s.cfg.TelegramConfigured() {
		return true
	}
	s.logger.Warn("Telegram notifier is not configured, skipping send", "op", op)
	return false
}

func (s *Service) endpoint(method string) string {
	return strings.TrimRight(s.cfg.TelegramAPIURL, "/") + "/bot" + s.cfg.TelegramBotToken + "/" + method
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// post issues one bot API call. The URL is never logged since it carries
// the token.
func (s *Service) post(ctx context.Context, op domain.Operation, method, contentType string, body io.Reader) domain.Result {
	result := domain.Result{Op: op}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			s.logger.Error("Telegram request not sent", "op", op, "error", err)
			result.Reason = domain.ReasonTransport
			result.Description = err.Error()
			return result
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(method), body)
	if err != nil {
		s.logger.Error("Failed to build Telegram request", "op", op, "error", err)
		result.Reason = domain.ReasonTransport
		result.Description = err.Error()
		return result
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("Telegram request failed", "op", op, "error", redact(err.Error(), s.cfg.TelegramBotToken))
		result.Reason = domain.ReasonTransport
		result.Description = redact(err.Error(), s.cfg.TelegramBotToken)
		return result
	}
	defer resp.Body.Close()

	result.Status = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		s.logger.Error("Telegram API returned an error", "op", op, "status", resp.StatusCode, "body", string(raw))

		result.Reason = domain.ReasonProvider
		var parsed apiResponse
		if json.Unmarshal(raw, &parsed) == nil && parsed.Description != "" {
			result.Description = parsed.Description
		} else {
			result.Description = strings.TrimSpace(string(raw))
		}
		return result
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	result.Reason = domain.ReasonDelivered
	return result
}

// record stores the outcome in the journal, if any.
func (s *Service) record(result domain.Result, subject string, groups int, dropped []int) {
	if s.journal == nil {
		return
	}

	delivery := &domain.Delivery{
		ID:          uuid.New(),
		Op:          result.Op,
		Reason:      result.Reason,
		Status:      result.Status,
		Description: result.Description,
		Subject:     subject,
		Groups:      groups,
		Dropped:     dropped,
		At:          s.now(),
	}
	if err := s.journal.Record(delivery); err != nil {
		s.logger.Warn("Failed to record delivery", "op", result.Op, "error", err)
	}
}

func redact(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, token, "<token>")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
