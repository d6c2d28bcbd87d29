package http

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	feedService "github.com/reshetovitsme/lead-notifier/internal/modules/feed/service"
	leadDomain "github.com/reshetovitsme/lead-notifier/internal/modules/lead/domain"
	leadService "github.com/reshetovitsme/lead-notifier/internal/modules/lead/service"
	uploadService "github.com/reshetovitsme/lead-notifier/internal/modules/upload/service"
	"github.com/reshetovitsme/lead-notifier/internal/shared/config"
	"github.com/reshetovitsme/lead-notifier/internal/shared/errors"
	sloghttp "github.com/samber/slog-http"
)

// multipartOverhead is allowed on top of max_upload_bytes for form framing.
const multipartOverhead = 1 << 20

// Server handles lead intake, staged uploads and the delivery feed
type Server struct {
	cfg           *config.Config
	leadService   *leadService.Service
	uploadService *uploadService.Service
	feedService   *feedService.Service
	logger        *slog.Logger

	mu     sync.Mutex
	srv    *http.Server
	closed bool
}

// New creates a new HTTP server
func New(cfg *config.Config, leadService *leadService.Service, uploadService *uploadService.Service, feedService *feedService.Service) *Server {
	return &Server{
		cfg:           cfg,
		leadService:   leadService,
		uploadService: uploadService,
		feedService:   feedService,
		logger:        slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Handler returns the routed handler wrapped in the logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/uploads", s.handleUpload)
	mux.HandleFunc("POST /api/bookings", s.handleBooking)
	mux.HandleFunc("POST /api/contacts", s.handleContact)

	mux.HandleFunc("GET /feed/deliveries.rss", s.handleFeed)
	mux.HandleFunc("GET /feed/deliveries.atom", s.handleFeed)

	mux.HandleFunc("GET /health", s.handleHealth)

	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger)(handler)
	return handler
}

// Start starts the HTTP server and blocks until it is shut down
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("HTTP server starting", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.cfg.RequestTimeout*3 + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.srv = srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones. A later
// Start returns immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		s.logger.Error("Error reading upload", "error", err)
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "application/octet-stream" {
		contentType = ""
	}

	upload, err := s.uploadService.Save(header.Filename, contentType, data)
	switch {
	case err == nil:
	case stderrors.Is(err, errors.ErrUploadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	case stderrors.Is(err, errors.ErrEmptyMedia):
		writeError(w, http.StatusBadRequest, "upload is empty")
		return
	default:
		s.logger.Error("Error saving upload", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":           upload.ID,
		"url":          s.uploadService.Reference(upload),
		"name":         upload.Name,
		"content_type": upload.ContentType,
		"size":         upload.Size,
	})
}

func (s *Server) handleBooking(w http.ResponseWriter, r *http.Request) {
	var booking leadDomain.Booking
	if !s.decode(w, r, &booking) {
		return
	}

	receipt, err := s.leadService.SubmitBooking(r.Context(), booking)
	if err != nil {
		s.leadError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, receipt)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var contact leadDomain.Contact
	if !s.decode(w, r, &contact) {
		return
	}

	receipt, err := s.leadService.SubmitContact(r.Context(), contact)
	if err != nil {
		s.leadError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, receipt)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, multipartOverhead)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("Failed to decode request body", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) leadError(w http.ResponseWriter, err error) {
	if stderrors.Is(err, errors.ErrInvalidLead) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error("Error submitting lead", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)

	feed, err := s.feedService.GenerateFeed(baseURL)
	if err != nil {
		s.logger.Error("Error generating feed", "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	var body, contentType string
	if r.URL.Path == "/feed/deliveries.atom" {
		body, err = feed.ToAtom()
		contentType = "application/atom+xml; charset=utf-8"
	} else {
		body, err = feed.ToRss()
		contentType = "application/rss+xml; charset=utf-8"
	}
	if err != nil {
		s.logger.Error("Error rendering feed", "path", r.URL.Path, "error", err)
		http.Error(w, "Failed to render feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"telegram_configured": s.cfg.TelegramConfigured(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
