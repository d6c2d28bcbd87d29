package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feedDomain "github.com/reshetovitsme/lead-notifier/internal/modules/feed/domain"
	feedService "github.com/reshetovitsme/lead-notifier/internal/modules/feed/service"
	leadService "github.com/reshetovitsme/lead-notifier/internal/modules/lead/service"
	notifyRepo "github.com/reshetovitsme/lead-notifier/internal/modules/notify/repository"
	notifyService "github.com/reshetovitsme/lead-notifier/internal/modules/notify/service"
	uploadRepo "github.com/reshetovitsme/lead-notifier/internal/modules/upload/repository"
	uploadService "github.com/reshetovitsme/lead-notifier/internal/modules/upload/service"
	"github.com/reshetovitsme/lead-notifier/internal/shared/config"
)

// botCall is one request seen by the fake bot API.
type botCall struct {
	method string
	fields map[string]string
	files  map[string][]byte
	json   map[string]any
}

type fakeBotAPI struct {
	mu    sync.Mutex
	calls []botCall
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	call := botCall{
		method: r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:],
		fields: map[string]string{},
		files:  map[string][]byte{},
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(r.Body).Decode(&call.json)
	} else if err := r.ParseMultipartForm(32 << 20); err == nil {
		for k, v := range r.MultipartForm.Value {
			call.fields[k] = v[0]
		}
		for k, fh := range r.MultipartForm.File {
			file, err := fh[0].Open()
			if err != nil {
				continue
			}
			call.files[k], _ = io.ReadAll(file)
			file.Close()
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"ok":true,"result":{}}`)
}

func (f *fakeBotAPI) snapshot() []botCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]botCall(nil), f.calls...)
}

func setupServer(t *testing.T) (*httptest.Server, *fakeBotAPI) {
	t.Helper()

	bot := &fakeBotAPI{}
	botServer := httptest.NewServer(bot)
	t.Cleanup(botServer.Close)

	cfg := &config.Config{
		TelegramBotToken: "123:abc",
		TelegramChatID:   "-100200300",
		TelegramAPIURL:   botServer.URL,
		TimeZone:         "UTC",
		RequestTimeout:   5 * time.Second,
		MaxUploadBytes:   1024,
		StoragePath:      t.TempDir(),
	}

	journal, err := notifyRepo.NewFileStorage(cfg.StoragePath)
	require.NoError(t, err)
	uploads, err := uploadRepo.NewFileStorage(cfg.StoragePath)
	require.NoError(t, err)

	uploadSvc := uploadService.New(cfg, uploads)
	notifier := notifyService.New(cfg, uploadSvc, journal)
	leadSvc := leadService.New(notifier, uploadSvc, validator.New())
	feedSvc := feedService.New(feedDomain.DefaultFeedConfig(), journal)

	server := New(cfg, leadSvc, uploadSvc, feedSvc)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, bot
}

func uploadFile(t *testing.T, baseURL, name string, data []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	resp, err := http.Post(baseURL+"/api/uploads", form.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func TestServer_BookingWithUploadedPhoto(t *testing.T) {
	ts, bot := setupServer(t)
	photo := []byte("\x89PNG\r\n\x1a\n fence")

	resp := uploadFile(t, ts.URL, "fence.png", photo)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var uploaded struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploaded))
	assert.True(t, strings.HasPrefix(uploaded.URL, "blob:"))

	booking := map[string]any{
		"services": []string{"Fence repair"},
		"name":     "Ann Lee",
		"phone":    "555-0100",
		"photos":   []map[string]string{{"url": uploaded.URL}},
	}
	resp = postJSON(t, ts.URL+"/api/bookings", booking)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var receipt struct {
		Message struct {
			Reason string `json:"reason"`
		} `json:"message"`
		Photos struct {
			Reason string `json:"reason"`
		} `json:"photos"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&receipt))
	assert.Equal(t, "delivered", receipt.Message.Reason)
	assert.Equal(t, "delivered", receipt.Photos.Reason)

	calls := bot.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, "sendMessage", calls[0].method)
	assert.Equal(t, "-100200300", calls[0].json["chat_id"])
	assert.Equal(t, true, calls[0].json["disable_web_page_preview"])
	assert.True(t, strings.HasPrefix(calls[0].json["text"].(string), "New booking request\nTime: "))

	assert.Equal(t, "sendMediaGroup", calls[1].method)
	assert.Equal(t, photo, calls[1].files["file0"])
	assert.Contains(t, calls[1].fields["media"], `"caption":"Photos for Ann Lee"`)

	// the staged upload is released once the booking is forwarded
	resp = postJSON(t, ts.URL+"/api/bookings", booking)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&receipt))
	assert.Equal(t, "empty", receipt.Photos.Reason)
}

func TestServer_InvalidBooking(t *testing.T) {
	ts, bot := setupServer(t)

	resp := postJSON(t, ts.URL+"/api/bookings", map[string]any{"name": "Ann"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp2, err := http.Post(ts.URL+"/api/contacts", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)

	assert.Empty(t, bot.snapshot())
}

func TestServer_UploadTooLarge(t *testing.T) {
	ts, _ := setupServer(t)

	resp := uploadFile(t, ts.URL, "big.jpg", bytes.Repeat([]byte("x"), 2048))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestServer_ContactAndFeed(t *testing.T) {
	ts, _ := setupServer(t)

	resp := postJSON(t, ts.URL+"/api/contacts", map[string]string{
		"name":    "Bob",
		"phone":   "555-0199",
		"message": "Gutters?",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	for path, contentType := range map[string]string{
		"/feed/deliveries.rss":  "application/rss+xml",
		"/feed/deliveries.atom": "application/atom+xml",
	} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), contentType), path)
		assert.Contains(t, string(body), "[delivered] message", path)
		assert.NotContains(t, string(body), "New contact message", path)
	}
}

func TestServer_FeedHidesCustomerDetails(t *testing.T) {
	ts, _ := setupServer(t)

	resp := postJSON(t, ts.URL+"/api/bookings", map[string]any{
		"name":   "Jane Roe",
		"phone":  "555-0123",
		"photos": []map[string]string{{"url": "https://example.com/a.jpg"}},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	for _, path := range []string{"/feed/deliveries.rss", "/feed/deliveries.atom"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, string(body), "media_group", path)
		assert.NotContains(t, string(body), "Jane", path)
		assert.NotContains(t, string(body), "555-0123", path)
	}
}

func TestServer_Health(t *testing.T) {
	ts, _ := setupServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, true, health["telegram_configured"])
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	server := New(&config.Config{HTTPPort: "0", RequestTimeout: time.Second}, nil, nil, nil)
	require.NoError(t, server.Shutdown(context.Background()))

	done := make(chan error, 1)
	go func() { done <- server.Start() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start kept serving after Shutdown")
	}
}
