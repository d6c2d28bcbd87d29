package service

import (
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reshetovitsme/lead-notifier/internal/modules/notify/domain"
	"github.com/reshetovitsme/lead-notifier/internal/shared/config"
)

var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \S+$`)

func fixedService(t *testing.T, zone string, now time.Time) *Service {
	t.Helper()
	s := New(&config.Config{TimeZone: zone, RequestTimeout: time.Second}, nil, nil)
	s.SetLogger(slog.New(&recordingHandler{}))
	s.now = func() time.Time { return now }
	return s
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 4, 9, 0, time.UTC)

	tests := []struct {
		name string
		zone string
		want string
	}{
		{"winter new york", "America/New_York", "2026-01-05 03:04:09 EST"},
		{"utc", "UTC", "2026-01-05 08:04:09 UTC"},
		{"unknown zone falls back to iso", "Mars/Olympus_Mons", "2026-01-05T08:04:09Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fixedService(t, tt.zone, now).FormatTimestamp())
		})
	}
}

func TestFormatTimestamp_SummerTime(t *testing.T) {
	s := fixedService(t, "America/New_York", time.Date(2026, 7, 1, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, "2026-07-01 19:30:00 EDT", s.FormatTimestamp())
}

func TestBuildMessage_HeaderLines(t *testing.T) {
	s := New(&config.Config{TimeZone: "America/New_York", RequestTimeout: time.Second}, nil, nil)

	for _, title := range []string{"New booking request", "", "Contact: urgent"} {
		lines := strings.Split(s.BuildMessage(title, domain.Sections{{Label: "Name", Value: "Ann"}}), "\n")
		require.GreaterOrEqual(t, len(lines), 2)
		assert.Equal(t, title, lines[0])
		require.True(t, strings.HasPrefix(lines[1], "Time: "))
		assert.Regexp(t, timestampPattern, strings.TrimPrefix(lines[1], "Time: "))
	}
}

func TestBuildMessage_Sections(t *testing.T) {
	s := fixedService(t, "UTC", time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC))

	msg := s.BuildMessage("Booking", domain.Sections{
		{Label: "A", Value: []string{}},
		{Label: "B", Value: []string{"x", "y"}},
		{Label: "C", Value: nil},
	})
	assert.Equal(t, "Booking\nTime: 2026-02-03 04:05:06 UTC\nA: -\nB: x, y", msg)
}

func TestRenderValue(t *testing.T) {
	var nilPtr *string
	var nilMap map[string]int
	name := "Ann"

	tests := []struct {
		name  string
		value any
		want  string
		ok    bool
	}{
		{"nil", nil, "", false},
		{"nil pointer", nilPtr, "", false},
		{"nil map", nilMap, "", false},
		{"optional empty", domain.Optional(""), "", false},
		{"string", "Fix the fence", "Fix the fence", true},
		{"pointer", &name, "Ann", true},
		{"int", 3, "3", true},
		{"bool", true, "true", true},
		{"int slice", []int{1, 2}, "1, 2", true},
		{"empty int slice", []int{}, "-", true},
		{"nil string slice", []string(nil), "-", true},
		{"map", map[string]int{"rooms": 2}, `{"rooms":2}`, true},
		{"struct", struct {
			Hours int `json:"hours"`
		}{4}, `{"hours":4}`, true},
		{"unencodable", map[string]any{"f": func() {}}, "[object]", true},
		{"stringer", 90 * time.Minute, "1h30m0s", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := renderValue(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
