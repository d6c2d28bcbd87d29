package service

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/reshetovitsme/lead-notifier/internal/modules/feed/domain"
	notifyDomain "github.com/reshetovitsme/lead-notifier/internal/modules/notify/domain"
	notifyRepo "github.com/reshetovitsme/lead-notifier/internal/modules/notify/repository"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Service handles delivery feed generation
type Service struct {
	cfg     domain.FeedConfig
	journal notifyRepo.Repository
}

// New creates a new feed service
func New(cfg domain.FeedConfig, journal notifyRepo.Repository) *Service {
	return &Service{
		cfg:     cfg,
		journal: journal,
	}
}

// GenerateFeed builds a feed of the most recent deliveries
func (s *Service) GenerateFeed(baseURL string) (*feeds.Feed, error) {
	deliveries, err := s.journal.Recent(s.cfg.Limit)
	if err != nil {
		return nil, oops.With("limit", s.cfg.Limit, "context", "failed to get deliveries").Wrap(err)
	}

	feed := &feeds.Feed{
		Title:       s.cfg.Title,
		Link:        &feeds.Link{Href: baseURL + "/feed/deliveries.rss"},
		Description: s.cfg.Description,
		Created:     time.Now(),
	}
	if latest, ok := lo.First(deliveries); ok {
		feed.Updated = latest.At
	}

	feed.Items = lo.Map(deliveries, func(d *notifyDomain.Delivery, _ int) *feeds.Item {
		return s.deliveryToFeedItem(d, baseURL)
	})
	return feed, nil
}

// deliveryToFeedItem leaves out the delivery subject: captions and file
// names carry customer details and the feed is public.
func (s *Service) deliveryToFeedItem(d *notifyDomain.Delivery, baseURL string) *feeds.Item {
	lines := []string{
		fmt.Sprintf("Operation: %s", d.Op),
		fmt.Sprintf("Outcome: %s", d.Reason),
	}
	if d.Status != 0 {
		lines = append(lines, fmt.Sprintf("HTTP status: %d", d.Status))
	}
	if d.Description != "" {
		lines = append(lines, "Provider: "+d.Description)
	}
	if d.Groups > 0 {
		lines = append(lines, fmt.Sprintf("Groups: %d", d.Groups))
	}
	if len(d.Dropped) > 0 {
		lines = append(lines, "Dropped items: "+strings.Join(lo.Map(d.Dropped, func(i int, _ int) string {
			return fmt.Sprint(i)
		}), ", "))
	}

	content := "<ul>" + strings.Join(lo.Map(lines, func(line string, _ int) string {
		return "<li>" + html.EscapeString(line) + "</li>"
	}), "") + "</ul>"

	return &feeds.Item{
		Title:       fmt.Sprintf("[%s] %s %s", d.Reason, d.Op, d.At.UTC().Format(time.RFC3339)),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/feed/deliveries.rss#%s", baseURL, d.ID)},
		Description: strings.Join(lines, "\n"),
		Content:     content,
		Created:     d.At,
		Id:          d.ID.String(),
	}
}
