package domain

// FeedConfig represents delivery feed configuration
type FeedConfig struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Limit       int    `json:"limit"`
}

// DefaultFeedConfig is used when nothing else is configured.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		Title:       "Lead notifier deliveries",
		Description: "Outcome of every notification sent to the Telegram chat",
		Limit:       50,
	}
}
