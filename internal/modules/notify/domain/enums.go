//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// MediaKind tells how a media item reaches the provider
// ENUM(file,local,remote)
type MediaKind string

// Operation is the bot API method behind a delivery
// ENUM(message,media_group,document)
type Operation string

// Reason is the outcome of a send
// ENUM(delivered,not_configured,empty,encoding,transport,provider)
type Reason string
