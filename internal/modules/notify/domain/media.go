package domain

import "strings"

// LocalScheme prefixes references to temporary uploads held by the service.
const LocalScheme = "blob:"

// MaxMediaGroupSize is the provider's per-request media limit.
const MaxMediaGroupSize = 10

// MediaItem is one attachment of a media group. Exactly one of Data or URL
// is meaningful, depending on Kind.
type MediaItem struct {
	Kind MediaKind
	Name string
	Data []byte
	URL  string
}

// FileMedia wraps binary data that is already in memory.
func FileMedia(name string, data []byte) MediaItem {
	return MediaItem{Kind: MediaKindFile, Name: name, Data: data}
}

// LocalMedia references a temporary upload ("blob:<id>") that has to be
// fetched before it can be sent.
func LocalMedia(url string) MediaItem {
	return MediaItem{Kind: MediaKindLocal, URL: url}
}

// RemoteMedia references a public http(s) URL the provider fetches itself.
func RemoteMedia(url string) MediaItem {
	return MediaItem{Kind: MediaKindRemote, URL: url}
}

// MediaFromURL classifies a URL into a local or remote media item.
// Anything that is not a blob reference is treated as remote; the scheme is
// checked when the item is resolved.
func MediaFromURL(url string) MediaItem {
	if strings.HasPrefix(url, LocalScheme) {
		return LocalMedia(url)
	}
	return RemoteMedia(url)
}
