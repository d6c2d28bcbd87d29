package errors

import "errors"

var (
	ErrNotConfigured    = errors.New("telegram bot token and chat id are required")
	ErrInvalidLead      = errors.New("invalid lead")
	ErrUploadNotFound   = errors.New("upload not found")
	ErrUploadTooLarge   = errors.New("upload too large")
	ErrInvalidBlobURL   = errors.New("invalid blob url")
	ErrUnsupportedMedia = errors.New("unsupported media item")
	ErrEmptyMedia       = errors.New("media item has no data")
	ErrNoBlobResolver   = errors.New("local media cannot be resolved without an upload store")
	ErrBotDisabled      = errors.New("telegram bot commands are disabled")
	ErrUnauthorized     = errors.New("unauthorized user")
	ErrUserNotFound     = errors.New("user not found")
)
