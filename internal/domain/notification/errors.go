package notification

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidSeverity      = errors.New("notification type must be one of info, success, warning, error")
	ErrInvalidLink          = errors.New("notification link must be a relative path starting with /")
	ErrInvalidRecipient     = errors.New("notification recipient is required")
	ErrRecipientNotFound    = errors.New("recipient not found")
	ErrUnknownKind          = errors.New("unknown notification kind")
	ErrNoRecipients         = errors.New("no recipients were notified")
	ErrProviderNotResolved  = errors.New("provider account could not be resolved")
)
