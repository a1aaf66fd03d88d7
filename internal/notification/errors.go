// internal/notification/errors.go

package notification

import (
	"errors"

	"github.com/sony/gobreaker/v2"
)

var (
	// ErrNoContact means the recipient has no address for this channel
	ErrNoContact = errors.New("notification: recipient has no contact for channel")

	// ErrNotConfigured means the channel's provider client is missing
	ErrNotConfigured = errors.New("notification: channel not configured")
)

// isSkip reports errors that mean "nothing to send" rather than a failure
func isSkip(err error) bool {
	return errors.Is(err, ErrNoContact) ||
		errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests)
}
