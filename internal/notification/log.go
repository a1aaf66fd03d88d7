// internal/notification/log.go

package notification

import (
	"context"

	"github.com/imadgeboyega/covenant-backend/internal/common/logger"
)

// LogDispatcher writes every event to the structured log. Used in
// development and as the fallback when no channel is configured.
type LogDispatcher struct{}

func (LogDispatcher) Name() string { return "log" }

func (LogDispatcher) Dispatch(ctx context.Context, ev Event) error {
	logger.Ctx(ctx).Info().
		Str("event_id", ev.ID).
		Str("event", string(ev.Type)).
		Str("user_id", ev.UserID).
		Str("title", ev.Title).
		Msg("notification")
	return nil
}
