// internal/dating/scheduler.go

package dating

import (
	"context"
	"time"

	"github.com/imadgeboyega/covenant-backend/internal/common/logger"
)

// Scheduler runs the date reminder job. It only reads date requests and
// goes through the notification bridge.
type Scheduler struct {
	service  DateService
	interval time.Duration
	window   time.Duration
	batch    int
}

func NewScheduler(service DateService, interval, window time.Duration, batch int) *Scheduler {
	return &Scheduler{service: service, interval: interval, window: window, batch: batch}
}

func (s *Scheduler) Start(ctx context.Context) {
	go s.runEvery(ctx, s.interval, s.sendReminders)
}

func (s *Scheduler) sendReminders(ctx context.Context) error {
	sent, err := s.service.SendReminders(ctx, s.window, s.interval, s.batch)
	if sent > 0 {
		logger.Info().Int("notifications", sent).Msg("date reminders sent")
	}
	return err
}

func (s *Scheduler) runEvery(ctx context.Context, every time.Duration, task func(context.Context) error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := task(ctx); err != nil {
				logger.Error().Err(err).Msg("scheduled task failed")
			}
		case <-ctx.Done():
			return
		}
	}
}
