// internal/discovery/digest.go

package discovery

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/imadgeboyega/covenant-backend/internal/common/logger"
	"github.com/imadgeboyega/covenant-backend/internal/notification"
	"github.com/imadgeboyega/covenant-backend/internal/profile"
)

const topPicksInDigest = 3

// Digest tells members how many unanswered likes they have, with a few
// names from their feed
type Digest struct {
	store    profile.Store
	service  Service
	notifier notification.Notifier
	batch    int
}

func NewDigest(store profile.Store, service Service, notifier notification.Notifier, batch int) *Digest {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	if batch <= 0 {
		batch = 200
	}
	return &Digest{store: store, service: service, notifier: notifier, batch: batch}
}

// Run sends one digest per member with pending likes and returns how many
// went out
func (d *Digest) Run(ctx context.Context) (int, error) {
	sent := 0
	after := ""
	for {
		page, err := d.store.ListWithPendingLikes(ctx, after, d.batch)
		if err != nil {
			return sent, err
		}
		for _, p := range page {
			if err := ctx.Err(); err != nil {
				return sent, err
			}
			if d.send(ctx, p) {
				sent++
			}
		}
		if len(page) < d.batch {
			return sent, nil
		}
		after = page[len(page)-1].ID
	}
}

func (d *Digest) send(ctx context.Context, p *profile.Profile) bool {
	pending := PendingLikes(p)
	if pending == 0 {
		return false
	}

	payload := map[string]string{"count": strconv.Itoa(pending)}

	picks, err := d.service.TopPicks(ctx, p, topPicksInDigest)
	if err != nil {
		logger.Warn().Err(err).Str("user_id", p.ID).Msg("top picks unavailable for digest")
	}
	if len(picks) > 0 {
		names := make([]string, 0, len(picks))
		for _, r := range picks {
			names = append(names, r.Candidate.Name)
		}
		payload["topPicks"] = strings.Join(names, ", ")
	}

	d.notifier.Notify(ctx, p.ID, notification.EventAdmirersDigest, payload)
	digestsSent.Inc()
	return true
}

// PendingLikes counts admirers the member has not matched, blocked or passed
func PendingLikes(p *profile.Profile) int {
	n := 0
	for _, id := range p.LikedBy {
		if p.InSet(profile.RelationMatches, id) ||
			p.InSet(profile.RelationBlocked, id) ||
			p.InSet(profile.RelationPassedBy, id) {
			continue
		}
		n++
	}
	return n
}

// Scheduler runs the admirer digest on a fixed interval
type Scheduler struct {
	digest   *Digest
	interval time.Duration
}

func NewScheduler(digest *Digest, interval time.Duration) *Scheduler {
	return &Scheduler{digest: digest, interval: interval}
}

func (s *Scheduler) Start(ctx context.Context) {
	go s.runEvery(ctx, s.interval, s.sendDigests)
}

func (s *Scheduler) sendDigests(ctx context.Context) error {
	sent, err := s.digest.Run(ctx)
	if sent > 0 {
		logger.Info().Int("digests", sent).Msg("admirer digests sent")
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
