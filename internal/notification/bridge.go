// internal/notification/bridge.go
// Best-effort fan-out from state transitions to the configured dispatchers

package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/imadgeboyega/covenant-backend/internal/common/logger"
)

// Route sends the listed event types to a dispatcher. An empty Events list
// subscribes the dispatcher to everything.
type Route struct {
	Dispatcher Dispatcher
	Events     []EventType
}

func (r Route) accepts(t EventType) bool {
	if len(r.Events) == 0 {
		return true
	}
	for _, e := range r.Events {
		if e == t {
			return true
		}
	}
	return false
}

// BridgeConfig bounds delivery work
type BridgeConfig struct {
	// Timeout caps each dispatcher call
	Timeout time.Duration

	// MaxInFlight caps concurrent deliveries; events beyond it are dropped
	MaxInFlight int
}

// DefaultBridgeConfig returns the defaults used when a field is zero
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		Timeout:     5 * time.Second,
		MaxInFlight: 256,
	}
}

// Bridge implements Notifier. Delivery happens on background goroutines
// detached from the caller's context, so a cancelled request still gets its
// notifications out and a failing dispatcher never reaches the caller.
type Bridge struct {
	routes  []Route
	timeout time.Duration
	sem     chan struct{}

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	now func() time.Time
}

// NewBridge creates a bridge over the given routes
func NewBridge(cfg BridgeConfig, routes ...Route) *Bridge {
	def := DefaultBridgeConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = def.MaxInFlight
	}

	kept := make([]Route, 0, len(routes))
	for _, r := range routes {
		if r.Dispatcher != nil {
			kept = append(kept, r)
		}
	}

	return &Bridge{
		routes:  kept,
		timeout: cfg.Timeout,
		sem:     make(chan struct{}, cfg.MaxInFlight),
		now:     time.Now,
	}
}

// Notify renders the event and hands it to every matching dispatcher
// without waiting for delivery.
func (b *Bridge) Notify(ctx context.Context, userID string, eventType EventType, payload map[string]string) {
	if userID == "" {
		return
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		eventsDropped.WithLabelValues(string(eventType), "closed").Inc()
		return
	}
	select {
	case b.sem <- struct{}{}:
	default:
		b.mu.RUnlock()
		eventsDropped.WithLabelValues(string(eventType), "saturated").Inc()
		logger.Ctx(ctx).Warn().
			Str("user_id", userID).
			Str("event", string(eventType)).
			Msg("notification dropped: bridge saturated")
		return
	}
	b.wg.Add(1)
	b.mu.RUnlock()

	data := make(map[string]string, len(payload))
	for k, v := range payload {
		data[k] = v
	}
	title, body := render(eventType, data)
	ev := Event{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      eventType,
		Title:     title,
		Body:      body,
		Data:      data,
		CreatedAt: b.now().UTC(),
	}
	eventsEmitted.WithLabelValues(string(eventType)).Inc()

	log := *logger.Ctx(ctx)
	detached := context.WithoutCancel(ctx)

	go func() {
		defer b.wg.Done()
		defer func() { <-b.sem }()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("event", string(ev.Type)).Msg("notification delivery panicked")
			}
		}()
		b.deliver(detached, ev)
	}()
}

func (b *Bridge) deliver(ctx context.Context, ev Event) {
	for _, route := range b.routes {
		if !route.accepts(ev.Type) {
			continue
		}
		name := route.Dispatcher.Name()

		dctx, cancel := context.WithTimeout(ctx, b.timeout)
		start := time.Now()
		err := route.Dispatcher.Dispatch(dctx, ev)
		cancel()
		dispatchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		switch {
		case err == nil:
			dispatchTotal.WithLabelValues(name, string(ev.Type), "sent").Inc()
		case isSkip(err):
			dispatchTotal.WithLabelValues(name, string(ev.Type), "skipped").Inc()
		default:
			dispatchTotal.WithLabelValues(name, string(ev.Type), "failed").Inc()
			logger.Ctx(ctx).Warn().Err(err).
				Str("dispatcher", name).
				Str("event", string(ev.Type)).
				Str("user_id", ev.UserID).
				Msg("notification dispatch failed")
		}
	}
}

// Close stops accepting events and waits for in-flight deliveries until ctx
// is done.
func (b *Bridge) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Nop discards every event
type Nop struct{}

func (Nop) Notify(context.Context, string, EventType, map[string]string) {}
