// Package failover routes repository calls to the primary store while
// it is healthy and to the in-memory fallback when it is not. A call
// that hits an infrastructure error marks the primary down and is
// re-issued against the fallback, so the caller never observes the
// outage. A background probe restores the primary once it answers.
package failover

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pet-adoption-market/internal/platform/metrics"
)

// Health tracks the primary store's availability. It is shared by all
// failover repositories so a failure seen by one domain benches the
// primary for every domain.
type Health struct {
	log   zerolog.Logger
	probe func(ctx context.Context) error

	mu        sync.RWMutex
	primaryUp bool
}

func NewHealth(probe func(ctx context.Context) error, log zerolog.Logger) *Health {
	metrics.PrimaryHealthy.Set(1)
	return &Health{log: log, probe: probe, primaryUp: true}
}

func (h *Health) PrimaryUp() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.primaryUp
}

func (h *Health) markDown(op string, err error) {
	h.mu.Lock()
	wasUp := h.primaryUp
	h.primaryUp = false
	h.mu.Unlock()

	if wasUp {
		metrics.FailoverTransitions.Inc()
		metrics.PrimaryHealthy.Set(0)
		h.log.Warn().Err(err).Str("op", op).Msg("primary store down, serving from fallback")
	}
}

func (h *Health) markUp() {
	h.mu.Lock()
	wasUp := h.primaryUp
	h.primaryUp = true
	h.mu.Unlock()

	if !wasUp {
		metrics.PrimaryHealthy.Set(1)
		h.log.Info().Msg("primary store recovered")
	}
}

// CheckNow probes the primary once and records the result. Used at
// startup so a service booted against a dead database begins in
// fallback mode instead of burning a request to find out.
func (h *Health) CheckNow(ctx context.Context) {
	if h.probe == nil {
		return
	}
	if err := h.probe(ctx); err != nil {
		h.markDown("probe", err)
		return
	}
	h.markUp()
}

// Run re-probes the primary on the given interval while it is down.
// An interval of zero disables recovery; the primary then stays
// benched until restart. Run blocks until ctx is cancelled.
func (h *Health) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 || h.probe == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if h.PrimaryUp() {
				continue
			}
			if err := h.probe(ctx); err != nil {
				h.log.Debug().Err(err).Msg("primary store still down")
				continue
			}
			h.markUp()
		}
	}
}
