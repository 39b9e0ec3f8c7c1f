package failover

import (
	"pet-adoption-market/internal/platform/metrics"
	"pet-adoption-market/internal/storage"
)

// call runs primary while the primary store is healthy, re-issuing the
// identical operation against fallback when primary fails with an
// infrastructure error. Business errors (not found, duplicate,
// validation) pass through untouched.
func call[T any](h *Health, op string, primary, fallback func() (T, error)) (T, error) {
	if h.PrimaryUp() {
		v, err := primary()
		if err == nil || !storage.IsInfra(err) {
			return v, err
		}
		h.markDown(op, err)
	}

	metrics.FallbackCalls.Inc()
	return fallback()
}

func callErr(h *Health, op string, primary, fallback func() error) error {
	_, err := call(h, op, func() (struct{}, error) {
		return struct{}{}, primary()
	}, func() (struct{}, error) {
		return struct{}{}, fallback()
	})
	return err
}

// listing bundles a page of results with its total so list calls fit
// the single-value call helper.
type listing[T any] struct {
	items []T
	total int
}
