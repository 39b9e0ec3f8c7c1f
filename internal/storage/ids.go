package storage

import (
	"strconv"

	"github.com/google/uuid"
)

// Ids are opaque strings, but the two backends mint them from disjoint
// spaces: the primary store uses UUIDs, the fallback table uses decimal
// sequence numbers. Adapters reject ids from the other space with
// ErrNotFound so a caller holding a pre-failover id gets a clean miss
// instead of a driver error.

func NewPrimaryID() string {
	return uuid.NewString()
}

func IsPrimaryID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func IsFallbackID(id string) bool {
	if id == "" {
		return false
	}
	n, err := strconv.ParseUint(id, 10, 64)
	return err == nil && n > 0
}
