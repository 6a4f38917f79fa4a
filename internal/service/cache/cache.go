package cache

import (
	"context"
	"time"
)

// Entry is a gateway response body stamped with the time it was fetched.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Data      []byte    `json:"data"`
}

// Fresh reports whether the entry is younger than ttl at now.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.Timestamp) < ttl
}

// EntryCache stores gateway entries. Entries outlive their TTL so they can
// serve as a stale fallback; freshness is decided by the reader.
type EntryCache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, e Entry) error
}
