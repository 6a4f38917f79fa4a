package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"CryptoView/pkg/cache"
)

// RosterKey is the persistence key of the tracked identifier list.
const RosterKey = "cryptoView_ids"

// CacheRosterStore keeps the roster identifiers as a JSON array in a key-value store.
type CacheRosterStore struct {
	kv  cache.Service
	key string
}

func NewCacheRosterStore(kv cache.Service) *CacheRosterStore {
	return &CacheRosterStore{kv: kv, key: RosterKey}
}

// LoadIDs returns the persisted identifiers, or nil when nothing was saved.
func (s *CacheRosterStore) LoadIDs(ctx context.Context) ([]string, error) {
	ids, err := cache.GetTyped[[]string](ctx, s.kv, s.key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load roster ids: %w", err)
	}
	return normalizeIDs(ids), nil
}

// SaveIDs persists ids. An empty list is never written so a previous
// selection survives a failed load.
func (s *CacheRosterStore) SaveIDs(ctx context.Context, ids []string) error {
	ids = normalizeIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	if err := s.kv.Set(ctx, s.key, ids, 0); err != nil {
		return fmt.Errorf("save roster ids: %w", err)
	}
	return nil
}

func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
