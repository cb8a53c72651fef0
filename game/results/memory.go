package results

import (
	"context"
	"sync"

	"github.com/wricardo/connect-n/game/service"
)

// DefaultMemoryLimit bounds the in-memory ledger when no limit is given
const DefaultMemoryLimit = 500

// MemoryStore keeps the most recent results in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	results []*service.GameResult
	limit   int
}

// NewMemoryStore creates a store holding at most limit results
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &MemoryStore{limit: limit}
}

// Record appends a result, evicting the oldest once full
func (s *MemoryStore) Record(ctx context.Context, result *service.GameResult) error {
	if result == nil {
		return nil
	}
	copied := *result

	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, &copied)
	if over := len(s.results) - s.limit; over > 0 {
		s.results = append([]*service.GameResult(nil), s.results[over:]...)
	}
	return nil
}

// Recent returns up to limit results, newest first
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]*service.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.results) {
		limit = len(s.results)
	}

	out := make([]*service.GameResult, 0, limit)
	for i := len(s.results) - 1; i >= 0 && len(out) < limit; i-- {
		copied := *s.results[i]
		out = append(out, &copied)
	}
	return out, nil
}
