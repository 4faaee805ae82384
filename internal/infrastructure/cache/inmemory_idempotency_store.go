package cache

import (
	"context"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

const sweepInterval = 5 * time.Minute

type claim struct {
	orderRef string
	until    time.Time
}

func (c claim) liveAt(t time.Time) bool { return t.Before(c.until) }

// InMemoryIdempotencyStore keeps idempotency keys in process memory.
// Replays are only detected within one server instance.
type InMemoryIdempotencyStore struct {
	mu     sync.Mutex
	claims map[string]claim
	now    func() time.Time

	stop context.CancelFunc
	done chan struct{}
}

// NewInMemoryIdempotencyStore starts a store whose expired keys are swept
// every five minutes until Close
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return newInMemoryIdempotencyStore(time.Now, sweepInterval)
}

func newInMemoryIdempotencyStore(now func() time.Time, every time.Duration) *InMemoryIdempotencyStore {
	ctx, cancel := context.WithCancel(context.Background())
	s := &InMemoryIdempotencyStore{
		claims: make(map[string]claim),
		now:    now,
		stop:   cancel,
		done:   make(chan struct{}),
	}
	go s.sweepUntil(ctx, every)
	return s
}

func (s *InMemoryIdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if c, ok := s.claims[key]; ok && c.liveAt(now) {
		return false, nil
	}
	s.claims[key] = claim{until: now.Add(ttl)}
	return true, nil
}

func (s *InMemoryIdempotencyStore) Complete(_ context.Context, key, result string, ttl time.Duration) error {
	s.mu.Lock()
	s.claims[key] = claim{orderRef: result, until: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *InMemoryIdempotencyStore) Lookup(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[key]
	if !ok || !c.liveAt(s.now()) {
		return "", false, nil
	}
	return c.orderRef, true, nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.claims, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper; calling it again is a no-op
func (s *InMemoryIdempotencyStore) Close() error {
	s.stop()
	<-s.done
	return nil
}

func (s *InMemoryIdempotencyStore) sweepUntil(ctx context.Context, every time.Duration) {
	defer close(s.done)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep()
		}
	}
}

// sweep drops expired keys and returns how many remain
func (s *InMemoryIdempotencyStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, c := range s.claims {
		if !c.liveAt(now) {
			delete(s.claims, key)
		}
	}
	return len(s.claims)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
