package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/eeat/internal/domain/model"
	"github.com/okian/eeat/pkg/metrics"
)

// MemoryStore keeps batches in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	batches map[string]*model.Batch
	limit   int
	order   []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := applyOptions(opts)
	return &MemoryStore{
		batches: make(map[string]*model.Batch),
		limit:   o.maxBatches,
	}
}

// Create stores a copy of b.
func (s *MemoryStore) Create(ctx context.Context, b *model.Batch) error {
	defer observe("create", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.batches[b.ID]; ok {
		return fmt.Errorf("%w: %s", ErrExists, b.ID)
	}
	s.batches[b.ID] = b.Clone()
	s.order = append(s.order, b.ID)
	s.evict()
	return nil
}

// evict drops the oldest finished batches beyond the limit.
// Must be called with s.mu held.
func (s *MemoryStore) evict() {
	if s.limit <= 0 {
		return
	}
	for i := 0; len(s.batches) > s.limit && i < len(s.order); {
		id := s.order[i]
		if b := s.batches[id]; b != nil && b.Done() {
			delete(s.batches, id)
			s.order = append(s.order[:i], s.order[i+1:]...)
			continue
		}
		i++
	}
}

// Get returns a copy of the batch.
func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Batch, error) {
	defer observe("get", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.batches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return b.Clone(), nil
}

// List returns batch summaries, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	defer observe("list", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.batches))
	for _, b := range s.batches {
		out = append(out, Summarize(b))
	}
	sortSummaries(out)
	return out, nil
}

// Update applies fn to a working copy and stores it when fn succeeds.
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*model.Batch) error) error {
	defer observe("update", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	work := b.Clone()
	if err := fn(work); err != nil {
		return err
	}
	s.batches[id] = work
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func sortSummaries(out []Summary) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}
