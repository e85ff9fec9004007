// Package registry provides the in-memory implementation of the bike
// registry. The whole store sits behind a single mutex (single-writer
// queue), which makes every availability transition atomic: under
// concurrent booking exactly one caller wins. All reads hand out copies,
// so callers can never mutate registry state from outside.
package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
)

type Memory struct {
	mu      sync.RWMutex
	bikes   map[string]*domain.Bike
	nextSeq int64
}

func NewMemory() *Memory {
	return &Memory{bikes: make(map[string]*domain.Bike)}
}

func (m *Memory) Create(_ context.Context, bike *domain.Bike) (*domain.Bike, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSeq++
	clone := *bike
	clone.Seq = m.nextSeq
	m.bikes[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (m *Memory) Get(_ context.Context, id string) (*domain.Bike, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bikes[id]
	if !ok {
		return nil, domain.ErrBikeNotFound
	}
	clone := *b
	return &clone, nil
}

func (m *Memory) List(_ context.Context) ([]domain.Bike, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(*domain.Bike) bool { return true }), nil
}

func (m *Memory) ListByOwner(_ context.Context, owner string) ([]domain.Bike, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(b *domain.Bike) bool { return b.Owner == owner }), nil
}

// collect copies all matching records, ordered by creation sequence.
// Callers must hold at least the read lock.
func (m *Memory) collect(match func(*domain.Bike) bool) []domain.Bike {
	out := make([]domain.Bike, 0, len(m.bikes))
	for _, b := range m.bikes {
		if match(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (m *Memory) Book(_ context.Context, id, requester string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bikes[id]
	if !ok {
		return domain.ErrBikeNotFound
	}
	if !b.IsAvailable {
		return domain.ErrBikeUnavailable
	}

	// Both fields flip together so no reader ever observes a half-applied
	// transition.
	b.IsAvailable = false
	b.BookedBy = requester
	return nil
}

func (m *Memory) Return(_ context.Context, id, requester string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bikes[id]
	if !ok {
		return domain.ErrBikeNotFound
	}
	if b.IsAvailable {
		return domain.ErrBikeNotBooked
	}
	if b.BookedBy != requester {
		return domain.ErrForbidden
	}

	b.IsAvailable = true
	b.BookedBy = ""
	return nil
}

func (m *Memory) Remove(_ context.Context, id, requester string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bikes[id]
	if !ok {
		return domain.ErrBikeNotFound
	}
	if b.Owner != requester {
		return domain.ErrForbidden
	}
	if !b.IsAvailable {
		return domain.ErrBikeBooked
	}

	delete(m.bikes, id)
	return nil
}
