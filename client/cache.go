package client

import (
	"sync"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
)

// ViewCache holds the last known inventory snapshot on the consuming side
// and serves local reads between pushes. A pushed snapshot replaces the
// whole cached list; it is applied only when its version is newer than the
// cached one, so delivery reordering can never roll the view backwards.
type ViewCache struct {
	mu      sync.RWMutex
	version uint64
	bikes   []domain.Bike
	primed  bool
}

func NewViewCache() *ViewCache {
	return &ViewCache{}
}

// Apply installs a pushed snapshot. It reports false when the snapshot is
// stale (version at or below the cached one after the cache was primed by a
// push) and the cache is left untouched.
func (v *ViewCache) Apply(snap domain.Snapshot) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.primed && snap.Version <= v.version {
		return false
	}

	v.version = snap.Version
	v.bikes = append([]domain.Bike(nil), snap.Bikes...)
	v.primed = true
	return true
}

// Reset replaces the cached list with state read over the REST path. Reads
// are unversioned, so the version guard is lowered: the next push always
// applies, re-anchoring the cache to the push stream.
func (v *ViewCache) Reset(bikes []domain.Bike) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.version = 0
	v.primed = false
	v.bikes = append([]domain.Bike(nil), bikes...)
}

// Bikes returns a copy of the cached inventory.
func (v *ViewCache) Bikes() []domain.Bike {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]domain.Bike(nil), v.bikes...)
}

// Version returns the version of the last applied push, 0 before the first.
func (v *ViewCache) Version() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// Bike returns the cached record with the given id.
func (v *ViewCache) Bike(id string) (domain.Bike, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, b := range v.bikes {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Bike{}, false
}
