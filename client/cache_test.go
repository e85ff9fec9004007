package client

import (
	"testing"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
)

func snapshot(version uint64, ids ...string) domain.Snapshot {
	bikes := make([]domain.Bike, 0, len(ids))
	for _, id := range ids {
		bikes = append(bikes, domain.Bike{ID: id, Model: "Road Bike", IsAvailable: true})
	}
	return domain.Snapshot{Version: version, Bikes: bikes}
}

func TestViewCache_AppliesNewerVersions(t *testing.T) {
	cache := NewViewCache()

	if !cache.Apply(snapshot(1, "a")) {
		t.Fatal("first snapshot must apply")
	}
	if !cache.Apply(snapshot(2, "a", "b")) {
		t.Fatal("newer snapshot must apply")
	}
	if cache.Version() != 2 {
		t.Fatalf("expected version 2, got %d", cache.Version())
	}
	if len(cache.Bikes()) != 2 {
		t.Fatalf("expected 2 bikes, got %d", len(cache.Bikes()))
	}
}

func TestViewCache_DiscardsStaleSnapshots(t *testing.T) {
	cache := NewViewCache()
	_ = cache.Apply(snapshot(5, "a", "b"))

	if cache.Apply(snapshot(5, "x")) {
		t.Fatal("equal version must be discarded")
	}
	if cache.Apply(snapshot(3, "x")) {
		t.Fatal("older version must be discarded")
	}
	if cache.Version() != 5 || len(cache.Bikes()) != 2 {
		t.Fatal("stale snapshot must leave the cache untouched")
	}
}

func TestViewCache_ResetLowersVersionGuard(t *testing.T) {
	cache := NewViewCache()
	_ = cache.Apply(snapshot(10, "a"))

	cache.Reset([]domain.Bike{{ID: "r", Model: "Electric Bike", IsAvailable: true}})
	if cache.Version() != 0 {
		t.Fatalf("reset must clear the version, got %d", cache.Version())
	}
	if _, ok := cache.Bike("r"); !ok {
		t.Fatal("reset state must be readable")
	}

	// After a REST reconciliation the push stream restarts at whatever version
	// the server is on, which may be lower than what was seen before.
	if !cache.Apply(snapshot(1, "p")) {
		t.Fatal("first push after reset must apply regardless of version")
	}
	if _, ok := cache.Bike("p"); !ok {
		t.Fatal("expected the pushed state to replace the reset state")
	}
}

func TestViewCache_SnapshotReplacesWholeList(t *testing.T) {
	cache := NewViewCache()
	_ = cache.Apply(snapshot(1, "a", "b", "c"))
	_ = cache.Apply(snapshot(2, "b"))

	bikes := cache.Bikes()
	if len(bikes) != 1 || bikes[0].ID != "b" {
		t.Fatalf("expected only bike b, got %+v", bikes)
	}
	if _, ok := cache.Bike("a"); ok {
		t.Fatal("bike a must be gone after the replacing snapshot")
	}
}

func TestViewCache_ReadsReturnCopies(t *testing.T) {
	cache := NewViewCache()
	_ = cache.Apply(snapshot(1, "a"))

	bikes := cache.Bikes()
	bikes[0].BookedBy = "mallory"
	bikes[0].IsAvailable = false

	fresh, ok := cache.Bike("a")
	if !ok {
		t.Fatal("bike a missing")
	}
	if !fresh.IsAvailable || fresh.BookedBy != "" {
		t.Fatal("mutating a read result must not affect the cache")
	}
}
