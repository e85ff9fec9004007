package ports

import (
	"context"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
)

// ListBikeInput carries all data needed to list a new bike for rent.
type ListBikeInput struct {
	Model         string
	Location      string
	ModelYear     int
	RentRate      float64
	ContactNumber string
	PhotoURL      string
}

// BookInput identifies a booking request. IdempotencyKey is optional; when
// set, a replayed key within the retention window acknowledges the original
// booking instead of executing again.
type BookInput struct {
	BikeID         string
	Requester      string
	IdempotencyKey string
}

// RentalService defines the use-case operations on the bike inventory.
// It is the only path through which bike state changes; every successful
// mutation publishes exactly one snapshot to connected observers before
// the call returns.
type RentalService interface {
	ListBike(ctx context.Context, owner string, input ListBikeInput) (*domain.Bike, error)
	Book(ctx context.Context, input BookInput) error
	Return(ctx context.Context, bikeID, requester string) error
	Remove(ctx context.Context, bikeID, requester string) error
	Bikes(ctx context.Context) (*domain.Snapshot, error)
	MyBikes(ctx context.Context, owner string) ([]domain.Bike, error)
}
