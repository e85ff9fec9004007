package ports

import (
	"context"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
)

// BikeRegistry is the authoritative store of bike records. Implementations
// must make each state transition atomic: two concurrent Book calls on the
// same bike yield exactly one winner and one domain.ErrBikeUnavailable.
// All reads return copies; callers never hold references into the store.
type BikeRegistry interface {
	// Create inserts a new bike record. The caller assigns the ID; the
	// registry assigns the creation sequence used for snapshot ordering.
	Create(ctx context.Context, bike *domain.Bike) (*domain.Bike, error)

	// Get retrieves a bike by id, or domain.ErrBikeNotFound.
	Get(ctx context.Context, id string) (*domain.Bike, error)

	// List returns all bikes ordered by creation sequence.
	List(ctx context.Context) ([]domain.Bike, error)

	// ListByOwner returns the bikes owned by owner, ordered by creation sequence.
	ListByOwner(ctx context.Context, owner string) ([]domain.Bike, error)

	// Book transitions the bike to booked-by-requester.
	// Fails with domain.ErrBikeNotFound or domain.ErrBikeUnavailable.
	Book(ctx context.Context, id, requester string) error

	// Return transitions the bike back to available. Fails with
	// domain.ErrBikeNotFound, domain.ErrForbidden when requester is not the
	// current booker, or domain.ErrBikeNotBooked when already available.
	Return(ctx context.Context, id, requester string) error

	// Remove deletes the bike. Fails with domain.ErrBikeNotFound,
	// domain.ErrForbidden when requester is not the owner, or
	// domain.ErrBikeBooked while the bike is booked.
	Remove(ctx context.Context, id, requester string) error
}
