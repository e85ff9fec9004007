package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/ports"
)

// IdempotencyStore abstracts the replay guard for booking requests (Redis).
type IdempotencyStore interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// RentalService coordinates all bike state changes. Atomicity of each
// transition is the registry's contract; this layer validates input, owns
// id assignment, and publishes the post-mutation snapshot to observers
// before the call returns, so the caller never races a stale push.
type RentalService struct {
	registry ports.BikeRegistry
	notifier ports.Notifier
	idem     IdempotencyStore // optional
	logger   zerolog.Logger

	// publishMu serializes snapshot capture with hand-off to the notifier.
	// The notifier stamps versions in hand-off order, so without this a
	// snapshot read before a concurrent mutation could be handed off after
	// that mutation's snapshot and carry the newer version.
	publishMu sync.Mutex
}

func NewRentalService(registry ports.BikeRegistry, notifier ports.Notifier, idem IdempotencyStore, logger zerolog.Logger) *RentalService {
	return &RentalService{registry: registry, notifier: notifier, idem: idem, logger: logger}
}

const (
	minModelYear = 1900
)

func validateListing(input ports.ListBikeInput) error {
	if strings.TrimSpace(input.Model) == "" {
		return fmt.Errorf("%w: model is required", domain.ErrValidation)
	}
	if strings.TrimSpace(input.Location) == "" {
		return fmt.Errorf("%w: location is required", domain.ErrValidation)
	}
	if strings.TrimSpace(input.ContactNumber) == "" {
		return fmt.Errorf("%w: contact number is required", domain.ErrValidation)
	}
	if input.RentRate <= 0 {
		return fmt.Errorf("%w: rent rate must be positive", domain.ErrValidation)
	}
	if maxYear := time.Now().Year() + 1; input.ModelYear < minModelYear || input.ModelYear > maxYear {
		return fmt.Errorf("%w: model year must be between %d and %d", domain.ErrValidation, minModelYear, maxYear)
	}
	return nil
}

// ListBike creates a new bike owned by owner, available for rent.
func (s *RentalService) ListBike(ctx context.Context, owner string, input ports.ListBikeInput) (*domain.Bike, error) {
	if err := validateListing(input); err != nil {
		return nil, err
	}

	bike := &domain.Bike{
		ID:            uuid.NewString(),
		Model:         input.Model,
		ModelYear:     input.ModelYear,
		RentRate:      input.RentRate,
		Location:      input.Location,
		ContactNumber: input.ContactNumber,
		PhotoURL:      input.PhotoURL,
		Owner:         owner,
		IsAvailable:   true,
		CreatedAt:     time.Now().UTC(),
	}

	created, err := s.registry.Create(ctx, bike)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Msg("failed to list bike")
		return nil, err
	}

	s.logger.Info().Str("bike_id", created.ID).Str("owner", owner).Msg("bike listed")

	s.publish(ctx)
	return created, nil
}

// Book transitions the bike to booked-by-requester. Booking one's own bike is
// permitted while it is available; a bike already booked by anyone (the
// requester included) yields domain.ErrBikeUnavailable.
func (s *RentalService) Book(ctx context.Context, input ports.BookInput) error {
	if input.IdempotencyKey != "" && s.idem != nil {
		seen, err := s.idem.Seen(ctx, input.IdempotencyKey)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", input.IdempotencyKey).Msg("idempotency check failed, processing anyway")
		} else if seen {
			s.logger.Debug().Str("key", input.IdempotencyKey).Str("bike_id", input.BikeID).Msg("duplicate booking replayed")
			return nil
		}
	}

	if err := s.registry.Book(ctx, input.BikeID, input.Requester); err != nil {
		return err
	}

	// Only successes are marked: a failed attempt retried under the same key
	// must execute again.
	if input.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Mark(ctx, input.IdempotencyKey); err != nil {
			s.logger.Warn().Err(err).Str("key", input.IdempotencyKey).Msg("failed to mark idempotency key")
		}
	}

	s.logger.Info().Str("bike_id", input.BikeID).Str("requester", input.Requester).Msg("bike booked")

	s.publish(ctx)
	return nil
}

// Return releases a booked bike. Returning an already-available bike is a
// conflict rather than a no-op: it means the caller's view has diverged and
// should be refreshed, not silently acknowledged.
func (s *RentalService) Return(ctx context.Context, bikeID, requester string) error {
	if err := s.registry.Return(ctx, bikeID, requester); err != nil {
		return err
	}

	s.logger.Info().Str("bike_id", bikeID).Str("requester", requester).Msg("bike returned")

	s.publish(ctx)
	return nil
}

// Remove deletes a bike. Only the owner may remove it, and only while it is
// available.
func (s *RentalService) Remove(ctx context.Context, bikeID, requester string) error {
	if err := s.registry.Remove(ctx, bikeID, requester); err != nil {
		return err
	}

	s.logger.Info().Str("bike_id", bikeID).Str("owner", requester).Msg("bike removed")

	s.publish(ctx)
	return nil
}

// Bikes returns the current unversioned snapshot of the whole inventory.
// The push channel stamps versions; this read path serves the initial fetch
// and reconnect reconciliation.
func (s *RentalService) Bikes(ctx context.Context) (*domain.Snapshot, error) {
	bikes, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Snapshot{Bikes: bikes}, nil
}

// MyBikes returns the bikes owned by owner.
func (s *RentalService) MyBikes(ctx context.Context, owner string) ([]domain.Bike, error) {
	return s.registry.ListByOwner(ctx, owner)
}

// publish pushes the post-mutation state to all observers. It runs after the
// registry released its lock (List takes its own read lock on a copy), so a
// slow observer can never stall the next mutation. Capture and hand-off
// happen under publishMu: version order equals capture order, and an
// observer that applies snapshots in version order always converges on the
// latest registry state.
func (s *RentalService) publish(ctx context.Context) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	bikes, err := s.registry.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read inventory for publish")
		return
	}
	s.notifier.Publish(bikes)
}

// Seed loads the sample inventory a fresh deployment starts with.
func (s *RentalService) Seed(ctx context.Context) error {
	const defaultPhoto = "https://i.imgur.com/83S9Q4q.jpeg"
	samples := []ports.ListBikeInput{
		{Model: "Mountain Bike", Location: "Alpha", ModelYear: 2023, RentRate: 25.00, ContactNumber: "555-1234", PhotoURL: defaultPhoto},
		{Model: "Electric Bike", Location: "Beta", ModelYear: 2024, RentRate: 40.00, ContactNumber: "555-1234", PhotoURL: "https://i.imgur.com/qc3Q1sP.jpeg"},
		{Model: "Road Bike", Location: "Gamma", ModelYear: 2022, RentRate: 30.00, ContactNumber: "555-1234", PhotoURL: "https://i.imgur.com/fFVLwD9.jpeg"},
		{Model: "Mountain Bike", Location: "Delta", ModelYear: 2023, RentRate: 25.00, ContactNumber: "555-1234", PhotoURL: defaultPhoto},
	}
	for _, in := range samples {
		if _, err := s.ListBike(ctx, "admin", in); err != nil {
			return fmt.Errorf("seed inventory: %w", err)
		}
	}
	return nil
}
