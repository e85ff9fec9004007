package domain

import (
	"errors"
	"time"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrBikeNotFound    = errors.New("bike not found")
	ErrBikeUnavailable = errors.New("bike is not available")
	ErrBikeNotBooked   = errors.New("bike is not booked")
	ErrBikeBooked      = errors.New("bike is currently booked")
	ErrForbidden       = errors.New("access forbidden")
)

// Bike is the core aggregate root. ID and Owner are immutable after listing;
// IsAvailable and BookedBy change only through the rental service.
//
// Invariant: BookedBy is non-empty if and only if IsAvailable is false.
type Bike struct {
	ID            string    `json:"bikeId" bson:"_id"`
	Model         string    `json:"model" bson:"model"`
	ModelYear     int       `json:"modelYear" bson:"model_year"`
	RentRate      float64   `json:"rentRate" bson:"rent_rate"`
	Location      string    `json:"location" bson:"location"`
	ContactNumber string    `json:"contactNumber" bson:"contact_number"`
	PhotoURL      string    `json:"photoUrl,omitempty" bson:"photo_url,omitempty"`
	Owner         string    `json:"owner" bson:"owner"`
	IsAvailable   bool      `json:"isAvailable" bson:"is_available"`
	BookedBy      string    `json:"bookedBy,omitempty" bson:"booked_by,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	Seq           int64     `json:"-" bson:"seq"`
}

// Consistent reports whether the availability invariant holds.
func (b Bike) Consistent() bool {
	return (b.BookedBy == "") == b.IsAvailable
}

// Snapshot is the full ordered bike list pushed to observers. Version grows
// monotonically with every published mutation; a snapshot replaces, never
// merges with, the receiver's previous one.
type Snapshot struct {
	Version uint64 `json:"version"`
	Bikes   []Bike `json:"bikes"`
}
