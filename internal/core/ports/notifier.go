package ports

import "github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"

// Notifier fans a new inventory state out to all connected observers.
// Publish must never block on a slow observer; the implementation stamps
// the snapshot version.
type Notifier interface {
	Publish(bikes []domain.Bike)
}
