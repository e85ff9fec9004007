package ports

import (
	"context"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
