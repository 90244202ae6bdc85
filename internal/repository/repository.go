// Package repository defines the persistence interfaces for the storefront.
package repository

import (
	"context"
	"time"

	"github.com/exclusivos-baez/storefront-api/internal/domain"
)

// CartRepository defines the interface for session cart persistence.
type CartRepository interface {
	// Get retrieves a cart by its session ID.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Save persists a cart, overwriting any existing cart for the session.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes a cart by its session ID.
	Delete(ctx context.Context, sessionID string) error
}

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, u *domain.User) error
}

// DeviceRepository stores device telemetry reports.
type DeviceRepository interface {
	Insert(ctx context.Context, report *domain.DeviceReport) error
}

// DropRepository defines the interface for drop announcements and alerts.
type DropRepository interface {
	// ListUpcoming returns a page of drops releasing at or after now,
	// soonest first.
	ListUpcoming(ctx context.Context, now time.Time, limit, offset int) ([]domain.Drop, error)

	// CountUpcoming returns the total number of drops releasing at or
	// after now.
	CountUpcoming(ctx context.Context, now time.Time) (int, error)

	GetBySlug(ctx context.Context, slug string) (*domain.Drop, error)

	// Subscribe registers a user for release alerts on a drop. Duplicate
	// subscriptions return ErrAlreadyExists.
	Subscribe(ctx context.Context, sub *domain.DropSubscription) error

	// ListSubscribers returns the user IDs subscribed to a drop.
	ListSubscribers(ctx context.Context, dropID string) ([]string, error)
}
