package bookingRepo

import (
	"context"
	"time"

	"hustlr/models"
)

// UpcomingQuery selects future bookings held by a consumer or, when
// ProviderID is set, assigned to that provider.
type UpcomingQuery struct {
	UserID     string
	ProviderID string
	After      time.Time
	Limit      int
}

// BookingRepository defines methods for booking data access.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	// FindOverlap returns a booking of the provider intersecting [start, end),
	// or nil when the slot is free.
	FindOverlap(ctx context.Context, providerID string, start, end time.Time) (*models.Booking, error)
	// Upcoming returns bookings starting after q.After, soonest first.
	Upcoming(ctx context.Context, q UpcomingQuery) ([]models.Booking, error)
}
