package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "hustlr/database/repository/booking"
)

// Availability answers whether a provider is free for a window.
type Availability struct {
	Bookings bookingRepo.BookingRepository
}

// IsFree reports whether no booking of the provider overlaps [start, end).
func (a *Availability) IsFree(ctx context.Context, providerID string, start, end time.Time) (bool, error) {
	existing, err := a.Bookings.FindOverlap(ctx, providerID, start, end)
	if err != nil {
		return false, fmt.Errorf("availability check for provider %s: %w", providerID, err)
	}
	return existing == nil, nil
}
