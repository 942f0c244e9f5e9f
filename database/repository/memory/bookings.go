package memoryRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	bookingRepo "hustlr/database/repository/booking"
	"hustlr/models"
)

type BookingRepo struct {
	mu       sync.RWMutex
	bookings []models.Booking
}

func NewBookingRepo() *BookingRepo {
	return &BookingRepo{}
}

func (r *BookingRepo) Create(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == booking.ID {
			return fmt.Errorf("booking %s already exists", booking.ID)
		}
	}
	r.bookings = append(r.bookings, *booking)
	return nil
}

func (r *BookingRepo) FindOverlap(_ context.Context, providerID string, start, end time.Time) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bookings {
		if b.ProviderID == providerID && models.Overlaps(b.Start, b.End, start, end) {
			out := b
			return &out, nil
		}
	}
	return nil, nil
}

func (r *BookingRepo) Upcoming(_ context.Context, q bookingRepo.UpcomingQuery) ([]models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Booking
	for _, b := range r.bookings {
		owned := b.UserID == q.UserID || (q.ProviderID != "" && b.ProviderID == q.ProviderID)
		if owned && !b.Start.Before(q.After) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// All returns a copy of every stored booking.
func (r *BookingRepo) All() []models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Booking(nil), r.bookings...)
}
