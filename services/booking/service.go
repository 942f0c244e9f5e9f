package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	bookingRepo "hustlr/database/repository/booking"
	"hustlr/metrics"
	"hustlr/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SearchQuery drives the direct provider search.
type SearchQuery struct {
	Service string
	Coords  *models.GeoPoint
	Start   *time.Time
	End     *time.Time
	MaxKm   float64
	Limit   int
}

// Service exposes booking outside the conversation: direct creation and search.
type Service struct {
	Bookings     bookingRepo.BookingRepository
	Availability *Availability
	Ranker       *Ranker
	Logger       *zap.Logger
}

func NewService(bookings bookingRepo.BookingRepository, availability *Availability, ranker *Ranker, logger *zap.Logger) *Service {
	return &Service{Bookings: bookings, Availability: availability, Ranker: ranker, Logger: logger}
}

// CreateBooking inserts the booking unless it overlaps an existing booking of
// the provider, in which case a *ConflictError is returned.
func (s *Service) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	if !req.End.After(req.Start) {
		return nil, ErrInvalidWindow
	}
	existing, err := s.Bookings.FindOverlap(ctx, req.ProviderID, req.Start, req.End)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		metrics.Bookings.WithLabelValues("api", "conflict").Inc()
		return nil, &ConflictError{ProviderID: req.ProviderID, BookingID: existing.ID}
	}

	booking := &models.Booking{
		ID:         uuid.New().String(),
		UserID:     req.UserID,
		ProviderID: req.ProviderID,
		Start:      req.Start,
		End:        req.End,
		Notes:      req.Notes,
		CreatedAt:  time.Now(),
	}
	if err := s.Bookings.Create(ctx, booking); err != nil {
		metrics.Bookings.WithLabelValues("api", "error").Inc()
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	metrics.Bookings.WithLabelValues("api", "committed").Inc()
	s.Logger.Info("booking created",
		zap.String("bookingId", booking.ID),
		zap.String("providerId", booking.ProviderID),
		zap.Time("start", booking.Start))
	return booking, nil
}

// SearchProviders ranks providers of a service around the given point. When a
// window is supplied, availability is checked against it.
func (s *Service) SearchProviders(ctx context.Context, q SearchQuery) ([]RankedProvider, error) {
	service := strings.ToLower(strings.TrimSpace(q.Service))
	if service == "" {
		return nil, fmt.Errorf("service is required")
	}
	req := RankRequest{
		Service:  service,
		Coords:   q.Coords,
		Start:    q.Start,
		Limit:    q.Limit,
		RadiusKm: q.MaxKm,
	}
	if q.Start != nil && q.End != nil {
		if !q.End.After(*q.Start) {
			return nil, ErrInvalidWindow
		}
		req.Duration = q.End.Sub(*q.Start)
	}
	ranked, err := s.Ranker.Rank(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, ErrNoProviders
	}
	return ranked, nil
}
