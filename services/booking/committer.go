package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "hustlr/database/repository/booking"
	"hustlr/metrics"
	"hustlr/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommitRequest carries a fully resolved draft.
type CommitRequest struct {
	UserID string
	Draft  models.BookingDraft
	// Coords of the user, used to rank alternatives on conflict.
	Coords *models.GeoPoint
	// Source labels the metrics, e.g. "chat".
	Source string
}

// CommitResult describes the inserted booking.
type CommitResult struct {
	Booking      *models.Booking
	ProviderName string
	// Substituted is set when the chosen provider was taken and another
	// available provider was booked instead.
	Substituted bool
}

// Committer re-checks availability and inserts the booking. The check and the
// insert are not atomic.
type Committer struct {
	Bookings     bookingRepo.BookingRepository
	Availability *Availability
	Ranker       *Ranker
	Slot         time.Duration
	Logger       *zap.Logger
}

func NewCommitter(bookings bookingRepo.BookingRepository, availability *Availability, ranker *Ranker, slot time.Duration, logger *zap.Logger) *Committer {
	if slot <= 0 {
		slot = DefaultSlot
	}
	return &Committer{Bookings: bookings, Availability: availability, Ranker: ranker, Slot: slot, Logger: logger}
}

// Commit books the draft's provider for one slot. When that provider has been
// taken since it was offered, the best available provider of the same service
// is booked instead. ErrSlotTaken is returned when none is free.
func (c *Committer) Commit(ctx context.Context, req CommitRequest) (*CommitResult, error) {
	d := req.Draft
	if d.ProviderID == "" || d.Service == "" {
		return nil, fmt.Errorf("commit needs a provider and a service")
	}
	start, err := d.Start()
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	end := start.Add(c.Slot)
	source := req.Source
	if source == "" {
		source = "chat"
	}

	providerID, providerName := d.ProviderID, d.ProviderName
	substituted := false

	free, err := c.Availability.IsFree(ctx, providerID, start, end)
	if err != nil {
		return nil, err
	}
	if !free {
		alt, err := c.alternative(ctx, req, start)
		if err != nil {
			return nil, err
		}
		if alt == nil {
			metrics.Bookings.WithLabelValues(source, "conflict").Inc()
			c.Logger.Info("slot taken and no alternative provider",
				zap.String("providerId", providerID), zap.Time("start", start))
			return nil, ErrSlotTaken
		}
		c.Logger.Info("slot taken, booking alternative provider",
			zap.String("providerId", providerID), zap.String("alternativeId", alt.Provider.ID))
		providerID, providerName = alt.Provider.ID, alt.Provider.Name
		substituted = true
	}

	booking := &models.Booking{
		ID:         uuid.New().String(),
		UserID:     req.UserID,
		ProviderID: providerID,
		Start:      start,
		End:        end,
		Service:    d.Service,
		Notes:      d.Issue,
		CreatedAt:  time.Now(),
	}
	if d.Address != nil {
		booking.Address = d.Address.String()
	}
	if err := c.Bookings.Create(ctx, booking); err != nil {
		metrics.Bookings.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	outcome := "committed"
	if substituted {
		outcome = "substituted"
	}
	metrics.Bookings.WithLabelValues(source, outcome).Inc()
	return &CommitResult{Booking: booking, ProviderName: providerName, Substituted: substituted}, nil
}

func (c *Committer) alternative(ctx context.Context, req CommitRequest, start time.Time) (*RankedProvider, error) {
	ranked, err := c.Ranker.Rank(ctx, RankRequest{
		Service:  req.Draft.Service,
		Coords:   req.Coords,
		Start:    &start,
		Exclude:  []string{req.Draft.ProviderID},
		Duration: c.Slot,
	})
	if err != nil {
		return nil, fmt.Errorf("rank alternatives: %w", err)
	}
	for i := range ranked {
		if ranked[i].Available {
			return &ranked[i], nil
		}
	}
	return nil, nil
}
