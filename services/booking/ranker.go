package booking

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	providerRepo "hustlr/database/repository/provider"
	"hustlr/models"

	"go.uber.org/zap"
)

const (
	// TravelSpeedKmh is the constant speed used to estimate arrival times.
	TravelSpeedKmh = 35.0
	// ShortlistSize caps how many candidates a ranking returns.
	ShortlistSize = 5

	DefaultSlot     = 60 * time.Minute
	DefaultRadiusKm = 30.0
)

// RankedProvider holds provider data along with its distance, ETA and
// availability for the requested slot.
type RankedProvider struct {
	Provider       models.Provider `json:"provider"`
	DistanceMeters *float64        `json:"distance_m,omitempty"`
	EtaMinutes     *int            `json:"eta_min,omitempty"`
	Rating         float64         `json:"rating"`
	Available      bool            `json:"available"`
}

// Option converts the candidate into the numbered choice stored on a conversation.
func (r RankedProvider) Option() models.ProviderOption {
	return models.ProviderOption{
		ProviderID:     r.Provider.ID,
		Name:           r.Provider.Name,
		DistanceMeters: r.DistanceMeters,
		EtaMinutes:     r.EtaMinutes,
		Rating:         r.Rating,
		Available:      r.Available,
	}
}

// RankRequest describes one ranking.
type RankRequest struct {
	Service string
	// Coords of the user. Without them no geo query is made.
	Coords *models.GeoPoint
	// Start is the desired slot start. Availability is only checked when set.
	Start *time.Time
	// Exclude skips these provider ids.
	Exclude []string
	// Limit defaults to ShortlistSize.
	Limit int
	// RadiusKm overrides the ranker's radius when positive.
	RadiusKm float64
	// Duration overrides the ranker's slot length when positive.
	Duration time.Duration
}

// Ranker shortlists providers for a service by availability, rating and distance.
type Ranker struct {
	Providers    providerRepo.ProviderRepository
	Availability *Availability
	Slot         time.Duration
	RadiusKm     float64
	Logger       *zap.Logger
}

// NewRanker builds a ranker with the default slot and radius when zero values are given.
func NewRanker(providers providerRepo.ProviderRepository, availability *Availability, slot time.Duration, radiusKm float64, logger *zap.Logger) *Ranker {
	if slot <= 0 {
		slot = DefaultSlot
	}
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	return &Ranker{Providers: providers, Availability: availability, Slot: slot, RadiusKm: radiusKm, Logger: logger}
}

// EtaMinutes converts a distance into whole minutes at TravelSpeedKmh.
func EtaMinutes(distanceMeters float64) int {
	return int(math.Round(distanceMeters / 1000 / TravelSpeedKmh * 60))
}

// Rank returns up to req.Limit candidates: available first, then by rating
// descending, then nearest first with unknown distances last.
func (r *Ranker) Rank(ctx context.Context, req RankRequest) ([]RankedProvider, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = ShortlistSize
	}
	radius := r.RadiusKm
	if req.RadiusKm > 0 {
		radius = req.RadiusKm
	}
	slot := r.Slot
	if req.Duration > 0 {
		slot = req.Duration
	}

	candidates, err := r.candidates(ctx, req.Service, req.Coords, radius)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{}, len(req.Exclude))
	for _, id := range req.Exclude {
		excluded[id] = struct{}{}
	}

	ranked := make([]RankedProvider, 0, len(candidates))
	for _, c := range candidates {
		if _, skip := excluded[c.Provider.ID]; skip {
			continue
		}
		c.Rating = c.Provider.RatingOrZero()
		c.Available = true
		if req.Start != nil {
			free, err := r.Availability.IsFree(ctx, c.Provider.ID, *req.Start, req.Start.Add(slot))
			if err != nil {
				return nil, err
			}
			c.Available = free
		}
		ranked = append(ranked, c)
	}

	SortRanked(ranked)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// candidates runs the geo query when coordinates are known and falls back to
// an unordered listing without distances.
func (r *Ranker) candidates(ctx context.Context, service string, coords *models.GeoPoint, radiusKm float64) ([]RankedProvider, error) {
	if coords.Valid() {
		nearby, err := r.Providers.Nearby(ctx, providerRepo.NearbyQuery{
			ServiceType: service,
			Point:       *coords,
			MaxMeters:   radiusKm * 1000,
		})
		if err != nil {
			return nil, fmt.Errorf("nearby providers for %s: %w", service, err)
		}
		if len(nearby) > 0 {
			out := make([]RankedProvider, 0, len(nearby))
			for _, n := range nearby {
				meters := n.DistanceMeters
				eta := EtaMinutes(meters)
				out = append(out, RankedProvider{Provider: n.Provider, DistanceMeters: &meters, EtaMinutes: &eta})
			}
			return out, nil
		}
		r.Logger.Debug("no provider within radius, listing all", zap.String("service", service), zap.Float64("radiusKm", radiusKm))
	}

	providers, err := r.Providers.ListActive(ctx, service, 0)
	if err != nil {
		return nil, fmt.Errorf("active providers for %s: %w", service, err)
	}
	out := make([]RankedProvider, 0, len(providers))
	for _, p := range providers {
		out = append(out, RankedProvider{Provider: p})
	}
	return out, nil
}

// SortRanked orders candidates in place. The sort is stable so equal
// candidates keep their query order.
func SortRanked(ranked []RankedProvider) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Available != b.Available {
			return a.Available
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		switch {
		case a.DistanceMeters == nil:
			return false
		case b.DistanceMeters == nil:
			return true
		}
		return *a.DistanceMeters < *b.DistanceMeters
	})
}
