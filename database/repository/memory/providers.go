package memoryRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"hustlr/database"
	providerRepo "hustlr/database/repository/provider"
	"hustlr/models"
	"hustlr/utils"
)

type ProviderRepo struct {
	mu        sync.RWMutex
	providers map[string]models.Provider // keyed by phone
}

func NewProviderRepo() *ProviderRepo {
	return &ProviderRepo{providers: make(map[string]models.Provider)}
}

func cloneProvider(p models.Provider) models.Provider {
	if p.CoverageCoords != nil {
		c := *p.CoverageCoords
		c.Coordinates = append([]float64(nil), c.Coordinates...)
		p.CoverageCoords = &c
	}
	if p.Rating != nil {
		r := *p.Rating
		p.Rating = &r
	}
	return p
}

func (r *ProviderRepo) GetByPhone(_ context.Context, phone string) (*models.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[phone]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := cloneProvider(p)
	return &out, nil
}

func (r *ProviderRepo) GetByID(_ context.Context, id string) (*models.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.providers {
		if p.ID == id {
			out := cloneProvider(p)
			return &out, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *ProviderRepo) Create(_ context.Context, provider *models.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[provider.Phone]; exists {
		return fmt.Errorf("provider with phone %s already exists", provider.Phone)
	}
	now := time.Now()
	provider.CreatedAt, provider.UpdatedAt = now, now
	r.providers[provider.Phone] = cloneProvider(*provider)
	return nil
}

func (r *ProviderRepo) Update(_ context.Context, provider *models.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[provider.Phone]; !exists {
		return fmt.Errorf("provider with phone %s: %w", provider.Phone, database.ErrNotFound)
	}
	provider.UpdatedAt = time.Now()
	r.providers[provider.Phone] = cloneProvider(*provider)
	return nil
}

// Nearby mirrors the $geoNear query with a haversine distance.
func (r *ProviderRepo) Nearby(_ context.Context, q providerRepo.NearbyQuery) ([]providerRepo.NearbyProvider, error) {
	if !q.Point.Valid() {
		return nil, fmt.Errorf("nearby query needs a [lng, lat] point")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []providerRepo.NearbyProvider
	for _, p := range r.providers {
		if !p.Active || p.ServiceType != q.ServiceType || !p.CoverageCoords.Valid() {
			continue
		}
		meters := 1000 * utils.HaversineKm(q.Point.Lat(), q.Point.Lng(), p.CoverageCoords.Lat(), p.CoverageCoords.Lng())
		if meters > q.MaxMeters {
			continue
		}
		out = append(out, providerRepo.NearbyProvider{Provider: cloneProvider(p), DistanceMeters: meters})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *ProviderRepo) ListActive(_ context.Context, serviceType string, limit int) ([]models.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Provider
	for _, p := range r.providers {
		if p.Active && p.ServiceType == serviceType {
			out = append(out, cloneProvider(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Phone < out[j].Phone })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ProviderRepo) DistinctServiceTypes(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, p := range r.providers {
		if p.ServiceType != "" {
			seen[p.ServiceType] = struct{}{}
		}
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types, nil
}
