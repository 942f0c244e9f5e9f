package providerRepo

import (
	"context"

	"hustlr/models"
)

// NearbyQuery selects active providers of one service type around a point.
type NearbyQuery struct {
	ServiceType string
	Point       models.GeoPoint
	MaxMeters   float64
	Limit       int
}

// NearbyProvider is a provider annotated with its distance from the query point.
type NearbyProvider struct {
	models.Provider `bson:",inline"`
	DistanceMeters  float64 `bson:"distance"`
}

// ProviderRepository defines methods for provider data access.
type ProviderRepository interface {
	// GetByPhone and GetByID return database.ErrNotFound when nothing matches.
	GetByPhone(ctx context.Context, phone string) (*models.Provider, error)
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	Create(ctx context.Context, provider *models.Provider) error
	// Update replaces the stored provider with the same phone.
	Update(ctx context.Context, provider *models.Provider) error

	// Nearby runs a geo-proximity query, nearest first.
	Nearby(ctx context.Context, q NearbyQuery) ([]NearbyProvider, error)
	// ListActive lists active providers of a service type in no particular order.
	ListActive(ctx context.Context, serviceType string, limit int) ([]models.Provider, error)
	// DistinctServiceTypes lists every service type seen on a provider.
	DistinctServiceTypes(ctx context.Context) ([]string, error)
}
