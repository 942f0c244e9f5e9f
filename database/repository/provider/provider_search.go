package providerRepo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"hustlr/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func activeFilter(serviceType string) bson.M {
	return bson.M{"active": true, "service_type": serviceType}
}

// Nearby filters and sorts by distance in a single $geoNear stage.
func (r *MongoProviderRepo) Nearby(ctx context.Context, q NearbyQuery) ([]NearbyProvider, error) {
	if !q.Point.Valid() {
		return nil, fmt.Errorf("nearby query needs a [lng, lat] point")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: bson.D{
				{Key: "type", Value: "Point"},
				{Key: "coordinates", Value: q.Point.Coordinates},
			}},
			{Key: "key", Value: "coverage_coords"},
			{Key: "distanceField", Value: "distance"},
			{Key: "spherical", Value: true},
			{Key: "maxDistance", Value: q.MaxMeters},
			{Key: "query", Value: activeFilter(q.ServiceType)},
		}}},
	}
	if q.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: q.Limit}})
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("geo query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var providers []NearbyProvider
	if err := cursor.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}
	return providers, nil
}

func (r *MongoProviderRepo) ListActive(ctx context.Context, serviceType string, limit int) ([]models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.coll.Find(ctx, activeFilter(serviceType), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	defer cursor.Close(ctx)

	var providers []models.Provider
	if err := cursor.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}
	return providers, nil
}

func (r *MongoProviderRepo) DistinctServiceTypes(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	values, err := r.coll.Distinct(ctx, "service_type", bson.M{"service_type": bson.M{"$nin": bson.A{"", nil}}})
	if err != nil {
		return nil, fmt.Errorf("failed to list service types: %w", err)
	}
	types := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			types = append(types, s)
		}
	}
	sort.Strings(types)
	return types, nil
}
