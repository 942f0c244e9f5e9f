package providerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hustlr/database"
	"hustlr/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *MongoProviderRepo) findOne(ctx context.Context, filter bson.M) (*models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var provider models.Provider
	if err := r.coll.FindOne(ctx, filter).Decode(&provider); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch provider %v: %w", filter, err)
	}
	return &provider, nil
}

func (r *MongoProviderRepo) GetByPhone(ctx context.Context, phone string) (*models.Provider, error) {
	return r.findOne(ctx, bson.M{"phone": phone})
}

func (r *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

// Create inserts a new provider document.
func (r *MongoProviderRepo) Create(ctx context.Context, provider *models.Provider) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	provider.CreatedAt = now
	provider.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, provider); err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}
	return nil
}

// Update replaces the provider document matched by phone.
func (r *MongoProviderRepo) Update(ctx context.Context, provider *models.Provider) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	provider.UpdatedAt = time.Now()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"phone": provider.Phone}, provider)
	if err != nil {
		return fmt.Errorf("failed to update provider with phone %s: %w", provider.Phone, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("provider with phone %s: %w", provider.Phone, database.ErrNotFound)
	}
	return nil
}
