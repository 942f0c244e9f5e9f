package userRepo

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

// GetByPhone retrieves a user by phone token.
func (r *MongoUserRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"phone": phone}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user with phone %s: %w", phone, err)
	}
	return &user, nil
}

// Create inserts a new user document.
func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update replaces the user document so cleared fields are removed as well.
func (r *MongoUserRepo) Update(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	user.UpdatedAt = time.Now()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"phone": user.Phone}, user)
	if err != nil {
		return fmt.Errorf("failed to update user with phone %s: %w", user.Phone, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user with phone %s: %w", user.Phone, database.ErrNotFound)
	}
	return nil
}
