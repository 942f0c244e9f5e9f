package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hustlr/database"
	"hustlr/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo(store *database.Store, logger *zap.Logger) BookingRepository {
	repo := &MongoBookingRepo{coll: store.Collection("bookings")}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create booking indexes", zap.Error(err))
	}
	return repo
}

func (repo *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "provider_id", Value: 1}, {Key: "start", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start", Value: 1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new booking document.
func (repo *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// FindOverlap uses the half-open interval test start < end AND end > start.
func (repo *MongoBookingRepo) FindOverlap(ctx context.Context, providerID string, start, end time.Time) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"provider_id": providerID,
		"start":       bson.M{"$lt": end},
		"end":         bson.M{"$gt": start},
	}
	var existing models.Booking
	if err := repo.coll.FindOne(ctx, filter).Decode(&existing); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding overlapping bookings: %w", err)
	}
	return &existing, nil
}

func (repo *MongoBookingRepo) Upcoming(ctx context.Context, q UpcomingQuery) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	owners := bson.A{bson.M{"user_id": q.UserID}}
	if q.ProviderID != "" {
		owners = append(owners, bson.M{"provider_id": q.ProviderID})
	}
	filter := bson.M{
		"$or":   owners,
		"start": bson.M{"$gte": q.After},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
