package conversationRepo

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

// MongoConversationRepo implements ConversationRepository using MongoDB.
type MongoConversationRepo struct {
	coll *mongo.Collection
}

func NewMongoConversationRepo(store *database.Store, logger *zap.Logger) ConversationRepository {
	repo := &MongoConversationRepo{coll: store.Collection("conversations")}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create conversation indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoConversationRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "phone", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoConversationRepo) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var conv models.Conversation
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&conv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}
	return &conv, nil
}

func (r *MongoConversationRepo) GetOpen(ctx context.Context, phone string) (*models.Conversation, error) {
	latest := options.FindOne().SetSort(bson.D{{Key: "started_at", Value: -1}})
	return r.findOne(ctx, bson.M{"phone": phone, "status": models.StatusOpen}, latest)
}

func (r *MongoConversationRepo) GetBySession(ctx context.Context, sessionID string) (*models.Conversation, error) {
	return r.findOne(ctx, bson.M{"session_id": sessionID})
}

func (r *MongoConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if conv.Messages == nil {
		conv.Messages = []models.Message{}
	}
	if _, err := r.coll.InsertOne(ctx, conv); err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (r *MongoConversationRepo) update(ctx context.Context, sessionID string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"session_id": sessionID}, update)
	if err != nil {
		return fmt.Errorf("failed to update conversation %s: %w", sessionID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("conversation %s: %w", sessionID, database.ErrNotFound)
	}
	return nil
}

func (r *MongoConversationRepo) AppendMessage(ctx context.Context, sessionID string, msg models.Message) error {
	return r.update(ctx, sessionID, bson.M{"$push": bson.M{"messages": msg}})
}

func (r *MongoConversationRepo) SaveNegotiation(ctx context.Context, sessionID string, n models.Negotiation) error {
	set := bson.M{"booking_state": n.State}
	unset := bson.M{}
	if n.Draft != nil {
		set["booking"] = n.Draft
	} else {
		unset["booking"] = ""
	}
	if len(n.ProviderOptions) > 0 {
		set["provider_options"] = n.ProviderOptions
	} else {
		unset["provider_options"] = ""
	}
	if len(n.AddressOptions) > 0 {
		set["address_options"] = n.AddressOptions
	} else {
		unset["address_options"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return r.update(ctx, sessionID, update)
}

func (r *MongoConversationRepo) ClearNegotiation(ctx context.Context, sessionID string) error {
	return r.update(ctx, sessionID, bson.M{"$unset": bson.M{
		"booking":          "",
		"booking_state":    "",
		"provider_options": "",
		"address_options":  "",
	}})
}

func (r *MongoConversationRepo) Close(ctx context.Context, sessionID string, endedAt time.Time) error {
	return r.update(ctx, sessionID, bson.M{"$set": bson.M{
		"status":   models.StatusClosed,
		"ended_at": endedAt,
	}})
}
