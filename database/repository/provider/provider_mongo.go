package providerRepo

import (
	"hustlr/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderRepo creates a new instance of ProviderRepository using MongoDB.
func NewMongoProviderRepo(store *database.Store, logger *zap.Logger) ProviderRepository {
	repo := &MongoProviderRepo{coll: store.Collection("providers")}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create provider indexes", zap.Error(err))
	}
	return repo
}
