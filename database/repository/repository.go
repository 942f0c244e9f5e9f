package repository

import (
	"hustlr/database"
	bookingRepo "hustlr/database/repository/booking"
	conversationRepo "hustlr/database/repository/conversation"
	memoryRepo "hustlr/database/repository/memory"
	providerRepo "hustlr/database/repository/provider"
	userRepo "hustlr/database/repository/user"

	"go.uber.org/zap"
)

// Re-export the repository interfaces.
type (
	UserRepository         = userRepo.UserRepository
	ProviderRepository     = providerRepo.ProviderRepository
	BookingRepository      = bookingRepo.BookingRepository
	ConversationRepository = conversationRepo.ConversationRepository
)

// Repositories groups the collection accessors the services depend on.
type Repositories struct {
	Users         UserRepository
	Providers     ProviderRepository
	Bookings      BookingRepository
	Conversations ConversationRepository
}

// NewMongoRepositories builds every repository on the given store and
// ensures their indexes.
func NewMongoRepositories(store *database.Store, logger *zap.Logger) *Repositories {
	return &Repositories{
		Users:         userRepo.NewMongoUserRepo(store, logger),
		Providers:     providerRepo.NewMongoProviderRepo(store, logger),
		Bookings:      bookingRepo.NewMongoBookingRepo(store, logger),
		Conversations: conversationRepo.NewMongoConversationRepo(store, logger),
	}
}

// NewMemoryRepositories builds process-local repositories.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Users:         memoryRepo.NewUserRepo(),
		Providers:     memoryRepo.NewProviderRepo(),
		Bookings:      memoryRepo.NewBookingRepo(),
		Conversations: memoryRepo.NewConversationRepo(),
	}
}
