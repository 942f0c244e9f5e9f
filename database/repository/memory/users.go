// Package memoryRepo keeps every repository in process memory. It backs
// DATABASE_URL=memory:// and the service tests.
package memoryRepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hustlr/database"
	"hustlr/models"
)

type UserRepo struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]models.User)}
}

func cloneUser(u models.User) *models.User {
	u.Addresses = append([]models.Address(nil), u.Addresses...)
	if u.Coords != nil {
		c := *u.Coords
		c.Coordinates = append([]float64(nil), c.Coordinates...)
		u.Coords = &c
	}
	return &u
}

func (r *UserRepo) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[phone]
	if !ok {
		return nil, database.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Phone]; exists {
		return fmt.Errorf("user with phone %s already exists", user.Phone)
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.Phone] = *cloneUser(*user)
	return nil
}

func (r *UserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Phone]; !exists {
		return fmt.Errorf("user with phone %s: %w", user.Phone, database.ErrNotFound)
	}
	user.UpdatedAt = time.Now()
	r.users[user.Phone] = *cloneUser(*user)
	return nil
}
