package memory

import (
	"context"
	"sync"
	"time"

	"bookmarket/internal/domain/user"
	"bookmarket/internal/infra"

	"github.com/google/uuid"
)

type UserRepository struct {
	mu      sync.RWMutex
	table   map[uuid.UUID]*user.User
	byEmail map[user.Email]uuid.UUID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		table:   make(map[uuid.UUID]*user.User),
		byEmail: make(map[user.Email]uuid.UUID),
	}
}

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[u.Email()]; taken {
		return infra.NewRepoErr(infra.KindDuplicateKey, "email already registered")
	}
	r.table[u.ID()] = u
	r.byEmail[u.Email()] = u.ID()
	return nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email user.Email) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "user not found")
	}
	return r.table[id], nil
}

func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.table[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "user not found")
	}
	return u, nil
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.table[id]
	if !ok {
		return infra.NewRepoErr(infra.KindNotFound, "user not found")
	}
	r.table[id] = user.ReconstructUser(
		u.ID(), u.Email(), u.PasswordHash(), u.Role(), u.DisplayName(),
		&at, u.IsActive(), u.CreatedAt(), at,
	)
	return nil
}
