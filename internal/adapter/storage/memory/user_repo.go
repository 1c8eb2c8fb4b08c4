package memory

import (
	"context"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	store *Store
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(store *Store) *UserRepo {
	return &UserRepo{store: store}
}

// Create stages a new user. The email key stays locked until the
// transaction ends so two registrations cannot claim the same address.
func (r *UserRepo) Create(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	if err := t.lock(ctx, userEmailKey(u.Email)); err != nil {
		return err
	}

	r.store.mu.RLock()
	_, taken := r.store.emails[u.Email]
	r.store.mu.RUnlock()
	if taken {
		return apperror.ErrEmailExists()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, staged := range t.users {
		if staged.Email == u.Email {
			return apperror.ErrEmailExists()
		}
	}
	t.users[u.ID] = *u
	return nil
}

// GetByID fetches a committed user by UUID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetByEmail fetches a committed user by login email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	id, ok := r.store.emails[email]
	if !ok {
		return nil, nil
	}
	u := r.store.users[id]
	return &u, nil
}
