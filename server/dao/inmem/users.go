package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dekarrin/sentree/server/dao"
	"github.com/google/uuid"
)

func NewUsersRepository() *InMemoryUsersRepository {
	return &InMemoryUsersRepository{
		users:           make(map[uuid.UUID]dao.User),
		byUsernameIndex: make(map[string]uuid.UUID),
	}
}

type InMemoryUsersRepository struct {
	mtx             sync.RWMutex
	users           map[uuid.UUID]dao.User
	byUsernameIndex map[string]uuid.UUID
}

func (imur *InMemoryUsersRepository) Close() error {
	return nil
}

func (imur *InMemoryUsersRepository) Create(ctx context.Context, user dao.User) (dao.User, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.User{}, fmt.Errorf("could not generate ID: %w", err)
	}

	imur.mtx.Lock()
	defer imur.mtx.Unlock()

	if _, ok := imur.byUsernameIndex[user.Username]; ok {
		return dao.User{}, dao.ErrConstraintViolation
	}

	now := time.Now()
	user.ID = newUUID
	user.Created = now
	user.LastLogoutTime = now

	imur.users[user.ID] = user
	imur.byUsernameIndex[user.Username] = user.ID

	return user, nil
}

func (imur *InMemoryUsersRepository) Update(ctx context.Context, id uuid.UUID, user dao.User) (dao.User, error) {
	imur.mtx.Lock()
	defer imur.mtx.Unlock()

	existing, ok := imur.users[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}

	// check for conflicts on this table only
	if user.Username != existing.Username {
		if _, ok := imur.byUsernameIndex[user.Username]; ok {
			return dao.User{}, dao.ErrConstraintViolation
		}
	}
	if user.ID != id {
		if _, ok := imur.users[user.ID]; ok {
			return dao.User{}, dao.ErrConstraintViolation
		}
	}

	// created is never updated
	user.Created = existing.Created

	delete(imur.byUsernameIndex, existing.Username)
	delete(imur.users, id)
	imur.users[user.ID] = user
	imur.byUsernameIndex[user.Username] = user.ID

	return user, nil
}

func (imur *InMemoryUsersRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	imur.mtx.RLock()
	defer imur.mtx.RUnlock()

	user, ok := imur.users[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}

	return user, nil
}

func (imur *InMemoryUsersRepository) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	imur.mtx.RLock()
	defer imur.mtx.RUnlock()

	userID, ok := imur.byUsernameIndex[username]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}

	return imur.users[userID], nil
}
