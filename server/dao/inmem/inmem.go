// Package inmem provides an in-memory dao.Store. Nothing stored in it
// survives the process.
package inmem

import (
	"github.com/dekarrin/sentree/server/dao"
)

type store struct {
	users  *InMemoryUsersRepository
	parses *InMemoryParsesRepository
}

func NewDatastore() dao.Store {
	return &store{
		users:  NewUsersRepository(),
		parses: NewParsesRepository(),
	}
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) Parses() dao.ParseRepository {
	return s.parses
}

func (s *store) Close() error {
	return nil
}
