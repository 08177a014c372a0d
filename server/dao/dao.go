// Package dao provides data access objects for use in the sentree server.
package dao

import (
	"context"
	"time"

	"github.com/dekarrin/sentree"
	"github.com/dekarrin/sentree/internal/parse"
	"github.com/dekarrin/sentree/internal/render"
	"github.com/google/uuid"
)

// Store holds all the repositories.
type Store interface {
	Users() UserRepository
	Parses() ParseRepository
	Close() error
}

type UserRepository interface {

	// Create creates a new User. All attributes except for auto-generated
	// fields are taken from the provided User.
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Update(ctx context.Context, id uuid.UUID, user User) (User, error)
	Close() error
}

// ParseRepository stores the outcome of every sentence parsed through the
// server.
type ParseRepository interface {

	// Create stores a new ParseRecord. The ID and Created fields are
	// generated; all others are taken from the provided record.
	Create(ctx context.Context, rec ParseRecord) (ParseRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (ParseRecord, error)

	// GetAll returns every record, oldest first.
	GetAll(ctx context.Context) ([]ParseRecord, error)
	Delete(ctx context.Context, id uuid.UUID) (ParseRecord, error)
	Close() error
}

// User is an account that can log in to the server. Password is the base64
// encoding of a bcrypt hash.
type User struct {
	ID             uuid.UUID
	Username       string
	Password       string
	Created        time.Time
	LastLogoutTime time.Time
	LastLoginTime  time.Time
}

// ParseRecord is one parsed sentence as it is kept in persistence.
type ParseRecord struct {
	ID       uuid.UUID
	Sentence string
	Mode     parse.Mode
	Style    render.Style
	Status   sentree.Status
	End      int
	Rendered string

	// Tree is nil when no derivation was selected.
	Tree    *parse.Node
	Created time.Time
}
