package server

import (
	"fmt"
	"os"
	"time"

	"github.com/dekarrin/sentree/internal/config"
	"github.com/dekarrin/sentree/server/dao"
	"github.com/dekarrin/sentree/server/dao/inmem"
	"github.com/dekarrin/sentree/server/dao/sqlite"
)

// Limits on the size of the token signing secret. HS512 uses at most 64 bytes
// of key.
const (
	MaxSecretSize = 64
	MinSecretSize = 32
)

const (
	// DefaultUnauthDelay is the wait before a 401, 403, or 405 response is
	// sent when Config does not set one.
	DefaultUnauthDelay = time.Second

	// devSecret is used when no secret is configured. It is public, so tokens
	// signed with it prove nothing.
	devSecret = "sentree-dev-secret-not-for-production-use"
)

// Config holds the settings a Server is created with.
type Config struct {
	// TokenSecret signs API tokens.
	TokenSecret []byte

	// DB is where parse records and accounts are kept.
	DB config.Store

	// UnauthDelay is how long to wait before telling a client it is not
	// logged in or not allowed to do something. Zero means
	// DefaultUnauthDelay; a negative value sends such responses immediately.
	UnauthDelay time.Duration

	// AdminUser and AdminPassword are the credentials of the account that can
	// delete stored parses. It is created, or has its password reset, every
	// time the server starts.
	AdminUser     string
	AdminPassword string
}

// unauthDelay gives the delay to hand to the API, with negative values
// clamped to zero.
func (cfg Config) unauthDelay() time.Duration {
	if cfg.UnauthDelay < 0 {
		return 0
	}
	return cfg.UnauthDelay
}

// FillDefaults returns a copy of cfg with unset values set to their defaults.
// AdminPassword has no default.
func (cfg Config) FillDefaults() Config {
	newCFG := cfg

	if newCFG.TokenSecret == nil {
		newCFG.TokenSecret = []byte(devSecret)
	}
	if newCFG.DB.Kind == "" {
		newCFG.DB = config.DefaultStore
	}
	if newCFG.UnauthDelay == 0 {
		newCFG.UnauthDelay = DefaultUnauthDelay
	}
	if newCFG.AdminUser == "" {
		newCFG.AdminUser = config.DefaultAdminUser
	}

	return newCFG
}

// Validate returns an error if cfg cannot be used to start a Server. Unset
// values are errors, so call it on the result of FillDefaults.
func (cfg Config) Validate() error {
	if len(cfg.TokenSecret) < MinSecretSize {
		return fmt.Errorf("token secret: must be at least %d bytes, but is %d", MinSecretSize, len(cfg.TokenSecret))
	}
	if len(cfg.TokenSecret) > MaxSecretSize {
		return fmt.Errorf("token secret: must be no more than %d bytes, but is %d", MaxSecretSize, len(cfg.TokenSecret))
	}
	if err := cfg.DB.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if cfg.AdminUser == "" {
		return fmt.Errorf("admin user: must not be empty")
	}
	if cfg.AdminPassword == "" {
		return fmt.Errorf("admin password: must not be empty")
	}

	return nil
}

// openStore opens the record store st describes. A SQLite directory is
// created if it does not yet exist.
func openStore(st config.Store) (dao.Store, error) {
	switch st.Kind {
	case config.StoreInMemory:
		return inmem.NewDatastore(), nil
	case config.StoreSQLite:
		if err := os.MkdirAll(st.Dir, 0770); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}

		store, err := sqlite.NewDatastore(st.Dir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("cannot open store %q", st.String())
	}
}

// PadSecret returns secret repeated as many times as it takes to be at least
// MinSecretSize bytes long. It is an error if secret is empty or if padding
// leaves it longer than MaxSecretSize.
func PadSecret(secret []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret is empty")
	}

	padded := secret
	for len(padded) < MinSecretSize {
		padded = append(padded[:len(padded):len(padded)], padded...)
	}

	if len(padded) > MaxSecretSize {
		return nil, fmt.Errorf("token secret is %d bytes, but it must be <= %d bytes", len(padded), MaxSecretSize)
	}
	return padded, nil
}
