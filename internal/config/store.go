package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadStore is wrapped by every error that ParseStore returns.
var ErrBadStore = errors.New(`store must be "inmem" or "sqlite:DIR"`)

// StoreKind is a back end the parse server can keep records in.
type StoreKind string

const (
	StoreInMemory StoreKind = "inmem"
	StoreSQLite   StoreKind = "sqlite"
)

// Store says where the parse server keeps parse records and user accounts. It
// is written in config files and on the command line as "inmem" or
// "sqlite:DIR".
type Store struct {
	Kind StoreKind

	// Dir is the directory the SQLite database file is kept in.
	Dir string
}

// DefaultStore keeps everything in memory, so records are lost when the
// server stops.
var DefaultStore = Store{Kind: StoreInMemory}

// ParseStore parses the text form of a Store. The kind is matched without
// regard to case; the directory is kept as written apart from surrounding
// spaces.
func ParseStore(s string) (Store, error) {
	kind, dir, hasDir := strings.Cut(strings.TrimSpace(s), ":")
	dir = strings.TrimSpace(dir)

	switch StoreKind(strings.ToLower(strings.TrimSpace(kind))) {
	case StoreInMemory:
		if hasDir {
			return Store{}, fmt.Errorf("%q: in-memory store takes no directory: %w", s, ErrBadStore)
		}
		return Store{Kind: StoreInMemory}, nil
	case StoreSQLite:
		if dir == "" {
			return Store{}, fmt.Errorf("%q: sqlite store needs a directory: %w", s, ErrBadStore)
		}
		return Store{Kind: StoreSQLite, Dir: dir}, nil
	default:
		return Store{}, fmt.Errorf("%q: unknown store kind: %w", s, ErrBadStore)
	}
}

// String gives the Store in the form ParseStore reads.
func (st Store) String() string {
	if st.Kind == StoreSQLite {
		return string(st.Kind) + ":" + st.Dir
	}
	return string(st.Kind)
}

// Validate returns an error if the Store could not be opened as configured.
func (st Store) Validate() error {
	switch st.Kind {
	case StoreInMemory:
		return nil
	case StoreSQLite:
		if st.Dir == "" {
			return fmt.Errorf("sqlite store needs a directory")
		}
		return nil
	case "":
		return fmt.Errorf("no store kind set")
	default:
		return fmt.Errorf("unknown store kind %q", string(st.Kind))
	}
}

func (st *Store) UnmarshalText(text []byte) error {
	parsed, err := ParseStore(string(text))
	if err != nil {
		return err
	}
	*st = parsed
	return nil
}

func (st Store) MarshalText() ([]byte, error) {
	return []byte(st.String()), nil
}
