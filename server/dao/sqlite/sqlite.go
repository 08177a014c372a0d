// Package sqlite provides a dao.Store that keeps its data in a SQLite database
// file inside a data directory.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dekarrin/sentree/server/dao"
	"modernc.org/sqlite"
)

// DBFilename is the name of the database file created in the data directory.
const DBFilename = "data.db"

type store struct {
	dbFilename string
	db         *sql.DB

	users  *UsersDB
	parses *ParsesDB
}

// NewDatastore opens (creating if needed) the database in storageDir and
// makes sure every table exists.
func NewDatastore(storageDir string) (dao.Store, error) {
	st := &store{
		dbFilename: DBFilename,
	}

	fileName := filepath.Join(storageDir, st.dbFilename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st.users = &UsersDB{db: st.db}
	if err := st.users.init(); err != nil {
		st.db.Close()
		return nil, fmt.Errorf("init users table: %w", err)
	}

	st.parses = &ParsesDB{db: st.db}
	if err := st.parses.init(); err != nil {
		st.db.Close()
		return nil, fmt.Errorf("init parses table: %w", err)
	}

	return st, nil
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) Parses() dao.ParseRepository {
	return s.parses
}

func (s *store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%s: %w", s.dbFilename, err)
	}
	return nil
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return dao.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}
