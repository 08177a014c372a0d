package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/sentree/server/dao"
	"github.com/google/uuid"
)

type UsersDB struct {
	db *sql.DB
}

func (repo *UsersDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created INTEGER NOT NULL,
		last_logout_time INTEGER NOT NULL,
		last_login_time INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}

	return nil
}

func (repo *UsersDB) Create(ctx context.Context, user dao.User) (dao.User, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.User{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO users (id, username, password, created, last_logout_time, last_login_time) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	defer stmt.Close()

	now := time.Now()
	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		user.Username,
		user.Password,
		convertToDB_Time(now),
		convertToDB_Time(now),
		convertToDB_Time(time.Time{}),
	)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *UsersDB) Update(ctx context.Context, id uuid.UUID, user dao.User) (dao.User, error) {
	// deliberately not updating created
	res, err := repo.db.ExecContext(ctx, `UPDATE users SET id=?, username=?, password=?, last_logout_time=?, last_login_time=? WHERE id=?;`,
		convertToDB_UUID(user.ID),
		user.Username,
		user.Password,
		convertToDB_Time(user.LastLogoutTime),
		convertToDB_Time(user.LastLoginTime),
		convertToDB_UUID(id),
	)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.User{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, user.ID)
}

func (repo *UsersDB) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, username, password, created, last_logout_time, last_login_time FROM users WHERE username = ?;`,
		username,
	)
	return scanUser(row)
}

func (repo *UsersDB) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, username, password, created, last_logout_time, last_login_time FROM users WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	return scanUser(row)
}

func (repo *UsersDB) Close() error {
	return repo.db.Close()
}

func scanUser(row *sql.Row) (dao.User, error) {
	var user dao.User
	var id string
	var created int64
	var logout int64
	var login int64

	err := row.Scan(
		&id,
		&user.Username,
		&user.Password,
		&created,
		&logout,
		&login,
	)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}

	err = convertFromDB_UUID(id, &user.ID)
	if err != nil {
		return dao.User{}, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
	}
	err = convertFromDB_Time(created, &user.Created)
	if err != nil {
		return dao.User{}, fmt.Errorf("stored created time %d is invalid: %w", created, err)
	}
	err = convertFromDB_Time(logout, &user.LastLogoutTime)
	if err != nil {
		return dao.User{}, fmt.Errorf("stored last_logout_time %d is invalid: %w", logout, err)
	}
	err = convertFromDB_Time(login, &user.LastLoginTime)
	if err != nil {
		return dao.User{}, fmt.Errorf("stored last_login_time %d is invalid: %w", login, err)
	}

	return user, nil
}
