package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/sentree/server/dao"
	"github.com/google/uuid"
)

type ParsesDB struct {
	db *sql.DB
}

func (repo *ParsesDB) init() error {
	// seq keeps insertion order for records created in the same second.
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS parses (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		sentence TEXT NOT NULL,
		mode TEXT NOT NULL,
		style TEXT NOT NULL,
		status TEXT NOT NULL,
		end_pos INTEGER NOT NULL,
		rendered TEXT NOT NULL,
		tree TEXT NOT NULL,
		created INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *ParsesDB) Create(ctx context.Context, rec dao.ParseRecord) (dao.ParseRecord, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.ParseRecord{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO parses (id, sentence, mode, style, status, end_pos, rendered, tree, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.ParseRecord{}, wrapDBError(err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		rec.Sentence,
		convertToDB_Mode(rec.Mode),
		convertToDB_Style(rec.Style),
		convertToDB_Status(rec.Status),
		rec.End,
		rec.Rendered,
		convertToDB_Tree(rec.Tree),
		convertToDB_Time(time.Now()),
	)
	if err != nil {
		return dao.ParseRecord{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *ParsesDB) GetAll(ctx context.Context) ([]dao.ParseRecord, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, sentence, mode, style, status, end_pos, rendered, tree, created FROM parses ORDER BY seq;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.ParseRecord

	for rows.Next() {
		rec, err := scanParseRecord(rows)
		if err != nil {
			return all, err
		}
		all = append(all, rec)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *ParsesDB) GetByID(ctx context.Context, id uuid.UUID) (dao.ParseRecord, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, sentence, mode, style, status, end_pos, rendered, tree, created FROM parses WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	return scanParseRecord(row)
}

func (repo *ParsesDB) Delete(ctx context.Context, id uuid.UUID) (dao.ParseRecord, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM parses WHERE id = ?`, convertToDB_UUID(id))
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}

	return curVal, nil
}

func (repo *ParsesDB) Close() error {
	return repo.db.Close()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanParseRecord(row scanner) (dao.ParseRecord, error) {
	var rec dao.ParseRecord
	var id string
	var mode string
	var style string
	var status string
	var tree string
	var created int64

	err := row.Scan(
		&id,
		&rec.Sentence,
		&mode,
		&style,
		&status,
		&rec.End,
		&rec.Rendered,
		&tree,
		&created,
	)
	if err != nil {
		return dao.ParseRecord{}, wrapDBError(err)
	}

	err = convertFromDB_UUID(id, &rec.ID)
	if err != nil {
		return dao.ParseRecord{}, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
	}
	err = convertFromDB_Mode(mode, &rec.Mode)
	if err != nil {
		return dao.ParseRecord{}, fmt.Errorf("stored mode %q is invalid: %w", mode, err)
	}
	err = convertFromDB_Style(style, &rec.Style)
	if err != nil {
		return dao.ParseRecord{}, fmt.Errorf("stored style %q is invalid: %w", style, err)
	}
	err = convertFromDB_Status(status, &rec.Status)
	if err != nil {
		return dao.ParseRecord{}, fmt.Errorf("stored status %q is invalid: %w", status, err)
	}
	err = convertFromDB_Tree(tree, &rec.Tree)
	if err != nil {
		return dao.ParseRecord{}, fmt.Errorf("stored tree is invalid: %w", err)
	}
	err = convertFromDB_Time(created, &rec.Created)
	if err != nil {
		return dao.ParseRecord{}, fmt.Errorf("stored created time %d is invalid: %w", created, err)
	}

	return rec, nil
}
