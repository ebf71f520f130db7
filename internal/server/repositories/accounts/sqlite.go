package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/graphpass/internal/common"
	"github.com/dmitrijs2005/graphpass/internal/dbx"
	"github.com/dmitrijs2005/graphpass/internal/server/models"
)

// SQLiteRepository keeps accounts in an SQLite file. The pool must be limited
// to a single connection (db.SetMaxOpenConns(1)): transactions then run one
// at a time, which is what serializes Update.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) get(ctx context.Context, q dbx.DBTX, email string) (*models.Account, error) {
	query := `select id, email, firstname, user_images, graphical_password, status from users where email = ?`

	var rw row
	err := q.QueryRowContext(ctx, query, email).
		Scan(&rw.ID, &rw.Email, &rw.Firstname, &rw.UserImages, &rw.GraphicalPassword, &rw.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select user: %w", err)
	}

	return rw.account()
}

func (r *SQLiteRepository) Get(ctx context.Context, email string) (*models.Account, error) {
	return r.get(ctx, r.db, email)
}

// Create relies on ON CONFLICT DO NOTHING: zero affected rows means the
// email already exists.
func (r *SQLiteRepository) Create(ctx context.Context, acc *models.Account) error {
	rw, err := toRow(acc)
	if err != nil {
		return err
	}

	query := `insert into users (email, firstname, user_images, graphical_password, status)
			values (?, ?, ?, ?, ?)
			on conflict(email) do nothing`

	res, err := r.db.ExecContext(ctx, query,
		rw.Email, rw.Firstname, rw.UserImages, rw.GraphicalPassword, rw.Status)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, acc.Email)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted id: %w", err)
	}
	acc.ID = id

	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, email string, fn MutateFunc) (*models.Account, error) {
	var updated *models.Account

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		acc, err := r.get(ctx, tx, email)
		if err != nil {
			return err
		}
		if err := apply(acc, fn); err != nil {
			return err
		}

		rw, err := toRow(acc)
		if err != nil {
			return err
		}

		query := `update users set firstname = ?, user_images = ?, graphical_password = ?, status = ? where id = ?`
		res, err := tx.ExecContext(ctx, query,
			rw.Firstname, rw.UserImages, rw.GraphicalPassword, rw.Status, rw.ID)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		ra, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if ra != 1 {
			return fmt.Errorf("wrong rows affected count: %d", ra)
		}

		updated = acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
