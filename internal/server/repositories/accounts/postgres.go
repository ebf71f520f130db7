package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/graphpass/internal/common"
	"github.com/dmitrijs2005/graphpass/internal/dbx"
	"github.com/dmitrijs2005/graphpass/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the SQLSTATE of a unique constraint violation.
const uniqueViolation = "23505"

// PostgresRepository keeps accounts in PostgreSQL. Update locks the row with
// SELECT ... FOR UPDATE for the duration of the transaction.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) get(ctx context.Context, q dbx.DBTX, email string, forUpdate bool) (*models.Account, error) {
	query :=
		`SELECT id, email, firstname, user_images, graphical_password, status FROM users
		 WHERE email = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var rw row
	err := q.QueryRowContext(ctx, query, email).
		Scan(&rw.ID, &rw.Email, &rw.Firstname, &rw.UserImages, &rw.GraphicalPassword, &rw.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rw.account()
}

func (r *PostgresRepository) Get(ctx context.Context, email string) (*models.Account, error) {
	return r.get(ctx, r.db, email, false)
}

func (r *PostgresRepository) Create(ctx context.Context, acc *models.Account) error {
	rw, err := toRow(acc)
	if err != nil {
		return err
	}

	query :=
		`INSERT INTO users (email, firstname, user_images, graphical_password, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`

	err = r.db.QueryRowContext(ctx, query,
		rw.Email, rw.Firstname, rw.UserImages, rw.GraphicalPassword, rw.Status).Scan(&acc.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, acc.Email)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, email string, fn MutateFunc) (*models.Account, error) {
	var updated *models.Account

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		acc, err := r.get(ctx, tx, email, true)
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

		query :=
			`UPDATE users SET firstname = $2, user_images = $3, graphical_password = $4, status = $5
			 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, query,
			rw.ID, rw.Firstname, rw.UserImages, rw.GraphicalPassword, rw.Status); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		updated = acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
