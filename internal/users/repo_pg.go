package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, account Account) (Account, error) {
	const query = `
INSERT INTO users (username, password_hash, name)
VALUES ($1, $2, $3)
RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query, account.Username, account.PasswordHash, account.Name).
		Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Account{}, ErrUsernameTaken
		}
		return Account{}, fmt.Errorf("insert user: %w", err)
	}
	return account, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (Account, error) {
	const query = `
SELECT id, username, password_hash, name, created_at
FROM users
WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PGRepo) GetByUsername(ctx context.Context, username string) (Account, error) {
	const query = `
SELECT id, username, password_hash, name, created_at
FROM users
WHERE username = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, username))
}

func (r *PGRepo) scanOne(row *sql.Row) (Account, error) {
	var account Account
	err := row.Scan(&account.ID, &account.Username, &account.PasswordHash, &account.Name, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return account, nil
}
