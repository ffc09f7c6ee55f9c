package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateReturnsID(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", "hash", "Alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), created))

	account, err := repo.Create(context.Background(), Account{Username: "alice", PasswordHash: "hash", Name: "Alice"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if account.ID != 1 || !account.CreatedAt.Equal(created) {
		t.Fatalf("unexpected account %+v", account)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", "hash", "Alice").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), Account{Username: "alice", PasswordHash: "hash", Name: "Alice"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestPGRepoGetByUsername(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("WHERE username = \\$1").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "name", "created_at"}).
			AddRow(int64(3), "alice", "hash", "Alice", time.Now()))

	account, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if account.ID != 3 || account.PasswordHash != "hash" {
		t.Fatalf("unexpected account %+v", account)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM users").WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
