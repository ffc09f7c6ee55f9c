package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var dsnSeq atomic.Int64

// withMockDriver routes openDB to a fresh sqlmock connection that expects pings.
func withMockDriver(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	dsn := fmt.Sprintf("mock-%d", dsnSeq.Add(1))
	mockDB, mock, err := sqlmock.NewWithDSN(dsn, sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = mockDB.Close() })

	prev := openDB
	openDB = func(name, _ string) (*sql.DB, error) {
		return sql.Open("sqlmock", dsn)
	}
	t.Cleanup(func() { openDB = prev })
	return mock
}

func resetSingleton() {
	singletonMu.Lock()
	singletonDB = nil
	singletonMu.Unlock()
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultServerOptions()); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestGetSingletonReturnsSamePointer(t *testing.T) {
	mock := withMockDriver(t)
	mock.ExpectPing()
	resetSingleton()
	t.Cleanup(resetSingleton)

	db1, err := GetSingleton(context.Background(), "ignored", DefaultLambdaOptions())
	if err != nil {
		t.Fatalf("GetSingleton first: %v", err)
	}
	db2, err := GetSingleton(context.Background(), "ignored", DefaultLambdaOptions())
	if err != nil {
		t.Fatalf("GetSingleton second: %v", err)
	}
	if db1 != db2 {
		t.Fatalf("expected singleton pointers to match")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetSingletonRetriesAfterFailure(t *testing.T) {
	mock := withMockDriver(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing()
	resetSingleton()
	t.Cleanup(resetSingleton)

	if _, err := GetSingleton(context.Background(), "ignored", DefaultLambdaOptions()); err == nil {
		t.Fatalf("expected first call to fail")
	}
	db, err := GetSingleton(context.Background(), "ignored", DefaultLambdaOptions())
	if err != nil {
		t.Fatalf("expected second call to succeed: %v", err)
	}
	if db == nil {
		t.Fatalf("expected db after retry")
	}
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	opts := OptionsFromEnv(DefaultServerOptions())
	want := Options{
		MaxOpenConns:    7,
		MaxIdleConns:    3,
		ConnMaxLifetime: 20 * time.Minute,
		ConnMaxIdleTime: 45 * time.Second,
		PingTimeout:     time.Second,
	}
	if opts != want {
		t.Fatalf("unexpected options %+v", opts)
	}

	mock := withMockDriver(t)
	mock.ExpectPing()
	db, err := Connect(context.Background(), "ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if db.Stats().MaxOpenConnections != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", db.Stats().MaxOpenConnections)
	}
}

func TestOptionsFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	t.Setenv("DB_PING_TIMEOUT", "soon")
	opts := OptionsFromEnv(DefaultMigrateOptions())
	if opts != DefaultMigrateOptions() {
		t.Fatalf("invalid values should keep defaults, got %+v", opts)
	}
}
