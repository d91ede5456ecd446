package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
	"github.com/kirillkom/hris-onboarding/internal/infrastructure/resilience"
)

func newStoreWithMock(t *testing.T, executor *resilience.Executor) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	store := New(db, executor)
	store.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return store, mock, func() { _ = db.Close() }
}

func TestEnsureSchemaTakesAdvisoryLock(t *testing.T) {
	store, mock, done := newStoreWithMock(t, nil)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(schemaLockID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv_entries").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetMissingKey(t *testing.T) {
	store, mock, done := newStoreWithMock(t, nil)
	defer done()

	mock.ExpectQuery("SELECT value").
		WithArgs("onboardingData").
		WillReturnError(sql.ErrNoRows)

	value, found, err := store.Get(context.Background(), "onboardingData")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found || value != nil {
		t.Fatalf("expected missing key, got %q", value)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetReturnsStoredValue(t *testing.T) {
	store, mock, done := newStoreWithMock(t, nil)
	defer done()

	mock.ExpectQuery("SELECT value").
		WithArgs("applicant_profile:APP-1").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"email":"a@b.com"}`)))

	value, found, err := store.Get(context.Background(), "applicant_profile:APP-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || string(value) != `{"email":"a@b.com"}` {
		t.Fatalf("unexpected value %q found=%v", value, found)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPutUpserts(t *testing.T) {
	store, mock, done := newStoreWithMock(t, nil)
	defer done()

	mock.ExpectExec("INSERT INTO kv_entries").
		WithArgs("onboardingData", `{}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Put(context.Background(), "onboardingData", []byte(`{}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPutRetriesTemporaryFailure(t *testing.T) {
	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
		BreakerEnabled:      false,
	})
	store, mock, done := newStoreWithMock(t, executor)
	defer done()

	mock.ExpectExec("INSERT INTO kv_entries").
		WithArgs("onboardingData", `{}`, sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "57P01", Message: "terminating connection due to administrator command"})
	mock.ExpectExec("INSERT INTO kv_entries").
		WithArgs("onboardingData", `{}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Put(context.Background(), "onboardingData", []byte(`{}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClassifyDBError(t *testing.T) {
	if err := classifyDBError("op", &pgconn.PgError{Code: "08006"}); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected connection failure to be temporary, got %v", err)
	}
	if err := classifyDBError("op", &pgconn.PgError{Code: "22P02"}); domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected invalid text representation to be permanent, got %v", err)
	}
	if err := classifyDBError("op", errors.New("boom")); domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected plain error to be permanent, got %v", err)
	}
}
