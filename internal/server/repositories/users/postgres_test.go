package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/dmitrijs2005/pecunia/internal/server/models"
	"github.com/google/go-cmp/cmp"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	selectByEmailQ = `(?s)^SELECT\s+id,\s*name,\s*email,\s*password_hash,\s*onboarding_complete,\s*token_version,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	insertQ        = `(?s)^INSERT\s+INTO\s+users\s*\(id,.*\)\s*VALUES\s*\(\$1,.*\$7\)\s*ON\s+CONFLICT\s+DO\s+NOTHING\s*$`
	updateQ        = `(?s)^UPDATE\s+users\s+SET\s+name\s*=\s*\$2,\s*onboarding_complete\s*=\s*\$3,\s*token_version\s*=\s*\$4\s+WHERE\s+id\s*=\s*\$1\s*$`
	markQ          = `(?s)^UPDATE\s+users\s+SET\s+onboarding_complete\s*=\s*true\s+WHERE\s+id\s*=\s*\$1\s+AND\s+NOT\s+onboarding_complete\s*$`
	flagQ          = `(?s)^SELECT\s+onboarding_complete\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
)

func sampleUser() *models.User {
	return &models.User{
		ID:           "6f1c0f0e-0000-5000-8000-000000000001",
		Name:         "Jane Smith",
		Email:        "jane@example.com",
		PasswordHash: "$2a$11$hash",
		TokenVersion: 1,
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestGetUserByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	want := sampleUser()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "onboarding_complete", "token_version", "created_at"}).
		AddRow(want.ID, want.Name, want.Email, want.PasswordHash, want.OnboardingComplete, want.TokenVersion, want.CreatedAt)
	mock.ExpectQuery(selectByEmailQ).
		WithArgs("jane@example.com").
		WillReturnRows(rows)

	got, err := repo.GetUserByEmail(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("user mismatch (-want +got):\n%s", diff)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByEmailQ).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetUserByEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByEmailQ).
		WithArgs("jane@example.com").
		WillReturnError(errors.New("db err"))

	_, err := repo.GetUserByEmail(context.Background(), "jane@example.com")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCreateIfAbsent_Inserted(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	mock.ExpectExec(insertQ).
		WithArgs(u.ID, u.Name, u.Email, u.PasswordHash, false, int64(1), u.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.CreateIfAbsent(context.Background(), u); err != nil {
		t.Fatalf("CreateIfAbsent error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateIfAbsent_Conflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CreateIfAbsent(context.Background(), sampleUser())
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreateIfAbsent_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).
		WillReturnError(errors.New("db down"))

	err := repo.CreateIfAbsent(context.Background(), sampleUser())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	u.TokenVersion = 2
	mock.ExpectExec(updateQ).
		WithArgs(u.ID, u.Name, false, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), u); err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updateQ).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Update(context.Background(), sampleUser()); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestMarkOnboardingComplete_Flipped(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(markQ).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkOnboardingComplete(context.Background(), "u-1"); err != nil {
		t.Fatalf("MarkOnboardingComplete error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkOnboardingComplete_AlreadySet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(markQ).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(flagQ).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"onboarding_complete"}).AddRow(true))

	err := repo.MarkOnboardingComplete(context.Background(), "u-1")
	if !errors.Is(err, common.ErrOnboardingCompleted) {
		t.Fatalf("want common.ErrOnboardingCompleted, got %v", err)
	}
}

func TestMarkOnboardingComplete_MissingAccount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(markQ).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(flagQ).
		WithArgs("u-1").
		WillReturnError(sql.ErrNoRows)

	err := repo.MarkOnboardingComplete(context.Background(), "u-1")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
