package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pecunia/internal/server/repositories/onboarding"
	"github.com/dmitrijs2005/pecunia/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/pecunia/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	var _ RepositoryManager = NewPostgresRepositoryManager(db)
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager(db)

	assert.IsType(t, &users.PostgresRepository{}, m.Users())
	assert.IsType(t, &onboarding.PostgresRepository{}, m.Onboarding())
	assert.IsType(t, &refreshtokens.PostgresRepository{}, m.RefreshTokens())
}

func TestFactories_RefreshTokensOverride(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	override := refreshtokens.NewMemoryRepository()
	m := NewPostgresRepositoryManager(db, WithRefreshTokens(override))

	assert.Same(t, override, m.RefreshTokens())
}

func TestWithTx_Commit(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	m := NewPostgresRepositoryManager(db)
	err := m.WithTx(context.Background(), func(ctx context.Context, tx RepositoryManager) error {
		assert.NotSame(t, m, tx)
		// nested calls join the outer transaction
		return tx.WithTx(ctx, func(ctx context.Context, inner RepositoryManager) error {
			assert.Same(t, tx, inner)
			return nil
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_Rollback(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	m := NewPostgresRepositoryManager(db)
	boom := errors.New("boom")
	err := m.WithTx(context.Background(), func(ctx context.Context, tx RepositoryManager) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManager(db)
	if err := m.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManager(db)
	if err := m.RunMigrations(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}
