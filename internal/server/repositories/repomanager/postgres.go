// Package repomanager provides PostgreSQL and in-memory RepositoryManager
// implementations, wiring together repository constructors, transactions
// and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/pecunia/internal/dbx"
	"github.com/dmitrijs2005/pecunia/internal/server/migrations"
	"github.com/dmitrijs2005/pecunia/internal/server/repositories/onboarding"
	"github.com/dmitrijs2005/pecunia/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/pecunia/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories bound either
// to the connection pool or, inside WithTx, to a single transaction.
type PostgresRepositoryManager struct {
	db   *sql.DB
	conn dbx.DBTX
	inTx bool
	opts options
}

// Open connects to the database at dsn using the pgx driver and checks the
// connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(db *sql.DB, opts ...Option) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{db: db, conn: db, opts: buildOptions(opts)}
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return users.NewPostgresRepository(m.conn)
}

func (m *PostgresRepositoryManager) Onboarding() onboarding.Repository {
	return onboarding.NewPostgresRepository(m.conn)
}

func (m *PostgresRepositoryManager) RefreshTokens() refreshtokens.Repository {
	if m.opts.refreshTokens != nil {
		return m.opts.refreshTokens
	}
	return refreshtokens.NewPostgresRepository(m.conn)
}

// WithTx runs fn in a transaction. Nested calls join the outer transaction.
func (m *PostgresRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	if m.inTx {
		return fn(ctx, m)
	}
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &PostgresRepositoryManager{db: m.db, conn: tx, inTx: true, opts: m.opts})
	})
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and applies them.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
