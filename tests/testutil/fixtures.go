package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/infrastructure/postgres"
	"github.com/iho/cantina/internal/infrastructure/postgres/generated"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB connects to DATABASE_URL and migrates it. The test is skipped
// when DATABASE_URL is not set.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := postgres.RunMigrations(dbURL, migrationsPath(t), zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("failed to ping test database: %v", err)
	}

	return &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
}

// migrationsPath walks up from the working directory to the module root.
func migrationsPath(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "migrations")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("module root not found")
		}
		dir = parent
	}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `TRUNCATE TABLE outbox_events, entries, accounts`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateTestAccount creates an account with a zero balance and the default limit.
func (db *TestDB) CreateTestAccount(ctx context.Context, fullName string) *domain.Account {
	db.t.Helper()
	return db.CreateTestAccountWithBalance(ctx, fullName, domain.Zero, domain.DefaultNegativeLimit)
}

// CreateTestAccountWithBalance inserts an account directly, bypassing the ledger.
func (db *TestDB) CreateTestAccountWithBalance(ctx context.Context, fullName string, balance, negativeLimit domain.Money) *domain.Account {
	db.t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	account := &domain.Account{
		ID:            GenerateID(),
		FullName:      fullName,
		BirthDate:     "01/02/2010",
		Phone:         "11987654321",
		Balance:       balance,
		NegativeLimit: negativeLimit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	ts := pgtype.Timestamptz{Time: now, Valid: true}
	err := db.Queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:                 account.ID,
		FullName:           account.FullName,
		BirthDate:          account.BirthDate,
		Phone:              account.Phone,
		BalanceCents:       account.Balance.CentsValue(),
		NegativeLimitCents: account.NegativeLimit.CentsValue(),
		Version:            0,
		CreatedAt:          ts,
		UpdatedAt:          ts,
	})
	if err != nil {
		db.t.Fatalf("failed to create test account: %v", err)
	}

	return account
}

// CountEntries returns how many entries exist for an account ID.
func (db *TestDB) CountEntries(ctx context.Context, accountID string) int {
	db.t.Helper()

	var n int
	if err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM entries WHERE account_id = $1`, accountID).Scan(&n); err != nil {
		db.t.Fatalf("failed to count entries: %v", err)
	}
	return n
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
