// Package pgtest starts a throwaway Postgres for integration suites and
// seeds the rows those suites need.
package pgtest

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-marketplace-orders/internal/postgres"
)

// Start runs postgres:16-alpine, applies migrations and returns a pool.
func Start(ctx context.Context) (testcontainers.Container, *pgxpool.Pool, error) {
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("marketplace"),
		tcpostgres.WithUsername("app"),
		tcpostgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("tcpostgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, nil, fmt.Errorf("container.ConnectionString: %w", err)
	}

	pool, err := postgres.Connect(ctx, connStr, 32)
	if err != nil {
		return container, nil, fmt.Errorf("postgres.Connect: %w", err)
	}

	if err := postgres.Migrate(ctx, pool, zap.NewNop()); err != nil {
		pool.Close()
		return container, nil, fmt.Errorf("postgres.Migrate: %w", err)
	}

	return container, pool, nil
}

// Truncate removes every row written by tests, keeping seeded settings.
func Truncate(ctx context.Context, db postgres.DBTX) error {
	_, err := db.Exec(ctx, `TRUNCATE TABLE order_items, orders, provider_sets, sets, users CASCADE`)
	return err
}

func InsertUser(ctx context.Context, db postgres.DBTX, role string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, `
		INSERT INTO users(email, role, first_name, last_name, company_name)
		VALUES ($1, $2, $3, $4, $5) RETURNING user_id`,
		gofakeit.UUID()+"@example.com", role, gofakeit.FirstName(), gofakeit.LastName(), gofakeit.Company(),
	).Scan(&id)
	return id, err
}

func InsertSet(ctx context.Context, db postgres.DBTX) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, `
		INSERT INTO sets(name, description, base_price) VALUES ($1, $2, $3) RETURNING set_id`,
		gofakeit.ProductName(), gofakeit.Sentence(8), decimal.NewFromInt(int64(gofakeit.Number(1, 500))),
	).Scan(&id)
	return id, err
}

type Listing struct {
	ProviderID uuid.UUID
	SetID      uuid.UUID
	Price      decimal.Decimal
	Quantity   int
	Active     bool
	Status     string
}

func InsertListing(ctx context.Context, db postgres.DBTX, l Listing) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, `
		INSERT INTO provider_sets(provider_id, set_id, price, available_quantity, is_active, admin_status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING provider_set_id`,
		l.ProviderID, l.SetID, l.Price, l.Quantity, l.Active, l.Status,
	).Scan(&id)
	return id, err
}

func Quantity(ctx context.Context, db postgres.DBTX, listingID uuid.UUID) (int, error) {
	var q int
	err := db.QueryRow(ctx, `SELECT available_quantity FROM provider_sets WHERE provider_set_id=$1`, listingID).Scan(&q)
	return q, err
}

func CountOrders(ctx context.Context, db postgres.DBTX) (orders, lines int, err error) {
	err = db.QueryRow(ctx, `SELECT (SELECT COUNT(*) FROM orders), (SELECT COUNT(*) FROM order_items)`).Scan(&orders, &lines)
	return orders, lines, err
}
