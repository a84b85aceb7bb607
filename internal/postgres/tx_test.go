package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-marketplace-orders/internal/postgres"
	"github.com/ariefcatur/go-marketplace-orders/internal/postgres/pgtest"
)

type txSuite struct {
	suite.Suite

	container testcontainers.Container
	pool      *pgxpool.Pool
}

func TestTxSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(txSuite))
}

func (suite *txSuite) SetupSuite() {
	ctx := suite.T().Context()

	var err error
	suite.container, suite.pool, err = pgtest.Start(ctx)
	suite.Require().NoError(err)
}

func (suite *txSuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *txSuite) TestWithTx() {
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		fn        func(tx pgx.Tx) error
		wantError error
		wantRows  int
	}{
		{
			name: "commit on success: ok",
			fn: func(tx pgx.Tx) error {
				_, err := tx.Exec(suite.T().Context(), `INSERT INTO users(email, role) VALUES ('a@example.com', 'admin')`)
				return err
			},
			wantRows: 1,
		},
		{
			name: "rollback on returned error: no rows",
			fn: func(tx pgx.Tx) error {
				if _, err := tx.Exec(suite.T().Context(), `INSERT INTO users(email, role) VALUES ('b@example.com', 'admin')`); err != nil {
					return err
				}
				return errBoom
			},
			wantError: errBoom,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()
			require.NoError(t, pgtest.Truncate(ctx, suite.pool))

			err := postgres.WithTx(ctx, suite.pool, tt.fn)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
			} else {
				require.NoError(t, err)
			}

			var n int
			require.NoError(t, suite.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n))
			assert.Equal(t, tt.wantRows, n)
		})
	}
}

func (suite *txSuite) TestWithTxPanicRollsBack() {
	t := suite.T()
	ctx := t.Context()
	require.NoError(t, pgtest.Truncate(ctx, suite.pool))

	assert.Panics(t, func() {
		_ = postgres.WithTx(ctx, suite.pool, func(tx pgx.Tx) error {
			_, _ = tx.Exec(ctx, `INSERT INTO users(email, role) VALUES ('p@example.com', 'admin')`)
			panic("kaboom")
		})
	})

	var n int
	require.NoError(t, suite.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Zero(t, n)
}

func (suite *txSuite) TestIsUniqueViolation() {
	t := suite.T()
	ctx := t.Context()
	require.NoError(t, pgtest.Truncate(ctx, suite.pool))

	_, err := suite.pool.Exec(ctx, `INSERT INTO users(email, role) VALUES ('dup@example.com', 'admin')`)
	require.NoError(t, err)
	_, err = suite.pool.Exec(ctx, `INSERT INTO users(email, role) VALUES ('dup@example.com', 'admin')`)
	require.Error(t, err)

	assert.True(t, postgres.IsUniqueViolation(err, ""))
	assert.True(t, postgres.IsUniqueViolation(err, "users_email_key"))
	assert.False(t, postgres.IsUniqueViolation(err, "orders_order_number_key"))
	assert.False(t, postgres.IsUniqueViolation(errors.New("plain"), ""))
}

func (suite *txSuite) TestMigrateIsIdempotent() {
	require.NoError(suite.T(), postgres.Migrate(suite.T().Context(), suite.pool, zap.NewNop()))
}
