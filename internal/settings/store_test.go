package settings_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"

	"github.com/ariefcatur/go-marketplace-orders/internal/postgres/pgtest"
	"github.com/ariefcatur/go-marketplace-orders/internal/settings"
)

type storeSuite struct {
	suite.Suite

	container testcontainers.Container
	pool      *pgxpool.Pool
	store     *settings.Store
}

func TestStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(storeSuite))
}

func (suite *storeSuite) SetupSuite() {
	var err error
	suite.container, suite.pool, err = pgtest.Start(suite.T().Context())
	suite.Require().NoError(err)
	suite.store = &settings.Store{DB: suite.pool}
}

func (suite *storeSuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *storeSuite) TestSeededThreshold() {
	st, err := suite.store.Get(suite.T().Context(), settings.KeyLowStockThreshold)
	suite.Require().NoError(err)
	suite.Equal(settings.TypeNumber, st.Type)
	suite.Equal(5.0, st.Value)
	suite.NotNil(st.Description)
}

func (suite *storeSuite) TestPutUpsert() {
	ctx := suite.T().Context()

	st, err := suite.store.Put(ctx, "banner", settings.Input{
		Value:       json.RawMessage(`{"text":"hi","show":true}`),
		Type:        settings.TypeJSON,
		Description: lo.ToPtr("homepage banner"),
	})
	suite.Require().NoError(err)
	suite.Equal(map[string]any{"text": "hi", "show": true}, st.Value)

	st, err = suite.store.Put(ctx, "banner", settings.Input{Value: json.RawMessage(`false`), Type: settings.TypeBoolean})
	suite.Require().NoError(err)
	suite.Equal(false, st.Value)
	suite.Equal("homepage banner", lo.FromPtr(st.Description))

	all, err := suite.store.All(ctx)
	suite.Require().NoError(err)
	keys := lo.Map(all, func(s settings.Setting, _ int) string { return s.Key })
	suite.Contains(keys, "banner")
	suite.Contains(keys, settings.KeyLowStockThreshold)

	_, err = suite.store.Get(ctx, "nope")
	suite.ErrorIs(err, settings.ErrNotFound)
}
