package persistence_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/abarroteria/internal/application/store"
	"github.com/jhoicas/abarroteria/internal/domain"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
	"github.com/jhoicas/abarroteria/internal/infrastructure/persistence"
	"github.com/jhoicas/abarroteria/pkg/config"
	"github.com/jhoicas/abarroteria/pkg/logger"
)

func TestOpen_Memoria(t *testing.T) {
	repos, closeDB, err := persistence.Open(context.Background(), config.DBConfig{Driver: config.DriverMemory}, logger.Nop())
	require.NoError(t, err)
	defer closeDB()
	assert.NotNil(t, repos.Products)
	assert.NotNil(t, repos.Rotations)
}

func TestOpen_DriverDesconocido(t *testing.T) {
	_, closeDB, err := persistence.Open(context.Background(), config.DBConfig{Driver: "oracle"}, logger.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotNil(t, closeDB)
}

// Lo escrito en SQLite sobrevive a cerrar y reabrir la base, incluido el borrado en cascada.
func TestOpen_SQLitePersiste(t *testing.T) {
	ctx := context.Background()
	cfg := config.DBConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "bd", "tienda.db")}
	day := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	repos, closeDB, err := persistence.Open(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	s, err := store.Open(ctx, repos, logger.Nop())
	require.NoError(t, err)

	exp := day.AddDate(0, 0, 5)
	p, err := s.Catalog.Register(ctx, entity.NewProduct{Name: "Piña", Category: "Fruta", Price: decimal.RequireFromString("1.25"), Stock: 12, ExpirationDate: &exp})
	require.NoError(t, err)
	c, err := s.Clients.Register(ctx, entity.NewClient{Name: "Luis", Type: entity.ClientTypeWholesale})
	require.NoError(t, err)
	tx, err := s.Ledger.Register(ctx, entity.NewTransaction{
		ClientID: c.ID, Items: []entity.LineItem{{ProductID: p.ID, Quantity: 2, UnitPrice: p.Price}},
		Date: day, PaymentType: "tarjeta", Status: entity.StatusPending,
	})
	require.NoError(t, err)
	_, err = s.Movements.Register(ctx, entity.NewMovement{TransactionID: tx.ID, Date: day, Type: entity.MovementSale})
	require.NoError(t, err)
	require.NoError(t, s.Rotations.Record(ctx, entity.Rotation{ProductID: p.ID, Start: day, End: exp, Type: entity.RotationExpiration}))
	closeDB()

	repos, closeDB, err = persistence.Open(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	defer closeDB()
	s, err = store.Open(ctx, repos, logger.Nop())
	require.NoError(t, err)

	got, err := s.Catalog.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Piña", got.Name)
	assert.True(t, decimal.RequireFromString("1.25").Equal(got.Price))
	require.NotNil(t, got.ExpirationDate)
	assert.True(t, exp.Equal(*got.ExpirationDate))

	loaded, err := s.Ledger.Get(tx.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.5").Equal(loaded.Total))
	assert.Len(t, s.Movements.QueryByTransaction(tx.ID), 1)

	hist, err := s.Rotations.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, entity.RotationExpiration, hist[0].Type)

	require.NoError(t, s.Clients.Delete(ctx, c.ID))
	assert.Empty(t, s.Ledger.All())
	assert.Empty(t, s.Movements.All())
}
