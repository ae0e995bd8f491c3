package service_test

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kayung-developer/NovaTrade/internal/marketdata"
	"github.com/kayung-developer/NovaTrade/internal/models"
	"github.com/kayung-developer/NovaTrade/internal/service"
)

type testEnv struct {
	db       *gorm.DB
	feed     *marketdata.Feed
	locks    *service.AccountLocks
	accounts service.AccountsService
	trading  service.TradingService
	payments service.PaymentsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Holding{}, &models.Transaction{}, &models.PaymentIntent{}))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	feed := marketdata.NewFeed(marketdata.DefaultCatalog(), rand.NewSource(1))
	locks := service.NewAccountLocks()

	return &testEnv{
		db:       db,
		feed:     feed,
		locks:    locks,
		accounts: service.NewAccountsService(db, feed, locks, decimal.NewFromInt(10000), log),
		trading:  service.NewTradingService(db, feed, locks, service.FillAtLimit, log),
		payments: service.NewPaymentsService(db, locks, decimal.NewFromFloat(1.00), log),
	}
}

func (e *testEnv) newAccount(t *testing.T) *models.Account {
	t.Helper()

	account, err := e.accounts.GetOrCreateAccount(context.Background(), service.Identity{
		Key:      uuid.NewString(),
		Email:    "trader@example.com",
		FullName: "Test Trader",
	})
	require.NoError(t, err)
	return account
}

func limit(value float64) *decimal.Decimal {
	d := decimal.NewFromFloat(value)
	return &d
}
