package repository_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kayung-developer/NovaTrade/internal/models"
	"github.com/kayung-developer/NovaTrade/internal/repository"
	"github.com/kayung-developer/NovaTrade/lib/errs"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(&models.Account{}, &models.Holding{}, &models.Transaction{}, &models.PaymentIntent{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func newTestAccount(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()

	account := &models.Account{
		IdentityKey: uuid.NewString(),
		Email:       "trader@example.com",
		FullName:    "Test Trader",
		IsActive:    true,
		Balance:     decimal.NewFromInt(10000),
	}
	if err := repository.NewAccountsRepository(db).Create(account); err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	return account
}

func TestAccountsRepository(t *testing.T) {
	db := setupTestDB(t)
	accountsRepo := repository.NewAccountsRepository(db)

	t.Run("create_and_get", func(t *testing.T) {
		account := newTestAccount(t, db)

		found, err := accountsRepo.GetByIdentityKey(account.IdentityKey)
		if err != nil {
			t.Fatalf("GetByIdentityKey failed after create: %v", err)
		}

		if found.Email != "trader@example.com" {
			t.Errorf("expected email %s, got %s", "trader@example.com", found.Email)
		}
		if !found.Balance.Equal(decimal.NewFromInt(10000)) {
			t.Errorf("expected balance 10000, got %s", found.Balance)
		}
	})

	t.Run("duplicate_identity_key", func(t *testing.T) {
		account := newTestAccount(t, db)

		err := accountsRepo.Create(&models.Account{
			IdentityKey: account.IdentityKey,
			Balance:     decimal.NewFromInt(10000),
		})

		if err == nil {
			t.Fatalf("expected an error for duplicate account creation, but got nil")
		}

		if !errors.Is(err, errs.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, but got %v", err)
		}
	})

	t.Run("get_missing", func(t *testing.T) {
		if _, err := accountsRepo.GetByIdentityKey("no-such-identity"); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestHoldingsRepository(t *testing.T) {
	db := setupTestDB(t)
	holdingsRepo := repository.NewHoldingsRepository(db)
	account := newTestAccount(t, db)

	t.Run("add_get_update", func(t *testing.T) {
		holding := &models.Holding{
			AccountID:   account.ID,
			Symbol:      "BTCUSD",
			Quantity:    decimal.NewFromInt(2),
			AvgBuyPrice: decimal.NewFromInt(60000),
		}
		if err := holdingsRepo.Add(holding); err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		found, err := holdingsRepo.Get(account.ID, "BTCUSD")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !found.Quantity.Equal(decimal.NewFromInt(2)) {
			t.Errorf("expected quantity 2, got %s", found.Quantity)
		}

		found.Quantity = decimal.NewFromInt(3)
		if err := holdingsRepo.Update(found); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		updated, _ := holdingsRepo.Get(account.ID, "BTCUSD")
		if !updated.Quantity.Equal(decimal.NewFromInt(3)) {
			t.Errorf("expected quantity 3 after update, got %s", updated.Quantity)
		}
	})

	t.Run("duplicate_symbol", func(t *testing.T) {
		err := holdingsRepo.Add(&models.Holding{
			AccountID:   account.ID,
			Symbol:      "BTCUSD",
			Quantity:    decimal.NewFromInt(1),
			AvgBuyPrice: decimal.NewFromInt(60000),
		})
		if !errors.Is(err, errs.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := holdingsRepo.Delete(account.ID, "BTCUSD"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		if _, err := holdingsRepo.Get(account.ID, "BTCUSD"); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}

		if err := holdingsRepo.Delete(account.ID, "BTCUSD"); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound for double delete, got %v", err)
		}
	})
}

func TestTransactionsRepository(t *testing.T) {
	db := setupTestDB(t)
	txRepo := repository.NewTransactionsRepository(db)
	account := newTestAccount(t, db)

	symbols := []string{"BTCUSD", "ETHUSD", "TSLA", "EURUSD"}
	for _, symbol := range symbols {
		err := txRepo.Append(&models.Transaction{
			TxID:         uuid.NewString(),
			AccountID:    account.ID,
			Kind:         models.KindBuy,
			Symbol:       symbol,
			Quantity:     decimal.NewFromInt(1),
			PricePerUnit: decimal.NewFromInt(100),
			TotalAmount:  decimal.NewFromInt(100),
			Status:       models.StatusCompleted,
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	t.Run("newest_first", func(t *testing.T) {
		records, err := txRepo.ListByAccount(account.ID, 50)
		if err != nil {
			t.Fatalf("ListByAccount failed: %v", err)
		}
		if len(records) != len(symbols) {
			t.Fatalf("expected %d records, got %d", len(symbols), len(records))
		}
		if records[0].Symbol != "EURUSD" {
			t.Errorf("expected most recent record first, got %s", records[0].Symbol)
		}
	})

	t.Run("limit", func(t *testing.T) {
		records, err := txRepo.ListByAccount(account.ID, 2)
		if err != nil {
			t.Fatalf("ListByAccount failed: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
	})

	t.Run("non_positive_limit_returns_all", func(t *testing.T) {
		records, err := txRepo.ListByAccount(account.ID, 0)
		if err != nil {
			t.Fatalf("ListByAccount failed: %v", err)
		}
		if len(records) != len(symbols) {
			t.Fatalf("expected %d records, got %d", len(symbols), len(records))
		}
	})
}

func TestIntentsRepository(t *testing.T) {
	db := setupTestDB(t)
	intentsRepo := repository.NewIntentsRepository(db)
	account := newTestAccount(t, db)

	intent := &models.PaymentIntent{
		ID:        "pi_" + uuid.NewString()[:24],
		AccountID: account.ID,
		Amount:    decimal.NewFromInt(500),
		Currency:  "USD",
		Status:    models.IntentStatusPending,
	}
	if err := intentsRepo.Create(intent); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := intentsRepo.Get(intent.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found.Status != models.IntentStatusPending {
		t.Errorf("expected pending status, got %s", found.Status)
	}

	found.Status = models.IntentStatusSucceeded
	if err := intentsRepo.Update(found); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, _ := intentsRepo.Get(intent.ID)
	if updated.Status != models.IntentStatusSucceeded {
		t.Errorf("expected succeeded status, got %s", updated.Status)
	}

	if _, err := intentsRepo.Get("pi_missing"); !errors.Is(err, errs.ErrIntentNotFound) {
		t.Errorf("expected ErrIntentNotFound, got %v", err)
	}
}
