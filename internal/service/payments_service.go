package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kayung-developer/NovaTrade/internal/models"
	"github.com/kayung-developer/NovaTrade/internal/repository"
	"github.com/kayung-developer/NovaTrade/lib/errs"
)

type PaymentsService interface {
	CreateIntent(ctx context.Context, accountID uint, amount decimal.Decimal, currency string) (*models.PaymentIntent, error)
	ConfirmIntent(ctx context.Context, accountID uint, intentID string) (*models.TradeResult, error)
	Withdraw(ctx context.Context, accountID uint, amount decimal.Decimal, currency string) (*models.TradeResult, error)
}

type paymentsService struct {
	db        *gorm.DB
	locks     *AccountLocks
	minAmount decimal.Decimal
	log       *slog.Logger
}

func NewPaymentsService(db *gorm.DB, locks *AccountLocks, minAmount decimal.Decimal, log *slog.Logger) PaymentsService {
	return &paymentsService{
		db:        db,
		locks:     locks,
		minAmount: minAmount,
		log:       log,
	}
}

func (s *paymentsService) CreateIntent(ctx context.Context, accountID uint, amount decimal.Decimal, currency string) (*models.PaymentIntent, error) {
	if amount.LessThan(s.minAmount) {
		return nil, errs.ErrInvalidAmount
	}

	intent := &models.PaymentIntent{
		ID:        newIntentID(),
		AccountID: accountID,
		Amount:    amount,
		Currency:  strings.ToUpper(currency),
		Status:    models.IntentStatusPending,
	}

	if err := repository.NewIntentsRepository(s.db.WithContext(ctx)).Create(intent); err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	s.log.Info("payment intent created", "accountID", accountID, "intentID", intent.ID, "amount", amount.String())
	return intent, nil
}

// ConfirmIntent credits the account and appends the DEPOSIT record in one
// transaction. The in-transaction status check is the idempotency guard:
// a second confirm sees a non-pending intent and fails without crediting.
func (s *paymentsService) ConfirmIntent(ctx context.Context, accountID uint, intentID string) (*models.TradeResult, error) {
	unlock := s.locks.Lock(accountLockKey(accountID))
	defer unlock()

	var result *models.TradeResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		intents := repository.NewIntentsRepository(tx)
		accounts := repository.NewAccountsRepository(tx)
		ledger := repository.NewTransactionsRepository(tx)

		intent, err := intents.Get(intentID)
		if err != nil {
			return err
		}
		if intent.AccountID != accountID {
			return errs.ErrIntentNotFound
		}
		if intent.Status != models.IntentStatusPending {
			return errs.ErrIntentNotConfirmable
		}

		account, err := accounts.GetByID(accountID)
		if err != nil {
			return err
		}
		if !account.IsActive {
			return errs.ErrAccountInactive
		}

		intent.Status = models.IntentStatusSucceeded
		if err := intents.Update(intent); err != nil {
			return err
		}

		account.Balance = account.Balance.Add(intent.Amount)
		if err := accounts.Save(account); err != nil {
			return err
		}

		record := &models.Transaction{
			TxID:         uuid.NewString(),
			AccountID:    account.ID,
			Kind:         models.KindDeposit,
			Symbol:       intent.Currency,
			Quantity:     intent.Amount,
			PricePerUnit: decimal.NewFromInt(1),
			TotalAmount:  intent.Amount,
			Status:       models.StatusCompleted,
		}
		if err := ledger.Append(record); err != nil {
			return fmt.Errorf("failed to append deposit record: %w", err)
		}

		result = &models.TradeResult{
			Message:     fmt.Sprintf("Payment of %s %s confirmed successfully.", intent.Currency, intent.Amount.StringFixed(2)),
			Transaction: record,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment intent confirmed", "accountID", accountID, "intentID", intentID)
	return result, nil
}

func (s *paymentsService) Withdraw(ctx context.Context, accountID uint, amount decimal.Decimal, currency string) (*models.TradeResult, error) {
	if amount.LessThan(s.minAmount) {
		return nil, errs.ErrInvalidAmount
	}
	currency = strings.ToUpper(currency)

	unlock := s.locks.Lock(accountLockKey(accountID))
	defer unlock()

	var result *models.TradeResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := repository.NewAccountsRepository(tx)
		ledger := repository.NewTransactionsRepository(tx)

		account, err := accounts.GetByID(accountID)
		if err != nil {
			return err
		}
		if !account.IsActive {
			return errs.ErrAccountInactive
		}
		if account.Balance.LessThan(amount) {
			return errs.ErrInsufficientFunds
		}

		account.Balance = account.Balance.Sub(amount)
		if err := accounts.Save(account); err != nil {
			return err
		}

		record := &models.Transaction{
			TxID:         uuid.NewString(),
			AccountID:    account.ID,
			Kind:         models.KindWithdraw,
			Symbol:       currency,
			Quantity:     amount,
			PricePerUnit: decimal.NewFromInt(1),
			TotalAmount:  amount,
			Status:       models.StatusCompleted,
		}
		if err := ledger.Append(record); err != nil {
			return fmt.Errorf("failed to append withdrawal record: %w", err)
		}

		result = &models.TradeResult{
			Message:     fmt.Sprintf("Withdrawal of %s %s processed successfully.", currency, amount.StringFixed(2)),
			Transaction: record,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("withdrawal processed", "accountID", accountID, "amount", amount.String())
	return result, nil
}

func newIntentID() string {
	return "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}
