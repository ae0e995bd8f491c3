package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kayung-developer/NovaTrade/internal/marketdata"
	"github.com/kayung-developer/NovaTrade/internal/models"
	"github.com/kayung-developer/NovaTrade/internal/repository"
	"github.com/kayung-developer/NovaTrade/lib/errs"
)

// Identity is what the token verifier hands over for an authenticated
// caller. Key is stable per user, the rest are profile hints used only
// on first access.
type Identity struct {
	Key      string
	Email    string
	FullName string
}

type AccountsService interface {
	GetOrCreateAccount(ctx context.Context, identity Identity) (*models.Account, error)
	ValuePortfolio(ctx context.Context, accountID uint) ([]models.PortfolioLine, error)
	ListTransactions(ctx context.Context, accountID uint, limit int) ([]models.Transaction, error)
}

type accountsService struct {
	db              *gorm.DB
	feed            *marketdata.Feed
	locks           *AccountLocks
	startingBalance decimal.Decimal
	log             *slog.Logger
}

func NewAccountsService(db *gorm.DB, feed *marketdata.Feed, locks *AccountLocks, startingBalance decimal.Decimal, log *slog.Logger) AccountsService {
	return &accountsService{
		db:              db,
		feed:            feed,
		locks:           locks,
		startingBalance: startingBalance,
		log:             log,
	}
}

// GetOrCreateAccount is idempotent per identity key. The keyed lock
// serializes concurrent first access; the unique index on identity_key
// backs it up, so a duplicate insert falls through to a re-read.
func (s *accountsService) GetOrCreateAccount(ctx context.Context, identity Identity) (*models.Account, error) {
	unlock := s.locks.Lock(identityLockKey(identity.Key))
	defer unlock()

	repo := repository.NewAccountsRepository(s.db.WithContext(ctx))

	account, err := repo.GetByIdentityKey(identity.Key)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	account = &models.Account{
		IdentityKey: identity.Key,
		Email:       identity.Email,
		FullName:    identity.FullName,
		IsActive:    true,
		Balance:     s.startingBalance,
	}

	if err := repo.Create(account); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return repo.GetByIdentityKey(identity.Key)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.log.Info("new account created", "identityKey", identity.Key, "accountID", account.ID)
	return account, nil
}

// ValuePortfolio joins every holding with the feed's reference price.
// A holding whose symbol left the catalog is valued at its own average
// cost so untradeable positions show neither gains nor losses.
func (s *accountsService) ValuePortfolio(ctx context.Context, accountID uint) ([]models.PortfolioLine, error) {
	holdings, err := repository.NewHoldingsRepository(s.db.WithContext(ctx)).List(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	lines := make([]models.PortfolioLine, 0, len(holdings))
	for _, h := range holdings {
		currentPrice, err := s.feed.ReferencePrice(h.Symbol)
		if err != nil {
			currentPrice = h.AvgBuyPrice
		}

		currentValue := h.Quantity.Mul(currentPrice)
		pnl := currentPrice.Sub(h.AvgBuyPrice).Mul(h.Quantity)

		pnlPercent := decimal.Zero
		if costBasis := h.AvgBuyPrice.Mul(h.Quantity); !costBasis.IsZero() {
			pnlPercent = pnl.Div(costBasis).Mul(decimal.NewFromInt(100))
		}

		lines = append(lines, models.PortfolioLine{
			Symbol:               h.Symbol,
			Quantity:             h.Quantity,
			AvgBuyPrice:          h.AvgBuyPrice,
			CurrentPrice:         currentPrice,
			CurrentValue:         currentValue,
			UnrealizedPnL:        pnl,
			UnrealizedPnLPercent: pnlPercent,
		})
	}

	return lines, nil
}

func (s *accountsService) ListTransactions(ctx context.Context, accountID uint, limit int) ([]models.Transaction, error) {
	return repository.NewTransactionsRepository(s.db.WithContext(ctx)).ListByAccount(accountID, limit)
}
