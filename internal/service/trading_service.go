package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kayung-developer/NovaTrade/internal/marketdata"
	"github.com/kayung-developer/NovaTrade/internal/models"
	"github.com/kayung-developer/NovaTrade/internal/repository"
	"github.com/kayung-developer/NovaTrade/lib/errs"
)

// LimitFillPolicy decides how a price limit on a trade intent is applied.
type LimitFillPolicy string

const (
	// FillAtLimit executes at the stated limit regardless of the market,
	// the idealized fill the simulation has always used.
	FillAtLimit LimitFillPolicy = "fill_at_limit"
	// RejectUnmarketable refuses a BUY limit below market or a SELL limit
	// above market instead of pretending it filled.
	RejectUnmarketable LimitFillPolicy = "reject_unmarketable"
)

type TradingService interface {
	ExecuteTrade(ctx context.Context, accountID uint, req models.TradeRequest) (*models.TradeResult, error)
}

type tradingService struct {
	db          *gorm.DB
	feed        *marketdata.Feed
	locks       *AccountLocks
	limitPolicy LimitFillPolicy
	log         *slog.Logger
}

func NewTradingService(db *gorm.DB, feed *marketdata.Feed, locks *AccountLocks, limitPolicy LimitFillPolicy, log *slog.Logger) TradingService {
	return &tradingService{
		db:          db,
		feed:        feed,
		locks:       locks,
		limitPolicy: limitPolicy,
		log:         log,
	}
}

// ExecuteTrade validates the intent, then applies balance, holding and
// ledger mutations as one unit: the keyed lock serializes trades per
// account and the enclosing DB transaction keeps the ledger in lockstep
// with the state it describes.
func (s *tradingService) ExecuteTrade(ctx context.Context, accountID uint, req models.TradeRequest) (*models.TradeResult, error) {
	asset, ok := s.feed.Asset(req.Symbol)
	if !ok {
		return nil, errs.ErrAssetNotFound
	}

	if !req.Quantity.IsPositive() {
		return nil, errs.ErrInvalidQuantity
	}

	side := strings.ToUpper(req.Side)
	if side != models.KindBuy && side != models.KindSell {
		return nil, errs.ErrInvalidTradeType
	}

	executionPrice, err := s.resolveExecutionPrice(asset, side, req.PriceLimit)
	if err != nil {
		return nil, err
	}

	notional := req.Quantity.Mul(executionPrice)

	unlock := s.locks.Lock(accountLockKey(accountID))
	defer unlock()

	var result *models.TradeResult

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := repository.NewAccountsRepository(tx)
		holdings := repository.NewHoldingsRepository(tx)
		ledger := repository.NewTransactionsRepository(tx)

		account, err := accounts.GetByID(accountID)
		if err != nil {
			return err
		}
		if !account.IsActive {
			return errs.ErrAccountInactive
		}

		switch side {
		case models.KindBuy:
			if err := s.applyBuy(accounts, holdings, account, req.Symbol, req.Quantity, executionPrice, notional); err != nil {
				return err
			}
		case models.KindSell:
			if err := s.applySell(accounts, holdings, account, req.Symbol, req.Quantity, notional); err != nil {
				return err
			}
		}

		record := &models.Transaction{
			TxID:         uuid.NewString(),
			AccountID:    account.ID,
			Kind:         side,
			Symbol:       req.Symbol,
			Quantity:     req.Quantity,
			PricePerUnit: executionPrice,
			TotalAmount:  notional,
			Status:       models.StatusCompleted,
		}
		if err := ledger.Append(record); err != nil {
			return fmt.Errorf("failed to append transaction record: %w", err)
		}

		result = &models.TradeResult{
			Message: fmt.Sprintf("Trade %s %s %s @ $%s executed successfully.",
				side, req.Quantity.String(), req.Symbol, executionPrice.StringFixed(marketdata.DecimalPlaces(asset.Class))),
			Transaction: record,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("trade executed",
		"accountID", accountID, "side", side, "symbol", req.Symbol,
		"quantity", req.Quantity.String(), "price", executionPrice.String())

	return result, nil
}

func (s *tradingService) resolveExecutionPrice(asset marketdata.Asset, side string, priceLimit *decimal.Decimal) (decimal.Decimal, error) {
	marketPrice := asset.BasePrice
	if priceLimit == nil {
		return marketPrice, nil
	}

	if s.limitPolicy == RejectUnmarketable {
		if side == models.KindBuy && priceLimit.LessThan(marketPrice) {
			return decimal.Decimal{}, errs.ErrLimitNotFillable
		}
		if side == models.KindSell && priceLimit.GreaterThan(marketPrice) {
			return decimal.Decimal{}, errs.ErrLimitNotFillable
		}
	}

	return *priceLimit, nil
}

func (s *tradingService) applyBuy(accounts repository.AccountsRepository, holdings repository.HoldingsRepository, account *models.Account, symbol string, quantity, executionPrice, notional decimal.Decimal) error {
	if account.Balance.LessThan(notional) {
		return errs.ErrInsufficientFunds
	}

	account.Balance = account.Balance.Sub(notional)
	if err := accounts.Save(account); err != nil {
		return err
	}

	existing, err := holdings.Get(account.ID, symbol)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			return err
		}
		return holdings.Add(&models.Holding{
			AccountID:   account.ID,
			Symbol:      symbol,
			Quantity:    quantity,
			AvgBuyPrice: executionPrice,
		})
	}

	newQuantity := existing.Quantity.Add(quantity)
	existing.AvgBuyPrice = existing.AvgBuyPrice.Mul(existing.Quantity).
		Add(executionPrice.Mul(quantity)).
		Div(newQuantity)
	existing.Quantity = newQuantity

	return holdings.Update(existing)
}

func (s *tradingService) applySell(accounts repository.AccountsRepository, holdings repository.HoldingsRepository, account *models.Account, symbol string, quantity, notional decimal.Decimal) error {
	existing, err := holdings.Get(account.ID, symbol)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrInsufficientHoldings
		}
		return err
	}
	if existing.Quantity.LessThan(quantity) {
		return errs.ErrInsufficientHoldings
	}

	account.Balance = account.Balance.Add(notional)
	if err := accounts.Save(account); err != nil {
		return err
	}

	existing.Quantity = existing.Quantity.Sub(quantity)
	if existing.Quantity.IsZero() {
		return holdings.Delete(account.ID, symbol)
	}

	return holdings.Update(existing)
}
