package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindBuy      = "BUY"
	KindSell     = "SELL"
	KindDeposit  = "DEPOSIT"
	KindWithdraw = "WITHDRAW"

	StatusCompleted = "COMPLETED"

	IntentStatusPending   = "requires_confirmation"
	IntentStatusSucceeded = "succeeded"
)

type Account struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	IdentityKey string          `gorm:"uniqueIndex;not null" json:"identity_key"`
	Email       string          `json:"email"`
	FullName    string          `json:"full_name"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	Balance     decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"balance_usd"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
	Holdings    []Holding       `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE;" json:"-"`
}

type Holding struct {
	ID          uint            `gorm:"primaryKey" json:"-"`
	AccountID   uint            `gorm:"uniqueIndex:idx_holdings_account_symbol;not null" json:"-"`
	Symbol      string          `gorm:"uniqueIndex:idx_holdings_account_symbol;not null" json:"asset_id"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"quantity"`
	AvgBuyPrice decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"average_buy_price"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

// Transaction rows are immutable once written. The surrogate ID keeps
// newest-first ordering stable even within a single timestamp.
type Transaction struct {
	ID           uint            `gorm:"primaryKey" json:"-"`
	TxID         string          `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	AccountID    uint            `gorm:"index;not null" json:"-"`
	Kind         string          `gorm:"not null" json:"type"`
	Symbol       string          `gorm:"not null" json:"asset_id"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"quantity"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price_per_unit"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"total_amount"`
	Status       string          `gorm:"not null" json:"status"`
	CreatedAt    time.Time       `json:"timestamp"`
}

type PaymentIntent struct {
	ID        string          `gorm:"primaryKey" json:"id"`
	AccountID uint            `gorm:"index;not null" json:"-"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	Currency  string          `gorm:"not null" json:"currency"`
	Status    string          `gorm:"not null" json:"status"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}
