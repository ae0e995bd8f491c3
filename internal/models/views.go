package models

import "github.com/shopspring/decimal"

type TradeRequest struct {
	Symbol     string
	Side       string
	Quantity   decimal.Decimal
	PriceLimit *decimal.Decimal
}

type TradeResult struct {
	Message     string       `json:"message"`
	Transaction *Transaction `json:"transaction"`
}

type PortfolioLine struct {
	Symbol               string          `json:"asset_id"`
	Quantity             decimal.Decimal `json:"quantity"`
	AvgBuyPrice          decimal.Decimal `json:"average_buy_price"`
	CurrentPrice         decimal.Decimal `json:"current_price"`
	CurrentValue         decimal.Decimal `json:"current_value"`
	UnrealizedPnL        decimal.Decimal `json:"unrealized_pnl"`
	UnrealizedPnLPercent decimal.Decimal `json:"unrealized_pnl_percent"`
}
