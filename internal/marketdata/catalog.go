package marketdata

import "github.com/shopspring/decimal"

type Class string

const (
	ClassCrypto Class = "crypto"
	ClassForex  Class = "forex"
	ClassStock  Class = "stock"
)

// Asset is a static catalog entry. The catalog is read-only at runtime.
type Asset struct {
	Symbol        string
	Class         Class
	BasePrice     decimal.Decimal
	BaseChange24h decimal.Decimal
}

// DecimalPlaces returns the display/rounding precision for an asset class:
// forex quotes carry four decimal places, everything else two.
func DecimalPlaces(class Class) int32 {
	if class == ClassForex {
		return 4
	}
	return 2
}

func DefaultCatalog() []Asset {
	return []Asset{
		{Symbol: "BTCUSD", Class: ClassCrypto, BasePrice: decimal.NewFromFloat(60000.00), BaseChange24h: decimal.NewFromFloat(1.5)},
		{Symbol: "ETHUSD", Class: ClassCrypto, BasePrice: decimal.NewFromFloat(3000.00), BaseChange24h: decimal.NewFromFloat(-0.5)},
		{Symbol: "EURUSD", Class: ClassForex, BasePrice: decimal.NewFromFloat(1.0850), BaseChange24h: decimal.NewFromFloat(0.1)},
		{Symbol: "GBPUSD", Class: ClassForex, BasePrice: decimal.NewFromFloat(1.2600), BaseChange24h: decimal.NewFromFloat(-0.2)},
		{Symbol: "TSLA", Class: ClassStock, BasePrice: decimal.NewFromFloat(170.00), BaseChange24h: decimal.NewFromFloat(2.1)},
	}
}
