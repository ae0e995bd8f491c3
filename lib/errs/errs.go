package errs

import "errors"

var ErrNotFound = errors.New("not found")

var ErrAlreadyExists = errors.New("already exists")

var ErrInternal = errors.New("internal error")

var ErrAssetNotFound = errors.New("asset not found")

var ErrInvalidQuantity = errors.New("quantity must be positive")

var ErrInvalidTradeType = errors.New("invalid trade type, must be BUY or SELL")

var ErrInsufficientFunds = errors.New("insufficient funds")

var ErrInsufficientHoldings = errors.New("not enough assets to sell")

var ErrLimitNotFillable = errors.New("limit price not fillable at current market")

var ErrInvalidAmount = errors.New("amount below minimum")

var ErrIntentNotFound = errors.New("payment intent not found")

var ErrIntentNotConfirmable = errors.New("payment intent cannot be confirmed")

var ErrAccountInactive = errors.New("account is inactive")
