package domain

import "errors"

// Expectation failures. Each one aborts the whole enclosing operation with
// no partial mutation; the host transaction layer discards anything already
// applied. None are retried or recovered internally.
var (
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")

	// authorization
	ErrInvalidWitness = errors.New("invalid witness")

	// referential
	ErrTokenNotFound   = errors.New("token does not exist")
	ErrAuctionNotFound = errors.New("invalid auction")
	ErrSaleNotFound    = errors.New("sale does not exist or already closed")
	ErrNFTNotOnChain   = errors.New("token not currently in this chain")
	ErrInvalidOwner    = errors.New("invalid owner")

	// temporal
	ErrInvalidEndDate    = errors.New("invalid end date")
	ErrEndDateTooDistant = errors.New("end date is too distant")
	ErrSaleNotActive     = errors.New("sale not active or does not exist")
	ErrSaleNotEnded      = errors.New("sale still not reached end date")

	// capacity / arithmetic
	ErrInsufficientBalance = errors.New("not enough balance")
	ErrHardCapReached      = errors.New("hard cap reached")
	ErrPurchaseTooSmall    = errors.New("cannot purchase very tiny amount")
	ErrUserLimitExceeded   = errors.New("user purchase limit exceeded")

	// configuration
	ErrTokenNotFungible     = errors.New("token must be fungible")
	ErrTokenFungible        = errors.New("token must be non-fungible")
	ErrTokenNotTransferable = errors.New("token must be transferable")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrInvalidSoftCap       = errors.New("invalid softcap")
	ErrInvalidHardCap       = errors.New("invalid hard cap")
	ErrCapMismatch          = errors.New("hard cap must be larger or equal to soft cap")
	ErrInvalidUserLimit     = errors.New("invalid user limit")
	ErrInvalidReceiveToken  = errors.New("invalid receive token symbol")
	ErrInvalidQuoteToken    = errors.New("cannot participate in the sale using this token")
	ErrWhitelistDisabled    = errors.New("this sale is not using whitelists")
	ErrNotWhitelisted       = errors.New("address is not whitelisted")
)
