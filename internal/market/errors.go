package market

import "errors"

var (
	ErrInvalidAsset       = errors.New("invalid asset")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrNotForSale         = errors.New("listing not for sale")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrBidTooLow          = errors.New("bid too low")
	ErrAlreadySettled     = errors.New("listing already settled")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("not initialized")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrListingNotFound    = errors.New("listing not found")
)
