package exchange

import "errors"

var (
	ErrInvalidCurrency = errors.New("currency must be a 3-letter ISO code")
	ErrUpstreamTimeout = errors.New("exchange rate provider timed out")
	ErrUpstream        = errors.New("exchange rate provider error")
)
