package exchange

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	BaseCurrency = "USD"

	SourceCache       = "cache"
	SourceFlutterwave = "flutterwave"
)

// Quote is the number of To units one From unit buys.
type Quote struct {
	Currency  string          `json:"currency"`
	Rate      decimal.Decimal `json:"rate"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// MarshalJSON writes the rate as a JSON number rather than decimal's quoted string.
func (q Quote) MarshalJSON() ([]byte, error) {
	type plain Quote
	return json.Marshal(struct {
		plain
		Rate json.Number `json:"rate"`
	}{plain(q), json.Number(q.Rate.String())})
}
