package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// FlutterwaveClient reads transfer rates from the Flutterwave v3 API.
type FlutterwaveClient struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

func NewFlutterwaveClient(baseURL, secretKey string, httpClient *http.Client) *FlutterwaveClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &FlutterwaveClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		http:      httpClient,
	}
}

type ratesResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		Rate   decimal.Decimal `json:"rate"`
		Source struct {
			Currency string          `json:"currency"`
			Amount   decimal.Decimal `json:"amount"`
		} `json:"source"`
		Destination struct {
			Currency string          `json:"currency"`
			Amount   decimal.Decimal `json:"amount"`
		} `json:"destination"`
	} `json:"data"`
}

// Rate returns how many units of currency one USD buys. The caller's context
// bounds the request; a deadline surfaces as ErrUpstreamTimeout.
func (c *FlutterwaveClient) Rate(ctx context.Context, currency string) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("amount", "1")
	q.Set("source_currency", BaseCurrency)
	q.Set("destination_currency", currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v3/transfers/rates?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return decimal.Zero, ErrUpstreamTimeout
		}
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		if isTimeout(err) {
			return decimal.Zero, ErrUpstreamTimeout
		}
		return decimal.Zero, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, truncate(body, 200))
	}

	var out ratesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	if !strings.EqualFold(out.Status, "success") || out.Data == nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUpstream, out.Message)
	}

	d := out.Data
	if d.Source.Amount.IsPositive() && d.Destination.Amount.IsPositive() {
		return d.Destination.Amount.Div(d.Source.Amount), nil
	}
	if d.Rate.IsPositive() {
		return d.Rate, nil
	}
	return decimal.Zero, fmt.Errorf("%w: no rate for %s", ErrUpstream, currency)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
