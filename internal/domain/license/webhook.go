package license

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	defaultEvent   = "charge.completed"
	licenseRefHead = "license_"
)

// Payload is the canonical form of every webhook shape the gateway sends.
type Payload struct {
	Event string
	Data  *ChargeData
}

// ChargeData is the subset of a gateway charge the reconciler reads.
type ChargeData struct {
	ID       FlexString      `json:"id"`
	TxRef    string          `json:"tx_ref"`
	FlwRef   string          `json:"flw_ref"`
	Status   string          `json:"status"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Customer struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"customer"`
	Meta     map[string]any `json:"meta"`
	MetaData map[string]any `json:"meta_data"`
}

// FlexString accepts both JSON strings and numbers; the gateway sends numeric ids.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

type envelope struct {
	Event     string          `json:"event"`
	EventType string          `json:"event.type"`
	Data      json.RawMessage `json:"data"`
}

// ParsePayload normalizes a wrapped {event,data} object, a bare charge object
// or an array of events (first entry wins) into one Payload. Data is nil when
// the body carries nothing to process.
func ParsePayload(body []byte) (Payload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Payload{}, ErrEmptyPayload
	}

	if body[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if len(items) == 0 {
			return Payload{}, nil
		}
		return parseObject(items[0])
	}
	return parseObject(body)
}

func parseObject(raw json.RawMessage) (Payload, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	p := Payload{Event: strings.TrimSpace(env.Event)}
	if p.Event == "" {
		p.Event = strings.TrimSpace(env.EventType)
	}

	dataRaw := bytes.TrimSpace(env.Data)
	switch {
	case len(dataRaw) > 0 && !bytes.Equal(dataRaw, []byte("null")):
	case p.Event == "":
		// No wrapper at all: the object itself is the charge.
		dataRaw = raw
	default:
		return p, nil
	}

	var data ChargeData
	if err := json.Unmarshal(dataRaw, &data); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if data.isEmpty() {
		return p, nil
	}
	p.Data = &data
	if p.Event == "" {
		p.Event = defaultEvent
	}
	return p, nil
}

func (d *ChargeData) isEmpty() bool {
	return d.ID == "" && d.TxRef == "" && d.Status == "" && d.FlwRef == ""
}

// IsCompleted reports whether the event is a "charge completed" variant.
// Completed transfers and refunds do not pay for a licence.
func (p Payload) IsCompleted() bool {
	switch lower(p.Event) {
	case "charge.completed", "charge.complete":
		return true
	}
	return false
}

func (d *ChargeData) IsSuccessful() bool {
	s := lower(d.Status)
	return s == "successful" || s == "success"
}

func (d *ChargeData) meta(key string) string {
	for _, m := range []map[string]any{d.Meta, d.MetaData} {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// ParseLicenseRef extracts the licence id from a transaction reference of the
// form license_<id>_<suffix>.
func ParseLicenseRef(txRef string) (string, bool) {
	txRef = strings.TrimSpace(txRef)
	if !strings.HasPrefix(lower(txRef), licenseRefHead) {
		return "", false
	}
	rest := txRef[len(licenseRefHead):]
	id, _, _ := strings.Cut(rest, "_")
	if id == "" {
		return "", false
	}
	return id, true
}

// billingPeriodFor prefers meta.billing_period and falls back to the first
// tx_ref segment after the licence id that names a period, so
// license_<id>_quarterly_<ts> bills quarterly. Defaults to yearly.
func billingPeriodFor(d *ChargeData) BillingPeriod {
	if p, ok := ParseBillingPeriod(d.meta("billing_period")); ok {
		return p
	}
	segs := strings.Split(strings.TrimSpace(d.TxRef), "_")
	skip := 1
	if _, isRef := ParseLicenseRef(d.TxRef); isRef {
		skip = 2
	}
	for i := skip; i < len(segs); i++ {
		if p, ok := ParseBillingPeriod(segs[i]); ok {
			return p
		}
	}
	return BillingYearly
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
