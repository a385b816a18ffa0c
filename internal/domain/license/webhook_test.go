package license

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		event string
		id    string
	}{
		{
			name:  "wrapped",
			body:  `{"event":"charge.completed","data":{"id":"tx1","tx_ref":"license_abc123_yearly","status":"successful"}}`,
			event: "charge.completed",
			id:    "tx1",
		},
		{
			name:  "bare data object",
			body:  `{"id":4412,"tx_ref":"license_abc123_quarterly","status":"successful"}`,
			event: "charge.completed",
			id:    "4412",
		},
		{
			name:  "array takes first entry",
			body:  `[{"event":"charge.complete","data":{"id":"first","status":"success"}},{"event":"charge.completed","data":{"id":"second"}}]`,
			event: "charge.complete",
			id:    "first",
		},
		{
			name:  "event.type key",
			body:  `{"event.type":"CARD_TRANSACTION","data":{"id":"tx9","status":"successful"}}`,
			event: "CARD_TRANSACTION",
			id:    "tx9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePayload([]byte(tt.body))
			require.NoError(t, err)
			require.NotNil(t, p.Data)
			assert.Equal(t, tt.event, p.Event)
			assert.Equal(t, tt.id, string(p.Data.ID))
		})
	}
}

func TestParsePayload_NothingToProcess(t *testing.T) {
	_, err := ParsePayload([]byte("   "))
	assert.ErrorIs(t, err, ErrEmptyPayload)

	p, err := ParsePayload([]byte(`[]`))
	require.NoError(t, err)
	assert.Nil(t, p.Data)

	p, err = ParsePayload([]byte(`{"event":"charge.completed"}`))
	require.NoError(t, err)
	assert.Equal(t, "charge.completed", p.Event)
	assert.Nil(t, p.Data)

	p, err = ParsePayload([]byte(`{"event":"charge.completed","data":{}}`))
	require.NoError(t, err)
	assert.Nil(t, p.Data)
}

func TestParsePayload_Invalid(t *testing.T) {
	for _, body := range []string{`{"event":`, `not json`, `[{"data":`, `{"data":{"id":{}}}`} {
		_, err := ParsePayload([]byte(body))
		assert.ErrorIs(t, err, ErrInvalidPayload, body)
	}
}

func TestPayloadPredicates(t *testing.T) {
	assert.True(t, Payload{Event: "charge.completed"}.IsCompleted())
	assert.True(t, Payload{Event: "Charge.Complete"}.IsCompleted())
	assert.False(t, Payload{Event: "transfer.failed"}.IsCompleted())
	assert.False(t, Payload{Event: "transfer.completed"}.IsCompleted())
	assert.False(t, Payload{Event: "refund.completed"}.IsCompleted())
	assert.False(t, Payload{Event: "subscription.complete"}.IsCompleted())

	assert.True(t, (&ChargeData{Status: "successful"}).IsSuccessful())
	assert.True(t, (&ChargeData{Status: " SUCCESS "}).IsSuccessful())
	assert.False(t, (&ChargeData{Status: "failed"}).IsSuccessful())
}

func TestParseLicenseRef(t *testing.T) {
	id, ok := ParseLicenseRef("license_abc123_yearly")
	assert.True(t, ok)
	assert.Equal(t, "abc123", id)

	id, ok = ParseLicenseRef("LICENSE_9f8e")
	assert.True(t, ok)
	assert.Equal(t, "9f8e", id)

	for _, ref := range []string{"", "order_abc", "license_", "license__yearly"} {
		_, ok := ParseLicenseRef(ref)
		assert.False(t, ok, ref)
	}
}

func TestBillingPeriodFor(t *testing.T) {
	assert.Equal(t, BillingQuarterly, billingPeriodFor(&ChargeData{Meta: map[string]any{"billing_period": "Quarterly"}, TxRef: "license_a_yearly"}))
	assert.Equal(t, BillingQuarterly, billingPeriodFor(&ChargeData{MetaData: map[string]any{"billing_period": "quarterly"}}))
	assert.Equal(t, BillingQuarterly, billingPeriodFor(&ChargeData{TxRef: "license_a_quarterly"}))
	assert.Equal(t, BillingQuarterly, billingPeriodFor(&ChargeData{TxRef: "license_a_quarterly_1705053600"}))
	assert.Equal(t, BillingYearly, billingPeriodFor(&ChargeData{TxRef: "license_quarterly_1705053600"}))
	assert.Equal(t, BillingYearly, billingPeriodFor(&ChargeData{TxRef: "license_a_monthly"}))
	assert.Equal(t, BillingYearly, billingPeriodFor(&ChargeData{}))
}
