package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPurchase() *PurchaseRequest {
	return &PurchaseRequest{
		Instrument: PaymentInstrument{
			Number:    "4111111111111111",
			FirstName: "Jane",
			LastName:  "Doe",
			ExpMonth:  12,
			ExpYear:   27,
		},
		Funds: []Fund{
			{ID: "A", Amount: decimal.NewFromInt(10)},
			{ID: "B", Amount: decimal.RequireFromString("5.5")},
		},
	}
}

func TestPurchaseRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PurchaseRequest)
		wantErr bool
	}{
		{"valid", func(r *PurchaseRequest) {}, false},
		{"valid with schedule", func(r *PurchaseRequest) { r.Schedule.Frequency = FrequencyBiWeekly }, false},
		{"blank card number", func(r *PurchaseRequest) { r.Instrument.Number = "  " }, true},
		{"month zero", func(r *PurchaseRequest) { r.Instrument.ExpMonth = 0 }, true},
		{"month thirteen", func(r *PurchaseRequest) { r.Instrument.ExpMonth = 13 }, true},
		{"negative year", func(r *PurchaseRequest) { r.Instrument.ExpYear = -1 }, true},
		{"no funds", func(r *PurchaseRequest) { r.Funds = nil }, true},
		{"blank fund id", func(r *PurchaseRequest) { r.Funds[1].ID = "" }, true},
		{"negative amount", func(r *PurchaseRequest) { r.Funds[0].Amount = decimal.NewFromInt(-1) }, true},
		{"zero amount", func(r *PurchaseRequest) { r.Funds[0].Amount = decimal.Zero }, true},
		{"unknown frequency", func(r *PurchaseRequest) { r.Schedule.Frequency = "X" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validPurchase()
			tt.mutate(req)

			err := req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestPurchaseRequest_Total(t *testing.T) {
	assert.True(t, decimal.RequireFromString("15.50").Equal(validPurchase().Total()))
	assert.True(t, (&PurchaseRequest{}).Total().IsZero())
}

func TestPaymentInstrument_StringHidesNumber(t *testing.T) {
	p := validPurchase().Instrument

	assert.NotContains(t, p.String(), "4111")
	assert.Contains(t, p.String(), "Jane Doe")
	assert.Equal(t, "Jane Doe", p.BillingName())
}

func TestFrequencyCode_IsValid(t *testing.T) {
	for _, f := range []FrequencyCode{FrequencyOnce, FrequencyMonthly, FrequencyWeekly, FrequencyBiWeekly, FrequencyQuarterly, FrequencyAnnually} {
		assert.True(t, f.IsValid(), string(f))
	}
	assert.False(t, FrequencyCode("").IsValid())
	assert.False(t, FrequencyCode("D").IsValid())
}
