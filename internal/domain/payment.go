package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FrequencyCode is the gateway's schedule frequency for a transaction
type FrequencyCode string

const (
	FrequencyOnce      FrequencyCode = "O"  // One-time
	FrequencyMonthly   FrequencyCode = "M"  // Monthly
	FrequencyWeekly    FrequencyCode = "W"  // Weekly
	FrequencyBiWeekly  FrequencyCode = "BW" // Every two weeks
	FrequencyQuarterly FrequencyCode = "Q"  // Quarterly
	FrequencyAnnually  FrequencyCode = "A"  // Annually
)

// IsValid returns true if the frequency code is one the gateway accepts
func (f FrequencyCode) IsValid() bool {
	switch f {
	case FrequencyOnce, FrequencyMonthly, FrequencyWeekly, FrequencyBiWeekly, FrequencyQuarterly, FrequencyAnnually:
		return true
	default:
		return false
	}
}

// PaymentInstrument holds the card used for a single request.
// It is never stored; the account number is masked in every persisted copy.
type PaymentInstrument struct {
	Number    string
	FirstName string
	LastName  string
	ExpMonth  int
	ExpYear   int
}

// BillingName returns the cardholder name as printed on the card
func (p *PaymentInstrument) BillingName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// String never prints the account number
func (p PaymentInstrument) String() string {
	return fmt.Sprintf("PaymentInstrument{name=%q, exp=%02d/%02d}", p.BillingName(), p.ExpMonth, p.ExpYear%100)
}

// Fund is one allocation of money within a transaction
type Fund struct {
	ID     string
	Amount decimal.Decimal
}

// Customer holds the contact fields sent with a transaction
type Customer struct {
	Name     string // "Last, First"; derived from the card when empty
	Address1 string
	Address2 string
	City     string
	State    string
	Zip      string
	Phone    string
}

// Schedule controls when and how often the gateway processes the transaction
type Schedule struct {
	StartDate time.Time // zero value means as soon as possible
	Frequency FrequencyCode
}

// PurchaseRequest aggregates everything needed for one EFTAddCompleteTransaction call
type PurchaseRequest struct {
	Customer   Customer
	Instrument PaymentInstrument
	Funds      []Fund
	Schedule   Schedule
}

// Total returns the sum of all fund amounts
func (r *PurchaseRequest) Total() decimal.Decimal {
	total := decimal.Zero
	for _, f := range r.Funds {
		total = total.Add(f.Amount)
	}
	return total
}

// Validate performs the local checks done before any network activity
func (r *PurchaseRequest) Validate() error {
	if strings.TrimSpace(r.Instrument.Number) == "" {
		return NewValidationError("card number is required")
	}
	if r.Instrument.ExpMonth < 1 || r.Instrument.ExpMonth > 12 {
		return NewValidationError("card expiration month must be between 1 and 12").
			WithDetail("exp_month", r.Instrument.ExpMonth)
	}
	if r.Instrument.ExpYear < 0 {
		return NewValidationError("card expiration year is invalid").
			WithDetail("exp_year", r.Instrument.ExpYear)
	}
	if len(r.Funds) == 0 {
		return NewValidationError("at least one fund is required")
	}
	for i, f := range r.Funds {
		if strings.TrimSpace(f.ID) == "" {
			return NewValidationError("fund id is required").WithDetail("index", i)
		}
		if !f.Amount.IsPositive() {
			return NewValidationError("fund amount must be positive").
				WithDetail("index", i).
				WithDetail("fund_id", f.ID)
		}
	}
	if r.Schedule.Frequency != "" && !r.Schedule.Frequency.IsValid() {
		return NewValidationError("unknown frequency code").
			WithDetail("frequency", string(r.Schedule.Frequency))
	}
	return nil
}
