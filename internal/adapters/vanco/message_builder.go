package vanco

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/vanco-gateway/internal/domain"
	"github.com/kevin07696/vanco-gateway/pkg/timeutil"
)

const (
	accountTypeCreditCard = "CC"
	sameBillingAddress    = "Yes"
)

// Credentials are the gateway login credentials
type Credentials struct {
	UserID   string
	Password string
}

// String never prints the password
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{UserID=%q}", c.UserID)
}

// MessageBuilder constructs outbound VancoWS documents. It performs no I/O.
type MessageBuilder struct {
	now      func() time.Time
	location *time.Location
	nextID   func() string
}

// BuilderOption configures a MessageBuilder
type BuilderOption func(*MessageBuilder)

// WithBuilderClock overrides the clock used for RequestTime
func WithBuilderClock(now func() time.Time) BuilderOption {
	return func(b *MessageBuilder) { b.now = now }
}

// WithLocation sets the time zone RequestTime is rendered in
func WithLocation(loc *time.Location) BuilderOption {
	return func(b *MessageBuilder) { b.location = loc }
}

// WithRequestIDGenerator overrides the correlation id generator
func WithRequestIDGenerator(next func() string) BuilderOption {
	return func(b *MessageBuilder) { b.nextID = next }
}

// NewMessageBuilder creates a builder using the wall clock, local time and random correlation ids
func NewMessageBuilder(opts ...BuilderOption) *MessageBuilder {
	b := &MessageBuilder{
		now:      time.Now,
		location: time.Local,
		nextID:   NewRequestID,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewRequestID returns a random numeric correlation id.
// Only used for server-side log tracing; collisions are harmless.
func NewRequestID() string {
	return fmt.Sprintf("%d", rand.Int64N(10_000_000_000))
}

// FormatAmount renders an amount with exactly two decimals, rounding half away from zero
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func (b *MessageBuilder) auth(requestType, sessionID string) Auth {
	return Auth{
		RequestType: requestType,
		RequestID:   b.nextID(),
		RequestTime: timeutil.FormatDateTime(b.now(), b.location),
		SessionID:   sessionID,
		Version:     ProtocolVersion,
	}
}

// LoginRequest builds the document exchanged for a session token
func (b *MessageBuilder) LoginRequest(creds Credentials) *Envelope {
	return &Envelope{
		Auth: b.auth(RequestTypeLogin, ""),
		Request: Request{Vars: &LoginVars{
			UserID:   creds.UserID,
			Password: creds.Password,
		}},
	}
}

// TransactionRequest builds an EFTAddCompleteTransaction document for a credit card payment
func (b *MessageBuilder) TransactionRequest(
	token string,
	clientID string,
	customer domain.Customer,
	instrument domain.PaymentInstrument,
	funds []domain.Fund,
	schedule domain.Schedule,
) *Envelope {
	customerName := customer.Name
	if customerName == "" {
		customerName = fmt.Sprintf("%s, %s", instrument.LastName, instrument.FirstName)
	}

	entries := make([]FundEntry, 0, len(funds))
	for _, f := range funds {
		entries = append(entries, FundEntry{
			FundID:     f.ID,
			FundAmount: FormatAmount(f.Amount),
		})
	}

	frequency := schedule.Frequency
	if frequency == "" {
		frequency = domain.FrequencyOnce
	}

	return &Envelope{
		Auth: b.auth(RequestTypeAddCompleteTransaction, token),
		Request: Request{Vars: &TransactionVars{
			ClientID:                clientID,
			CustomerName:            customerName,
			CustomerAddress1:        customer.Address1,
			CustomerAddress2:        customer.Address2,
			CustomerCity:            customer.City,
			CustomerState:           customer.State,
			CustomerZip:             customer.Zip,
			CustomerPhone:           customer.Phone,
			AccountType:             accountTypeCreditCard,
			AccountNumber:           strings.TrimSpace(instrument.Number),
			CardBillingName:         instrument.BillingName(),
			CardExpMonth:            timeutil.TwoDigits(instrument.ExpMonth),
			CardExpYear:             timeutil.TwoDigits(instrument.ExpYear),
			SameCCBillingAddrAsCust: sameBillingAddress,
			Funds:                   FundsList{Funds: entries},
			StartDate:               timeutil.FormatDate(schedule.StartDate),
			FrequencyCode:           string(frequency),
		}},
	}
}
