package domain

import "sort"

// ResultMessage is the generic outcome sentinel carried by a TransactionResult.
// The gateway's own text is never echoed; detail lives in the reference IDs or Errors.
type ResultMessage string

const (
	ResultMessageSuccess ResultMessage = "Success"
	ResultMessageError   ResultMessage = "Error"
)

// TransactionResult is the parsed outcome of an EFTAddCompleteTransaction call.
// Built only by the response parser; callers treat it as read-only.
//
// Exactly one of the following holds:
//   - Success is true and CustomerID, PaymentID and TransactionID are set
//   - Success is false and Errors is non-empty
type TransactionResult struct {
	CustomerID    *int64         `json:"customer_id,omitempty"`
	PaymentID     *int64         `json:"payment_id,omitempty"`
	TransactionID *int64         `json:"transaction_id,omitempty"`
	Errors        map[int]string `json:"errors"`
	Message       ResultMessage  `json:"message"`
	RawRequest    string         `json:"raw_request"` // redacted
	RawResponse   string         `json:"raw_response"`
	Success       bool           `json:"success"`
}

// IsDeclined returns true when the gateway rejected the transaction at the business level
func (r *TransactionResult) IsDeclined() bool {
	return !r.Success
}

// ErrorCodes returns the gateway error codes of a declined transaction, ascending
func (r *TransactionResult) ErrorCodes() []int {
	codes := make([]int, 0, len(r.Errors))
	for code := range r.Errors {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
