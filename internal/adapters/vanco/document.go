package vanco

import (
	"encoding/xml"
	"fmt"
)

// Request types understood by the gateway
const (
	RequestTypeLogin                  = "Login"
	RequestTypeAddCompleteTransaction = "EFTAddCompleteTransaction"
)

// ProtocolVersion is sent in every Auth block
const ProtocolVersion = 2

// Envelope is the VancoWS document exchanged with the gateway
type Envelope struct {
	XMLName xml.Name `xml:"VancoWS"`
	Auth    Auth     `xml:"Auth"`
	Request Request  `xml:"Request"`
}

// Auth identifies the operation and, after login, the session
type Auth struct {
	RequestType string `xml:"RequestType"`
	RequestID   string `xml:"RequestID"`
	RequestTime string `xml:"RequestTime"`
	SessionID   string `xml:"SessionID,omitempty"`
	Version     int    `xml:"Version"`
}

// Request wraps the operation-specific RequestVars (*LoginVars or *TransactionVars)
type Request struct {
	Vars interface{} `xml:"RequestVars"`
}

type LoginVars struct {
	UserID   string `xml:"UserID"`
	Password string `xml:"Password"`
}

// TransactionVars are the RequestVars of an EFTAddCompleteTransaction.
// Field order is part of the wire contract.
type TransactionVars struct {
	ClientID                string    `xml:"ClientID"`
	CustomerName            string    `xml:"CustomerName"`
	CustomerAddress1        string    `xml:"CustomerAddress1"`
	CustomerAddress2        string    `xml:"CustomerAddress2"`
	CustomerCity            string    `xml:"CustomerCity"`
	CustomerState           string    `xml:"CustomerState"`
	CustomerZip             string    `xml:"CustomerZip"`
	CustomerPhone           string    `xml:"CustomerPhone"`
	AccountType             string    `xml:"AccountType"`
	AccountNumber           string    `xml:"AccountNumber"`
	CardBillingName         string    `xml:"CardBillingName"`
	CardExpMonth            string    `xml:"CardExpMonth"`
	CardExpYear             string    `xml:"CardExpYear"`
	SameCCBillingAddrAsCust string    `xml:"SameCCBillingAddrAsCust"`
	Funds                   FundsList `xml:"Funds"`
	StartDate               string    `xml:"StartDate"`
	FrequencyCode           string    `xml:"FrequencyCode"`
}

type FundsList struct {
	Funds []FundEntry `xml:"Fund"`
}

type FundEntry struct {
	FundID     string `xml:"FundID"`
	FundAmount string `xml:"FundAmount"`
}

// Marshal serializes the envelope. No XML declaration is emitted.
func (e *Envelope) Marshal() ([]byte, error) {
	data, err := xml.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", e.Auth.RequestType, err)
	}
	return data, nil
}
