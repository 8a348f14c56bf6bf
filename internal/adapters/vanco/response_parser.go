package vanco

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/kevin07696/vanco-gateway/internal/domain"
)

// node is a generic element tree. Lookups are by local name anywhere below a node,
// matching how the gateway nests Errors and Response differently per operation.
type node struct {
	XMLName xml.Name
	Content string `xml:",chardata"`
	Nodes   []node `xml:",any"`
}

func parseDocument(doc []byte) (*node, error) {
	var root node
	dec := xml.NewDecoder(bytes.NewReader(doc))
	if err := dec.Decode(&root); err != nil {
		return nil, domain.NewProtocolError("response is not well-formed XML", err)
	}
	return &root, nil
}

// find returns the first element named name in n's subtree (n included), depth-first
func (n *node) find(name string) *node {
	if n.XMLName.Local == name {
		return n
	}
	for i := range n.Nodes {
		if found := n.Nodes[i].find(name); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every element named name strictly below n, in document order
func (n *node) findAll(name string) []*node {
	var out []*node
	for i := range n.Nodes {
		child := &n.Nodes[i]
		if child.XMLName.Local == name {
			out = append(out, child)
		}
		out = append(out, child.findAll(name)...)
	}
	return out
}

func (n *node) text() string {
	return strings.TrimSpace(n.Content)
}

// ResponseParser turns gateway responses into domain values
type ResponseParser struct {
	redactor *Redactor
}

func NewResponseParser(redactor *Redactor) *ResponseParser {
	if redactor == nil {
		redactor = NewRedactor()
	}
	return &ResponseParser{redactor: redactor}
}

// ExtractToken reads the SessionID from a Login response
func (p *ResponseParser) ExtractToken(doc []byte) (string, error) {
	root, err := parseDocument(doc)
	if err != nil {
		return "", err
	}

	if session := root.find("SessionID"); session != nil && session.text() != "" {
		return session.text(), nil
	}

	protoErr := domain.NewProtocolError("login response has no SessionID", nil)
	if errs, _ := gatewayErrors(root); len(errs) > 0 {
		protoErr.WithDetail("gateway_errors", errs)
	}
	return "", protoErr
}

// Parse classifies a transaction response.
//
// A response is successful iff it carries no Errors/Error entries. On success the
// CustomerRef, PaymentMethodRef and TransactionRef fields must all be integers; on
// failure every Error must carry an integer ErrorCode. Anything else is a protocol error,
// so a returned result always satisfies the success/failure exclusivity of TransactionResult.
func (p *ResponseParser) Parse(response, originalRequest []byte) (*domain.TransactionResult, error) {
	root, err := parseDocument(response)
	if err != nil {
		return nil, err
	}

	redacted, err := p.redactor.Redact(originalRequest)
	if err != nil {
		return nil, err
	}

	result := &domain.TransactionResult{
		Errors:      map[int]string{},
		RawRequest:  string(redacted),
		RawResponse: strings.TrimSpace(string(response)),
	}

	errs, err := gatewayErrors(root)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		result.Success = false
		result.Message = domain.ResultMessageError
		result.Errors = errs
		return result, nil
	}

	resp := root.find("Response")
	if resp == nil {
		return nil, domain.NewProtocolError("response has neither Errors nor Response section", nil)
	}

	customerID, err := intField(resp, "CustomerRef")
	if err != nil {
		return nil, err
	}
	paymentID, err := intField(resp, "PaymentMethodRef")
	if err != nil {
		return nil, err
	}
	transactionID, err := intField(resp, "TransactionRef")
	if err != nil {
		return nil, err
	}

	result.Success = true
	result.Message = domain.ResultMessageSuccess
	result.CustomerID = &customerID
	result.PaymentID = &paymentID
	result.TransactionID = &transactionID
	return result, nil
}

// gatewayErrors collects Errors/Error entries as code -> description; a repeated code keeps the last description
func gatewayErrors(root *node) (map[int]string, error) {
	section := root.find("Errors")
	if section == nil {
		return nil, nil
	}

	entries := section.findAll("Error")
	if len(entries) == 0 {
		return nil, nil
	}

	errs := make(map[int]string, len(entries))
	for _, entry := range entries {
		codeNode := entry.find("ErrorCode")
		if codeNode == nil {
			return nil, domain.NewProtocolError("error entry has no ErrorCode", nil)
		}
		code, err := strconv.Atoi(codeNode.text())
		if err != nil {
			return nil, domain.NewProtocolError("ErrorCode is not an integer", err).
				WithDetail("error_code", codeNode.text())
		}

		description := ""
		if desc := entry.find("ErrorDescription"); desc != nil {
			description = desc.text()
		}
		errs[code] = description
	}
	return errs, nil
}

func intField(parent *node, name string) (int64, error) {
	field := parent.find(name)
	if field == nil {
		return 0, domain.NewProtocolError("response is missing "+name, nil)
	}
	value, err := strconv.ParseInt(field.text(), 10, 64)
	if err != nil {
		return 0, domain.NewProtocolError(name+" is not an integer", err).
			WithDetail("value", field.text())
	}
	return value, nil
}
