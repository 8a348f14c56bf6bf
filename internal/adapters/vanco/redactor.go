package vanco

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"

	"github.com/kevin07696/vanco-gateway/internal/domain"
)

// RedactionMask replaces masked element content
const RedactionMask = "#####"

// Redactor produces audit-safe copies of request documents
type Redactor struct {
	fields map[string]struct{}
}

// NewRedactor masks AccountNumber plus any extra element names given
func NewRedactor(extraFields ...string) *Redactor {
	fields := map[string]struct{}{"AccountNumber": {}}
	for _, f := range extraFields {
		fields[f] = struct{}{}
	}
	return &Redactor{fields: fields}
}

// Redact re-encodes doc token by token, replacing the content of every masked element
// with RedactionMask. doc itself is never modified.
func (r *Redactor) Redact(doc []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	// depth > 0 while inside a masked element
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewProtocolError("request document is not well-formed XML", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth > 0 {
				depth++
				continue
			}
			if _, ok := r.fields[t.Name.Local]; ok {
				if err := enc.EncodeToken(t); err != nil {
					return nil, domain.NewProtocolError("failed to encode redacted document", err)
				}
				if err := enc.EncodeToken(xml.CharData(RedactionMask)); err != nil {
					return nil, domain.NewProtocolError("failed to encode redacted document", err)
				}
				depth = 1
				continue
			}
		case xml.EndElement:
			if depth > 0 {
				depth--
				if depth > 0 {
					continue
				}
			}
		default:
			if depth > 0 {
				continue
			}
		}

		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return nil, domain.NewProtocolError("failed to encode redacted document", err)
		}
	}

	if err := enc.Flush(); err != nil {
		return nil, domain.NewProtocolError("failed to encode redacted document", err)
	}
	return buf.Bytes(), nil
}
