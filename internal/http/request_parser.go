package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"charitytracker/internal/core"
)

var errMalformedBody = fmt.Errorf("%w: malformed request body", core.ErrInvalidInput)

// RequestBodyParser reads a JSON object or a form-encoded body once and
// exposes its fields as strings.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads at most maxBodyBytes of the request body.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if p.err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(p.err, &tooLarge) {
			p.err = fmt.Errorf("%w: request body too large", core.ErrInvalidInput)
		}
	}
	return p
}

// Parse decodes the body as JSON when it looks like an object, otherwise
// as a form. Numbers are kept in their textual form.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = errMalformedBody
			return p.err
		}
		return nil
	}
	if trimmed[0] == '[' {
		p.err = errMalformedBody
		return p.err
	}

	form, err := url.ParseQuery(string(trimmed))
	if err != nil {
		p.err = errMalformedBody
		return p.err
	}
	p.formData = form
	return nil
}

// Get returns a field as a string. Missing or null fields are empty.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return stringValue(p.jsonData[key])
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// donationInput parses and validates a donation submission. The name is
// returned sanitized.
func donationInput(p *RequestBodyParser) (string, core.Money, error) {
	if err := p.Parse(); err != nil {
		return "", core.Money{}, err
	}
	name := core.SanitizeName(p.Get("name"))
	if err := core.ValidateName(name); err != nil {
		return "", core.Money{}, err
	}
	raw := strings.TrimSpace(p.Get("amount"))
	if raw == "" {
		return "", core.Money{}, core.ErrInvalidAmount
	}
	amount, err := core.ParseAmount(raw)
	if err != nil {
		return "", core.Money{}, err
	}
	return name, amount, nil
}
