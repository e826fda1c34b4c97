// Package request validates and decodes the body of a mail request.
//
// A valid body is a JSON object with exactly the string keys "to", "topic"
// and "content".
package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shineum/mail-sending-service/internal/email"
)

// Wire keys of a mail request.
const (
	KeyTo      = "to"
	KeyTopic   = "topic"
	KeyContent = "content"
)

// requiredKeys lists the keys in the order missing keys are reported.
var requiredKeys = []string{KeyTo, KeyTopic, KeyContent}

// ErrNotJSON is returned when the body is not a flat JSON object of strings.
var ErrNotJSON = errors.New("request is not a json")

// IllegalKeyError reports a key that is not part of a mail request.
type IllegalKeyError struct {
	Key string
}

func (e *IllegalKeyError) Error() string {
	return fmt.Sprintf("Illegal key '%s'", e.Key)
}

// MissingKeyError reports a required key absent from the request.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("Missing key '%s'", e.Key)
}

// IsValidationError reports whether err is one of the errors returned by
// Parse for a malformed body.
func IsValidationError(err error) bool {
	var illegal *IllegalKeyError
	var missing *MissingKeyError
	return errors.Is(err, ErrNotJSON) || errors.As(err, &illegal) || errors.As(err, &missing)
}

// Parse validates body and builds the message it describes. Illegal keys are
// reported before missing ones; the first illegal key in document order wins,
// and missing keys are checked in the order to, topic, content. Values are
// checked last: every one must be a JSON string.
func Parse(body []byte) (*email.Message, error) {
	fields, order, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	for _, key := range order {
		if !isAllowed(key) {
			return nil, &IllegalKeyError{Key: key}
		}
	}
	for _, key := range requiredKeys {
		if _, ok := fields[key]; !ok {
			return nil, &MissingKeyError{Key: key}
		}
	}

	values := make(map[string]string, len(requiredKeys))
	for _, key := range requiredKeys {
		raw := fields[key]
		// Decoding null into a string is a no-op, so check the raw value.
		if len(raw) == 0 || raw[0] != '"' {
			return nil, ErrNotJSON
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, ErrNotJSON
		}
		values[key] = v
	}

	return email.New(values[KeyTo], values[KeyTopic], values[KeyContent]), nil
}

func isAllowed(key string) bool {
	for _, k := range requiredKeys {
		if k == key {
			return true
		}
	}
	return false
}

// decodeObject reads a single JSON object and returns its raw values along
// with the keys in the order they appear.
func decodeObject(body []byte) (map[string]json.RawMessage, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, ErrNotJSON
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, ErrNotJSON
	}

	fields := make(map[string]json.RawMessage)
	var order []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, ErrNotJSON
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, ErrNotJSON
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, ErrNotJSON
		}

		if _, seen := fields[key]; !seen {
			order = append(order, key)
		}
		fields[key] = raw
	}

	// Closing brace, then nothing but whitespace.
	if _, err := dec.Token(); err != nil {
		return nil, nil, ErrNotJSON
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, ErrNotJSON
	}

	return fields, order, nil
}
