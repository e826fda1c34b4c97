package provider

import "fmt"

// SendError reports that a provider could not deliver a message. Transport
// failures, rejected responses and client setup failures all end up here.
type SendError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *SendError) Error() string {
	msg := e.Provider + " could not send an email"
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// Failed wraps a transport or client error from the named provider.
func Failed(name, message string, err error) *SendError {
	return &SendError{Provider: name, Message: message, Err: err}
}

// Rejected reports a non-success response from the named provider.
func Rejected(name string, statusCode int, body string) *SendError {
	return &SendError{Provider: name, StatusCode: statusCode, Message: body}
}
