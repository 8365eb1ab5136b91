package backend

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the response shape of every backend endpoint.
// Status 1 is success; anything else, including a missing field, is a
// business failure carrying a user-facing message.
type Envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// OK reports whether the backend accepted the request
func (e *Envelope) OK() bool {
	return e.Status == 1
}

// ErrBackendUnavailable covers every transport-level failure: dial errors,
// timeouts, 5xx responses and bodies that are not an envelope.
var ErrBackendUnavailable = errors.New("backend unavailable")

const defaultFailureMessage = "Request failed"

// BusinessError is a status != 1 envelope
type BusinessError struct {
	Endpoint string
	Status   int
	Message  string
	// Data is kept for endpoints that return details with a failure,
	// such as bulk import row errors.
	Data json.RawMessage
}

// Error returns the server message
func (e *BusinessError) Error() string {
	if e.Message == "" {
		return defaultFailureMessage
	}
	return e.Message
}

// UserMessage is shown verbatim in the failure toast
func (e *BusinessError) UserMessage() string {
	return e.Error()
}

// IsBusinessError reports whether err is a rejected envelope
func IsBusinessError(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}

func unavailable(endpoint string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrBackendUnavailable, endpoint, fmt.Sprintf(format, args...))
}

// decode branches on envelope status and unmarshals data into out
func decode(endpoint string, body []byte, out any) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, unavailable(endpoint, "decode envelope: %v", err)
	}
	if !env.OK() {
		return &env, &BusinessError{
			Endpoint: endpoint,
			Status:   env.Status,
			Message:  env.Message,
			Data:     env.Data,
		}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &env, unavailable(endpoint, "decode data: %v", err)
		}
	}
	return &env, nil
}
