// ABOUTME: Backend response envelope and the structured error it carries
// ABOUTME: Decodes envelope data into typed values without throwing past the caller

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Client-side error codes. Backend codes (e.g. "AUTH_401") pass through verbatim.
const (
	CodeNetworkError    = "NETWORK_ERROR"
	CodeInvalidResponse = "INVALID_RESPONSE"
	CodeEncodeError     = "ENCODE_ERROR"
	CodeDecodeError     = "DECODE_ERROR"
	CodeEmptyResponse   = "EMPTY_RESPONSE"
	CodeUnknown         = "UNKNOWN_ERROR"
)

// Envelope is the uniform {success, data, error} wrapper of every response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a backend- or transport-reported failure.
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Malformed reports whether the failure describes a request or response the
// client could not encode or understand. Such messages are diagnostics, not
// text from the backend.
func (e *Error) Malformed() bool {
	switch e.Code {
	case CodeEncodeError, CodeDecodeError, CodeInvalidResponse:
		return true
	}
	return false
}

func (e *Error) Error() string {
	switch {
	case e.Message == "":
		return e.Code
	case e.Code == "":
		return e.Message
	default:
		return e.Code + ": " + e.Message
	}
}

// Failure builds an unsuccessful envelope.
func Failure(code, message string) Envelope {
	return Envelope{Error: &Error{Code: code, Message: message}}
}

// Err returns the envelope's error, or nil when it reports success.
func (e Envelope) Err() *Error {
	if e.Success {
		return nil
	}
	if e.Error != nil {
		return e.Error
	}
	return &Error{Code: CodeUnknown}
}

// hasData reports whether the envelope carries a non-null data payload.
func (e Envelope) hasData() bool {
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// decode unmarshals the envelope's data into a new T. A successful envelope
// without data is treated as a failure, matching "success && data".
func decode[T any](env Envelope) (*T, error) {
	if err := env.Err(); err != nil {
		return nil, err
	}
	if !env.hasData() {
		return nil, &Error{Code: CodeEmptyResponse}
	}

	v := new(T)
	if err := json.Unmarshal(env.Data, v); err != nil {
		return nil, &Error{Code: CodeDecodeError, Message: fmt.Sprintf("decoding data: %v", err)}
	}
	return v, nil
}

// ack checks an envelope whose data is irrelevant.
func ack(env Envelope) error {
	if err := env.Err(); err != nil {
		return err
	}
	return nil
}
