// Package rpc implements the JSON-RPC 2.0 envelope the gateway speaks on
// both sides: requests arriving from the client and responses returned to it.
//
// The gateway never interprets payloads beyond the envelope fields needed for
// routing. Correlation IDs in particular are opaque: they are carried as raw
// JSON and echoed verbatim, whether the caller chose a string or a number.
package rpc

import (
	"encoding/json"
	"fmt"
)

// Version is the protocol tag carried by every envelope.
const Version = "2.0"

// CodeBackendUnreachable is the application-level error code returned when a
// request could not be delivered to the backend. The transport status is
// still 200; only the envelope carries the failure.
const CodeBackendUnreachable = -32000

// CodeInternalError is returned when the gateway itself failed while
// processing a request.
const CodeInternalError = -32603

// NullID is the correlation ID used when the inbound envelope could not be
// parsed. The response must still be delivered with the best available ID.
var NullID = json.RawMessage("null")

// Request is an inbound envelope. Params is kept raw so the gateway can
// forward payloads byte-for-byte without understanding them.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// Error is the error object of a response envelope.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is an outbound envelope. Exactly one of Result and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// ParseRequest decodes an inbound envelope. Callers must tolerate failure:
// an unparseable body is still routed (forwarded as opaque bytes) and
// answered with a null correlation ID.
func ParseRequest(body []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request envelope: %w", err)
	}
	return &req, nil
}

// CorrelationID returns the request's ID, or NullID if the caller omitted it.
func (r *Request) CorrelationID() json.RawMessage {
	if len(r.ID) == 0 {
		return NullID
	}
	return r.ID
}

// NewResult encodes a success envelope carrying the given result.
func NewResult(id json.RawMessage, result any) []byte {
	return encode(Response{
		JSONRPC: Version,
		Result:  result,
		ID:      normalizeID(id),
	})
}

// NewError encodes an error envelope with the given code and message.
func NewError(id json.RawMessage, code int, message string) []byte {
	return encode(Response{
		JSONRPC: Version,
		Error:   &Error{Code: code, Message: message},
		ID:      normalizeID(id),
	})
}

func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return NullID
	}
	return id
}

func encode(resp Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		// Result values are maps of JSON-safe types, so this only happens on
		// a programming error. Deliver a well-formed envelope regardless.
		return []byte(`{"jsonrpc":"2.0","error":{"code":-32603,"message":"failed to encode response"},"id":null}`)
	}
	return data
}
