package dispatch

import "encoding/json"

// JSON-RPC 2.0 error codes used on the bridge surface.
const (
	CodeInvalidRequest = -32600
	CodeInternalError  = -32603
)

// Request is the envelope callers submit, over the direct POST path or as a
// message on a stream.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
	ID      any            `json:"id"`
}

// ErrorObject is the error member of a response envelope.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Response is the envelope the bridge always answers with. Exactly one of
// Result and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// resultResponse wraps a raw backend result, echoing the caller's id.
func resultResponse(id any, result json.RawMessage) Response {
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

// errorResponse wraps a failure, echoing the caller's id. id is nil only
// when the request could not be correlated at all.
func errorResponse(id any, code int, message string, data any) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: &ErrorObject{Code: code, Message: message, Data: data}}
}
