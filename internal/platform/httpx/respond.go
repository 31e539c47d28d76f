// Package httpx provides HTTP response utilities for the gateway's JSON
// surface. Responses follow the platform envelope convention shared with the
// upstream backend: {code, data?, message?} where code 200 denotes success.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope codes shared with the upstream backend.
const (
	CodeSuccess           = 200
	CodeUnauthorized      = 401
	CodeForbidden         = 403
	CodeNotFound          = 404
	CodeInternalError     = 500
	CodePendingActivation = 1005
	CodePermissionDenied  = 3001
)

// Envelope is the wire shape of every gateway response.
type Envelope struct {
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSON sends a JSON response with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK sends a success envelope with the given payload.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Code: CodeSuccess, Data: data})
}

// Fail sends an error envelope. The HTTP status reflects the envelope code
// when it is a plain HTTP code, otherwise 200 with the domain code inside,
// matching the backend convention for codes like 1005.
func Fail(w http.ResponseWriter, code int, message string) {
	status := code
	if code < 100 || code > 599 {
		status = http.StatusOK
	}
	JSON(w, status, Envelope{Code: code, Message: message})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
