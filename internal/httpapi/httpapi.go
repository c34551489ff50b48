package httpapi

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in ErrorEnvelope.Code.
const (
	CodeUnauthorized = "unauthorized"
	CodeValidation   = "validation_error"
	CodeBadRequest   = "bad_request"
	CodeConflict     = "conflict"
	CodeNotFound     = "not_found"
	CodeStoreError   = "store_error"
)

// ErrorEnvelope is the JSON body of every error response.
type ErrorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, &ErrorEnvelope{Code: code, Message: message})
}

// WriteErrorMeta is WriteError with extra detail, e.g. the offending field.
func WriteErrorMeta(w http.ResponseWriter, status int, code, message string, meta map[string]string) {
	WriteJSON(w, status, &ErrorEnvelope{Code: code, Message: message, Meta: meta})
}
