package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusConflict, CodeConflict, "duplicate")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, ErrorEnvelope{Code: CodeConflict, Message: "duplicate"}, env)
}

func TestWriteErrorMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorMeta(rec, http.StatusBadRequest, CodeValidation, "company required",
		map[string]string{"field": "company", "rule": "required"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"code":"validation_error","message":"company required","meta":{"field":"company","rule":"required"}}`,
		rec.Body.String())

	rec = httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, CodeNotFound, "not found")
	assert.NotContains(t, rec.Body.String(), "meta")
}

func TestWriteJSON_NilPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
