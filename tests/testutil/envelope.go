package testutil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/roombook/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope is dto.Response with the payload left undecoded
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *dto.ErrorInfo  `json:"error,omitempty"`
	Meta    *dto.Meta       `json:"meta,omitempty"`
}

// DecodeEnvelope parses the response body as an API envelope
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// DecodeData parses the envelope payload into T
func DecodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := DecodeEnvelope(t, w)
	require.True(t, env.Success, w.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// AssertErrorResponse checks status and error code of a failed request and
// returns the error for further checks
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, status int, code string) *dto.ErrorInfo {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	env := DecodeEnvelope(t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error, "expected an error object")
	assert.Equal(t, code, env.Error.Code)
	return env.Error
}
