//go:build unit || e2e

package httptest

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ErrorBody mirrors httperr.Response on the wire.
type ErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
}

// AssertSuccessResponse checks the status and, for 2xx, decodes into target.
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	t.Helper()

	if !assert.Equalf(t, expectedStatus, w.Code, "response: %s", w.Body.String()) {
		return
	}
	if target == nil || expectedStatus < 200 || expectedStatus >= 300 {
		return
	}
	assert.NoErrorf(t, json.Unmarshal(w.Body.Bytes(), target), "decode: %s", w.Body.String())
}

// AssertErrorResponse checks the status and that the message contains msg.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, msg string) ErrorBody {
	t.Helper()

	assert.Equalf(t, expectedStatus, w.Code, "response: %s", w.Body.String())

	var body ErrorBody
	require.NoErrorf(t, json.Unmarshal(w.Body.Bytes(), &body), "decode error body: %s", w.Body.String())
	if msg != "" {
		assert.Contains(t, body.Error.Message, msg)
	}
	return body
}

// AssertConflictCode checks a 409 whose detail carries the given code.
func AssertConflictCode(t *testing.T, w *httptest.ResponseRecorder, code string) {
	t.Helper()

	body := AssertErrorResponse(t, w, 409, "")
	var detail struct {
		Code string `json:"code"`
	}
	require.NoErrorf(t, json.Unmarshal(body.Detail, &detail), "decode detail: %s", string(body.Detail))
	assert.Equal(t, code, detail.Code)
}

func AssertHeaders(t *testing.T, w *httptest.ResponseRecorder, expected map[string]string) {
	t.Helper()
	for k, v := range expected {
		assert.Equalf(t, v, w.Header().Get(k), "header %s", k)
	}
}
