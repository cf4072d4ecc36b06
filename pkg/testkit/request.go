package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Request describes one call against an http.Handler.
type Request struct {
	Method string
	Path   string
	Token  string
	Body   interface{} // marshalled as JSON; a string is sent verbatim
}

// Do runs req against handler and returns the recorded response.
func Do(t testing.TB, handler http.Handler, req Request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	switch b := req.Body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err, "testkit: marshal request body")
		body = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(req.Method, req.Path, body)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		r.Header.Set("Authorization", "Bearer "+req.Token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	return rec
}

// DecodeJSON unmarshals the recorded body into a generic map.
func DecodeJSON(t testing.TB, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "testkit: body is not a JSON object: %s", rec.Body.String())
	return out
}

// Decode unmarshals a single field of the JSON body into dest.
func Decode(t testing.TB, rec *httptest.ResponseRecorder, field string, dest interface{}) {
	t.Helper()

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), "testkit: body is not a JSON object: %s", rec.Body.String())
	raw, ok := envelope[field]
	require.True(t, ok, "testkit: field %q missing from %s", field, rec.Body.String())
	require.NoError(t, json.Unmarshal(raw, dest), "testkit: decode field %q", field)
}
