package testkit

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatus checks the response code and prints the body on mismatch.
func AssertStatus(t testing.TB, want int, rec *httptest.ResponseRecorder) bool {
	t.Helper()
	return assert.Equal(t, want, rec.Code, "unexpected status, body: %s", rec.Body.String())
}

// AssertJSONSubset checks that every key in expected (a JSON document) is
// present in the response body with an equal value. Keys the response has
// beyond expected are ignored, so ids and timestamps need not be pinned.
func AssertJSONSubset(t testing.TB, expected string, rec *httptest.ResponseRecorder) {
	t.Helper()

	var expVal, actVal interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expVal), "expected document is not valid JSON")
	if !assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &actVal), "body is not valid JSON: %s", rec.Body.String()) {
		return
	}

	if diffs := DiffJSON("", expVal, actVal); len(diffs) > 0 {
		t.Errorf("response body mismatch:\n%s\nbody: %s", strings.Join(diffs, "\n"), rec.Body.String())
	}
}

// DiffJSON returns human-readable differences between two JSON-decoded
// values. Object comparison only visits the keys of expected.
func DiffJSON(path string, expected, actual interface{}) []string {
	var diffs []string
	switch exp := expected.(type) {
	case map[string]interface{}:
		act, ok := actual.(map[string]interface{})
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected object, got %T", keyPath(path), actual))
		}
		for k, ev := range exp {
			p := keyPath(path) + "." + k
			av, exists := act[k]
			if !exists {
				diffs = append(diffs, fmt.Sprintf("  %s: missing in actual", p))
				continue
			}
			diffs = append(diffs, DiffJSON(p, ev, av)...)
		}
	case []interface{}:
		act, ok := actual.([]interface{})
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected array, got %T", keyPath(path), actual))
		}
		if len(exp) != len(act) {
			diffs = append(diffs, fmt.Sprintf("  %s: array length expected=%d actual=%d", keyPath(path), len(exp), len(act)))
		}
		for i := 0; i < len(exp) && i < len(act); i++ {
			diffs = append(diffs, DiffJSON(fmt.Sprintf("%s[%d]", keyPath(path), i), exp[i], act[i])...)
		}
	default:
		if fmt.Sprintf("%v", expected) != fmt.Sprintf("%v", actual) {
			diffs = append(diffs, fmt.Sprintf("  %s:\n    - %v\n    + %v", keyPath(path), expected, actual))
		}
	}
	return diffs
}

func keyPath(path string) string {
	if path == "" {
		return "root"
	}
	return strings.TrimPrefix(path, ".")
}
