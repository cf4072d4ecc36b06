package testkit

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffJSONIgnoresExtraKeys(t *testing.T) {
	exp := map[string]interface{}{"success": true, "order": map[string]interface{}{"status": "Pending"}}
	act := map[string]interface{}{"success": true, "order": map[string]interface{}{"status": "Pending", "id": 7.0}}

	assert.Empty(t, DiffJSON("", exp, act))
}

func TestDiffJSONReportsMismatches(t *testing.T) {
	exp := map[string]interface{}{"items": []interface{}{1.0, 2.0}, "name": "a"}
	act := map[string]interface{}{"items": []interface{}{1.0}}

	diffs := DiffJSON("", exp, act)
	assert.Len(t, diffs, 2)
}

func TestDoSendsBearerToken(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"auth":"` + r.Header.Get("Authorization") + `"}`))
	})

	rec := Do(t, h, Request{Method: http.MethodPost, Path: "/", Token: "abc", Body: map[string]int{"n": 1}})
	AssertStatus(t, http.StatusOK, rec)
	AssertJSONSubset(t, `{"auth":"Bearer abc"}`, rec)

	var auth string
	Decode(t, rec, "auth", &auth)
	assert.Equal(t, "Bearer abc", auth)
}
