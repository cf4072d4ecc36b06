package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/marketplace/config"
)

type quantityInput struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestJSONDecodesValidBody(t *testing.T) {
	var in quantityInput
	errs, err := JSON(post(`{"quantity":3}`), &in)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, 3, in.Quantity)
}

func TestJSONReportsFieldErrors(t *testing.T) {
	var in quantityInput
	errs, err := JSON(post(`{"quantity":0}`), &in)
	require.NoError(t, err)
	assert.Contains(t, errs, "quantity")
}

func TestJSONRejectsEmptyAndMalformedBodies(t *testing.T) {
	var in quantityInput

	_, err := JSON(post(``), &in)
	assert.EqualError(t, err, "request body is required")

	_, err = JSON(post(`{"quantity":`), &in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestJSONCapsBodySize(t *testing.T) {
	config.Set("MAX_BODY_BYTES", "16")
	t.Cleanup(func() { config.Set("MAX_BODY_BYTES", "") })

	var in quantityInput
	_, err := JSON(post(`{"quantity":1,"padding":"xxxxxxxxxxxxxxxx"}`), &in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
