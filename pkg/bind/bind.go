// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/marketplace/config"
	"github.com/shashiranjanraj/marketplace/pkg/validate"
)

const defaultMaxBody = 1 << 20

func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", ""), 10, 64)
	if err != nil || n <= 0 {
		return defaultMaxBody
	}
	return n
}

// JSON decodes r.Body into dest and runs the validate tags on it.
// It returns (errs, nil) on validation failures and (nil, err) when the
// body is missing, malformed or larger than MAX_BODY_BYTES.
func JSON(r *http.Request, dest interface{}) (map[string]string, error) {
	if r.Body == nil {
		return nil, errors.New("request body is required")
	}
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err := json.NewDecoder(body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return nil, errors.New("request body is required")
		default:
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
