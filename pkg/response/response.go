// Package response writes the JSON envelopes every API handler returns.
//
// Success bodies carry "success": true plus one named payload field
// ({"success":true,"order":{...}}); failures carry "success": false, a
// message and, for validation failures, a field error map.
package response

import (
	"encoding/json"
	"net/http"
)

// Body is a success envelope under construction.
type Body map[string]interface{}

type failure struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// With builds {"success":true, key: data}.
func With(key string, data interface{}) Body {
	return Body{"success": true, key: data}
}

// Success sends 200 {"success":true, key: data}.
func Success(w http.ResponseWriter, key string, data interface{}) {
	JSON(w, http.StatusOK, With(key, data))
}

// Created sends 201 {"success":true, key: data}.
func Created(w http.ResponseWriter, key string, data interface{}) {
	JSON(w, http.StatusCreated, With(key, data))
}

// Message sends 200 {"success":true,"message":msg}.
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, With("message", msg))
}

// Error sends a failure envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, failure{Message: message})
}

// ValidationError sends 400 with a field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	Invalid(w, "Validation failed", errs)
}

// Invalid sends 400 with a custom message and the field error map.
func Invalid(w http.ResponseWriter, message string, errs map[string]string) {
	JSON(w, http.StatusBadRequest, failure{Message: message, Errors: errs})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}
