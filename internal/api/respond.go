// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/tomtom215/kinograph/internal/logging"
)

// maxBodyBytes bounds request bodies to keep decode costs predictable.
const maxBodyBytes = 1 << 20

// validate is the shared validator instance. validator.Validate is
// concurrency-safe and caches struct metadata, so one instance serves
// all handlers.
var validate = validator.New()

// errorBody is the wire shape of every error response.
type errorBody struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response body")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message, detail string) {
	writeJSON(w, status, errorBody{
		Error:     message,
		Detail:    detail,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// The returned error text is safe to echo to the client.
func decodeAndValidate(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("field %q failed validation rule %q", f.Field(), f.Tag())
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
