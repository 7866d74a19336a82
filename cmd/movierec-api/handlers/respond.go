// Package handlers provides HTTP handlers for the movie recommender API.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Sadana31/movieAPI/internal/observability"
	"github.com/Sadana31/movieAPI/internal/validation"
)

// maxBodyBytes bounds request bodies; every request here is a few fields.
const maxBodyBytes = 1 << 20

// ErrorResponseDTO is the body of every non-2xx response except a rejected
// title resolution.
type ErrorResponseDTO struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message"`
	Detail  string                  `json:"detail,omitempty"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *observability.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, logger *observability.Logger, status int, message, detail string) {
	writeJSON(w, logger, status, ErrorResponseDTO{
		Error:   message,
		Message: message,
		Detail:  detail,
	})
}

// writeValidationError reports rule failures with 422, or 400 when err is
// not a validation failure.
func writeValidationError(w http.ResponseWriter, logger *observability.Logger, err error) {
	var reqErr *validation.RequestError
	if !errors.As(err, &reqErr) {
		writeError(w, logger, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	writeJSON(w, logger, http.StatusUnprocessableEntity, ErrorResponseDTO{
		Error:   "validation failed",
		Message: reqErr.Error(),
		Fields:  reqErr.Fields,
	})
}

// decodeJSON reads a JSON body into dst. Unknown fields are ignored. An
// empty body decodes as an empty object.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
