// internal/common/utils/response.go
// Standardized API responses ensure consistency across all endpoints

package utils

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/imadgeboyega/covenant-backend/internal/common/apperrors"
	"github.com/imadgeboyega/covenant-backend/internal/common/logger"
)

// ErrorBody is the JSON shape of every rejection
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RespondWithJSON sends a JSON response with the specified status code and payload
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Error marshaling JSON"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError sends an error response with the specified status code and message
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorBody{Error: message})
}

// RespondWithAppError maps err through the error taxonomy. Unclassified
// errors are logged and reported as a generic internal error.
func RespondWithAppError(ctx context.Context, w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Ctx(ctx).Error().Err(err).Int("status", status).Msg("request failed")
	}
	code, message := apperrors.Public(err)
	RespondWithJSON(w, status, ErrorBody{Error: message, Code: code})
}

// DecodeJSON reads a JSON request body into dst
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.Validation("invalid_body", "invalid request body")
	}
	return nil
}
