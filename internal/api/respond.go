package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/runnerr0/travelpins/internal/geocoder"
	"github.com/runnerr0/travelpins/internal/logging"
	"github.com/runnerr0/travelpins/internal/storage"
	"github.com/runnerr0/travelpins/internal/validation"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error       string              `json:"error"`
	FieldErrors map[string][]string `json:"fieldErrors,omitempty"`
	Status      int                 `json:"status,omitempty"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// columnFields maps store column names to request body keys.
var columnFields = map[string]string{
	"place_name":        "placeName",
	"provider":          "provider",
	"provider_place_id": "providerPlaceId",
	"category_key":      "categoryKey",
	"category_emoji":    "categoryEmoji",
	"date_start":        "dateStart",
	"date_end":          "dateEnd",
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeValidationError(w http.ResponseWriter, verr *validation.RequestValidationError) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:       "Invalid request",
		FieldErrors: verr.FieldErrors(),
	})
}

// writeStoreError maps a store or gateway failure to its HTTP reply.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var cv *storage.ConstraintViolation
	var upErr *geocoder.UpstreamError

	switch {
	case errors.As(err, &cv):
		field, ok := columnFields[cv.Field]
		if !ok {
			field = cv.Field
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:       "Invalid request",
			FieldErrors: map[string][]string{field: {cv.Message}},
		})
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.As(err, &upErr):
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:  "Geocoder error",
			Status: upErr.Status,
		})
	default:
		logging.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}
