package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/runnerr0/travelpins/internal/logging"
	"github.com/runnerr0/travelpins/internal/metrics"
	"github.com/runnerr0/travelpins/internal/search"
	"github.com/runnerr0/travelpins/internal/storage"
	"github.com/runnerr0/travelpins/internal/validation"
)

// ExportFilename is the attachment name of the export download.
const ExportFilename = "trips-export.json"

// Searcher runs place searches.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Handler serves the trip and search endpoints.
type Handler struct {
	store    storage.Store
	searcher Searcher
}

// NewHandler creates a Handler.
func NewHandler(store storage.Store, searcher Searcher) *Handler {
	return &Handler{store: store, searcher: searcher}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// ListTrips returns every trip, newest start date first.
func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.store.ListTrips(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// GetTrip returns one trip.
func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	trip, err := h.store.GetTrip(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// CreateTrip stores a new trip and returns it with 201.
func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeValidationError(w, bodyError(err))
		return
	}

	in, verr := parseCreateTrip(body)
	if verr != nil {
		writeValidationError(w, verr)
		return
	}

	trip, err := h.store.CreateTrip(r.Context(), in)
	metrics.RecordTripMutation("create", err)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("trip_id", trip.ID).Str("place", trip.PlaceName).Msg("trip created")
	writeJSON(w, http.StatusCreated, trip)
}

// UpdateTrip applies a partial update and returns the stored result.
func (h *Handler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeValidationError(w, bodyError(err))
		return
	}

	patch, verr := parseUpdateTrip(body)
	if verr != nil {
		writeValidationError(w, verr)
		return
	}

	trip, err := h.store.UpdateTrip(r.Context(), id, patch)
	metrics.RecordTripMutation("update", err)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("trip_id", trip.ID).Msg("trip updated")
	writeJSON(w, http.StatusOK, trip)
}

// DeleteTrip removes a trip. Unknown ids succeed.
func (h *Handler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	err := h.store.DeleteTrip(r.Context(), id)
	metrics.RecordTripMutation("delete", err)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("trip_id", id).Msg("trip deleted")
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// ExportTrips sends every trip as a downloadable JSON document.
func (h *Handler) ExportTrips(w http.ResponseWriter, r *http.Request) {
	export, err := h.store.Export(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		writeStoreError(w, r, fmt.Errorf("encode export: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("failed to write export")
	}
}

// Search proxies a place search through the gateway.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.searcher.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// tripID parses the {id} path parameter, replying 400 when it is not an
// integer.
func tripID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func bodyError(err error) *validation.RequestValidationError {
	verr := &validation.RequestValidationError{}
	verr.Add("body", "read", fmt.Sprintf("could not read request body: %v", err))
	return verr
}
