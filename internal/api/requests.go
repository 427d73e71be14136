package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/runnerr0/travelpins/internal/storage"
	"github.com/runnerr0/travelpins/internal/validation"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type createTripRequest struct {
	PlaceName       *string  `json:"placeName" validate:"required,min=1"`
	Provider        *string  `json:"provider" validate:"omitnil,eq=nominatim"`
	ProviderPlaceID *string  `json:"providerPlaceId" validate:"omitnil,min=1"`
	Lat             *float64 `json:"lat" validate:"required"`
	Lon             *float64 `json:"lon" validate:"required"`
	CategoryKey     *string  `json:"categoryKey" validate:"omitnil,min=1"`
	CategoryEmoji   *string  `json:"categoryEmoji" validate:"omitnil,min=1"`
	DateStart       *string  `json:"dateStart" validate:"required,datetime=2006-01-02"`
	DateEnd         *string  `json:"dateEnd" validate:"omitnil,datetime=2006-01-02"`
}

type updateTripRequest struct {
	PlaceName       *string  `json:"placeName" validate:"omitnil,min=1"`
	Provider        *string  `json:"provider" validate:"omitnil,eq=nominatim"`
	ProviderPlaceID *string  `json:"providerPlaceId" validate:"omitnil,min=1"`
	Lat             *float64 `json:"lat"`
	Lon             *float64 `json:"lon"`
	CategoryKey     *string  `json:"categoryKey" validate:"omitnil,min=1"`
	CategoryEmoji   *string  `json:"categoryEmoji" validate:"omitnil,min=1"`
	DateStart       *string  `json:"dateStart" validate:"omitnil,datetime=2006-01-02"`
	DateEnd         *string  `json:"dateEnd" validate:"omitnil,datetime=2006-01-02"`
}

// bodyField binds one body key to its decode target.
type bodyField struct {
	key      string
	dst      any
	kind     string
	nullable bool
}

func stringField(key string, dst **string, nullable bool) bodyField {
	return bodyField{key: key, dst: dst, kind: "a string", nullable: nullable}
}

func numberField(key string, dst **float64) bodyField {
	return bodyField{key: key, dst: dst, kind: "a number"}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

// decodeFields decodes each known key of a JSON object body. Unknown keys
// are ignored and an empty body counts as {}. The returned set holds the
// nullable keys that were sent as explicit null.
func decodeFields(body []byte, fields []bodyField) (map[string]bool, *validation.RequestValidationError) {
	verr := &validation.RequestValidationError{}
	nulls := make(map[string]bool)

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nulls, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		verr.Add("body", "object", "request body must be a JSON object")
		return nil, verr
	}

	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			continue
		}
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			if f.nullable {
				nulls[f.key] = true
			} else {
				verr.Add(f.key, "null", fmt.Sprintf("%s must not be null", f.key))
			}
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			verr.Add(f.key, "type", fmt.Sprintf("%s must be %s", f.key, f.kind))
		}
	}

	if verr.HasErrors() {
		return nulls, verr
	}
	return nulls, nil
}

// checkRequest runs the struct rules for fields that decoded cleanly.
func checkRequest(req any, decodeErr *validation.RequestValidationError) *validation.RequestValidationError {
	verr := &validation.RequestValidationError{}
	verr.Merge(decodeErr)

	if structErr := validation.ValidateStruct(req); structErr != nil {
		for _, fe := range structErr.Errors() {
			if !verr.Has(fe.Field) {
				verr.Add(fe.Field, fe.Tag, fe.Message)
			}
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func (req *createTripRequest) fields() []bodyField {
	return []bodyField{
		stringField("placeName", &req.PlaceName, false),
		stringField("provider", &req.Provider, false),
		stringField("providerPlaceId", &req.ProviderPlaceID, true),
		numberField("lat", &req.Lat),
		numberField("lon", &req.Lon),
		stringField("categoryKey", &req.CategoryKey, false),
		stringField("categoryEmoji", &req.CategoryEmoji, false),
		stringField("dateStart", &req.DateStart, false),
		stringField("dateEnd", &req.DateEnd, true),
	}
}

func (req *updateTripRequest) fields() []bodyField {
	return []bodyField{
		stringField("placeName", &req.PlaceName, false),
		stringField("provider", &req.Provider, false),
		stringField("providerPlaceId", &req.ProviderPlaceID, true),
		numberField("lat", &req.Lat),
		numberField("lon", &req.Lon),
		stringField("categoryKey", &req.CategoryKey, false),
		stringField("categoryEmoji", &req.CategoryEmoji, false),
		stringField("dateStart", &req.DateStart, false),
		stringField("dateEnd", &req.DateEnd, true),
	}
}

// parseCreateTrip validates a create body and returns the store input.
// Omitted provider and category fields are left empty for the store to
// default.
func parseCreateTrip(body []byte) (storage.NewTrip, *validation.RequestValidationError) {
	var req createTripRequest
	_, decodeErr := decodeFields(body, req.fields())
	if decodeErr != nil && decodeErr.Has("body") {
		return storage.NewTrip{}, decodeErr
	}
	if verr := checkRequest(&req, decodeErr); verr != nil {
		return storage.NewTrip{}, verr
	}

	return storage.NewTrip{
		PlaceName:       *req.PlaceName,
		Provider:        deref(req.Provider),
		ProviderPlaceID: req.ProviderPlaceID,
		Lat:             *req.Lat,
		Lon:             *req.Lon,
		CategoryKey:     deref(req.CategoryKey),
		CategoryEmoji:   deref(req.CategoryEmoji),
		DateStart:       *req.DateStart,
		DateEnd:         req.DateEnd,
	}, nil
}

// parseUpdateTrip validates an update body and returns the patch. An
// explicit null clears providerPlaceId or dateEnd; an omitted key leaves
// the stored value alone.
func parseUpdateTrip(body []byte) (storage.TripPatch, *validation.RequestValidationError) {
	var req updateTripRequest
	nulls, decodeErr := decodeFields(body, req.fields())
	if decodeErr != nil && decodeErr.Has("body") {
		return storage.TripPatch{}, decodeErr
	}
	if verr := checkRequest(&req, decodeErr); verr != nil {
		return storage.TripPatch{}, verr
	}

	return storage.TripPatch{
		PlaceName:       req.PlaceName,
		Provider:        req.Provider,
		ProviderPlaceID: nullable(req.ProviderPlaceID, nulls["providerPlaceId"]),
		Lat:             req.Lat,
		Lon:             req.Lon,
		CategoryKey:     req.CategoryKey,
		CategoryEmoji:   req.CategoryEmoji,
		DateStart:       req.DateStart,
		DateEnd:         nullable(req.DateEnd, nulls["dateEnd"]),
	}, nil
}

func nullable(v *string, isNull bool) storage.Nullable[string] {
	switch {
	case isNull:
		return storage.Null[string]()
	case v != nil:
		return storage.Some(*v)
	default:
		return storage.Nullable[string]{}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
