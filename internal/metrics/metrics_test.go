package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSearch(t *testing.T) {
	before := testutil.ToFloat64(SearchRequests.WithLabelValues("cache_hit"))
	RecordSearch("cache_hit")
	RecordSearch("cache_hit")
	assert.Equal(t, before+2, testutil.ToFloat64(SearchRequests.WithLabelValues("cache_hit")))
}

func TestRecordTripMutation(t *testing.T) {
	okBefore := testutil.ToFloat64(TripMutations.WithLabelValues("create", "ok"))
	errBefore := testutil.ToFloat64(TripMutations.WithLabelValues("create", "error"))

	RecordTripMutation("create", nil)
	RecordTripMutation("create", errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(TripMutations.WithLabelValues("create", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(TripMutations.WithLabelValues("create", "error")))
}

func TestRecordHTTP_DefaultsStatus(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("/api/health", "GET", "200"))
	RecordHTTP("/api/health", "GET", 0, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequests.WithLabelValues("/api/health", "GET", "200")))
}

func TestHistogramsAcceptObservations(t *testing.T) {
	RecordUpstream(200, 120*time.Millisecond)
	RecordUpstream(0, time.Second)
	RecordGateWait(500 * time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(UpstreamDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(GateWait))
}
