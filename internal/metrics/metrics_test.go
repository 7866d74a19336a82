package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/search", "200"))
	RecordAPIRequest("GET", "/search", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/search", "200"))
	assert.Equal(t, before+1, after)
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(APIActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(APIActiveRequests))
}

func TestRecordResolution(t *testing.T) {
	exact := testutil.ToFloat64(TitleResolutions.WithLabelValues(ResolutionExact))
	rejected := testutil.ToFloat64(TitleResolutions.WithLabelValues(ResolutionRejected))

	RecordResolution(ResolutionExact, 100)
	RecordResolution(ResolutionRejected, 42)

	assert.Equal(t, exact+1, testutil.ToFloat64(TitleResolutions.WithLabelValues(ResolutionExact)))
	assert.Equal(t, rejected+1, testutil.ToFloat64(TitleResolutions.WithLabelValues(ResolutionRejected)))
}

func TestRecordCache(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("search"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("search"))

	RecordCache("search", true)
	RecordCache("search", false)
	RecordCache("search", false)

	assert.Equal(t, hits+1, testutil.ToFloat64(CacheHits.WithLabelValues("search")))
	assert.Equal(t, misses+2, testutil.ToFloat64(CacheMisses.WithLabelValues("search")))
}

func TestRecordArtifactLoad(t *testing.T) {
	RecordArtifactLoad(4803, 2*time.Second)
	assert.Equal(t, 4803.0, testutil.ToFloat64(CatalogItems))
	assert.Equal(t, 2.0, testutil.ToFloat64(ArtifactLoadDuration))
}
