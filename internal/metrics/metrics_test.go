package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendationRequests.WithLabelValues("mean", "success"))

	RecordRecommendation("mean", "success", 2*time.Millisecond, 5)

	after := testutil.ToFloat64(RecommendationRequests.WithLabelValues("mean", "success"))
	assert.Equal(t, before+1, after)
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/books", "200"))

	RecordHTTPRequest("GET", "/books", 200, time.Millisecond)

	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/books", "200"))
	assert.Equal(t, before+1, after)
}
