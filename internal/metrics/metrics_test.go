package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/recipes/", "200"))
	RecordHTTPRequest("GET", "/api/recipes/", 200, 15*time.Millisecond)
	RecordHTTPRequest("GET", "/api/recipes/", 200, 30*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/recipes/", "200"))
	assert.Equal(t, before+2, after)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(LoginAttempts.WithLabelValues(LoginBlocked))
	LoginAttempts.WithLabelValues(LoginBlocked).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(LoginAttempts.WithLabelValues(LoginBlocked)))

	d := testutil.ToFloat64(ShoppingListDownloads)
	ShoppingListDownloads.Inc()
	assert.Equal(t, d+1, testutil.ToFloat64(ShoppingListDownloads))
}
