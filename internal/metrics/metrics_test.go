package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransaction(t *testing.T) {
	before := testutil.ToFloat64(transactions.WithLabelValues("deposit", "completed"))
	RecordTransaction("deposit", "completed")
	RecordTransaction("deposit", "completed")
	assert.Equal(t, before+2, testutil.ToFloat64(transactions.WithLabelValues("deposit", "completed")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObserveHTTP("GET", "/api/health", http.StatusOK, 10*time.Millisecond)
	SetSettlementQueueDepth(3)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	assert.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `bank_http_requests_total{method="GET",path="/api/health",status="200"}`)
	assert.Contains(t, string(body), "bank_settlement_queue_depth 3")
}
