package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordToolCall(t *testing.T) {
	before := testutil.ToFloat64(ToolCallsTotal.WithLabelValues("get_category", OutcomeOK))
	RecordToolCall("get_category", OutcomeOK, 5*time.Millisecond)
	after := testutil.ToFloat64(ToolCallsTotal.WithLabelValues("get_category", OutcomeOK))
	assert.Equal(t, before+1, after)
}

func TestRecordMediaFetch_CountsBytesOnlyOnData(t *testing.T) {
	bytesBefore := testutil.ToFloat64(MediaBytesTotal)
	failedBefore := testutil.ToFloat64(MediaFetchesTotal.WithLabelValues(OutcomeFailed))

	RecordMediaFetch(OutcomeFailed, 0)
	RecordMediaFetch(OutcomeOK, 128)

	assert.Equal(t, failedBefore+1, testutil.ToFloat64(MediaFetchesTotal.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, bytesBefore+128, testutil.ToFloat64(MediaBytesTotal))
}

func TestHandlerExposesCounters(t *testing.T) {
	RecordDecodeFailure("price")

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `partsmcp_decode_failures_total{field="price"}`)
}
