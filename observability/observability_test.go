// ABOUTME: Tests for logger construction and metrics recording
// ABOUTME: Reads counters back through the private registry
package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "bogus"} {
		logger, err := NewLogger(level)
		require.NoError(t, err, level)
		require.NotNil(t, logger)
	}
}

func TestRecordRemoteCall(t *testing.T) {
	m := NewMetrics()
	m.RecordRemoteCall("contact_c", "fetch", "ok", 10*time.Millisecond)
	m.RecordRemoteCall("contact_c", "fetch", "ok", 5*time.Millisecond)
	m.RecordRemoteCall("contact_c", "fetch", "error", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.remoteCalls.WithLabelValues("contact_c", "fetch", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remoteCalls.WithLabelValues("contact_c", "fetch", "error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordRemoteCall("t", "op", "ok", time.Second)
	m.RecordListLoad("contacts", "ready")
}

func TestZapLoggerMiddlewarePassesThrough(t *testing.T) {
	h := ZapLoggerMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
