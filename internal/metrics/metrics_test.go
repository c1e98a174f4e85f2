package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.ObserveCommand("CREATE_ORDER", ResultOK)
	m.ObserveCommand("CREATE_ORDER", ResultOK)
	m.ObserveCommand("CREATE_ORDER", ResultRejected)
	m.ObserveFills("TATA_INR", 3)
	m.ObserveFills("TATA_INR", 0)
	m.ObserveSnapshot(ResultOK)
	m.OutboxDropped()
	m.PublishFailed("reply")
	m.SetCommandOffset(42)
	m.SetRestingOrders("TATA_INR", 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.commands.WithLabelValues("CREATE_ORDER", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("CREATE_ORDER", ResultRejected)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.fills.WithLabelValues("TATA_INR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outboxDropped))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.commandOffset))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.restingOrders.WithLabelValues("TATA_INR")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `engine_commands_total{result="ok",type="CREATE_ORDER"} 2`))
	assert.True(t, strings.Contains(body, "engine_publish_errors_total"))
}
