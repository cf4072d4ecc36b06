package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func sampleCount(t *testing.T, family string) uint64 {
	t.Helper()
	families, err := DefaultRegistry.Gather()
	require.NoError(t, err)

	var n uint64
	for _, f := range families {
		if f.GetName() != family {
			continue
		}
		for _, m := range f.GetMetric() {
			n += m.GetHistogram().GetSampleCount()
		}
	}
	return n
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/orders/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := counterValue(t, RequestTotal.WithLabelValues("GET", "/api/orders/{id}", "418"))
	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders/"+id, nil))
	}
	after := counterValue(t, RequestTotal.WithLabelValues("GET", "/api/orders/{id}", "418"))

	assert.Equal(t, 2.0, after-before)
}

func TestHandlerExposesDomainCounters(t *testing.T) {
	OrdersPlaced.Inc()
	RecordTransition("Pending", "Processing")

	rec := httptest.NewRecorder()
	Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "marketplace_orders_placed_total")
	assert.Contains(t, body, `marketplace_order_transitions_total{from="Pending",to="Processing"}`)
}

func TestInstrumentGormObservesQueries(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:metrics_gorm?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, InstrumentGorm(db))
	before := sampleCount(t, "marketplace_db_query_duration_seconds")

	type sample struct{ ID uint }
	require.NoError(t, db.AutoMigrate(&sample{}))
	require.NoError(t, db.Create(&sample{}).Error)

	var out []sample
	require.NoError(t, db.Find(&out).Error)

	assert.Greater(t, sampleCount(t, "marketplace_db_query_duration_seconds"), before)
}
