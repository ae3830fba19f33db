package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_bot_updates_total",
			Help: "Telegram updates processed, by kind (message/location/callback).",
		},
		[]string{"kind"},
	)

	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_bot_deliveries_total",
			Help: "Weather deliveries by trigger (manual/scheduled) and outcome.",
		},
		[]string{"trigger", "outcome"},
	)

	weatherRequests = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_bot_provider_request_duration_seconds",
			Help:    "Weather provider request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"success"},
	)

	gazetteerLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_bot_gazetteer_lookups_total",
			Help: "City lookups by result (found/not_found/error).",
		},
		[]string{"result"},
	)

	gazetteerCities = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "weather_bot_gazetteer_cities",
		Help: "Cities loaded into the gazetteer index.",
	})

	scheduledJobs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "weather_bot_scheduled_jobs",
		Help: "Currently registered daily jobs.",
	})
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			updatesTotal, deliveriesTotal, weatherRequests,
			gazetteerLookups, gazetteerCities, scheduledJobs,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncUpdate(kind string) {
	updatesTotal.WithLabelValues(norm(kind)).Inc()
}

func IncDelivery(trigger, outcome string) {
	deliveriesTotal.WithLabelValues(norm(trigger), norm(outcome)).Inc()
}

func ObserveWeatherRequest(d time.Duration, success bool) {
	label := "false"
	if success {
		label = "true"
	}
	weatherRequests.WithLabelValues(label).Observe(d.Seconds())
}

func IncGazetteerLookup(result string) {
	gazetteerLookups.WithLabelValues(norm(result)).Inc()
}

func SetGazetteerCities(n int) { gazetteerCities.Set(float64(n)) }

func SetScheduledJobs(n int) { scheduledJobs.Set(float64(n)) }
