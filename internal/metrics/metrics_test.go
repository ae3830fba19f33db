package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(deliveriesTotal.WithLabelValues("manual", "sent"))
	IncDelivery(" Manual ", "SENT")
	after := testutil.ToFloat64(deliveriesTotal.WithLabelValues("manual", "sent"))
	if after-before != 1 {
		t.Fatalf("want +1, got %v", after-before)
	}

	IncUpdate("callback")
	if got := testutil.ToFloat64(updatesTotal.WithLabelValues("callback")); got < 1 {
		t.Fatalf("update counter not incremented: %v", got)
	}
}

func TestGauges(t *testing.T) {
	SetScheduledJobs(3)
	if got := testutil.ToFloat64(scheduledJobs); got != 3 {
		t.Fatalf("want 3, got %v", got)
	}
	SetGazetteerCities(1117)
	if got := testutil.ToFloat64(gazetteerCities); got != 1117 {
		t.Fatalf("want 1117, got %v", got)
	}
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	MustRegister()
	MustRegister()
	ObserveWeatherRequest(120*time.Millisecond, true)
	if n := testutil.CollectAndCount(weatherRequests); n == 0 {
		t.Fatalf("expected histogram series")
	}
}
