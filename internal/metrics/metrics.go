package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dotcommander/faultlog/pkg/faultlog"
)

var (
	initOnce sync.Once

	faultsCapturedCounter   *prometheus.CounterVec
	storeErrorsCounter      *prometheus.CounterVec
	subscriberPanicsCounter prometheus.Counter
	recordsClearedCounter   prometheus.Counter
)

// Init registers metrics on the default Prometheus registry exactly once.
func Init() {
	initOnce.Do(func() {
		faultsCapturedCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "faults_captured_total",
				Help: "Total number of fault records appended, by kind.",
			},
			[]string{"kind"},
		)

		storeErrorsCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fault_store_errors_total",
				Help: "Total number of swallowed durable storage failures, by operation.",
			},
			[]string{"op"},
		)

		subscriberPanicsCounter = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fault_subscriber_panics_total",
				Help: "Total number of recovered subscriber callback panics.",
			},
		)

		recordsClearedCounter = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fault_records_cleared_total",
				Help: "Total number of clear operations.",
			},
		)

		prometheus.MustRegister(
			faultsCapturedCounter,
			storeErrorsCounter,
			subscriberPanicsCounter,
			recordsClearedCounter,
		)

		// Ensure counter vectors are visible at /metrics before first increment.
		for _, k := range faultlog.Kinds {
			faultsCapturedCounter.WithLabelValues(string(k))
		}
		for _, op := range []string{"append", "clear", "load"} {
			storeErrorsCounter.WithLabelValues(op)
		}
	})
}

func IncFaultCaptured(kind string) {
	Init()
	faultsCapturedCounter.WithLabelValues(kind).Inc()
}

func IncStoreError(op string) {
	Init()
	storeErrorsCounter.WithLabelValues(op).Inc()
}

func IncSubscriberPanic() {
	Init()
	subscriberPanicsCounter.Inc()
}

func IncRecordsCleared() {
	Init()
	recordsClearedCounter.Inc()
}

// Observer feeds store events into the counters above. Pass it to
// faultlog.WithObserver.
type Observer struct{}

func (Observer) Appended(k faultlog.Kind) { IncFaultCaptured(string(k)) }
func (Observer) Cleared() { IncRecordsCleared() }
func (Observer) StorageFault(op string) { IncStoreError(op) }
func (Observer) SubscriberFault() { IncSubscriberPanic() }

var _ faultlog.Observer = Observer{}
