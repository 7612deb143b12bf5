package prover

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK          = "ok"
	resultUnsatisfied = "unsatisfied"
	resultError       = "error"
)

var (
	proofsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zkledger",
		Subsystem: "prover",
		Name:      "proofs_total",
		Help:      "Number of proof requests by result",
	}, []string{"result"})

	proveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "zkledger",
		Subsystem: "prover",
		Name:      "prove_duration_seconds",
		Help:      "Time spent generating a validity proof",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	setupDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "zkledger",
		Subsystem: "prover",
		Name:      "setup_duration_seconds",
		Help:      "Time spent running the Groth16 setup",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})
)

// RegisterMetrics registers the prover collectors in reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{proofsTotal, proveDuration, setupDuration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
