package state

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledger"

var (
	transactionsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "state",
		Name:      "transactions_accepted_total",
		Help:      "Number of transactions accepted into the open block.",
	})

	transactionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "state",
		Name:      "transactions_rejected_total",
		Help:      "Number of transactions rejected by reason.",
	}, []string{"reason"})

	blocksMined = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "state",
		Name:      "blocks_mined_total",
		Help:      "Number of blocks mined and committed.",
	})

	commitFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "state",
		Name:      "commit_failures_total",
		Help:      "Number of blocks that failed to commit to storage.",
	})

	chainHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "state",
		Name:      "chain_height",
		Help:      "Number of blocks in the chain.",
	})

	commitLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "state",
		Name:      "commit_seconds",
		Help:      "Time taken to commit a block to storage.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
	})
)
