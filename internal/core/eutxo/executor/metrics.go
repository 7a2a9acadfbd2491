package executor

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	blocksProducedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "executor_blocks_produced_total",
		Help: "Total number of blocks produced.",
	})
	blocksValidatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "executor_blocks_validated_total",
		Help: "Total number of blocks validated.",
	})
	txSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "executor_tx_skipped_total",
		Help: "Total number of candidate transactions skipped during block production, by reason.",
	}, []string{"reason"})
	txRevertedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "executor_tx_reverted_total",
		Help: "Total number of Chargeable transactions whose script reverted.",
	})
	blockExecDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "executor_block_execution_duration_seconds",
		Help:    "Duration of a full block execution (production or validation).",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		blocksProducedTotal,
		blocksValidatedTotal,
		txSkippedTotal,
		txRevertedTotal,
		blockExecDuration,
	)
}
