// Copyright 2025 Certen Protocol

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names are prefixed certen_ and grouped by the subsystem that
// updates them: block lifecycle (§4.C), fees (§4.D), and the query
// service (§4.F). pkg/store and pkg/statetransition stay free of any
// direct prometheus import; every update goes through this package so
// the metric surface is visible from one place.
var (
	BlockHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "certen_block_height",
		Help: "Height of the last finalized block.",
	})

	TxsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "certen_txs_total",
		Help: "Transitions processed during PrepareProposal, by classification.",
	}, []string{"action"})

	FinalizedTxsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "certen_finalized_txs_total",
		Help: "Transitions executed during FinalizeBlock, by result code.",
	}, []string{"code"})

	PrepareProposalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "certen_prepare_proposal_duration_seconds",
		Help:    "Time spent assembling a proposed transaction set.",
		Buckets: prometheus.DefBuckets,
	})

	FinalizeBlockDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "certen_finalize_block_duration_seconds",
		Help:    "Time spent executing and committing a finalized block.",
		Buckets: prometheus.DefBuckets,
	})

	CheckTxDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "certen_check_tx_duration_seconds",
		Help:    "Time spent running a mempool transition through the estimated check pipeline.",
		Buckets: prometheus.DefBuckets,
	})

	FeesChargedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "certen_fees_charged_credits_total",
		Help: "Fee credits debited from identity balances across all finalized transitions.",
	})

	RefundsCreditedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "certen_refunds_credited_credits_total",
		Help: "Storage refund credits issued across all finalized transitions.",
	})

	EpochIndex = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "certen_epoch_index",
		Help: "Index of the current fee distribution epoch.",
	})

	QueryRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "certen_query_requests_total",
		Help: "Query service requests by path and outcome code.",
	}, []string{"path", "code"})

	QueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "certen_query_duration_seconds",
		Help:    "Query service handler duration by path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	StoreTransactionCommitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "certen_store_transaction_commit_duration_seconds",
		Help:    "Time spent committing a staged transaction's write set into the authenticated store.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		BlockHeight,
		TxsTotal,
		FinalizedTxsTotal,
		PrepareProposalDuration,
		FinalizeBlockDuration,
		CheckTxDuration,
		FeesChargedTotal,
		RefundsCreditedTotal,
		EpochIndex,
		QueryRequestsTotal,
		QueryDuration,
		StoreTransactionCommitDuration,
	)
}

// Handler serves the Prometheus text exposition format for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures an operation's wall-clock duration for later
// observation into a histogram. It is not used for anything
// consensus-relevant; block timing always comes from the block header.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time into histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time into a labeled histogram.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}
