// Copyright 2025 Certen Protocol
//
// Package metrics is the instrumentation seam the block handler
// (pkg/abci) calls into; it records block lifecycle, query, and fee
// metrics on behalf of pkg/query and pkg/fees, which do not import this
// package themselves. Metrics are out of this platform's consensus
// path entirely — nothing here is read back by any state-transition
// logic — so callers depend on the Registry interface rather than the
// concrete Prometheus types directly, and tests use NoopRegistry
// instead of registering real collectors on every run.
package metrics

import "time"

// Registry is updated by the block lifecycle, fee, and query
// subsystems. Every method is a fire-and-forget instrumentation call:
// none of them return an error, matching the Prometheus client's own
// "metric updates cannot fail" design.
type Registry interface {
	// BlockFinalized records the height of a just-finalized block.
	BlockFinalized(height int64)
	// TxClassified records one PrepareProposal classification outcome
	// (kept, removed, or delayed).
	TxClassified(action string)
	// TxFinalized records one FinalizeBlock execution result code.
	TxFinalized(code string)
	// ObservePrepareProposal records how long PrepareProposal took.
	ObservePrepareProposal(d time.Duration)
	// ObserveFinalizeBlock records how long FinalizeBlock took.
	ObserveFinalizeBlock(d time.Duration)
	// ObserveCheckTx records how long a CheckTx estimated run took.
	ObserveCheckTx(d time.Duration)
	// FeesCharged records fee credits debited from an identity balance.
	FeesCharged(credits uint64)
	// RefundsCredited records storage refund credits issued.
	RefundsCredited(credits uint64)
	// EpochAdvanced records the index of the current fee epoch.
	EpochAdvanced(index uint64)
	// QueryHandled records one query service dispatch.
	QueryHandled(path, code string, d time.Duration)
	// StoreCommit records how long a transaction commit took.
	StoreCommit(d time.Duration)
}

// prometheusRegistry is the default Registry, backed by the package's
// globally registered collectors.
type prometheusRegistry struct{}

// NewPrometheusRegistry returns the Registry a running node should use.
func NewPrometheusRegistry() Registry {
	return prometheusRegistry{}
}

func (prometheusRegistry) BlockFinalized(height int64) {
	BlockHeight.Set(float64(height))
}

func (prometheusRegistry) TxClassified(action string) {
	TxsTotal.WithLabelValues(action).Inc()
}

func (prometheusRegistry) TxFinalized(code string) {
	FinalizedTxsTotal.WithLabelValues(code).Inc()
}

func (prometheusRegistry) ObservePrepareProposal(d time.Duration) {
	PrepareProposalDuration.Observe(d.Seconds())
}

func (prometheusRegistry) ObserveFinalizeBlock(d time.Duration) {
	FinalizeBlockDuration.Observe(d.Seconds())
}

func (prometheusRegistry) ObserveCheckTx(d time.Duration) {
	CheckTxDuration.Observe(d.Seconds())
}

func (prometheusRegistry) FeesCharged(credits uint64) {
	FeesChargedTotal.Add(float64(credits))
}

func (prometheusRegistry) RefundsCredited(credits uint64) {
	RefundsCreditedTotal.Add(float64(credits))
}

func (prometheusRegistry) EpochAdvanced(index uint64) {
	EpochIndex.Set(float64(index))
}

func (prometheusRegistry) QueryHandled(path, code string, d time.Duration) {
	QueryRequestsTotal.WithLabelValues(path, code).Inc()
	QueryDuration.WithLabelValues(path).Observe(d.Seconds())
}

func (prometheusRegistry) StoreCommit(d time.Duration) {
	StoreTransactionCommitDuration.Observe(d.Seconds())
}

// noopRegistry discards every call. Used by tests and by any tool that
// links this module's packages without wanting to touch the process's
// default Prometheus registry.
type noopRegistry struct{}

// NewNoopRegistry returns a Registry that does nothing.
func NewNoopRegistry() Registry { return noopRegistry{} }

func (noopRegistry) BlockFinalized(height int64)                     {}
func (noopRegistry) TxClassified(action string)                      {}
func (noopRegistry) TxFinalized(code string)                         {}
func (noopRegistry) ObservePrepareProposal(d time.Duration)          {}
func (noopRegistry) ObserveFinalizeBlock(d time.Duration)            {}
func (noopRegistry) ObserveCheckTx(d time.Duration)                  {}
func (noopRegistry) FeesCharged(credits uint64)                      {}
func (noopRegistry) RefundsCredited(credits uint64)                  {}
func (noopRegistry) EpochAdvanced(index uint64)                      {}
func (noopRegistry) QueryHandled(path, code string, d time.Duration) {}
func (noopRegistry) StoreCommit(d time.Duration)                     {}

var _ Registry = prometheusRegistry{}
var _ Registry = noopRegistry{}
