// Copyright 2025 Certen Protocol

package metrics

import (
	"testing"
	"time"
)

// TestNoopRegistry_SatisfiesInterface exercises every Registry method
// against the no-op implementation. None of it should panic or touch the
// process's default Prometheus registry, so tests elsewhere can call
// NewNoopRegistry freely without colliding with pkg/metrics's own
// package-level collectors.
func TestNoopRegistry_SatisfiesInterface(t *testing.T) {
	reg := NewNoopRegistry()

	reg.BlockFinalized(1)
	reg.TxClassified("kept")
	reg.TxFinalized("0")
	reg.ObservePrepareProposal(time.Millisecond)
	reg.ObserveFinalizeBlock(time.Millisecond)
	reg.ObserveCheckTx(time.Millisecond)
	reg.FeesCharged(10)
	reg.RefundsCredited(5)
	reg.EpochAdvanced(3)
	reg.QueryHandled("/identity", "ok", time.Millisecond)
	reg.StoreCommit(time.Millisecond)
}

func TestPrometheusRegistry_SatisfiesInterface(t *testing.T) {
	reg := NewPrometheusRegistry()

	reg.BlockFinalized(1)
	reg.TxClassified("removed")
	reg.TxFinalized("1")
	reg.ObservePrepareProposal(time.Millisecond)
	reg.ObserveFinalizeBlock(time.Millisecond)
	reg.ObserveCheckTx(time.Millisecond)
	reg.FeesCharged(10)
	reg.RefundsCredited(5)
	reg.EpochAdvanced(3)
	reg.QueryHandled("/identity", "error", time.Millisecond)
	reg.StoreCommit(time.Millisecond)
}

func TestTimer_ObserveDuration(t *testing.T) {
	timer := NewTimer()
	time.Sleep(time.Millisecond)
	timer.ObserveDuration(FinalizeBlockDuration)
}
