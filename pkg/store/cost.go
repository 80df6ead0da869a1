// Copyright 2025 Certen Protocol

package store

// Cost parameters are platform-version constants in production; callers
// supply them explicitly here so pkg/fees owns the authoritative schedule
// and pkg/store stays agnostic of platform-version gating.
const (
	defaultStorageCreditsPerByte    = 1
	defaultProcessingCreditsPerOp   = 2
	defaultProcessingCreditsPerByte = 0
)

// CostResult is the byte-accurate accounting produced by applying a
// WriteSet, split into the three ledgers named in §4.D: storage fee
// (new bytes charged at the current epoch's price), processing fee
// (CPU/IO proxy, never refunded), and fee refunds (credits returned to
// the identities that originally paid for bytes now being removed or
// shrunk).
type CostResult struct {
	StorageFee    uint64
	ProcessingFee uint64
	Refunds       RefundMap

	// Estimated is true when this result was produced in estimated mode
	// (apply=false): a worst-case upper bound suitable for CheckTx and
	// mempool gating, not the exact cost a committed transition would
	// incur.
	Estimated bool
}

// CostParams is the subset of the fee schedule the store needs to price a
// WriteSet. Zero value uses the package defaults.
type CostParams struct {
	StorageCreditsPerByte    uint64
	ProcessingCreditsPerOp   uint64
	ProcessingCreditsPerByte uint64
}

func (p CostParams) normalize() CostParams {
	if p.StorageCreditsPerByte == 0 {
		p.StorageCreditsPerByte = defaultStorageCreditsPerByte
	}
	if p.ProcessingCreditsPerOp == 0 {
		p.ProcessingCreditsPerOp = defaultProcessingCreditsPerOp
	}
	return p
}

// estimatedOverheadFactor inflates estimated-mode storage cost to bound the
// worst case when the actual pre-image size is not yet known (e.g. a
// reference hop whose target hasn't resolved, or a subtree whose exact
// fan-out isn't determined until apply). Mirrors GroveDB's
// "worst case cost" layer: bounded above, never below, the real cost.
const estimatedOverheadFactor = 2

// mergeCost accumulates b into a.
func (a *CostResult) mergeCost(b CostResult) {
	a.StorageFee += b.StorageFee
	a.ProcessingFee += b.ProcessingFee
	if a.Refunds == nil {
		a.Refunds = RefundMap{}
	}
	for owner, byEpoch := range b.Refunds {
		for epoch, credits := range byEpoch {
			if a.Refunds[owner] == nil {
				a.Refunds[owner] = map[uint64]uint64{}
			}
			a.Refunds[owner][epoch] += credits
		}
	}
}
