// Copyright 2025 Certen Protocol

package fees

import (
	"github.com/dashpay/platform-sub004/pkg/store"
	"github.com/dashpay/platform-sub004/pkg/types"
)

// FeeResult is what a settled transition reports back to the block
// handler: the total charged to the payer, and the per-identity credits
// refunded to whoever originally paid for bytes the transition freed.
type FeeResult struct {
	StorageFee    uint64
	ProcessingFee uint64
	Refunds       map[types.Identifier]uint64 // epoch-collapsed, for reporting
	PayerBalance  BalanceState
}

// BalanceLookup resolves an identity's current balance state; the
// executor supplies one backed by a read-only view of the store.
type BalanceLookup func(id types.Identifier) (BalanceState, error)

// Settle applies cost against payer's balance (debiting storage +
// processing fee, required = processing fee since it was already spent
// regardless of outcome) and credits every other identity named in
// cost.Refunds. It returns the payer's post-settlement state plus a
// refunds map collapsed across epochs (per-epoch detail stays in
// cost.Refunds for anyone who needs it), and a set of (identity,
// BalanceState) mutations the caller must write back through the store.
func Settle(payer types.Identifier, cost store.CostResult, lookup BalanceLookup) (FeeResult, map[types.Identifier]BalanceState, error) {
	payerState, err := lookup(payer)
	if err != nil {
		return FeeResult{}, nil, err
	}

	required := cost.ProcessingFee
	desired := cost.ProcessingFee + cost.StorageFee

	// A transition's own writes may refund the payer (e.g. shrinking a
	// document it owns): net those out against the charge before
	// touching debt, since the same block author should not be pushed
	// into debt and then immediately refunded in the same settlement.
	selfRefund := sumRefundsFor(cost.Refunds, payer)
	var surplus uint64
	if selfRefund > 0 {
		if selfRefund >= desired {
			surplus = selfRefund - desired
			desired, required = 0, 0
		} else {
			desired -= selfRefund
			if required > desired {
				required = desired
			}
		}
	}

	newPayerState, err := RemoveFromBalance(payerState, required, desired, payer.String())
	if err != nil {
		return FeeResult{}, nil, err
	}
	if surplus > 0 {
		newPayerState, err = AddToBalance(newPayerState, surplus)
		if err != nil {
			return FeeResult{}, nil, err
		}
	}

	mutations := map[types.Identifier]BalanceState{payer: newPayerState}
	collapsed := map[types.Identifier]uint64{}

	for identity, byEpoch := range cost.Refunds {
		var total uint64
		for _, credits := range byEpoch {
			total += credits
		}
		if total == 0 {
			continue
		}
		collapsed[identity] = total

		if identity == payer {
			// Already netted into required/desired above, and any part
			// exceeding the charge was credited to the payer's balance.
			continue
		}

		state, err := lookup(identity)
		if err != nil {
			return FeeResult{}, nil, err
		}
		newState, err := AddToBalance(state, total)
		if err != nil {
			return FeeResult{}, nil, err
		}
		mutations[identity] = newState
	}

	return FeeResult{
		StorageFee:    cost.StorageFee,
		ProcessingFee: cost.ProcessingFee,
		Refunds:       collapsed,
		PayerBalance:  newPayerState,
	}, mutations, nil
}

func sumRefundsFor(refunds store.RefundMap, id types.Identifier) uint64 {
	var total uint64
	for epoch, credits := range refunds[id] {
		_ = epoch
		total += credits
	}
	return total
}
