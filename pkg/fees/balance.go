// Copyright 2025 Certen Protocol
//
// Package fees implements the epoch-indexed cost attribution and
// balance/debt settlement engine (§4.D): it turns a store.CostResult
// into concrete balance mutations, enforcing the invariant that an
// identity only ever carries debt while its balance is exactly zero.
package fees

import (
	"math"

	"github.com/dashpay/platform-sub004/pkg/consensuserror"
)

// MaxCredits bounds a single balance; values at or above it are rejected
// rather than risking overflow into the signed sum-tree representation
// store.Element uses for SumItem leaves.
const MaxCredits = math.MaxInt64

// BalanceState is an identity's credit balance and outstanding debt.
// Debt (the "negative credit balance") only ever exists while Balance is
// exactly zero — §8 invariant 2.
type BalanceState struct {
	Balance uint64
	Debt    uint64
}

// AddToBalance credits added to state, repaying debt first. This is the
// only path by which debt shrinks: once added exceeds outstanding debt,
// the remainder becomes spendable balance.
func AddToBalance(state BalanceState, added uint64) (BalanceState, error) {
	if added == 0 {
		return state, nil
	}
	if state.Balance == 0 && state.Debt > 0 {
		if state.Debt > added {
			return BalanceState{Balance: 0, Debt: state.Debt - added}, nil
		}
		return BalanceState{Balance: added - state.Debt, Debt: 0}, nil
	}

	newBalance := state.Balance + added
	if newBalance < state.Balance || newBalance >= MaxCredits {
		return state, consensuserror.CorruptedExecutionError("identity balance add overflow")
	}
	return BalanceState{Balance: newBalance, Debt: state.Debt}, nil
}

// RemoveFromBalance charges state for a transition's cost. required is
// the portion of the charge the current balance must be able to cover
// (e.g. the base processing fee already spent on CPU time); desired is the full amount the transition would ideally charge
// (required plus any storage fee that can legitimately go unpaid if the
// balance runs out). If the balance cannot cover required, the charge is
// rejected outright with IdentityInsufficientBalanceError; otherwise any
// shortfall between desired and the available balance becomes debt.
func RemoveFromBalance(state BalanceState, required, desired uint64, identityID string) (BalanceState, error) {
	if desired <= state.Balance {
		return BalanceState{Balance: state.Balance - desired, Debt: state.Debt}, nil
	}
	if required > state.Balance {
		return state, consensuserror.IdentityInsufficientBalanceError(identityID, required, state.Balance)
	}
	return BalanceState{Balance: 0, Debt: state.Debt + (desired - state.Balance)}, nil
}
