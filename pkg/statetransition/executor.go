// Copyright 2025 Certen Protocol

package statetransition

import (
	"github.com/dashpay/platform-sub004/pkg/consensuserror"
	"github.com/dashpay/platform-sub004/pkg/fees"
	"github.com/dashpay/platform-sub004/pkg/statetransition/sigverify"
	"github.com/dashpay/platform-sub004/pkg/types"
)

// BalanceLookup resolves an identity's current balance state for the fee
// engine's settlement pass, reading through the same transaction the
// transition itself executed against so a self-refund nets correctly.
func (c *ExecutionContext) balanceLookup() fees.BalanceLookup {
	return func(id types.Identifier) (fees.BalanceState, error) {
		identity, ok, err := c.getIdentity(id)
		if err != nil {
			return fees.BalanceState{}, err
		}
		if !ok {
			return fees.BalanceState{}, consensuserror.CorruptedExecutionError("balance lookup: identity not found")
		}
		return fees.BalanceState{Balance: identity.Balance, Debt: identity.Debt}, nil
	}
}

// writeBalance persists a settled BalanceState back onto its identity.
func (c *ExecutionContext) writeBalance(id types.Identifier, state fees.BalanceState) error {
	identity, ok, err := c.getIdentity(id)
	if err != nil {
		return err
	}
	if !ok {
		return consensuserror.CorruptedExecutionError("settlement: identity not found")
	}
	identity.Balance, identity.Debt = state.Balance, state.Debt
	return c.putIdentity(identity, id, true)
}

// Execute runs the full five-step pipeline for one transition (§4.B):
// structural validation, state validation + transform (the two are
// interleaved per-kind below, since each kind's state-validation is
// cheapest expressed inline with its transform), cost, and balance
// settlement. It returns exactly one Outcome and never panics on
// consensus-level rule violations — only a CategoryExecution error or a
// failed fee settlement escapes as InternalError.
func Execute(ctx *ExecutionContext, t *Transition, signerKey types.IdentityPublicKey) Outcome {
	ctx.resetCost()

	if err := structuralValidate(ctx, t, signerKey); err != nil {
		return Outcome{Kind: UnpaidConsensusError, Err: err}
	}

	ctx.Tx.SetSavepoint()

	// The nonce advance is the first write every transition stages, so
	// its cost is charged even when everything after it fails and gets
	// rolled back — the signer cannot replay a failed attempt for free.
	if err := ctx.advanceNonce(t.SignerID, t.Nonce); err != nil {
		return Outcome{Kind: InternalError, Err: consensuserror.CorruptedExecutionError(err.Error())}
	}

	events, err := dispatch(ctx, t)
	if err != nil {
		if consensuserror.IsFatal(err) {
			return Outcome{Kind: InternalError, Err: err}
		}

		if rerr := ctx.Tx.RollbackToSavepoint(); rerr != nil {
			return Outcome{Kind: InternalError, Err: consensuserror.CorruptedExecutionError(rerr.Error())}
		}
		ctx.resetCost()
		if nerr := ctx.advanceNonce(t.SignerID, t.Nonce); nerr != nil {
			return Outcome{Kind: InternalError, Err: consensuserror.CorruptedExecutionError(nerr.Error())}
		}

		feeResult, settleErr := settle(ctx, t.SignerID)
		if settleErr != nil {
			return Outcome{Kind: InternalError, Err: settleErr}
		}
		return Outcome{Kind: PaidConsensusError, Err: err, Fee: feeResult}
	}

	if err := ctx.Tx.ReleaseSavepoint(); err != nil {
		return Outcome{Kind: InternalError, Err: consensuserror.CorruptedExecutionError(err.Error())}
	}

	feeResult, err := settle(ctx, t.SignerID)
	if err != nil {
		return Outcome{Kind: InternalError, Err: err}
	}

	return Outcome{Kind: SuccessfulExecution, Fee: feeResult, Events: events}
}

func settle(ctx *ExecutionContext, payer types.Identifier) (*fees.FeeResult, error) {
	result, mutations, err := fees.Settle(payer, ctx.cost, ctx.balanceLookup())
	if err != nil {
		return nil, err
	}
	for id, state := range mutations {
		if err := ctx.writeBalance(id, state); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

// structuralValidate checks everything that must be rejected before any
// cost is attributed: signature validity, key purpose, security level,
// whether the key has been disabled, and the nonce (read-only check —
// advancing it is the transform pipeline's first write, so that a
// mismatch here never gets charged).
func structuralValidate(ctx *ExecutionContext, t *Transition, key types.IdentityPublicKey) error {
	if key.Disabled {
		return consensuserror.InvalidSignatureError("signing key is disabled")
	}
	if key.Purpose != types.KeyPurposeAuthentication && key.Purpose != types.KeyPurposeOwner {
		return consensuserror.InvalidSignatureError("signing key purpose does not authorize state transitions")
	}
	if requiredSecurityLevel(t.Kind) < key.SecurityLevel {
		return consensuserror.InvalidSignatureError("signing key security level is too low for this transition")
	}
	if err := sigverify.Verify(key.Data, t.PayloadBytes, t.Signature); err != nil {
		return consensuserror.InvalidSignatureError("signature verification failed: " + err.Error())
	}

	current, err := ctx.peekNonce(t.SignerID)
	if err != nil {
		return err
	}
	if t.Nonce != current+1 {
		return consensuserror.InvalidNonceError(t.SignerID.String(), current+1, t.Nonce)
	}
	return nil
}

// requiredSecurityLevel names the minimum key strength a transition kind
// demands; lower numeric value means stronger per types.SecurityLevel.
func requiredSecurityLevel(k Kind) types.SecurityLevel {
	switch k {
	case KindIdentityUpdate, KindTokenFreeze, KindTokenUnfreeze, KindTokenDestroyFrozenFunds:
		return types.SecurityLevelCritical
	default:
		return types.SecurityLevelHigh
	}
}

// dispatch routes a transition to its domain-specific validate+transform
// implementation.
func dispatch(ctx *ExecutionContext, t *Transition) ([]Event, error) {
	switch t.Kind {
	case KindIdentityCreate:
		return applyIdentityCreate(ctx, t)
	case KindIdentityTopUp:
		return applyIdentityTopUp(ctx, t)
	case KindIdentityCreditTransfer:
		return applyCreditTransfer(ctx, t.SignerID, t)
	case KindIdentityUpdate:
		return applyIdentityUpdate(ctx, t.SignerID, t)
	case KindDataContractCreate:
		return applyDataContractCreate(ctx, t.SignerID, t)
	case KindDataContractUpdate:
		return applyDataContractUpdate(ctx, t.SignerID, t)
	case KindDocumentsBatch:
		return applyDocumentsBatch(ctx, t.SignerID, t)
	case KindTokenMint:
		return applyTokenMint(ctx, t.SignerID, t, false)
	case KindTokenBurn:
		return applyTokenBurn(ctx, t.SignerID, t)
	case KindTokenFreeze:
		return applyTokenFreeze(ctx, t.SignerID, t, false, true)
	case KindTokenUnfreeze:
		return applyTokenFreeze(ctx, t.SignerID, t, false, false)
	case KindTokenTransfer:
		return applyTokenTransfer(ctx, t.SignerID, t)
	case KindTokenDestroyFrozenFunds:
		return applyTokenDestroyFrozenFunds(ctx, t.SignerID, t, false)
	case KindGroupActionPropose:
		return applyGroupActionPropose(ctx, t.SignerID, t)
	case KindGroupActionConfirm:
		return applyGroupActionConfirm(ctx, t.SignerID, t)
	default:
		return nil, consensuserror.CorruptedExecutionError("unknown transition kind")
	}
}
