// Copyright 2025 Certen Protocol

package statetransition

import (
	"github.com/dashpay/platform-sub004/pkg/consensuserror"
	"github.com/dashpay/platform-sub004/pkg/fees"
	"github.com/dashpay/platform-sub004/pkg/types"
)

// applyIdentityCreate credits a brand new identity with its initial
// balance and key set. The identity's id is derived from the transition
// payload rather than chosen by the signer, so two identities can never
// collide on id by construction.
func applyIdentityCreate(ctx *ExecutionContext, t *Transition) ([]Event, error) {
	p := t.IdentityCreate
	if len(p.Keys) == 0 {
		return nil, consensuserror.InvalidSignatureError("identity create requires at least one key")
	}

	id := deriveID(namespaceIdentity, t.PayloadBytes)
	identity := types.Identity{
		ID:      id,
		Balance: p.InitialBalance,
		Keys:    p.Keys,
	}
	if err := ctx.putIdentity(identity, id, false); err != nil {
		return nil, err
	}
	return []Event{{Name: "identity.created", Data: map[string]interface{}{"identityId": id.String()}}}, nil
}

// applyIdentityTopUp credits an existing identity's balance with
// previously-locked funds; it never creates an identity.
func applyIdentityTopUp(ctx *ExecutionContext, t *Transition) ([]Event, error) {
	p := t.IdentityTopUp
	identity, ok, err := ctx.getIdentity(p.IdentityID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("top-up target identity not found")
	}

	newState, err := fees.AddToBalance(fees.BalanceState{Balance: identity.Balance, Debt: identity.Debt}, p.Amount)
	if err != nil {
		return nil, err
	}
	identity.Balance, identity.Debt = newState.Balance, newState.Debt
	if err := ctx.putIdentity(identity, identity.ID, true); err != nil {
		return nil, err
	}
	return []Event{{Name: "identity.toppedUp", Data: map[string]interface{}{"identityId": identity.ID.String(), "amount": p.Amount}}}, nil
}

// applyCreditTransfer moves credits from signer to a recipient. The
// amount itself is not part of the cost.Refunds ledger — it's a direct
// balance-to-balance move, separate from storage/processing fees, which
// are settled afterward by the executor against signer alone.
func applyCreditTransfer(ctx *ExecutionContext, signer types.Identifier, t *Transition) ([]Event, error) {
	p := t.CreditTransfer

	from, ok, err := ctx.getIdentity(signer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("signer identity not found")
	}
	if from.Balance < p.Amount {
		return nil, consensuserror.IdentityInsufficientBalanceError(signer.String(), p.Amount, from.Balance)
	}

	to, ok, err := ctx.getIdentity(p.RecipientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("credit transfer recipient not found")
	}

	from.Balance -= p.Amount
	toState, err := fees.AddToBalance(fees.BalanceState{Balance: to.Balance, Debt: to.Debt}, p.Amount)
	if err != nil {
		return nil, err
	}
	to.Balance, to.Debt = toState.Balance, toState.Debt

	if err := ctx.putIdentity(from, signer, true); err != nil {
		return nil, err
	}
	if err := ctx.putIdentity(to, signer, true); err != nil {
		return nil, err
	}
	return []Event{{Name: "identity.creditTransferred", Data: map[string]interface{}{
		"from": signer.String(), "to": p.RecipientID.String(), "amount": p.Amount,
	}}}, nil
}

// applyIdentityUpdate adds keys and disables keys in place. Disabling is
// one-way: a key named in DisableKeyIDs that is already disabled is a
// no-op, never an error, since replayed updates must stay idempotent in
// their effect on state even though the nonce check already prevents
// literal replay.
func applyIdentityUpdate(ctx *ExecutionContext, signer types.Identifier, t *Transition) ([]Event, error) {
	p := t.IdentityUpdate
	identity, ok, err := ctx.getIdentity(signer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("signer identity not found")
	}

	identity.Keys = append(identity.Keys, p.AddKeys...)
	for _, keyID := range p.DisableKeyIDs {
		if k := identity.FindKey(keyID); k != nil {
			k.Disabled = true
		}
	}
	identity.Revision++

	if err := ctx.putIdentity(identity, signer, true); err != nil {
		return nil, err
	}
	return []Event{{Name: "identity.updated", Data: map[string]interface{}{"identityId": signer.String(), "revision": identity.Revision}}}, nil
}
