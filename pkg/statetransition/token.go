// Copyright 2025 Certen Protocol

package statetransition

import (
	"github.com/dashpay/platform-sub004/pkg/consensuserror"
	"github.com/dashpay/platform-sub004/pkg/types"
)

// authorizeTokenAction checks a privileged token action's change-control
// rule: either a single authorized identity signs directly, or the
// action requires a closed group action at the named group position
// (enforced by the caller passing groupAuthorized=true only once a
// GroupAction with that effect has actually reached Closed status).
func authorizeTokenAction(rule types.TokenChangeControlRules, signer types.Identifier, groupAuthorized bool) error {
	if rule.RequiresGroupAction {
		if !groupAuthorized {
			return consensuserror.InvalidSignatureError("this token action requires a closed group action")
		}
		return nil
	}
	if rule.AuthorizedIdentity != nil && *rule.AuthorizedIdentity != signer {
		return consensuserror.InvalidSignatureError("signer is not authorized for this token action")
	}
	return nil
}

func applyTokenMint(ctx *ExecutionContext, signer types.Identifier, t *Transition, groupAuthorized bool) ([]Event, error) {
	p := t.TokenOp
	contract, ok, err := ctx.getContract(p.ContractID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("mint references unknown contract")
	}
	def, err := findTokenDefinition(contract, p.TokenID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTokenAction(def.ChangeControl.Mint, signer, groupAuthorized); err != nil {
		return nil, err
	}
	if p.RecipientID == nil {
		return nil, consensuserror.CorruptedExecutionError("mint missing recipient")
	}

	token, ok, err := ctx.getToken(p.TokenID)
	if err != nil {
		return nil, err
	}
	if !ok {
		token = types.Token{ID: p.TokenID, ContractID: p.ContractID}
	}
	token.TotalSupply += p.Amount
	if err := ctx.putToken(token, signer, ok); err != nil {
		return nil, err
	}

	recipient, ok, err := ctx.getIdentity(*p.RecipientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("mint recipient identity not found")
	}
	creditTokenBalance(&recipient, p.TokenID, p.Amount)
	if err := ctx.putIdentity(recipient, signer, true); err != nil {
		return nil, err
	}
	return []Event{{Name: "token.minted", Data: map[string]interface{}{"tokenId": p.TokenID.String(), "amount": p.Amount}}}, nil
}

func applyTokenBurn(ctx *ExecutionContext, signer types.Identifier, t *Transition) ([]Event, error) {
	p := t.TokenOp
	holder, ok, err := ctx.getIdentity(signer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("signer identity not found")
	}
	if holder.TokenBalances[p.TokenID] < p.Amount {
		return nil, consensuserror.IdentityInsufficientBalanceError(signer.String(), p.Amount, holder.TokenBalances[p.TokenID])
	}
	holder.TokenBalances[p.TokenID] -= p.Amount

	token, ok, err := ctx.getToken(p.TokenID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("burn references unknown token")
	}
	token.TotalSupply -= p.Amount

	if err := ctx.putIdentity(holder, signer, true); err != nil {
		return nil, err
	}
	if err := ctx.putToken(token, signer, true); err != nil {
		return nil, err
	}
	return []Event{{Name: "token.burned", Data: map[string]interface{}{"tokenId": p.TokenID.String(), "amount": p.Amount}}}, nil
}

func applyTokenFreeze(ctx *ExecutionContext, signer types.Identifier, t *Transition, groupAuthorized bool, freeze bool) ([]Event, error) {
	p := t.TokenOp
	contract, ok, err := ctx.getContract(p.ContractID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("freeze references unknown contract")
	}
	def, err := findTokenDefinition(contract, p.TokenID)
	if err != nil {
		return nil, err
	}
	rule := def.ChangeControl.Unfreeze
	eventName := "token.unfrozen"
	if freeze {
		rule = def.ChangeControl.Freeze
		eventName = "token.frozen"
	}
	if err := authorizeTokenAction(rule, signer, groupAuthorized); err != nil {
		return nil, err
	}
	if p.TargetID == nil {
		return nil, consensuserror.CorruptedExecutionError("freeze missing target identity")
	}

	target, ok, err := ctx.getIdentity(*p.TargetID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("freeze target identity not found")
	}
	if target.TokenInfos == nil {
		target.TokenInfos = map[types.Identifier]types.TokenInfo{}
	}
	info := target.TokenInfos[p.TokenID]
	info.Frozen = freeze
	target.TokenInfos[p.TokenID] = info

	if err := ctx.putIdentity(target, signer, true); err != nil {
		return nil, err
	}
	return []Event{{Name: eventName, Data: map[string]interface{}{"tokenId": p.TokenID.String(), "identityId": p.TargetID.String()}}}, nil
}

// applyTokenTransfer moves a token balance between two identities,
// refusing an outbound transfer from a frozen account. The caller still
// charges processing/storage fees on this failure — a frozen-account
// attempt is a PaidConsensusError, not a silently dropped transition —
// but applies none of the transfer's effects.
func applyTokenTransfer(ctx *ExecutionContext, signer types.Identifier, t *Transition) ([]Event, error) {
	p := t.TokenOp
	if p.RecipientID == nil {
		return nil, consensuserror.CorruptedExecutionError("transfer missing recipient")
	}

	from, ok, err := ctx.getIdentity(signer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("signer identity not found")
	}
	if from.TokenInfoFor(p.TokenID).Frozen {
		return nil, consensuserror.IdentityTokenAccountFrozenError(signer.String(), p.TokenID.String())
	}
	if from.TokenBalances[p.TokenID] < p.Amount {
		return nil, consensuserror.IdentityInsufficientBalanceError(signer.String(), p.Amount, from.TokenBalances[p.TokenID])
	}

	to, ok, err := ctx.getIdentity(*p.RecipientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("transfer recipient not found")
	}

	contract, ok, err := ctx.getContract(p.ContractID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("transfer references unknown contract")
	}
	def, err := findTokenDefinition(contract, p.TokenID)
	if err != nil {
		return nil, err
	}
	if to.TokenInfoFor(p.TokenID).Frozen && !def.ChangeControl.Freeze.AllowTransferToFrozenBalance {
		return nil, consensuserror.IdentityTokenAccountFrozenError(p.RecipientID.String(), p.TokenID.String())
	}

	from.TokenBalances[p.TokenID] -= p.Amount
	creditTokenBalance(&to, p.TokenID, p.Amount)

	if err := ctx.putIdentity(from, signer, true); err != nil {
		return nil, err
	}
	if err := ctx.putIdentity(to, signer, true); err != nil {
		return nil, err
	}
	return []Event{{Name: "token.transferred", Data: map[string]interface{}{
		"tokenId": p.TokenID.String(), "from": signer.String(), "to": p.RecipientID.String(), "amount": p.Amount,
	}}}, nil
}

// applyTokenDestroyFrozenFunds zeroes a frozen account's balance for a
// token without unfreezing it — the account stays frozen afterward, a
// deliberate asymmetry with unfreeze (§4.B token freeze nuance).
func applyTokenDestroyFrozenFunds(ctx *ExecutionContext, signer types.Identifier, t *Transition, groupAuthorized bool) ([]Event, error) {
	p := t.TokenOp
	contract, ok, err := ctx.getContract(p.ContractID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("destroy references unknown contract")
	}
	def, err := findTokenDefinition(contract, p.TokenID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTokenAction(def.ChangeControl.DestroyFrozenFunds, signer, groupAuthorized); err != nil {
		return nil, err
	}
	if p.TargetID == nil {
		return nil, consensuserror.CorruptedExecutionError("destroy missing target identity")
	}

	target, ok, err := ctx.getIdentity(*p.TargetID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("destroy target identity not found")
	}
	if !target.TokenInfoFor(p.TokenID).Frozen {
		return nil, consensuserror.InvalidSignatureError("destroy frozen funds requires a frozen account")
	}

	destroyed := target.TokenBalances[p.TokenID]
	target.TokenBalances[p.TokenID] = 0

	token, ok, err := ctx.getToken(p.TokenID)
	if err != nil {
		return nil, err
	}
	if ok {
		token.TotalSupply -= destroyed
		if err := ctx.putToken(token, signer, true); err != nil {
			return nil, err
		}
	}

	if err := ctx.putIdentity(target, signer, true); err != nil {
		return nil, err
	}
	return []Event{{Name: "token.frozenFundsDestroyed", Data: map[string]interface{}{
		"tokenId": p.TokenID.String(), "identityId": p.TargetID.String(), "amount": destroyed,
	}}}, nil
}

func creditTokenBalance(identity *types.Identity, tokenID types.Identifier, amount uint64) {
	if identity.TokenBalances == nil {
		identity.TokenBalances = map[types.Identifier]uint64{}
	}
	identity.TokenBalances[tokenID] += amount
}

func findTokenDefinition(contract types.DataContract, tokenID types.Identifier) (types.TokenDefinition, error) {
	for _, def := range contract.Tokens {
		if def.TokenID == tokenID {
			return def, nil
		}
	}
	return types.TokenDefinition{}, consensuserror.CorruptedExecutionError("token not defined on contract")
}
