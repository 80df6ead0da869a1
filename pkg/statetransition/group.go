// Copyright 2025 Certen Protocol

package statetransition

import (
	"github.com/dashpay/platform-sub004/pkg/consensuserror"
	"github.com/dashpay/platform-sub004/pkg/types"
)

// applyGroupActionPropose opens a new multi-signer action with the
// proposer's own power already counted. Main parameters are frozen at
// this point: every later confirmation must echo them exactly.
func applyGroupActionPropose(ctx *ExecutionContext, signer types.Identifier, t *Transition) ([]Event, error) {
	p := t.GroupPropose

	contract, ok, err := ctx.getContract(p.ContractID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("group propose references unknown contract")
	}
	group, err := groupAt(contract, p.GroupPosition)
	if err != nil {
		return nil, err
	}
	power, isMember := group.MemberPower[signer]
	if !isMember {
		return nil, consensuserror.GroupActionSignerNotMemberError("", signer.String())
	}

	action := types.GroupAction{
		ActionID:       deriveID(namespaceGroupAction, t.PayloadBytes),
		ContractID:     p.ContractID,
		GroupPosition:  p.GroupPosition,
		Effect:         p.Effect,
		MainParameters: p.Main,
		SignerPower:    power,
		Status:         types.GroupActionActive,
		Signers:        map[types.Identifier]struct{}{signer: {}},
	}

	events := []Event{{Name: "groupAction.proposed", Data: map[string]interface{}{
		"actionId": action.ActionID.String(), "power": power, "requiredPower": group.RequiredPower,
	}}}

	if action.SignerPower >= group.RequiredPower {
		action.Status = types.GroupActionClosed
		effectEvents, err := applyGroupActionEffect(ctx, signer, action)
		if err != nil {
			return nil, err
		}
		events = append(events, effectEvents...)
	}

	if err := ctx.putGroupAction(action, signer, false); err != nil {
		return nil, err
	}
	return events, nil
}

// applyGroupActionConfirm adds a second (or later) signer's power to an
// already-proposed action. The confirming transition must restate the
// action's main parameters and effect exactly as the proposer set them;
// any mismatch is rejected rather than silently ignored, since a silent
// mismatch would let a confirmation be replayed against a action whose
// parameters the signer never actually agreed to.
func applyGroupActionConfirm(ctx *ExecutionContext, signer types.Identifier, t *Transition) ([]Event, error) {
	p := t.GroupConfirm

	action, ok, err := ctx.getGroupAction(p.ActionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("confirm references unknown group action")
	}
	if action.Status == types.GroupActionClosed {
		return nil, consensuserror.GroupActionAlreadyClosedError(p.ActionID.String())
	}
	if action.MainParameters != p.Main || action.Effect != p.Effect {
		return nil, consensuserror.ModificationOfGroupActionMainParametersNotPermittedError(p.ActionID.String())
	}
	if _, already := action.Signers[signer]; already {
		return nil, consensuserror.InvalidSignatureError("identity has already signed this group action")
	}

	contract, ok, err := ctx.getContract(action.ContractID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("group action references unknown contract")
	}
	group, err := groupAt(contract, action.GroupPosition)
	if err != nil {
		return nil, err
	}
	power, isMember := group.MemberPower[signer]
	if !isMember {
		return nil, consensuserror.GroupActionSignerNotMemberError(p.ActionID.String(), signer.String())
	}

	action.Signers[signer] = struct{}{}
	action.SignerPower += power

	events := []Event{{Name: "groupAction.confirmed", Data: map[string]interface{}{
		"actionId": action.ActionID.String(), "power": action.SignerPower, "requiredPower": group.RequiredPower,
	}}}

	// Apply the effect exactly once: the moment accumulated power first
	// reaches the threshold. Power only ever grows (Signers de-duplicates
	// per-identity contributions), so this branch cannot be re-entered
	// for the same action once Status flips to Closed.
	if action.SignerPower >= group.RequiredPower {
		action.Status = types.GroupActionClosed
		effectEvents, err := applyGroupActionEffect(ctx, signer, action)
		if err != nil {
			return nil, err
		}
		events = append(events, effectEvents...)
	}

	if err := ctx.putGroupAction(action, signer, true); err != nil {
		return nil, err
	}
	return events, nil
}

// applyGroupActionEffect dispatches a just-closed action's effect to the
// matching token operation, authorized by the group rather than a
// single signer.
func applyGroupActionEffect(ctx *ExecutionContext, signer types.Identifier, action types.GroupAction) ([]Event, error) {
	op := &TokenOpPayload{
		TokenID:    action.MainParameters.TokenID,
		ContractID: action.ContractID,
		Amount:     action.MainParameters.Amount,
	}
	target := action.MainParameters.TargetID
	synthetic := &Transition{TokenOp: op}

	switch action.Effect {
	case types.GroupActionEffectMint:
		op.RecipientID = &target
		return applyTokenMint(ctx, signer, synthetic, true)
	case types.GroupActionEffectFreeze:
		op.TargetID = &target
		return applyTokenFreeze(ctx, signer, synthetic, true, true)
	case types.GroupActionEffectUnfreeze:
		op.TargetID = &target
		return applyTokenFreeze(ctx, signer, synthetic, true, false)
	case types.GroupActionEffectDestroyFrozenFunds:
		op.TargetID = &target
		return applyTokenDestroyFrozenFunds(ctx, signer, synthetic, true)
	default:
		return nil, consensuserror.CorruptedExecutionError("unknown group action effect")
	}
}

func groupAt(contract types.DataContract, position uint32) (types.GroupDefinition, error) {
	if int(position) >= len(contract.Groups) {
		return types.GroupDefinition{}, consensuserror.CorruptedExecutionError("group position out of range")
	}
	return contract.Groups[position], nil
}
