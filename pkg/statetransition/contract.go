// Copyright 2025 Certen Protocol

package statetransition

import (
	"github.com/dashpay/platform-sub004/pkg/consensuserror"
	"github.com/dashpay/platform-sub004/pkg/schema"
	"github.com/dashpay/platform-sub004/pkg/types"
)

// applyDataContractCreate registers a brand new contract, with its id
// derived from the transition payload the same way identity ids are.
func applyDataContractCreate(ctx *ExecutionContext, signer types.Identifier, t *Transition) ([]Event, error) {
	contract := t.DataContract.Contract
	contract.ID = deriveID(namespaceDataContract, t.PayloadBytes)
	contract.OwnerID = signer
	contract.Version = 1

	if _, exists, err := ctx.getContract(contract.ID); err != nil {
		return nil, err
	} else if exists {
		return nil, consensuserror.CorruptedExecutionError("derived contract id collides with an existing contract")
	}

	if err := ctx.putContract(contract, signer, false); err != nil {
		return nil, err
	}
	return []Event{{Name: "dataContract.created", Data: map[string]interface{}{"contractId": contract.ID.String()}}}, nil
}

// applyDataContractUpdate replaces an existing contract's definition,
// subject to: the signer must be the owner, the contract must be
// mutable, and every changed document-type schema must pass
// schema.CheckCompatible against its previous version (§4.E).
func applyDataContractUpdate(ctx *ExecutionContext, signer types.Identifier, t *Transition) ([]Event, error) {
	incoming := t.DataContract.Contract

	existing, ok, err := ctx.getContract(incoming.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consensuserror.CorruptedExecutionError("update target contract not found")
	}
	if existing.OwnerID != signer {
		return nil, consensuserror.InvalidSignatureError("only the owning identity may update a data contract")
	}
	if existing.Config.Readonly || !existing.Config.Mutable {
		return nil, consensuserror.New(consensuserror.CategoryConsensus, consensuserror.CodeSchemaIncompatibleChange,
			"data contract is not mutable")
	}

	for name, newType := range incoming.DocumentTypes {
		oldType, existed := existing.DocumentTypes[name]
		if !existed {
			continue
		}
		result, err := schema.CheckCompatible(oldType.Schema, newType.Schema)
		if err != nil {
			return nil, consensuserror.CorruptedExecutionError("schema comparison failed: " + err.Error())
		}
		if !result.Compatible {
			return nil, consensuserror.SchemaIncompatibleChangeError(result.Keyword)
		}
	}

	incoming.ID = existing.ID
	incoming.OwnerID = existing.OwnerID
	incoming.Version = existing.Version + 1

	if err := ctx.putContract(incoming, signer, true); err != nil {
		return nil, err
	}
	return []Event{{Name: "dataContract.updated", Data: map[string]interface{}{
		"contractId": incoming.ID.String(), "version": incoming.Version,
	}}}, nil
}
