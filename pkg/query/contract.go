// Copyright 2025 Certen Protocol

package query

import (
	"encoding/json"

	"github.com/dashpay/platform-sub004/pkg/consensuserror"
	"github.com/dashpay/platform-sub004/pkg/statetransition"
	"github.com/dashpay/platform-sub004/pkg/store"
	"github.com/dashpay/platform-sub004/pkg/types"
)

type contractParams struct {
	ID types.Identifier
}

type contractsParams struct {
	IDs []types.Identifier
}

func decodeContract(el store.Element) (types.DataContract, error) {
	var contract types.DataContract
	if el.Kind != store.ElementItem {
		return contract, consensuserror.CorruptedExecutionError("query: expected item element for data contract")
	}
	if err := json.Unmarshal(el.Item, &contract); err != nil {
		return contract, consensuserror.CorruptedExecutionError("query: corrupted data contract: " + err.Error())
	}
	return contract, nil
}

func handleDataContract(st *store.Store, req Request) (Response, error) {
	var p contractParams
	if err := decodeParams(req.Data, &p); err != nil {
		return Response{}, err
	}

	path := statetransition.ContractsPath()
	result, err := lookup(st, path, p.ID[:], req.Prove)
	if err != nil {
		return Response{}, err
	}
	if !result.Found {
		return Response{}, consensuserror.New(consensuserror.CategoryConsensus, consensuserror.CodeDataContractNotFound, "data contract not found")
	}

	contract, err := decodeContract(result.Element)
	if err != nil {
		return Response{}, err
	}
	value, err := encodeResult(contract)
	if err != nil {
		return Response{}, err
	}

	resp := Response{Key: p.ID[:], Value: value}
	if result.Proof != nil {
		resp.Proofs = []*store.Proof{result.Proof}
	}
	return resp, nil
}

func handleDataContracts(st *store.Store, req Request) (Response, error) {
	var p contractsParams
	if err := decodeParams(req.Data, &p); err != nil {
		return Response{}, err
	}

	path := statetransition.ContractsPath()
	out := make([]types.DataContract, 0, len(p.IDs))
	var proofs []*store.Proof
	for _, id := range p.IDs {
		result, err := lookup(st, path, id[:], req.Prove)
		if err != nil || !result.Found {
			continue
		}
		contract, err := decodeContract(result.Element)
		if err != nil {
			return Response{}, err
		}
		out = append(out, contract)
		if result.Proof != nil {
			proofs = append(proofs, result.Proof)
		}
	}

	value, err := encodeResult(out)
	if err != nil {
		return Response{}, err
	}
	return Response{Value: value, Proofs: proofs}, nil
}

// handleDataContractHistory answers the data contract version history
// endpoint. This platform version does not persist prior contract
// versions separately from the current one (pkg/statetransition's
// applyDataContractUpdate overwrites the stored contract in place, even
// when Config.KeepsHistory is set) — so this handler reports the single
// version currently stored rather than a genuine history list. A
// dedicated version-archive subtree is the natural extension once that
// gap is closed.
func handleDataContractHistory(st *store.Store, req Request) (Response, error) {
	resp, err := handleDataContract(st, req)
	if err != nil {
		return Response{}, err
	}
	var contract types.DataContract
	if uerr := json.Unmarshal(resp.Value, &contract); uerr != nil {
		return Response{}, consensuserror.CorruptedExecutionError("query: " + uerr.Error())
	}
	value, err := encodeResult([]types.DataContract{contract})
	if err != nil {
		return Response{}, err
	}
	resp.Value = value
	return resp, nil
}
