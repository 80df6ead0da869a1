// Copyright 2025 Certen Protocol

package query

import (
	"fmt"

	"github.com/dashpay/platform-sub004/pkg/statetransition"
	"github.com/dashpay/platform-sub004/pkg/store"
	"github.com/dashpay/platform-sub004/pkg/types"
)

// proofTarget names one store address to prove, across any of the
// top-level collections. ContractID/DocumentType are only meaningful
// when Type is "document".
type proofTarget struct {
	Type         string
	ID           types.Identifier
	ContractID   types.Identifier
	DocumentType string
}

type proofsParams struct {
	Targets []proofTarget
}

// handleProofs answers the generic multi-target proof endpoint: clients
// that already fetched data through the other endpoints in QueryFetch
// mode (cheap) can request proofs for a specific subset afterward,
// instead of paying proof-generation cost on every read.
func handleProofs(st *store.Store, req Request) (Response, error) {
	var p proofsParams
	if err := decodeParams(req.Data, &p); err != nil {
		return Response{}, err
	}

	proofs := make([]*store.Proof, 0, len(p.Targets))
	for _, target := range p.Targets {
		path, err := proofPath(target)
		if err != nil {
			return Response{}, err
		}
		proof, err := st.GenerateProof(path, target.ID[:])
		if err != nil {
			continue
		}
		proofs = append(proofs, proof)
	}

	return Response{Proofs: proofs}, nil
}

func proofPath(target proofTarget) (store.Path, error) {
	switch target.Type {
	case "identity":
		return statetransition.IdentitiesPath(), nil
	case "dataContract":
		return statetransition.ContractsPath(), nil
	case "token":
		return statetransition.TokensPath(), nil
	case "groupAction":
		return statetransition.GroupsPath(), nil
	case "document":
		return statetransition.DocumentsPath(target.ContractID.String(), target.DocumentType), nil
	default:
		return nil, fmt.Errorf("query: unknown proof target type %q", target.Type)
	}
}
