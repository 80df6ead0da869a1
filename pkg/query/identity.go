// Copyright 2025 Certen Protocol

package query

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/dashpay/platform-sub004/pkg/consensuserror"
	"github.com/dashpay/platform-sub004/pkg/statetransition"
	"github.com/dashpay/platform-sub004/pkg/store"
	"github.com/dashpay/platform-sub004/pkg/types"
)

type identityParams struct {
	ID types.Identifier
}

type identitiesParams struct {
	IDs []types.Identifier
}

func decodeIdentity(el store.Element) (types.Identity, error) {
	var identity types.Identity
	if el.Kind != store.ElementItem {
		return identity, consensuserror.CorruptedExecutionError("query: expected item element for identity")
	}
	if err := json.Unmarshal(el.Item, &identity); err != nil {
		return identity, consensuserror.CorruptedExecutionError("query: corrupted identity: " + err.Error())
	}
	return identity, nil
}

func handleIdentity(st *store.Store, req Request) (Response, error) {
	var p identityParams
	if err := decodeParams(req.Data, &p); err != nil {
		return Response{}, err
	}

	path := statetransition.IdentitiesPath()
	result, err := lookup(st, path, p.ID[:], req.Prove)
	if err != nil {
		return Response{}, err
	}
	if !result.Found {
		return Response{}, consensuserror.New(consensuserror.CategoryConsensus, consensuserror.CodeIdentityNotFound, "identity not found")
	}

	identity, err := decodeIdentity(result.Element)
	if err != nil {
		return Response{}, err
	}
	value, err := encodeResult(identity)
	if err != nil {
		return Response{}, err
	}

	resp := Response{Key: p.ID[:], Value: value}
	if result.Proof != nil {
		resp.Proofs = []*store.Proof{result.Proof}
	}
	return resp, nil
}

func handleIdentities(st *store.Store, req Request) (Response, error) {
	var p identitiesParams
	if err := decodeParams(req.Data, &p); err != nil {
		return Response{}, err
	}

	path := statetransition.IdentitiesPath()
	out := make([]types.Identity, 0, len(p.IDs))
	var proofs []*store.Proof
	for _, id := range p.IDs {
		result, err := lookup(st, path, id[:], req.Prove)
		if err != nil {
			return Response{}, err
		}
		if !result.Found {
			continue
		}
		identity, err := decodeIdentity(result.Element)
		if err != nil {
			return Response{}, err
		}
		out = append(out, identity)
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

func handleIdentityBalance(st *store.Store, req Request) (Response, error) {
	resp, err := handleIdentity(st, req)
	if err != nil {
		return Response{}, err
	}
	var identity types.Identity
	if uerr := json.Unmarshal(resp.Value, &identity); uerr != nil {
		return Response{}, consensuserror.CorruptedExecutionError("query: " + uerr.Error())
	}
	value, err := encodeResult(struct {
		Balance uint64
		Debt    uint64
	}{identity.Balance, identity.Debt})
	if err != nil {
		return Response{}, err
	}
	resp.Value = value
	return resp, nil
}

func handleIdentityBalanceAndRevision(st *store.Store, req Request) (Response, error) {
	resp, err := handleIdentity(st, req)
	if err != nil {
		return Response{}, err
	}
	var identity types.Identity
	if uerr := json.Unmarshal(resp.Value, &identity); uerr != nil {
		return Response{}, consensuserror.CorruptedExecutionError("query: " + uerr.Error())
	}
	value, err := encodeResult(struct {
		Balance  uint64
		Debt     uint64
		Revision uint64
	}{identity.Balance, identity.Debt, identity.Revision})
	if err != nil {
		return Response{}, err
	}
	resp.Value = value
	return resp, nil
}

func handleIdentityKeys(st *store.Store, req Request) (Response, error) {
	resp, err := handleIdentity(st, req)
	if err != nil {
		return Response{}, err
	}
	var identity types.Identity
	if uerr := json.Unmarshal(resp.Value, &identity); uerr != nil {
		return Response{}, consensuserror.CorruptedExecutionError("query: " + uerr.Error())
	}
	value, err := encodeResult(identity.Keys)
	if err != nil {
		return Response{}, err
	}
	resp.Value = value
	return resp, nil
}

type publicKeyHashParams struct {
	Hash [32]byte
}

type publicKeyHashesParams struct {
	Hashes [][32]byte
}

// publicKeyHash is the address derivation this endpoint indexes by: a
// plain sha256 of the key's compressed public bytes. There is no
// persisted secondary index from hash to identity id, so this scans
// every identity once per call; acceptable at this platform's expected
// validator-set scale, not at exchange-grade identity counts.
func publicKeyHash(data []byte) [32]byte {
	return sha256.Sum256(data)
}

func handleIdentityByPublicKeyHash(st *store.Store, req Request) (Response, error) {
	var p publicKeyHashParams
	if err := decodeParams(req.Data, &p); err != nil {
		return Response{}, err
	}

	path := statetransition.IdentitiesPath()
	keys, err := st.Keys(path)
	if err != nil {
		return Response{}, err
	}
	for _, key := range keys {
		result, err := lookup(st, path, key, req.Prove)
		if err != nil || !result.Found {
			continue
		}
		identity, err := decodeIdentity(result.Element)
		if err != nil {
			return Response{}, err
		}
		for _, k := range identity.Keys {
			if publicKeyHash(k.Data) == p.Hash {
				value, err := encodeResult(identity)
				if err != nil {
					return Response{}, err
				}
				resp := Response{Key: identity.ID[:], Value: value}
				if result.Proof != nil {
					resp.Proofs = []*store.Proof{result.Proof}
				}
				return resp, nil
			}
		}
	}
	return Response{}, consensuserror.New(consensuserror.CategoryConsensus, consensuserror.CodeIdentityNotFound, "no identity with that public key hash")
}

func handleIdentitiesByPublicKeyHash(st *store.Store, req Request) (Response, error) {
	var p publicKeyHashesParams
	if err := decodeParams(req.Data, &p); err != nil {
		return Response{}, err
	}
	wanted := make(map[[32]byte]struct{}, len(p.Hashes))
	for _, h := range p.Hashes {
		wanted[h] = struct{}{}
	}

	path := statetransition.IdentitiesPath()
	keys, err := st.Keys(path)
	if err != nil {
		return Response{}, err
	}
	out := make([]types.Identity, 0, len(p.Hashes))
	var proofs []*store.Proof
	for _, key := range keys {
		result, err := lookup(st, path, key, req.Prove)
		if err != nil || !result.Found {
			continue
		}
		identity, err := decodeIdentity(result.Element)
		if err != nil {
			return Response{}, err
		}
		for _, k := range identity.Keys {
			if _, ok := wanted[publicKeyHash(k.Data)]; ok {
				out = append(out, identity)
				if result.Proof != nil {
					proofs = append(proofs, result.Proof)
				}
				break
			}
		}
	}

	value, err := encodeResult(out)
	if err != nil {
		return Response{}, err
	}
	return Response{Value: value, Proofs: proofs}, nil
}
