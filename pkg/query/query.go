// Copyright 2025 Certen Protocol
//
// Package query implements the read-side query service (§4.F): the set
// of paths an ABCI Query call can dispatch to, each returning either a
// plain value (QueryFetch) or a value plus its store inclusion proof
// (QueryProve). Request and response bodies are JSON, following the
// same wire convention pkg/statetransition uses for transitions, rather
// than introducing a second serialization format into this codebase;
// the corpus this platform is built from has no protobuf-schema tooling
// wired into its build, so a JSON envelope is the ecosystem-consistent
// choice here over hand-rolling a .proto toolchain for this one seam.
package query

import (
	"encoding/json"
	"fmt"

	"github.com/dashpay/platform-sub004/pkg/store"
)

// Request is one query dispatch: the path names which handler answers
// it, Data is that handler's JSON-encoded parameters, and Prove selects
// fetch vs. prove mode for every underlying store lookup the handler
// performs.
type Request struct {
	Path  string
	Data  []byte
	Prove bool
}

// Response carries the handler's JSON-encoded result in Value, with Key
// set when the result corresponds to a single store key (so callers
// proving a single lookup can match it against a returned Proof without
// re-deriving the address).
type Response struct {
	Key     []byte
	Value   []byte
	Proofs  []*store.Proof
	Metadata Metadata
}

// Metadata is attached to every response so a light client can check
// staleness and chain identity independent of the payload it asked for.
type Metadata struct {
	Height    int64
	CoreHeight uint64
	ChainID   string
}

type handlerFunc func(st *store.Store, req Request) (Response, error)

var handlers = map[string]handlerFunc{
	"/identity":                      handleIdentity,
	"/identities":                    handleIdentities,
	"/identity/balance":              handleIdentityBalance,
	"/identity/balanceAndRevision":   handleIdentityBalanceAndRevision,
	"/identity/keys":                 handleIdentityKeys,
	"/identity/by-public-key-hash":   handleIdentityByPublicKeyHash,
	"/identities/by-public-key-hash": handleIdentitiesByPublicKeyHash,
	"/dataContract":                  handleDataContract,
	"/dataContracts":                 handleDataContracts,
	"/dataContractHistory":           handleDataContractHistory,
	"/documents":                     handleDocuments,
	"/proofs":                        handleProofs,
}

// Handle dispatches req to the handler named by its path.
func Handle(st *store.Store, req Request) (Response, error) {
	h, ok := handlers[req.Path]
	if !ok {
		return Response{}, fmt.Errorf("query: unknown path %q", req.Path)
	}
	return h(st, req)
}

func decodeParams(data []byte, out interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func encodeResult(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Encode renders a Response as the JSON envelope returned to the ABCI
// caller: the handler's own already-encoded Value alongside any proofs
// and response metadata.
func Encode(resp Response) ([]byte, error) {
	return json.Marshal(struct {
		Value    json.RawMessage
		Proofs   []*store.Proof
		Metadata Metadata
	}{
		Value:    resp.Value,
		Proofs:   resp.Proofs,
		Metadata: resp.Metadata,
	})
}
