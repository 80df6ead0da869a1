// Copyright 2025 Certen Protocol

package query

import (
	"encoding/json"

	"github.com/dashpay/platform-sub004/pkg/consensuserror"
	"github.com/dashpay/platform-sub004/pkg/statetransition"
	"github.com/dashpay/platform-sub004/pkg/store"
	"github.com/dashpay/platform-sub004/pkg/types"
)

// documentsParams names one document type within one contract, and
// either an explicit id list (exact lookups, the common case for a
// client that already knows what it's fetching) or, when IDs is empty,
// every live document of that type. Querying by an indexed property
// (per DocumentTypeDefinition.Indices) is not implemented: that needs an
// index-aware storage layout this platform version does not build.
type documentsParams struct {
	ContractID   types.Identifier
	DocumentType string
	IDs          []types.Identifier
}

func decodeDocument(el store.Element) (types.Document, error) {
	var doc types.Document
	if el.Kind != store.ElementItem {
		return doc, consensuserror.CorruptedExecutionError("query: expected item element for document")
	}
	if err := json.Unmarshal(el.Item, &doc); err != nil {
		return doc, consensuserror.CorruptedExecutionError("query: corrupted document: " + err.Error())
	}
	return doc, nil
}

func handleDocuments(st *store.Store, req Request) (Response, error) {
	var p documentsParams
	if err := decodeParams(req.Data, &p); err != nil {
		return Response{}, err
	}

	path := statetransition.DocumentsPath(p.ContractID.String(), p.DocumentType)

	ids := p.IDs
	if len(ids) == 0 {
		keys, err := st.Keys(path)
		if err != nil {
			return Response{}, err
		}
		ids = make([]types.Identifier, 0, len(keys))
		for _, k := range keys {
			var id types.Identifier
			copy(id[:], k)
			ids = append(ids, id)
		}
	}

	out := make([]types.Document, 0, len(ids))
	var proofs []*store.Proof
	for _, id := range ids {
		result, err := lookup(st, path, id[:], req.Prove)
		if err != nil || !result.Found {
			continue
		}
		doc, err := decodeDocument(result.Element)
		if err != nil {
			return Response{}, err
		}
		if doc.Deleted {
			continue
		}
		out = append(out, doc)
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
