// Copyright 2025 Certen Protocol

package statetransition

import (
	"github.com/dashpay/platform-sub004/pkg/consensuserror"
	"github.com/dashpay/platform-sub004/pkg/store"
	"github.com/dashpay/platform-sub004/pkg/types"
)

// The functions below are the read-only seam pkg/query and pkg/abci use
// to resolve domain state without duplicating this package's storage
// layout (subtree paths, JSON encoding) in another package.

// IdentitiesPath, ContractsPath, TokensPath, and GroupsPath expose the
// top-level subtree each domain collection lives under, so pkg/query can
// enumerate or prove against them without hardcoding this package's
// layout a second time.
func IdentitiesPath() store.Path { return pathIdentities }
func ContractsPath() store.Path  { return pathContracts }
func TokensPath() store.Path     { return pathTokens }
func GroupsPath() store.Path     { return pathGroups }

// DocumentsPath exposes the subtree holding live documents of one
// document type within one contract.
func DocumentsPath(contractID, documentType string) store.Path {
	return pathDocuments(contractID, documentType)
}

func GetIdentity(tx *store.Transaction, id types.Identifier) (types.Identity, bool, error) {
	return (&ExecutionContext{Tx: tx}).getIdentity(id)
}

func GetDataContract(tx *store.Transaction, id types.Identifier) (types.DataContract, bool, error) {
	return (&ExecutionContext{Tx: tx}).getContract(id)
}

func GetDocument(tx *store.Transaction, contractID types.Identifier, documentType string, docID types.Identifier) (types.Document, bool, error) {
	return (&ExecutionContext{Tx: tx}).getDocument(contractID, documentType, docID)
}

func GetToken(tx *store.Transaction, id types.Identifier) (types.Token, bool, error) {
	return (&ExecutionContext{Tx: tx}).getToken(id)
}

func GetGroupAction(tx *store.Transaction, id types.Identifier) (types.GroupAction, bool, error) {
	return (&ExecutionContext{Tx: tx}).getGroupAction(id)
}

// ResolveSignerKey finds the IdentityPublicKey that KeyID names for a
// decoded, not-yet-verified transition. IdentityCreate transitions carry
// their signing key inline in the payload, since the identity they name
// does not exist in the store until the transition itself commits.
func ResolveSignerKey(tx *store.Transaction, t *Transition) (types.IdentityPublicKey, error) {
	if t.Kind == KindIdentityCreate {
		if t.IdentityCreate == nil {
			return types.IdentityPublicKey{}, consensuserror.CorruptedExecutionError("identity create transition missing payload")
		}
		for _, k := range t.IdentityCreate.Keys {
			if k.ID == t.KeyID {
				return k, nil
			}
		}
		return types.IdentityPublicKey{}, consensuserror.InvalidSignatureError("signing key id not present in identity create payload")
	}

	identity, ok, err := GetIdentity(tx, t.SignerID)
	if err != nil {
		return types.IdentityPublicKey{}, err
	}
	if !ok {
		return types.IdentityPublicKey{}, consensuserror.InvalidSignatureError("unknown signer identity")
	}
	key := identity.FindKey(t.KeyID)
	if key == nil {
		return types.IdentityPublicKey{}, consensuserror.InvalidSignatureError("signer identity has no such key id")
	}
	return *key, nil
}
