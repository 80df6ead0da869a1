// Copyright 2025 Certen Protocol
//
// Package statetransition implements the per-transaction execution
// pipeline (§4.B): decode, structural validation, state validation,
// transform into low-level store writes, cost, and balance settlement.
package statetransition

import "github.com/dashpay/platform-sub004/pkg/types"

// Kind discriminates the transition payload carried by a Transition.
type Kind uint8

const (
	KindIdentityCreate Kind = iota
	KindIdentityTopUp
	KindIdentityCreditTransfer
	KindIdentityUpdate
	KindDataContractCreate
	KindDataContractUpdate
	KindDocumentsBatch
	KindTokenMint
	KindTokenBurn
	KindTokenFreeze
	KindTokenUnfreeze
	KindTokenTransfer
	KindTokenDestroyFrozenFunds
	KindGroupActionPropose
	KindGroupActionConfirm
)

// DocumentOpKind discriminates one entry within a KindDocumentsBatch.
type DocumentOpKind uint8

const (
	DocumentOpCreate DocumentOpKind = iota
	DocumentOpReplace
	DocumentOpDelete
	DocumentOpTransfer
)

// DocumentOp is one document mutation inside a batch transition.
type DocumentOp struct {
	Kind         DocumentOpKind
	DocumentID   types.Identifier
	ContractID   types.Identifier
	DocumentType string
	OwnerID      types.Identifier
	Properties   map[string]interface{}
	// ExpectedRevision guards replace/delete/transfer against a stale read.
	ExpectedRevision uint64
	// NewOwnerID is set for DocumentOpTransfer.
	NewOwnerID *types.Identifier
}

// GroupActionRef names the already-proposed action a confirming
// transition contributes power to.
type GroupActionRef struct {
	ActionID types.Identifier
}

// Transition is a decoded, not-yet-verified state transition. Exactly
// one of the Kind-specific payload fields is populated, matching Kind.
type Transition struct {
	Kind Kind

	SignerID  types.Identifier
	KeyID     uint32
	Nonce     uint64
	Signature []byte

	// PayloadBytes is what Signature was computed over (the canonical
	// encoding of everything below); structural validation verifies
	// Signature against exactly these bytes, never a re-derived encoding,
	// so every node hashes the identical input.
	PayloadBytes []byte

	IdentityCreate   *IdentityCreatePayload
	IdentityTopUp    *IdentityTopUpPayload
	IdentityUpdate   *IdentityUpdatePayload
	CreditTransfer   *CreditTransferPayload
	DataContract     *DataContractPayload
	Documents        []DocumentOp
	TokenOp          *TokenOpPayload
	GroupPropose     *GroupProposePayload
	GroupConfirm     *GroupConfirmPayload
}

// IdentityCreatePayload funds a new identity. The caller must set the
// enclosing Transition's SignerID to the same derived id Execute will
// compute for the new identity (deriveID(namespaceIdentity,
// PayloadBytes)) and sign with one of Keys, since the identity does not
// exist yet to look up independently.
type IdentityCreatePayload struct {
	InitialBalance uint64
	Keys           []types.IdentityPublicKey
}

type IdentityTopUpPayload struct {
	IdentityID types.Identifier
	Amount     uint64
}

// IdentityUpdatePayload adds new keys and/or disables existing ones in a
// single transition; a key once disabled can never be re-enabled.
type IdentityUpdatePayload struct {
	AddKeys       []types.IdentityPublicKey
	DisableKeyIDs []uint32
}

type CreditTransferPayload struct {
	RecipientID types.Identifier
	Amount      uint64
}

type DataContractPayload struct {
	Contract types.DataContract
}

type TokenOpPayload struct {
	TokenID     types.Identifier
	ContractID  types.Identifier
	RecipientID *types.Identifier // for mint/transfer
	TargetID    *types.Identifier // for freeze/unfreeze/destroy
	Amount      uint64
}

type GroupProposePayload struct {
	ContractID    types.Identifier
	GroupPosition uint32
	Main          types.GroupActionMainParameters
	Effect        types.GroupActionEffect
}

type GroupConfirmPayload struct {
	ActionID types.Identifier
	// Main is what the confirming signer believes the action's frozen
	// parameters to be; it must match the proposer's record exactly.
	Main   types.GroupActionMainParameters
	Effect types.GroupActionEffect
}
