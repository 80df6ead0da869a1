// Copyright 2025 Certen Protocol
//
// Package types holds the domain entities of the replicated state machine:
// identities, data contracts, documents, tokens and group actions. These are
// pure data definitions; validation and mutation live in pkg/statetransition,
// persistence lives in pkg/store.
package types

import (
	"encoding/hex"
	"fmt"
	"time"
)

// Identifier is a 32-byte entity id (identity, contract, document, token).
type Identifier [32]byte

// IsZero reports whether the identifier is the all-zero value.
func (id Identifier) IsZero() bool {
	return id == Identifier{}
}

func (id Identifier) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText renders the identifier as hex, so encoding/json accepts it as
// a map key (json.Marshal only allows string-kind, integer-kind, or
// encoding.TextMarshaler keys) as well as an ordinary struct field.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the hex form produced by MarshalText.
func (id *Identifier) UnmarshalText(text []byte) error {
	decoded, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(decoded) != len(id) {
		return fmt.Errorf("types: identifier must be %d bytes, got %d", len(id), len(decoded))
	}
	copy(id[:], decoded)
	return nil
}

// KeyPurpose enumerates what an identity public key may be used for.
type KeyPurpose uint8

const (
	KeyPurposeAuthentication KeyPurpose = iota
	KeyPurposeEncryption
	KeyPurposeDecryption
	KeyPurposeTransfer
	KeyPurposeVoting
	KeyPurposeOwner
)

// SecurityLevel enumerates the required strength of a key for an operation.
type SecurityLevel uint8

const (
	SecurityLevelMaster SecurityLevel = iota
	SecurityLevelCritical
	SecurityLevelHigh
	SecurityLevelMedium
)

// IdentityPublicKey is one key in an identity's key set.
type IdentityPublicKey struct {
	ID            uint32
	Purpose       KeyPurpose
	SecurityLevel SecurityLevel
	Data          []byte
	Disabled      bool
}

// TokenInfo is the per-identity, per-token sub-account info block.
type TokenInfo struct {
	Frozen bool
}

// Identity is the core account entity: credits, debt, keys and per-token
// sub-accounts.
type Identity struct {
	ID       Identifier
	Balance  uint64 // credits, always >= 0
	Debt     uint64 // negative-credit debt; zero unless Balance has been exhausted
	Revision uint64
	Keys     []IdentityPublicKey

	// TokenBalances maps token id -> credit balance for that identity.
	TokenBalances map[Identifier]uint64
	// TokenInfos maps token id -> frozen/info block for that identity.
	TokenInfos map[Identifier]TokenInfo
}

// FindKey returns the key with the given id, or nil if absent.
func (i *Identity) FindKey(keyID uint32) *IdentityPublicKey {
	for idx := range i.Keys {
		if i.Keys[idx].ID == keyID {
			return &i.Keys[idx]
		}
	}
	return nil
}

// TokenInfoFor returns the token info block for tokenID, defaulting to the
// zero value (not frozen) if the identity has never touched that token.
func (i *Identity) TokenInfoFor(tokenID Identifier) TokenInfo {
	if i.TokenInfos == nil {
		return TokenInfo{}
	}
	return i.TokenInfos[tokenID]
}

// DataContractConfig carries the mutability/history/readonly flags that
// govern how the contract and its documents may evolve.
type DataContractConfig struct {
	Mutable                          bool
	Readonly                         bool
	KeepsHistory                     bool
	CanBeDeleted                     bool
	DocumentsKeepHistoryDefault      bool
	DocumentsMutableDefault          bool
	RequiresIdentityEncryptionKey    bool
	RequiresIdentityDecryptionKey    bool
}

// DocumentTypeDefinition is one named document type within a contract.
type DocumentTypeDefinition struct {
	Name          string
	Schema        map[string]interface{}
	Indices       []string
	Mutable       bool
	Transferable  bool
	TradeMode     TradeMode
	CanBeDeleted  bool
	KeepsHistory  bool
	// PaymentTokenID records the token named as this type's payment
	// token; no document transition reads it or charges it.
	PaymentTokenID *Identifier
}

// TradeMode governs whether/how a transferable document may change owner.
type TradeMode uint8

const (
	TradeModeNone TradeMode = iota
	TradeModeFixedPrice
	TradeModePrivateSale
)

// GroupDefinition is a member -> voting-power map plus the power threshold
// required to close a group action.
type GroupDefinition struct {
	MemberPower    map[Identifier]uint32
	RequiredPower  uint32
}

// TokenChangeControlRules names, per privileged action, who may authorize it
// and whether a group action is required instead of a single signer.
type TokenChangeControlRules struct {
	AuthorizedIdentity *Identifier
	RequiresGroupAction bool
	GroupPosition       *uint32 // which GroupDefinition (by index) gates this action
	AllowTransferToFrozenBalance bool
}

// TokenChangeControl bundles the rules for every privileged token action.
type TokenChangeControl struct {
	Mint                  TokenChangeControlRules
	Freeze                TokenChangeControlRules
	Unfreeze              TokenChangeControlRules
	DestroyFrozenFunds    TokenChangeControlRules
	EmergencyAction       TokenChangeControlRules
}

// TokenDefinition is the contract-scoped definition of one token.
type TokenDefinition struct {
	TokenID       Identifier
	KeepsHistory  bool
	ChangeControl TokenChangeControl
}

// DataContract is an immutable-identity, append-only-version entity.
type DataContract struct {
	ID       Identifier
	OwnerID  Identifier
	Version  uint32
	Config   DataContractConfig

	DocumentTypes map[string]DocumentTypeDefinition
	Tokens        []TokenDefinition
	Groups        []GroupDefinition
}

// FindDocumentType returns the named document type, or false if absent.
func (c *DataContract) FindDocumentType(name string) (DocumentTypeDefinition, bool) {
	dt, ok := c.DocumentTypes[name]
	return dt, ok
}

// Document is a typed record owned by an identity under a data contract.
type Document struct {
	ID          Identifier
	ContractID  Identifier
	DocumentType string
	OwnerID     Identifier
	CreatorID   *Identifier
	Revision    uint64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Properties  map[string]interface{}

	// Deleted marks a tombstone: deleting a document of a type that keeps
	// history sets Deleted and rewrites it in place; any other deleted
	// document is removed from the store.
	Deleted bool
}

// Token is the global (contract-scoped) token ledger root: total supply plus
// nothing else — per-identity balances live on the Identity.
type Token struct {
	ID           Identifier
	ContractID   Identifier
	TotalSupply  uint64
}

// GroupActionStatus is the lifecycle state of a multi-signer group action.
type GroupActionStatus uint8

const (
	GroupActionActive GroupActionStatus = iota
	GroupActionClosed
)

// GroupActionEffect names which token operation a group action will apply
// once closed.
type GroupActionEffect uint8

const (
	GroupActionEffectMint GroupActionEffect = iota
	GroupActionEffectFreeze
	GroupActionEffectUnfreeze
	GroupActionEffectDestroyFrozenFunds
)

// GroupActionMainParameters are the fields fixed at proposal time; any
// co-signer transition must match them exactly.
type GroupActionMainParameters struct {
	ProposerID Identifier
	TokenID    Identifier
	TargetID   Identifier
	Amount     uint64
}

// GroupAction is a multi-signer proposal-and-confirm record.
type GroupAction struct {
	ActionID       Identifier
	ContractID     Identifier
	GroupPosition  uint32
	Effect         GroupActionEffect
	MainParameters GroupActionMainParameters
	SignerPower    uint32
	Status         GroupActionStatus
	// Signers tracks which identities have already contributed power, so a
	// repeat signature from the same identity is rejected rather than
	// double-counted.
	Signers map[Identifier]struct{}
}

// PlatformVersion identifies the deterministic rule set a node runs. It is
// carried on statetransition.ExecutionContext as Version; no function in
// pkg/statetransition branches on it, and CurrentPlatformVersion is the
// only version defined.
type PlatformVersion uint32

const CurrentPlatformVersion PlatformVersion = 1
