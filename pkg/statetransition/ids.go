// Copyright 2025 Certen Protocol

package statetransition

import (
	"crypto/sha256"

	"github.com/google/uuid"

	"github.com/dashpay/platform-sub004/pkg/types"
)

// Fixed namespaces for deterministic id derivation. Using a distinct
// namespace per entity kind means the same PayloadBytes never derive
// the same id for two different entity kinds.
var (
	namespaceIdentity    = uuid.MustParse("9b1f9a2e-9e0b-4f1e-8b1a-1a2b3c4d5e01")
	namespaceDataContract = uuid.MustParse("9b1f9a2e-9e0b-4f1e-8b1a-1a2b3c4d5e02")
	namespaceDocument    = uuid.MustParse("9b1f9a2e-9e0b-4f1e-8b1a-1a2b3c4d5e03")
	namespaceGroupAction = uuid.MustParse("9b1f9a2e-9e0b-4f1e-8b1a-1a2b3c4d5e04")
)

// deriveID produces a 32-byte Identifier deterministically from a
// namespace and arbitrary domain data: uuid.NewSHA1 gives a stable
// 16-byte id from (namespace, data), which is then stretched to 32
// bytes so every node that replays the same transition computes the
// identical identifier without relying on any local counter or RNG.
func deriveID(namespace uuid.UUID, data []byte) types.Identifier {
	u := uuid.NewSHA1(namespace, data)
	return sha256.Sum256(u[:])
}
