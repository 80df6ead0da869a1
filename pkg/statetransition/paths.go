// Copyright 2025 Certen Protocol

package statetransition

import "github.com/dashpay/platform-sub004/pkg/store"

// Canonical top-level subtree names. Every domain entity lives under one
// of these, keyed by its id (or a compound id for nested collections),
// so the store's hierarchical authentication chains every entity's root
// hash up into a single app hash.
var (
	pathIdentities = store.PathFromStrings("identities")
	pathContracts  = store.PathFromStrings("contracts")
	pathTokens     = store.PathFromStrings("tokens")
	pathGroups     = store.PathFromStrings("groups")
	pathNonces     = store.PathFromStrings("nonces")
)

// pathDocuments returns the subtree holding live documents of one
// document type within one contract.
func pathDocuments(contractID, documentType string) store.Path {
	return store.PathFromStrings("documents", contractID, documentType)
}
