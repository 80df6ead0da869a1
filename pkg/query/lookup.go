// Copyright 2025 Certen Protocol

package query

import (
	"github.com/dashpay/platform-sub004/pkg/store"
)

// lookup answers a single (path, key) query in fetch or prove mode,
// matching req.Prove.
func lookup(st *store.Store, path store.Path, key []byte, prove bool) (store.QueryResult, error) {
	mode := store.QueryFetch
	if prove {
		mode = store.QueryProve
	}
	return st.Run(store.Query{Path: path, Key: key, Mode: mode})
}
