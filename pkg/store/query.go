// Copyright 2025 Certen Protocol

package store

// QueryMode selects whether a Query returns raw values (fetch) or values
// accompanied by a cryptographic proof of inclusion (prove). Light
// clients and anything crossing a trust boundary should always use
// QueryProve; in-process callers that already trust the store use
// QueryFetch to skip proof construction.
type QueryMode uint8

const (
	QueryFetch QueryMode = iota
	QueryProve
)

// Query names a single (path, key) lookup and how to answer it.
type Query struct {
	Path Path
	Key  []byte
	Mode QueryMode
}

// QueryResult is the answer to a Query: the element (if found) and, in
// QueryProve mode, the proof attesting to it.
type QueryResult struct {
	Element Element
	Found   bool
	Proof   *Proof
}

// Run answers q against the store.
func (s *Store) Run(q Query) (QueryResult, error) {
	el, found := s.Get(q.Path, q.Key)
	result := QueryResult{Element: el, Found: found}
	if q.Mode != QueryProve || !found {
		return result, nil
	}
	proof, err := s.GenerateProof(q.Path, q.Key)
	if err != nil {
		return result, err
	}
	result.Proof = proof
	return result, nil
}

// RunRange answers a batch of queries in order, for query endpoints that
// return multiple documents in one response. Each query takes its own
// read lock; the batch as a whole is not read from one consistent view,
// so a write committed between two queries is visible to the later ones.
func (s *Store) RunRange(queries []Query) ([]QueryResult, error) {
	out := make([]QueryResult, 0, len(queries))
	for _, q := range queries {
		r, err := s.Run(q)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
