// Copyright 2025 Certen Protocol

package store

import (
	"crypto/sha256"
)

// subtree is a single Merkle node in the hierarchy: a sorted dictionary of
// keys to elements, with its own Merkle root. Sum subtrees additionally
// track the signed sum of their SumItem leaves (used for credit balances).
type subtree struct {
	path    Path
	isSum   bool
	entries map[string]Element // raw key bytes (as string) -> element
}

func newSubtree(path Path, isSum bool) *subtree {
	return &subtree{path: path, isSum: isSum, entries: make(map[string]Element)}
}

// clone performs a deep copy used for transaction copy-on-write and
// savepoint snapshots.
func (s *subtree) clone() *subtree {
	out := &subtree{path: s.path.Clone(), isSum: s.isSum, entries: make(map[string]Element, len(s.entries))}
	for k, v := range s.entries {
		out.entries[k] = v
	}
	return out
}

// sortedKeys returns the subtree's keys in deterministic ascending byte
// order. Determinism here is load-bearing: the Merkle root (and therefore
// the application hash) must not depend on map iteration order.
func (s *subtree) sortedKeys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	// insertion sort: subtree fan-out in this store is small (document
	// types, identity keys, epoch maps), so O(n^2) is fine and avoids
	// pulling in sort for a handful of callers.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

// root computes this subtree's Merkle root over (key, element) leaves in
// sorted key order. An empty subtree hashes to the all-zero root.
func (s *subtree) root() []byte {
	keys := s.sortedKeys()
	if len(keys) == 0 {
		return make([]byte, 32)
	}

	leaves := make([][]byte, len(keys))
	for i, k := range keys {
		leaves[i] = leafHash([]byte(k), s.entries[k])
	}
	return merkleRoot(leaves)
}

// sum returns the aggregate of all SumItem leaves. Only meaningful when
// isSum is true; non-sum elements contribute zero.
func (s *subtree) sum() int64 {
	var total int64
	for _, el := range s.entries {
		if el.Kind == ElementSumItem {
			total += el.Sum
		}
	}
	return total
}

func leafHash(key []byte, el Element) []byte {
	h := sha256.New()
	h.Write([]byte{byte(el.Kind)})
	h.Write(key)
	h.Write(el.hashBytes())
	sum := h.Sum(nil)
	return sum
}

// merkleRoot builds a binary Merkle tree over already-hashed leaves and
// returns its root, duplicating the final odd node per standard practice
// (buildProofPath in proof.go pairs nodes the same way).
func merkleRoot(leaves [][]byte) []byte {
	level := leaves
	for len(level) > 1 {
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, hashPair(level[i], level[i+1]))
			} else {
				next = append(next, hashPair(level[i], level[i]))
			}
		}
		level = next
	}
	return level[0]
}

func hashPair(left, right []byte) []byte {
	h := sha256.New()
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}
