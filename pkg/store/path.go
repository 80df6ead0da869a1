// Copyright 2025 Certen Protocol
//
// Package store implements the authenticated state store: a hierarchical,
// Merkle-ized key-value tree with transactional writes, cryptographic
// proofs, and byte-accurate cost accounting. It is the "drive" of the
// platform — every other component reads and writes through it.
package store

import (
	"bytes"
	"encoding/hex"
	"strings"
)

// Path addresses a subtree: an ordered sequence of byte-string segments from
// the store root. The empty path addresses the root subtree itself.
type Path [][]byte

// Append returns a new path with segment appended; it does not mutate p.
func (p Path) Append(segment []byte) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = segment
	return out
}

// Clone returns a deep copy of the path.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	for i, seg := range p {
		s := make([]byte, len(seg))
		copy(s, seg)
		out[i] = s
	}
	return out
}

// Key renders the path as a single map key usable for the in-memory subtree
// index. Segments are hex-encoded and '/'-terminated so no segment
// boundary is ambiguous.
func (p Path) Key() string {
	var b strings.Builder
	for _, seg := range p {
		b.WriteString(hex.EncodeToString(seg))
		b.WriteByte('/')
	}
	return b.String()
}

// Equal reports whether two paths address the same subtree.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if !bytes.Equal(p[i], o[i]) {
			return false
		}
	}
	return true
}

func PathFromStrings(segments ...string) Path {
	p := make(Path, len(segments))
	for i, s := range segments {
		p[i] = []byte(s)
	}
	return p
}
