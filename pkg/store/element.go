// Copyright 2025 Certen Protocol

package store

import "encoding/binary"

// ElementKind discriminates the four leaf shapes a path+key may hold.
type ElementKind uint8

const (
	ElementItem ElementKind = iota
	ElementSumItem
	ElementTree
	ElementReference
)

// maxReferenceHops bounds reference resolution so a cyclic or adversarial
// reference chain cannot hang a query.
const maxReferenceHops = 8

// Element is the value stored at a (path, key) address.
type Element struct {
	Kind ElementKind

	// Item holds opaque bytes for ElementItem.
	Item []byte

	// Sum holds the signed summand for ElementSumItem.
	Sum int64

	// TreeRoot holds the child subtree's current root hash for ElementTree.
	// It is recomputed automatically as the child subtree changes; callers
	// never set it directly.
	TreeRoot []byte

	// ReferencePath/ReferenceKey name the (path, key) this leaf aliases for
	// ElementReference.
	ReferencePath Path
	ReferenceKey  []byte

	Flag StorageFlag
}

// NewItem creates an opaque-bytes element.
func NewItem(data []byte) Element { return Element{Kind: ElementItem, Item: data} }

// NewSumItem creates a signed-integer element used inside sum trees.
func NewSumItem(v int64) Element { return Element{Kind: ElementSumItem, Sum: v} }

// NewReference creates a symlink element.
func NewReference(path Path, key []byte) Element {
	return Element{Kind: ElementReference, ReferencePath: path, ReferenceKey: key}
}

// SerializedLen returns the number of bytes this element contributes to the
// store's byte accounting. Tree elements cost only their root hash (32
// bytes) regardless of subtree size — the subtree's own leaves are costed
// independently when they are written.
func (e Element) SerializedLen() int {
	switch e.Kind {
	case ElementItem:
		return len(e.Item)
	case ElementSumItem:
		return 8
	case ElementTree:
		return 32
	case ElementReference:
		return len(e.ReferenceKey) + pathByteLen(e.ReferencePath)
	}
	return 0
}

func pathByteLen(p Path) int {
	n := 0
	for _, seg := range p {
		n += len(seg)
	}
	return n
}

// hashBytes returns the bytes that go into this element's Merkle leaf hash.
func (e Element) hashBytes() []byte {
	switch e.Kind {
	case ElementItem:
		return e.Item
	case ElementSumItem:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(e.Sum))
		return b
	case ElementTree:
		return e.TreeRoot
	case ElementReference:
		out := append([]byte{}, e.ReferenceKey...)
		for _, seg := range e.ReferencePath {
			out = append(out, seg...)
		}
		return out
	}
	return nil
}
