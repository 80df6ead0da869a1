// Copyright 2025 Certen Protocol
//
// Proof generation and verification walk the subtree hierarchy from a
// target (path, key) up to the store root, producing one Merkle
// inclusion proof per layer of the store's own subtree hierarchy.
package store

import "bytes"

// ProofNode is one sibling hash on an inclusion path, tagged with which
// side it sits on so the verifier hashes in the right order.
type ProofNode struct {
	Hash   []byte
	IsLeft bool
}

// LayerProof proves that (Key, Element) is a member of the subtree
// rooted at Path, given the subtree's other entries as sibling hashes.
// For every layer but the innermost, Element is an ElementTree pointing
// at the layer below.
type LayerProof struct {
	Path     Path
	Key      []byte
	Element  Element
	Siblings []ProofNode // sibling hashes from this leaf up to this layer's own root
}

// Proof is a full inclusion proof from a leaf up to the store root: one
// LayerProof per subtree on the path from the target's parent subtree to
// the root subtree.
type Proof struct {
	Layers []LayerProof
	Root   []byte
}

// GenerateProof builds an inclusion proof for the element at (path, key).
// It does not resolve references: the proof attests to exactly what is
// stored at that address, reference or not.
func (s *Store) GenerateProof(path Path, key []byte) (*Proof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.subtrees[path.Key()]
	if !ok {
		return nil, ErrSubtreeNotFound
	}
	el, ok := st.entries[string(key)]
	if !ok {
		return nil, ErrElementNotFound
	}

	proof := &Proof{}
	curPath := path
	curKey := append([]byte{}, key...)
	curElement := el

	for {
		st, ok := s.subtrees[curPath.Key()]
		if !ok {
			return nil, ErrSubtreeNotFound
		}
		siblings, err := subtreeProofPath(st, curKey)
		if err != nil {
			return nil, err
		}
		proof.Layers = append(proof.Layers, LayerProof{
			Path:    curPath,
			Key:     append([]byte{}, curKey...),
			Element: curElement,
			Siblings: siblings,
		})

		if len(curPath) == 0 {
			proof.Root = st.root()
			return proof, nil
		}

		parentPath := curPath[:len(curPath)-1]
		parentKey := curPath[len(curPath)-1]
		parent, ok := s.subtrees[parentPath.Key()]
		if !ok {
			return nil, ErrSubtreeNotFound
		}
		parentEl, ok := parent.entries[string(parentKey)]
		if !ok {
			return nil, ErrElementNotFound
		}

		curPath = parentPath
		curKey = parentKey
		curElement = parentEl
	}
}

// subtreeProofPath returns the sibling path proving key's leaf is a
// member of st's Merkle tree.
func subtreeProofPath(st *subtree, key []byte) ([]ProofNode, error) {
	keys := st.sortedKeys()
	index := -1
	leaves := make([][]byte, len(keys))
	for i, k := range keys {
		leaves[i] = leafHash([]byte(k), st.entries[k])
		if k == string(key) {
			index = i
		}
	}
	if index == -1 {
		return nil, ErrElementNotFound
	}
	return buildProofPath(leaves, index), nil
}

func buildProofPath(leaves [][]byte, index int) []ProofNode {
	var path []ProofNode
	level := leaves
	idx := index
	for len(level) > 1 {
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			var left, right []byte
			left = level[i]
			if i+1 < len(level) {
				right = level[i+1]
			} else {
				right = level[i]
			}
			if i == idx || i+1 == idx {
				if idx == i {
					path = append(path, ProofNode{Hash: right, IsLeft: false})
				} else {
					path = append(path, ProofNode{Hash: left, IsLeft: true})
				}
			}
			next = append(next, hashPair(left, right))
		}
		idx = idx / 2
		level = next
	}
	return path
}

// Verify recomputes the root implied by p and checks it against
// expectedRoot (normally Store.RootHash(), or a header app hash supplied
// by a light client).
func (p *Proof) Verify(expectedRoot []byte) error {
	if len(p.Layers) == 0 {
		return ErrProofVerificationFailed
	}

	var childRoot []byte
	for i, layer := range p.Layers {
		leaf := leafHash(layer.Key, layer.Element)
		if i > 0 {
			// The previous (inner) layer's computed root must equal this
			// layer's Tree element pointer down to it.
			if layer.Element.Kind != ElementTree || !bytes.Equal(layer.Element.TreeRoot, childRoot) {
				return ErrProofVerificationFailed
			}
		}
		root := leaf
		for _, node := range layer.Siblings {
			if node.IsLeft {
				root = hashPair(node.Hash, root)
			} else {
				root = hashPair(root, node.Hash)
			}
		}
		childRoot = root
	}

	if !bytes.Equal(childRoot, expectedRoot) {
		return ErrProofVerificationFailed
	}
	if p.Root != nil && !bytes.Equal(childRoot, p.Root) {
		return ErrProofVerificationFailed
	}
	return nil
}
