// Package smt implements an authenticated account map: a 256-level binary
// sparse Merkle tree keyed by 32-byte account ids.
//
// It follows the shape of a Merkle Patricia Trie with content-addressed
// nodes and a precomputed empty root, but specialized to a plain binary
// SMT rather than a compressed-path trie: account ids are already uniform
// hash outputs, so path compression buys nothing, and a fixed-depth tree
// makes batch insert order-independent immediate -- the final root is a
// pure function of the key/value set, never of insertion order, because
// each key's path through the tree is fixed by its bits.
//
// The tree is functional: operations take a root and return a new root: a
// Tree is just a content-addressed node store, and roots are mere lookup
// keys into it, analogous to how a hash-referenced trie resolves node
// references lazily against a backing database.
package smt

import (
	"errors"

	"github.com/pwang200/payment-rollup/crypto"
)

// Depth is the number of levels in the tree, one per bit of a 32-byte key.
const Depth = crypto.HashLen * 8

// ErrKeyNotFound is returned by Get when a key has no value under root.
var ErrKeyNotFound = errors.New("smt: key not found")

// ErrLengthMismatch is returned by BatchInsert when keys and values differ
// in length.
var ErrLengthMismatch = errors.New("smt: keys/values length mismatch")

// emptyHash[h] is the root hash of an empty subtree of height h (h=0 is an
// empty leaf, h=Depth is the empty whole-tree root).
var emptyHash = buildEmptyHashes()

func buildEmptyHashes() [Depth + 1]crypto.Hash {
	var e [Depth + 1]crypto.Hash
	e[0] = crypto.Hash{} // absent leaf value
	for h := 1; h <= Depth; h++ {
		e[h] = crypto.Sum256(e[h-1][:], e[h-1][:])
	}
	return e
}

// EmptyRoot is the root hash of a tree with no entries.
func EmptyRoot() crypto.Hash { return emptyHash[Depth] }

type branch struct {
	left, right crypto.Hash
}

// Tree is a content-addressed store of internal SMT nodes. The zero value
// is a usable empty store; use EmptyRoot() as the initial root.
type Tree struct {
	nodes map[crypto.Hash]branch
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{nodes: make(map[crypto.Hash]branch)}
}

// bitAt returns bit `level` of key, counting from the most significant bit
// of key[0] (level 0) down to the least significant bit of key[31]
// (level Depth-1). This is the descent order from root to leaf.
func bitAt(key crypto.Hash, level int) int {
	byteIdx := level / 8
	bitIdx := 7 - (level % 8)
	return int((key[byteIdx] >> uint(bitIdx)) & 1)
}

// siblings walks from root to the leaf for key, returning the sibling hash
// encountered at each of the Depth levels (index 0 = sibling nearest the
// root) and the hash of the current leaf slot (value or empty).
func (t *Tree) siblings(root crypto.Hash, key crypto.Hash) (sib [Depth]crypto.Hash, leaf crypto.Hash) {
	cur := root
	for level := 0; level < Depth; level++ {
		height := Depth - level
		if cur == emptyHash[height] {
			// Whole remaining subtree is empty; every sibling below is the
			// empty hash at its own height.
			for l := level; l < Depth; l++ {
				sib[l] = emptyHash[Depth-l-1]
			}
			return sib, emptyHash[0]
		}
		b, ok := t.nodes[cur]
		if !ok {
			// cur is itself a leaf value reached before Depth levels were
			// consumed; only possible if the caller passed a non-root hash.
			// Treat remaining path as absent.
			for l := level; l < Depth; l++ {
				sib[l] = emptyHash[Depth-l-1]
			}
			return sib, cur
		}
		if bitAt(key, level) == 0 {
			sib[level] = b.right
			cur = b.left
		} else {
			sib[level] = b.left
			cur = b.right
		}
	}
	return sib, cur
}

// Get returns the value stored for key under root, or ErrKeyNotFound.
func (t *Tree) Get(root crypto.Hash, key crypto.Hash) (crypto.Hash, error) {
	_, leaf := t.siblings(root, key)
	if leaf == emptyHash[0] {
		return crypto.Hash{}, ErrKeyNotFound
	}
	return leaf, nil
}

// Insert sets key to value under root and returns the new root.
func (t *Tree) Insert(root crypto.Hash, key crypto.Hash, value crypto.Hash) crypto.Hash {
	if t.nodes == nil {
		t.nodes = make(map[crypto.Hash]branch)
	}
	sib, _ := t.siblings(root, key)
	cur := value
	for level := Depth - 1; level >= 0; level-- {
		var b branch
		if bitAt(key, level) == 0 {
			b = branch{left: cur, right: sib[level]}
		} else {
			b = branch{left: sib[level], right: cur}
		}
		h := crypto.Sum256(b.left[:], b.right[:])
		t.nodes[h] = b
		cur = h
	}
	return cur
}

// BatchInsert applies all (keys[i], values[i]) pairs to root and returns
// the new root. The result does not depend on the order of keys/values:
// each key's path is fixed by its own bits, and every prefix tree produced
// along the way is a pure function of the key/value set inserted so far,
// so applying the same set in any order converges to the same root.
func (t *Tree) BatchInsert(root crypto.Hash, keys []crypto.Hash, values []crypto.Hash) (crypto.Hash, error) {
	if len(keys) != len(values) {
		return crypto.Hash{}, ErrLengthMismatch
	}
	cur := root
	for i := range keys {
		cur = t.Insert(cur, keys[i], values[i])
	}
	return cur, nil
}

// Proof is a Merkle inclusion/exclusion proof: the sibling hash at each
// level from the root down to the leaf.
type Proof struct {
	Siblings [Depth]crypto.Hash
}

// Proof returns a Merkle proof for key under root.
func (t *Tree) Proof(root crypto.Hash, key crypto.Hash) Proof {
	sib, _ := t.siblings(root, key)
	return Proof{Siblings: sib}
}

// Verify reports whether value is the value of key under root according to
// proof, recomputing the root from the leaf upward.
func Verify(root crypto.Hash, key crypto.Hash, value crypto.Hash, proof Proof) bool {
	cur := value
	for level := Depth - 1; level >= 0; level-- {
		if bitAt(key, level) == 0 {
			cur = crypto.Sum256(cur[:], proof.Siblings[level][:])
		} else {
			cur = crypto.Sum256(proof.Siblings[level][:], cur[:])
		}
	}
	return cur == root
}
