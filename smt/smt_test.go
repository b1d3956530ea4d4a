package smt

import (
	"testing"

	"github.com/pwang200/payment-rollup/crypto"
)

func key(b byte) crypto.Hash {
	var h crypto.Hash
	h[0] = b
	return h
}

func TestEmptyTreeGetNotFound(t *testing.T) {
	tr := New()
	root := EmptyRoot()
	if _, err := tr.Get(root, key(1)); err != ErrKeyNotFound {
		t.Fatalf("want ErrKeyNotFound, got %v", err)
	}
}

func TestInsertGetRoundTrip(t *testing.T) {
	tr := New()
	root := EmptyRoot()
	v := crypto.Sum256([]byte("value"))
	root = tr.Insert(root, key(1), v)

	got, err := tr.Get(root, key(1))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != v {
		t.Fatalf("got %x, want %x", got, v)
	}
}

func TestInsertOverwrite(t *testing.T) {
	tr := New()
	root := EmptyRoot()
	root = tr.Insert(root, key(1), crypto.Sum256([]byte("v1")))
	root = tr.Insert(root, key(1), crypto.Sum256([]byte("v2")))

	got, err := tr.Get(root, key(1))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if want := crypto.Sum256([]byte("v2")); got != want {
		t.Fatalf("overwrite did not take effect: got %x want %x", got, want)
	}
}

func TestBatchInsertOrderIndependent(t *testing.T) {
	keys := []crypto.Hash{key(1), key(2), key(3)}
	vals := []crypto.Hash{
		crypto.Sum256([]byte("a")),
		crypto.Sum256([]byte("b")),
		crypto.Sum256([]byte("c")),
	}

	tr1 := New()
	root1, err := tr1.BatchInsert(EmptyRoot(), keys, vals)
	if err != nil {
		t.Fatalf("BatchInsert failed: %v", err)
	}

	tr2 := New()
	reversedKeys := []crypto.Hash{keys[2], keys[0], keys[1]}
	reversedVals := []crypto.Hash{vals[2], vals[0], vals[1]}
	root2, err := tr2.BatchInsert(EmptyRoot(), reversedKeys, reversedVals)
	if err != nil {
		t.Fatalf("BatchInsert failed: %v", err)
	}

	if root1 != root2 {
		t.Fatalf("batch insert is order-dependent: %x != %x", root1, root2)
	}
}

func TestBatchInsertLengthMismatch(t *testing.T) {
	tr := New()
	_, err := tr.BatchInsert(EmptyRoot(), []crypto.Hash{key(1)}, nil)
	if err != ErrLengthMismatch {
		t.Fatalf("want ErrLengthMismatch, got %v", err)
	}
}

func TestProofVerify(t *testing.T) {
	tr := New()
	root := EmptyRoot()
	v := crypto.Sum256([]byte("value"))
	root = tr.Insert(root, key(5), v)

	proof := tr.Proof(root, key(5))
	if !Verify(root, key(5), v, proof) {
		t.Fatal("proof failed to verify for correct value")
	}
	if Verify(root, key(5), crypto.Sum256([]byte("wrong")), proof) {
		t.Fatal("proof verified for a tampered value")
	}
}

func TestProofVerifyAbsentKey(t *testing.T) {
	root := EmptyRoot()
	tr := New()
	proof := tr.Proof(root, key(9))
	if !Verify(root, key(9), crypto.Hash{}, proof) {
		t.Fatal("exclusion proof failed to verify against the empty root")
	}
}

func TestDifferentKeysDifferentRoots(t *testing.T) {
	tr := New()
	v := crypto.Sum256([]byte("v"))
	rootA := tr.Insert(EmptyRoot(), key(1), v)

	tr2 := New()
	rootB := tr2.Insert(EmptyRoot(), key(2), v)

	if rootA == rootB {
		t.Fatal("inserting the same value under different keys produced the same root")
	}
}
