package crypto

import "testing"

func TestHasherDeterministic(t *testing.T) {
	a := NewHasher().Write([]byte("foo")).WriteUint32(7).Sum()
	b := NewHasher().Write([]byte("foo")).WriteUint32(7).Sum()
	if a != b {
		t.Fatalf("same inputs produced different hashes: %x != %x", a, b)
	}
}

func TestHasherOrderSensitive(t *testing.T) {
	a := NewHasher().Write([]byte("ab")).Sum()
	b := NewHasher().Write([]byte("a")).Write([]byte("b")).Sum()
	if a != b {
		t.Fatalf("split writes should hash the same as one combined write")
	}

	c := NewHasher().Write([]byte("b")).Write([]byte("a")).Sum()
	if a == c {
		t.Fatalf("swapped write order produced the same hash")
	}
}

func TestSum256Convenience(t *testing.T) {
	a := Sum256([]byte("x"), []byte("y"))
	b := NewHasher().Write([]byte("x")).Write([]byte("y")).Sum()
	if a != b {
		t.Fatalf("Sum256 disagreed with Hasher: %x != %x", a, b)
	}
}

func TestBytesToHashPadsAndTruncates(t *testing.T) {
	short := BytesToHash([]byte{0x01, 0x02})
	if short[HashLen-1] != 0x02 || short[HashLen-2] != 0x01 {
		t.Fatalf("short input not right-aligned: %x", short)
	}
	for i := 0; i < HashLen-2; i++ {
		if short[i] != 0 {
			t.Fatalf("expected leading zero padding, got %x", short)
		}
	}

	long := make([]byte, HashLen+4)
	for i := range long {
		long[i] = byte(i)
	}
	truncated := BytesToHash(long)
	if truncated.Bytes()[0] != long[4] {
		t.Fatalf("expected truncation to keep the trailing HashLen bytes")
	}
}

func TestHashIsZero(t *testing.T) {
	var z Hash
	if !z.IsZero() {
		t.Fatal("zero value should report IsZero")
	}
	nz := Sum256([]byte("not zero"))
	if nz.IsZero() {
		t.Fatal("non-zero hash reported IsZero")
	}
}
