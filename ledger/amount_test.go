package ledger

import (
	"math/big"
	"testing"
)

func TestNewAmountRejectsNegative(t *testing.T) {
	if _, err := NewAmount(-1); err != ErrAmountOverflow {
		t.Fatalf("want ErrAmountOverflow for negative amount, got %v", err)
	}
}

func TestEncodeDecodeAmountRoundTrip(t *testing.T) {
	v := big.NewInt(1234567890)
	buf, err := EncodeAmount(v)
	if err != nil {
		t.Fatalf("EncodeAmount failed: %v", err)
	}
	got := DecodeAmount(buf)
	if got.Cmp(v) != 0 {
		t.Fatalf("round trip mismatch: got %s want %s", got, v)
	}
}

func TestEncodeAmountOverflow(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), AmountLen*8) // exactly 2^128
	if _, err := EncodeAmount(tooBig); err != ErrAmountOverflow {
		t.Fatalf("want ErrAmountOverflow at the u128 ceiling, got %v", err)
	}

	maxU128 := new(big.Int).Sub(tooBig, big.NewInt(1))
	if _, err := EncodeAmount(maxU128); err != nil {
		t.Fatalf("max u128 value should encode cleanly: %v", err)
	}
}

func TestEncodeAmountRejectsNegative(t *testing.T) {
	if _, err := EncodeAmount(big.NewInt(-5)); err != ErrAmountOverflow {
		t.Fatalf("want ErrAmountOverflow for negative amount, got %v", err)
	}
}

func TestAddAmountOverflow(t *testing.T) {
	almostMax := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), AmountLen*8), big.NewInt(1))
	_, err := addAmount(almostMax, big.NewInt(1))
	if err != ErrAmountOverflow {
		t.Fatalf("want ErrAmountOverflow, got %v", err)
	}
}

func TestAddAmountOK(t *testing.T) {
	sum, err := addAmount(big.NewInt(10), big.NewInt(5))
	if err != nil {
		t.Fatalf("addAmount failed: %v", err)
	}
	if sum.Cmp(big.NewInt(15)) != 0 {
		t.Fatalf("want 15, got %s", sum)
	}
}

func TestSubAmountInsufficientBalance(t *testing.T) {
	_, err := subAmount(big.NewInt(3), big.NewInt(5))
	if err != ErrInsufficientBalance {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
}

func TestSubAmountOK(t *testing.T) {
	diff, err := subAmount(big.NewInt(10), big.NewInt(4))
	if err != nil {
		t.Fatalf("subAmount failed: %v", err)
	}
	if diff.Cmp(big.NewInt(6)) != 0 {
		t.Fatalf("want 6, got %s", diff)
	}
}

func TestSubAmountDoesNotMutateInputs(t *testing.T) {
	a := big.NewInt(10)
	b := big.NewInt(4)
	if _, err := subAmount(a, b); err != nil {
		t.Fatalf("subAmount failed: %v", err)
	}
	if a.Cmp(big.NewInt(10)) != 0 || b.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("subAmount mutated its inputs: a=%s b=%s", a, b)
	}
}
