package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"math/big"
	"testing"
)

func TestSignerAdvancesSqn(t *testing.T) {
	_, sk, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	to, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	s := NewSigner(sk)

	tx0 := s.Payment(to, big.NewInt(1))
	tx1 := s.Payment(to, big.NewInt(1))
	if tx0.Sqn() != 0 || tx1.Sqn() != 1 {
		t.Fatalf("want sqn 0 then 1, got %d then %d", tx0.Sqn(), tx1.Sqn())
	}
	if !tx0.SigVerify() || !tx1.SigVerify() {
		t.Fatal("signer-produced transactions should verify")
	}
}

func TestSignerEachMethodAdvancesSqn(t *testing.T) {
	_, sk, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	rollupPK, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	s := NewSigner(sk)

	create := s.RollupCreate(rollupPK)
	deposit := s.Deposit(rollupPK, big.NewInt(10))
	withdrawal := s.Withdrawal(big.NewInt(5))
	update := s.RollupUpdate([]byte("receipt"))

	got := []uint32{create.Sqn(), deposit.Sqn(), withdrawal.Sqn(), update.Sqn()}
	want := []uint32{0, 1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sqn[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
