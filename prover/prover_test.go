package prover

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"math/big"
	"testing"
	"time"

	"github.com/pwang200/payment-rollup/engine"
	"github.com/pwang200/payment-rollup/ledger"
)

func proverKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pk, sk, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	return pk, sk
}

func buildL2Data(t *testing.T) (*engine.Data, ed25519.PublicKey, ed25519.PrivateKey, ed25519.PublicKey) {
	t.Helper()
	faucet, _ := proverKey(t)
	alice, aliceSK := proverKey(t)
	bob, _ := proverKey(t)

	d := engine.NewGenesisData(ledger.NewGenesisBook(faucet, big.NewInt(0)))
	d.Enqueue(ledger.NewDeposit(alice, 0, alice, big.NewInt(100), aliceSK).AsDepositL2())
	d.Enqueue(ledger.NewPayment(alice, 0, bob, big.NewInt(30), aliceSK))
	return d, alice, aliceSK, bob
}

// P7: decode(prove(input).journal) == native_l2_process(input), and their
// hash() values are equal.
func TestNativeProverEquivalence(t *testing.T) {
	d1, _, _, _ := buildL2Data(t)
	d2 := &engine.Data{Parent: d1.Parent, Book: d1.Book, Txns: append([]*ledger.Transaction(nil), d1.Txns...), Sqn: d1.Sqn}

	p := NewNativeProver()
	receipt, err := p.Prove(context.Background(), d1)
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}

	v := NewNativeVerifier()
	decoded, err := v.VerifyReceipt(receipt)
	if err != nil {
		t.Fatalf("VerifyReceipt failed: %v", err)
	}

	eng := engine.NewL2Engine()
	native, err := eng.Process(d2)
	if err != nil {
		t.Fatalf("native Process failed: %v", err)
	}

	if decoded.Hash() != native.Hash() {
		t.Fatal("decoded receipt header hash does not match a native L2Engine.Process run")
	}
}

// P8: two independent runs on identical inputs yield identical header
// hashes.
func TestProverDeterminism(t *testing.T) {
	base, _, _, _ := buildL2Data(t)
	build := func() *engine.Data {
		return &engine.Data{Parent: base.Parent, Book: base.Book, Txns: append([]*ledger.Transaction(nil), base.Txns...), Sqn: base.Sqn}
	}

	p := NewMockZkProver(0)
	r1, err := p.Prove(context.Background(), build())
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}
	r2, err := p.Prove(context.Background(), build())
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}

	v := NewMockZkVerifier()
	h1, err := v.VerifyReceipt(r1)
	if err != nil {
		t.Fatalf("VerifyReceipt failed: %v", err)
	}
	h2, err := v.VerifyReceipt(r2)
	if err != nil {
		t.Fatalf("VerifyReceipt failed: %v", err)
	}
	if h1.Hash() != h2.Hash() {
		t.Fatal("identical inputs produced different header hashes")
	}
}

func TestMockVerifierRejectsNativeImage(t *testing.T) {
	d, _, _, _ := buildL2Data(t)
	p := NewNativeProver()
	receipt, err := p.Prove(context.Background(), d)
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}

	v := NewMockZkVerifier()
	if _, err := v.VerifyReceipt(receipt); err != ErrImageMismatch {
		t.Fatalf("want ErrImageMismatch, got %v", err)
	}
}

func TestMockZkProverHonorsContextCancellation(t *testing.T) {
	d, _, _, _ := buildL2Data(t)
	p := NewMockZkProver(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Prove(ctx, d); err == nil {
		t.Fatal("expected Prove to return promptly on an already-cancelled context")
	}
}

func TestMockZkProverPropagatesEngineFailure(t *testing.T) {
	faucet, _ := proverKey(t)
	alice, aliceSK := proverKey(t)
	bob, _ := proverKey(t)

	d := engine.NewGenesisData(ledger.NewGenesisBook(faucet, big.NewInt(0)))
	d.Enqueue(ledger.NewDeposit(alice, 0, alice, big.NewInt(10), aliceSK).AsDepositL2())
	d.Enqueue(ledger.NewPayment(alice, 0, bob, big.NewInt(9999), aliceSK))

	p := NewMockZkProver(0)
	if _, err := p.Prove(context.Background(), d); err == nil {
		t.Fatal("expected Prove to fail when the underlying L2Engine.Process fails")
	}
}
