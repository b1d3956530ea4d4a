package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"math/big"
	"testing"

	"github.com/pwang200/payment-rollup/crypto"
)

func newKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pk, sk, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	return pk, sk
}

func applyAndUpdate(t *testing.T, b *Book, updates []AccountUpdate, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := make(map[crypto.Hash]crypto.Hash, len(updates))
	for _, u := range updates {
		m[u.ID] = u.Hash
	}
	b.UpdateTree(m)
}

func TestProcessPaymentDebitsAndCredits(t *testing.T) {
	faucet, faucetSK := newKey(t)
	to, _ := newKey(t)
	b := NewGenesisBook(faucet, big.NewInt(1000))

	tx := NewPayment(faucet, 0, to, big.NewInt(100), faucetSK)
	updates, err := b.ProcessPayment(tx)
	applyAndUpdate(t, b, updates, err)

	sender := b.GetAccount(PKHash(faucet))
	recipient := b.GetAccount(PKHash(to))
	if sender.Balance.Cmp(big.NewInt(900)) != 0 {
		t.Fatalf("sender balance = %s, want 900", sender.Balance)
	}
	if recipient.Balance.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("recipient balance = %s, want 100", recipient.Balance)
	}
	if sender.SqnExpect != 1 {
		t.Fatalf("sender sqn_expect = %d, want 1", sender.SqnExpect)
	}
}

func TestProcessPaymentInsufficientBalance(t *testing.T) {
	faucet, faucetSK := newKey(t)
	to, _ := newKey(t)
	b := NewGenesisBook(faucet, big.NewInt(10))

	tx := NewPayment(faucet, 0, to, big.NewInt(100), faucetSK)
	if _, err := b.ProcessPayment(tx); err != ErrInsufficientBalance {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
}

func TestProcessPaymentBadSequence(t *testing.T) {
	faucet, faucetSK := newKey(t)
	to, _ := newKey(t)
	b := NewGenesisBook(faucet, big.NewInt(1000))

	tx := NewPayment(faucet, 5, to, big.NewInt(1), faucetSK)
	_, err := b.ProcessPayment(tx)
	if err == nil {
		t.Fatal("expected an error for a sequence number mismatch")
	}
}

func TestProcessPaymentBadSignature(t *testing.T) {
	faucet, _ := newKey(t)
	_, otherSK := newKey(t)
	to, _ := newKey(t)
	b := NewGenesisBook(faucet, big.NewInt(1000))

	tx := NewPayment(faucet, 0, to, big.NewInt(1), otherSK)
	if _, err := b.ProcessPayment(tx); err != ErrBadSignature {
		t.Fatalf("want ErrBadSignature, got %v", err)
	}
}

func TestProcessCreateRollupAccount(t *testing.T) {
	faucet, faucetSK := newKey(t)
	rollupPK, _ := newKey(t)
	b := NewGenesisBook(faucet, big.NewInt(1000))

	tx := NewRollupCreate(faucet, 0, rollupPK, faucetSK)
	updates, err := b.ProcessCreateRollupAccount(tx)
	applyAndUpdate(t, b, updates, err)

	rollupAcct := b.GetAccount(PKHash(rollupPK))
	if rollupAcct == nil || rollupAcct.Rollup == nil {
		t.Fatal("rollup account was not created with RollupState")
	}
}

func TestProcessCreateRollupAccountAlreadyExists(t *testing.T) {
	faucet, faucetSK := newKey(t)
	rollupPK, _ := newKey(t)
	b := NewGenesisBook(faucet, big.NewInt(1000))

	tx := NewRollupCreate(faucet, 0, rollupPK, faucetSK)
	updates, err := b.ProcessCreateRollupAccount(tx)
	applyAndUpdate(t, b, updates, err)

	tx2 := NewRollupCreate(faucet, 1, rollupPK, faucetSK)
	if _, err := b.ProcessCreateRollupAccount(tx2); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("want ErrAccountExists, got %v", err)
	}
}

func setupRollup(t *testing.T) (b *Book, faucet ed25519.PublicKey, faucetSK ed25519.PrivateKey, rollupPK ed25519.PublicKey, rollupSK ed25519.PrivateKey) {
	t.Helper()
	faucet, faucetSK = newKey(t)
	rollupPK, rollupSK = newKey(t)
	b = NewGenesisBook(faucet, big.NewInt(1_000_000))

	tx := NewRollupCreate(faucet, 0, rollupPK, faucetSK)
	updates, err := b.ProcessCreateRollupAccount(tx)
	applyAndUpdate(t, b, updates, err)
	return b, faucet, faucetSK, rollupPK, rollupSK
}

func TestProcessDepositL1EscrowsAndQueuesInbox(t *testing.T) {
	b, faucet, faucetSK, rollupPK, _ := setupRollup(t)

	dep := NewDeposit(faucet, 1, rollupPK, big.NewInt(500), faucetSK)
	updates, err := b.ProcessDepositL1(dep)
	applyAndUpdate(t, b, updates, err)

	rollupAcct := b.GetAccount(PKHash(rollupPK))
	if rollupAcct.Balance.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("rollup escrow = %s, want 500", rollupAcct.Balance)
	}
	if len(rollupAcct.Rollup.Inbox) != 1 || rollupAcct.Rollup.Inbox[0] != dep.ID() {
		t.Fatal("deposit was not queued onto the rollup inbox")
	}
}

func TestProcessDepositL1NotRollupAccount(t *testing.T) {
	faucet, faucetSK := newKey(t)
	notRollup, _ := newKey(t)
	b := NewGenesisBook(faucet, big.NewInt(1000))
	b.GetOrCreate(notRollup)

	dep := NewDeposit(faucet, 0, notRollup, big.NewInt(1), faucetSK)
	if _, err := b.ProcessDepositL1(dep); !errors.Is(err, ErrNotRollupAccount) {
		t.Fatalf("want ErrNotRollupAccount, got %v", err)
	}
}

func TestProcessDepositL2CreditsWithoutSignatureCheck(t *testing.T) {
	b, _, _, rollupPK, _ := setupRollup(t)
	depositor, _ := newKey(t)
	_, otherSK := newKey(t)

	// Signed by a key that is not the depositor's, so the signature does
	// not verify; the credit must still be applied.
	dep := NewDeposit(depositor, 0, rollupPK, big.NewInt(200), otherSK).AsDepositL2()
	updates, err := b.ProcessDepositL2(dep)
	applyAndUpdate(t, b, updates, err)

	acct := b.GetAccount(PKHash(depositor))
	if acct.Balance.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("balance = %s, want 200", acct.Balance)
	}
}

func TestProcessDepositL2CreditsExistingAccount(t *testing.T) {
	b, _, _, rollupPK, _ := setupRollup(t)
	depositor, depositorSK := newKey(t)

	dep1 := NewDeposit(depositor, 0, rollupPK, big.NewInt(200), depositorSK).AsDepositL2()
	updates, err := b.ProcessDepositL2(dep1)
	applyAndUpdate(t, b, updates, err)

	dep2 := NewDeposit(depositor, 1, rollupPK, big.NewInt(50), depositorSK).AsDepositL2()
	updates, err = b.ProcessDepositL2(dep2)
	applyAndUpdate(t, b, updates, err)

	acct := b.GetAccount(PKHash(depositor))
	if acct.Balance.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("balance = %s, want 250", acct.Balance)
	}
}

func TestProcessWithdrawalDebitsAndRecords(t *testing.T) {
	b, _, _, rollupPK, _ := setupRollup(t)
	depositor, depositorSK := newKey(t)

	dep := NewDeposit(depositor, 0, rollupPK, big.NewInt(200), depositorSK).AsDepositL2()
	updates, err := b.ProcessDepositL2(dep)
	applyAndUpdate(t, b, updates, err)

	wd := NewWithdrawal(depositor, 0, big.NewInt(80), depositorSK)
	var records []WithdrawalRecord
	updates, err = b.ProcessWithdrawal(wd, &records)
	applyAndUpdate(t, b, updates, err)

	acct := b.GetAccount(PKHash(depositor))
	if acct.Balance.Cmp(big.NewInt(120)) != 0 {
		t.Fatalf("balance = %s, want 120", acct.Balance)
	}
	if len(records) != 1 || records[0].Amount.Cmp(big.NewInt(80)) != 0 {
		t.Fatalf("unexpected withdrawal records: %+v", records)
	}
}

func TestProcessWithdrawalInsufficientBalance(t *testing.T) {
	b, _, _, rollupPK, _ := setupRollup(t)
	depositor, depositorSK := newKey(t)

	dep := NewDeposit(depositor, 0, rollupPK, big.NewInt(10), depositorSK).AsDepositL2()
	updates, err := b.ProcessDepositL2(dep)
	applyAndUpdate(t, b, updates, err)

	wd := NewWithdrawal(depositor, 0, big.NewInt(100), depositorSK)
	var records []WithdrawalRecord
	if _, err := b.ProcessWithdrawal(wd, &records); err != ErrInsufficientBalance {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
}

// fakeVerifier implements ReceiptVerifier by returning a fixed header,
// standing in for prover.NativeVerifier without importing package prover
// (which itself imports engine -> ledger, and would create a cycle).
type fakeVerifier struct {
	header *BlockHeaderL2
	err    error
}

func (f *fakeVerifier) VerifyReceipt(receipt []byte) (*BlockHeaderL2, error) {
	return f.header, f.err
}

func TestProcessRollupStateUpdateSettlesWithdrawals(t *testing.T) {
	b, faucet, faucetSK, rollupPK, rollupSK := setupRollup(t)
	recipient, _ := newKey(t)

	dep := NewDeposit(faucet, 1, rollupPK, big.NewInt(1000), faucetSK)
	updates, err := b.ProcessDepositL1(dep)
	applyAndUpdate(t, b, updates, err)

	rollupAcct := b.GetAccount(PKHash(rollupPK))
	inboxHash := crypto.NewHasher().Write(rollupAcct.Rollup.Inbox[0][:]).Sum()

	header := &BlockHeaderL2{
		Parent:        rollupAcct.Rollup.HeaderHash,
		Sqn:           rollupAcct.Rollup.Sqn,
		InboxMsgHash:  inboxHash,
		InboxMsgCount: 1,
		Withdrawals:   []WithdrawalOut{{To: recipient, Amount: big.NewInt(400)}},
	}
	verifier := &fakeVerifier{header: header}

	updateTx := NewRollupUpdate(rollupPK, 0, []byte("receipt"), rollupSK)
	updates, err = b.ProcessRollupStateUpdate(updateTx, verifier)
	applyAndUpdate(t, b, updates, err)

	rollupAcct = b.GetAccount(PKHash(rollupPK))
	if rollupAcct.Balance.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("rollup escrow after settlement = %s, want 600", rollupAcct.Balance)
	}
	if len(rollupAcct.Rollup.Inbox) != 0 {
		t.Fatalf("settled inbox entries were not popped: %d remain", len(rollupAcct.Rollup.Inbox))
	}
	if rollupAcct.Rollup.Sqn != 1 {
		t.Fatalf("rollup.Sqn = %d, want 1", rollupAcct.Rollup.Sqn)
	}
	if rollupAcct.Rollup.HeaderHash != header.Hash() {
		t.Fatal("rollup.HeaderHash was not advanced to the settled header's hash")
	}

	recipientAcct := b.GetAccount(PKHash(recipient))
	if recipientAcct == nil || recipientAcct.Balance.Cmp(big.NewInt(400)) != 0 {
		t.Fatal("withdrawal recipient was not credited on L1")
	}
}

func TestProcessRollupStateUpdateBadParent(t *testing.T) {
	b, _, _, rollupPK, rollupSK := setupRollup(t)

	header := &BlockHeaderL2{Parent: crypto.Sum256([]byte("wrong parent")), Sqn: 0}
	verifier := &fakeVerifier{header: header}

	updateTx := NewRollupUpdate(rollupPK, 0, []byte("receipt"), rollupSK)
	if _, err := b.ProcessRollupStateUpdate(updateTx, verifier); err != ErrBadParent {
		t.Fatalf("want ErrBadParent, got %v", err)
	}
}

func TestProcessRollupStateUpdateWithdrawalsExceedEscrow(t *testing.T) {
	b, _, _, rollupPK, rollupSK := setupRollup(t)
	recipient, _ := newKey(t)

	header := &BlockHeaderL2{
		Parent:        crypto.Hash{},
		Sqn:           0,
		InboxMsgHash:  crypto.NewHasher().Sum(),
		InboxMsgCount: 0,
		Withdrawals:   []WithdrawalOut{{To: recipient, Amount: big.NewInt(1)}},
	}
	verifier := &fakeVerifier{header: header}

	updateTx := NewRollupUpdate(rollupPK, 0, []byte("receipt"), rollupSK)
	if _, err := b.ProcessRollupStateUpdate(updateTx, verifier); err != ErrWithdrawExceedsEscrow {
		t.Fatalf("want ErrWithdrawExceedsEscrow, got %v", err)
	}
}

func TestSenderCheckUnknownAccount(t *testing.T) {
	faucet, _ := newKey(t)
	stranger, strangerSK := newKey(t)
	to, _ := newKey(t)
	b := NewGenesisBook(faucet, big.NewInt(1000))

	tx := NewPayment(stranger, 0, to, big.NewInt(1), strangerSK)
	if _, err := b.ProcessPayment(tx); err == nil {
		t.Fatal("expected an error for an unknown sender account")
	}
}

func TestVerifyAccountAfterUpdate(t *testing.T) {
	faucet, faucetSK := newKey(t)
	to, _ := newKey(t)
	b := NewGenesisBook(faucet, big.NewInt(1000))

	tx := NewPayment(faucet, 0, to, big.NewInt(100), faucetSK)
	updates, err := b.ProcessPayment(tx)
	applyAndUpdate(t, b, updates, err)

	if !b.VerifyAccount(PKHash(faucet)) {
		t.Fatal("VerifyAccount failed for the sender after a committed update")
	}
	if !b.VerifyAccount(PKHash(to)) {
		t.Fatal("VerifyAccount failed for the recipient after a committed update")
	}
}

func TestSnapshotIsolatesAccountMutations(t *testing.T) {
	faucet, faucetSK := newKey(t)
	to, _ := newKey(t)
	b := NewGenesisBook(faucet, big.NewInt(1000))

	snap := b.Snapshot()
	tx := NewPayment(faucet, 0, to, big.NewInt(100), faucetSK)
	updates, err := snap.ProcessPayment(tx)
	applyAndUpdate(t, snap, updates, err)

	liveFaucet := b.GetAccount(PKHash(faucet))
	if liveFaucet.Balance.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("mutating the snapshot changed the live book's balance: got %s, want 1000", liveFaucet.Balance)
	}
	if b.GetAccount(PKHash(to)) != nil {
		t.Fatal("mutating the snapshot created an account in the live book")
	}

	snapFaucet := snap.GetAccount(PKHash(faucet))
	if snapFaucet.Balance.Cmp(big.NewInt(900)) != 0 {
		t.Fatalf("snapshot balance = %s, want 900", snapFaucet.Balance)
	}
	if b.Root() == snap.Root() {
		t.Fatal("snapshot and live book should have diverged roots after the snapshot-only update")
	}
}

func TestSnapshotSharesTreeForUnrelatedReads(t *testing.T) {
	faucet, _ := newKey(t)
	b := NewGenesisBook(faucet, big.NewInt(1000))
	snap := b.Snapshot()

	if !snap.VerifyAccount(PKHash(faucet)) {
		t.Fatal("a fresh snapshot should verify every account the live book already committed")
	}
}
