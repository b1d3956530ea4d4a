package ledger

import (
	"crypto/ed25519"
	"math/big"
)

// Signer pairs an Ed25519 keypair with a self-tracked sqn counter, so
// callers can build a sequence of signed transactions from one account
// without hand-tracking sequence numbers across calls.
type Signer struct {
	SK  ed25519.PrivateKey
	PK  ed25519.PublicKey
	Sqn uint32
}

// NewSigner returns a Signer wrapping sk, starting its sqn counter at 0.
func NewSigner(sk ed25519.PrivateKey) *Signer {
	return &Signer{SK: sk, PK: sk.Public().(ed25519.PublicKey), Sqn: 0}
}

// next returns the current sqn and advances the counter.
func (s *Signer) next() uint32 {
	sqn := s.Sqn
	s.Sqn++
	return sqn
}

// Payment signs a Pay transaction, advancing the sqn counter.
func (s *Signer) Payment(to ed25519.PublicKey, amount *big.Int) *Transaction {
	return NewPayment(s.PK, s.next(), to, amount, s.SK)
}

// RollupCreate signs a RollupCreate transaction, advancing the sqn counter.
func (s *Signer) RollupCreate(rollupPK ed25519.PublicKey) *Transaction {
	return NewRollupCreate(s.PK, s.next(), rollupPK, s.SK)
}

// Deposit signs an L1->L2 Deposit transaction, advancing the sqn counter.
func (s *Signer) Deposit(rollupPK ed25519.PublicKey, amount *big.Int) *Transaction {
	return NewDeposit(s.PK, s.next(), rollupPK, amount, s.SK)
}

// Withdrawal signs a Withdrawal transaction, advancing the sqn counter.
func (s *Signer) Withdrawal(amount *big.Int) *Transaction {
	return NewWithdrawal(s.PK, s.next(), amount, s.SK)
}

// RollupUpdate signs a RollupUpdate transaction carrying receipt,
// advancing the sqn counter.
func (s *Signer) RollupUpdate(receipt []byte) *Transaction {
	return NewRollupUpdate(s.PK, s.next(), receipt, s.SK)
}
