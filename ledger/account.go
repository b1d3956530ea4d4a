package ledger

import (
	"crypto/ed25519"
	"math/big"

	"github.com/pwang200/payment-rollup/crypto"
)

// RollupState is present on an Account iff that account represents an L2
// rollup on L1. Inbox holds pending cross-chain messages
// in arrival order; HeaderHash is the last committed L2 header hash (zero
// at genesis); Sqn counts committed L2 blocks.
type RollupState struct {
	Inbox      []crypto.Hash
	HeaderHash crypto.Hash
	Sqn        uint32
}

func newRollupState() *RollupState {
	return &RollupState{Inbox: nil, HeaderHash: crypto.Hash{}, Sqn: 0}
}

func (r *RollupState) clone() *RollupState {
	cp := &RollupState{HeaderHash: r.HeaderHash, Sqn: r.Sqn}
	cp.Inbox = append(cp.Inbox, r.Inbox...)
	return cp
}

func (r *RollupState) hashInto(h *crypto.Hasher) {
	for _, msg := range r.Inbox {
		h.Write(msg[:])
	}
	h.Write(r.HeaderHash[:]).WriteUint32(r.Sqn)
}

// Account is the tuple { owner, balance, sqn_expect, rollup }.
type Account struct {
	Owner     ed25519.PublicKey
	Balance   *big.Int
	SqnExpect uint32
	Rollup    *RollupState
}

// NewAccount creates an Account with the given owner and starting balance,
// rollup state nil (a plain L1/L2 account).
func NewAccount(owner ed25519.PublicKey, balance *big.Int) *Account {
	return &Account{Owner: owner, Balance: balance, SqnExpect: 0, Rollup: nil}
}

// ID returns H(owner public key), this account's AccountID.
func (a *Account) ID() crypto.Hash {
	return PKHash(a.Owner)
}

// Hash returns the account-hash preimage:
// owner(32) || balance(16 BE) || sqn_expect(4 BE) || [rollup fields if present].
func (a *Account) Hash() crypto.Hash {
	h := crypto.NewHasher().Write(a.Owner)
	buf, err := encodeAmount(a.Balance)
	if err != nil {
		panic(err)
	}
	h.Write(buf[:]).WriteUint32(a.SqnExpect)
	if a.Rollup != nil {
		a.Rollup.hashInto(h)
	}
	return h.Sum()
}

// clone returns a deep copy of the account, so that mutating the copy never
// touches the original (used by Book.Snapshot).
func (a *Account) clone() *Account {
	cp := &Account{Owner: a.Owner, Balance: new(big.Int).Set(a.Balance), SqnExpect: a.SqnExpect}
	if a.Rollup != nil {
		cp.Rollup = a.Rollup.clone()
	}
	return cp
}

// WithdrawalRecord is emitted by process_withdrawal and collected into an
// L2 header.
type WithdrawalRecord struct {
	To     ed25519.PublicKey
	Amount *big.Int
}
