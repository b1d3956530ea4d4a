package ledger

import (
	"crypto/ed25519"
	"math/big"

	"github.com/pwang200/payment-rollup/crypto"
)

// BlockHeaderL1 commits to an L1 block's effect on the account set.
// Deposits are carried alongside the header as a side payload: they are
// not part of the hash preimage, since they are already reflected in
// state_root and are only needed downstream for client-side bookkeeping.
type BlockHeaderL1 struct {
	Parent    crypto.Hash
	StateRoot crypto.Hash
	Sqn       uint32
	TxnsHash  crypto.Hash
	Deposits  []*Transaction
}

// Hash returns parent || state_root || sqn(4 BE) || txns_hash.
func (h *BlockHeaderL1) Hash() crypto.Hash {
	return crypto.NewHasher().
		Write(h.Parent[:]).
		Write(h.StateRoot[:]).
		WriteUint32(h.Sqn).
		Write(h.TxnsHash[:]).
		Sum()
}

// WithdrawalOut is one settled L2->L1 withdrawal entry in a BlockHeaderL2.
type WithdrawalOut struct {
	To     ed25519.PublicKey
	Amount *big.Int
}

// BlockHeaderL2 is the sole trusted view L1 has of an L2 block: the public
// output a zk receipt commits to.
type BlockHeaderL2 struct {
	Parent        crypto.Hash
	StateRoot     crypto.Hash
	Sqn           uint32
	TxnsHash      crypto.Hash
	InboxMsgHash  crypto.Hash
	InboxMsgCount uint32
	Withdrawals   []WithdrawalOut
}

// Hash returns parent || state_root || sqn(4 BE) || txns_hash ||
// inbox_msg_hash || inbox_msg_count(4 BE) || for each withdrawal: to(32) ||
// amount(16 BE).
func (h *BlockHeaderL2) Hash() crypto.Hash {
	hh := crypto.NewHasher().
		Write(h.Parent[:]).
		Write(h.StateRoot[:]).
		WriteUint32(h.Sqn).
		Write(h.TxnsHash[:]).
		Write(h.InboxMsgHash[:]).
		WriteUint32(h.InboxMsgCount)
	for _, w := range h.Withdrawals {
		hh.Write(w.To)
		buf, err := encodeAmount(w.Amount)
		if err != nil {
			panic(err)
		}
		hh.Write(buf[:])
	}
	return hh.Sum()
}
