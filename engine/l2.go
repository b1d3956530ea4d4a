package engine

import (
	"fmt"

	"github.com/pwang200/payment-rollup/crypto"
	"github.com/pwang200/payment-rollup/ledger"
)

// L2Engine drives L2 block production, admitting Pay, DepositL2, and
// Withdrawal transactions. It has no dependency on ambient time, threads,
// or I/O: Process is a pure function of its inputs, since it is also the
// code that runs inside the zk-VM guest.
type L2Engine struct{}

// NewL2Engine returns an L2Engine.
func NewL2Engine() *L2Engine { return &L2Engine{} }

// Process runs one L2 block. Identical Data input always yields an
// identical header and identical post-state root. Every pooled
// transaction must succeed, or the whole block is aborted and Data is
// left unmodified: the batch is applied against a snapshot of the book,
// which is only swapped in as the live book once every transaction has
// succeeded.
func (e *L2Engine) Process(d *Data) (*ledger.BlockHeaderL2, error) {
	txnsHash := ledger.TxSetHash(d.Txns)
	pending := make(map[crypto.Hash]crypto.Hash)
	var records []ledger.WithdrawalRecord
	var inboxIDs []crypto.Hash

	snap := d.Book.Snapshot()
	for _, tx := range d.Txns {
		var updates []ledger.AccountUpdate
		var err error
		switch tx.Kind() {
		case ledger.KindPay:
			updates, err = snap.ProcessPayment(tx)
		case ledger.KindDepositL2:
			updates, err = snap.ProcessDepositL2(tx)
			if err == nil {
				inboxIDs = append(inboxIDs, tx.ID())
			}
		case ledger.KindWithdrawal:
			updates, err = snap.ProcessWithdrawal(tx, &records)
		default:
			err = fmt.Errorf("%w: %s", ledger.ErrUnsupportedTxType, tx.Kind())
		}
		if err != nil {
			return nil, fmt.Errorf("tx %x: %w", tx.ID(), err)
		}
		for _, u := range updates {
			pending[u.ID] = u.Hash
		}
	}

	snap.UpdateTree(pending)

	inboxHash := crypto.NewHasher()
	for _, id := range inboxIDs {
		inboxHash.Write(id[:])
	}

	withdrawals := make([]ledger.WithdrawalOut, len(records))
	for i, r := range records {
		withdrawals[i] = ledger.WithdrawalOut{To: r.To, Amount: r.Amount}
	}

	header := &ledger.BlockHeaderL2{
		Parent:        d.Parent,
		StateRoot:     snap.Root(),
		Sqn:           d.Sqn,
		TxnsHash:      txnsHash,
		InboxMsgHash:  inboxHash.Sum(),
		InboxMsgCount: uint32(len(inboxIDs)),
		Withdrawals:   withdrawals,
	}
	d.Book = snap
	d.Txns = nil
	d.Sqn++
	d.Parent = header.Hash()
	return header, nil
}
