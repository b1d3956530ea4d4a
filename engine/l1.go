package engine

import (
	"fmt"

	"github.com/pwang200/payment-rollup/crypto"
	"github.com/pwang200/payment-rollup/ledger"
)

// L1Engine drives block production against a Data's account book, admitting
// Pay, Deposit, RollupCreate, and RollupUpdate transactions.
type L1Engine struct {
	Verifier ledger.ReceiptVerifier
}

// NewL1Engine builds an L1Engine that checks RollupUpdate receipts against
// verifier.
func NewL1Engine(verifier ledger.ReceiptVerifier) *L1Engine {
	return &L1Engine{Verifier: verifier}
}

// TxResult records whether one pooled transaction was accepted, for use by
// ProcessLenient's results bitmap.
type TxResult struct {
	Tx  *ledger.Transaction
	Err error
}

func (e *L1Engine) applyOne(d *Data, tx *ledger.Transaction, pending map[crypto.Hash]crypto.Hash, deposits *[]*ledger.Transaction) error {
	var updates []ledger.AccountUpdate
	var err error
	switch tx.Kind() {
	case ledger.KindPay:
		updates, err = d.Book.ProcessPayment(tx)
	case ledger.KindDeposit:
		updates, err = d.Book.ProcessDepositL1(tx)
		if err == nil {
			*deposits = append(*deposits, tx)
		}
	case ledger.KindRollupCreate:
		updates, err = d.Book.ProcessCreateRollupAccount(tx)
	case ledger.KindRollupUpdate:
		updates, err = d.Book.ProcessRollupStateUpdate(tx, e.Verifier)
	default:
		return fmt.Errorf("%w: %s", ledger.ErrUnsupportedTxType, tx.Kind())
	}
	if err != nil {
		return err
	}
	for _, u := range updates {
		pending[u.ID] = u.Hash
	}
	return nil
}

// Process runs one L1 block: every pooled transaction must succeed, or the
// whole block is aborted and Data is left unmodified. This is the
// reference abort-on-error behavior: the whole batch is applied against a
// snapshot of the book, which is only swapped in as the live book once
// every transaction has succeeded.
func (e *L1Engine) Process(d *Data) (*ledger.BlockHeaderL1, error) {
	txnsHash := ledger.TxSetHash(d.Txns)
	pending := make(map[crypto.Hash]crypto.Hash)
	var deposits []*ledger.Transaction

	trial := &Data{Parent: d.Parent, Book: d.Book.Snapshot(), Sqn: d.Sqn}
	for _, tx := range d.Txns {
		if err := e.applyOne(trial, tx, pending, &deposits); err != nil {
			return nil, fmt.Errorf("tx %x: %w", tx.ID(), err)
		}
	}

	trial.Book.UpdateTree(pending)
	header := &ledger.BlockHeaderL1{
		Parent:    d.Parent,
		StateRoot: trial.Book.Root(),
		Sqn:       d.Sqn,
		TxnsHash:  txnsHash,
		Deposits:  deposits,
	}
	d.Book = trial.Book
	d.Txns = nil
	d.Sqn++
	d.Parent = header.Hash()
	return header, nil
}

// ProcessLenient runs one L1 block admitting per-tx failures: each
// transaction is applied independently, failures are skipped rather than
// aborting the block, and the caller gets a results bitmap to diagnose
// rejected transactions. state_root remains deterministic over the
// accepted subset regardless of which txs failed, since Pay, Deposit and
// RollupCreate run all their checks before mutating the book. A failed
// RollupUpdate is the exception: it aborts the whole block and Data is left
// unmodified, since the batch is applied against a snapshot of the book.
func (e *L1Engine) ProcessLenient(d *Data) (*ledger.BlockHeaderL1, []TxResult, error) {
	accepted := make([]*ledger.Transaction, 0, len(d.Txns))
	results := make([]TxResult, 0, len(d.Txns))
	pending := make(map[crypto.Hash]crypto.Hash)
	var deposits []*ledger.Transaction

	trial := &Data{Parent: d.Parent, Book: d.Book.Snapshot(), Sqn: d.Sqn}
	for _, tx := range d.Txns {
		err := e.applyOne(trial, tx, pending, &deposits)
		if err != nil && tx.Kind() == ledger.KindRollupUpdate {
			return nil, nil, fmt.Errorf("tx %x: %w", tx.ID(), err)
		}
		results = append(results, TxResult{Tx: tx, Err: err})
		if err == nil {
			accepted = append(accepted, tx)
		}
	}

	txnsHash := ledger.TxSetHash(accepted)
	trial.Book.UpdateTree(pending)
	header := &ledger.BlockHeaderL1{
		Parent:    d.Parent,
		StateRoot: trial.Book.Root(),
		Sqn:       d.Sqn,
		TxnsHash:  txnsHash,
		Deposits:  deposits,
	}
	d.Book = trial.Book
	d.Txns = nil
	d.Sqn++
	d.Parent = header.Hash()
	return header, results, nil
}
