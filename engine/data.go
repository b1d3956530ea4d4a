package engine

import (
	"github.com/pwang200/payment-rollup/crypto"
	"github.com/pwang200/payment-rollup/ledger"
)

// Data is the mutable working state of a block-production engine: the
// account book plus the pool of transactions waiting to be included, and
// the chain-continuity fields carried from block to block. A single Data
// value is owned exclusively by the engine task that mutates it.
type Data struct {
	Parent crypto.Hash
	Book   *ledger.Book
	Txns   []*ledger.Transaction
	Sqn    uint32
}

// NewGenesisData seeds a Data with a fresh genesis book and an empty pool.
func NewGenesisData(book *ledger.Book) *Data {
	return &Data{Parent: crypto.Hash{}, Book: book, Txns: nil, Sqn: 0}
}

// Enqueue appends a transaction to the pending pool, preserving arrival
// order.
func (d *Data) Enqueue(tx *ledger.Transaction) {
	d.Txns = append(d.Txns, tx)
}
