package node

import "github.com/pwang200/payment-rollup/ledger"

// ProveJob hands a freshly collected batch of transactions to the prover
// task. The prover owns the canonical L2 engine.Data across every job --
// sqn, parent, and account book persist there between blocks -- so a job
// only carries the new arrivals to fold in, not a snapshot of the state
// itself.
type ProveJob struct {
	Txns  []*ledger.Transaction
	Reply chan ProveResult
}

// ProveResult is the Prover task's reply to a ProveJob: either a receipt
// or the error Prove returned.
type ProveResult struct {
	Receipt []byte
	Err     error
}
