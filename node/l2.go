package node

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/pwang200/payment-rollup/ledger"
	"github.com/pwang200/payment-rollup/log"
	"github.com/pwang200/payment-rollup/metrics"
)

// L2Node is the single-threaded task managing the rollup's transaction
// pool and settlement loop. Unlike L1Node it holds no account book of its
// own -- the canonical L2 state lives in the ProverNode it hands batches
// to -- only the pending pool, the rollup account's signing key, and the
// L1-side sqn it stamps on outgoing RollupUpdate transactions.
type L2Node struct {
	rollup *ledger.Signer

	pool        []*ledger.Transaction
	proverBusy  bool
	proverReply chan ProveResult

	TxIn       chan *ledger.Transaction
	DepositIn  chan *ledger.Transaction
	UpdateOut  chan<- *ledger.Transaction
	proverJobs chan<- ProveJob
	tickEvery  time.Duration
	logger     *log.Logger
}

// NewL2Node builds an L2Node that signs settlement transactions with
// rollupSK, submits proving jobs on proverJobs, and forwards the resulting
// RollupUpdate transactions on updateOut.
func NewL2Node(rollupSK ed25519.PrivateKey, proverJobs chan<- ProveJob, updateOut chan<- *ledger.Transaction, tickEvery time.Duration) *L2Node {
	return &L2Node{
		rollup:      ledger.NewSigner(rollupSK),
		proverReply: make(chan ProveResult, 1),
		TxIn:        make(chan *ledger.Transaction, ChannelCapacity),
		DepositIn:   make(chan *ledger.Transaction, ChannelCapacity),
		UpdateOut:   updateOut,
		proverJobs:  proverJobs,
		tickEvery:   tickEvery,
		logger:      log.Default().Node("l2"),
	}
}

// Name implements Service.
func (n *L2Node) Name() string { return "l2" }

// Run implements Service. It cycles through Idle (pool empty), Collecting
// (pool non-empty, prover not busy), Proving (a batch is in flight), and
// Settling (a receipt arrived and the RollupUpdate transaction is built
// and forwarded) without ever blocking on the prover: new transactions
// keep queuing in pool while proverBusy is true, to be included in the
// next batch.
func (n *L2Node) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.tickEvery)
	defer ticker.Stop()

	var waitReply chan ProveResult // nil disables this select case until a job is in flight

	for {
		select {
		case <-ctx.Done():
			return nil

		case tx := <-n.TxIn:
			n.pool = append(n.pool, tx)
			metrics.L2TxPoolPending.Set(float64(len(n.pool)))

		case tx := <-n.DepositIn:
			n.pool = append(n.pool, tx)
			metrics.L2TxPoolPending.Set(float64(len(n.pool)))

		case <-ticker.C:
			if n.proverBusy || len(n.pool) == 0 {
				continue
			}
			batch := n.pool
			n.pool = nil
			n.proverBusy = true
			metrics.L2TxPoolPending.Set(0)
			select {
			case n.proverJobs <- ProveJob{Txns: batch, Reply: n.proverReply}:
				waitReply = n.proverReply
			case <-ctx.Done():
				return nil
			}

		case res := <-waitReply:
			waitReply = nil
			n.proverBusy = false
			if res.Err != nil {
				metrics.RollupUpdatesRejected.Inc()
				n.logger.Warn("prove failed, retrying the unsettled batch next tick", "err", res.Err)
				continue
			}
			tx := n.rollup.RollupUpdate(res.Receipt)
			n.logger.Info("block proved", "l1_sqn", tx.Sqn(), "receipt_bytes", len(res.Receipt))
			select {
			case n.UpdateOut <- tx:
				metrics.RollupUpdatesSettled.Inc()
			case <-ctx.Done():
				return nil
			}
		}
	}
}
