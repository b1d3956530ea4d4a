package node

import (
	"context"
	"time"

	"github.com/pwang200/payment-rollup/engine"
	"github.com/pwang200/payment-rollup/ledger"
	"github.com/pwang200/payment-rollup/log"
	"github.com/pwang200/payment-rollup/metrics"
)

// L1Node is the single-threaded task driving L1 block production. It
// receives transactions on TxIn, periodically attempts a block, and
// forwards every successfully processed Deposit to the L2 node (re-tagged
// DepositL2) on DepositOut, preserving arrival order end to end.
type L1Node struct {
	Data *engine.Data
	eng  *engine.L1Engine

	TxIn       chan *ledger.Transaction
	DepositOut chan<- *ledger.Transaction
	tickEvery  time.Duration
	logger     *log.Logger
}

// NewL1Node builds an L1Node seeded with data, verifying rollup update
// receipts with verifier, and forwarding deposits on depositOut.
func NewL1Node(data *engine.Data, verifier ledger.ReceiptVerifier, depositOut chan<- *ledger.Transaction, tickEvery time.Duration) *L1Node {
	return &L1Node{
		Data:       data,
		eng:        engine.NewL1Engine(verifier),
		TxIn:       make(chan *ledger.Transaction, ChannelCapacity),
		DepositOut: depositOut,
		tickEvery:  tickEvery,
		logger:     log.Default().Node("l1"),
	}
}

// Name implements Service.
func (n *L1Node) Name() string { return "l1" }

// Run implements Service.
func (n *L1Node) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case tx := <-n.TxIn:
			n.Data.Enqueue(tx)
			metrics.L1TxPoolPending.Set(float64(len(n.Data.Txns)))

		case <-ticker.C:
			if len(n.Data.Txns) == 0 {
				continue
			}
			start := time.Now()
			header, err := n.eng.Process(n.Data)
			metrics.L1BlockProcessTime.Observe(float64(time.Since(start).Milliseconds()))
			if err != nil {
				metrics.L1TxRejected.Inc()
				n.logger.Warn("block rejected", "err", err)
				continue
			}
			metrics.L1BlocksProduced.Inc()
			metrics.L1Height.Set(float64(header.Sqn))
			metrics.L1TxPoolPending.Set(float64(len(n.Data.Txns)))
			n.logger.Info("block produced", "sqn", header.Sqn, "state_root", header.StateRoot, "deposits", len(header.Deposits))

			for _, dep := range header.Deposits {
				forwarded := dep.AsDepositL2()
				select {
				case n.DepositOut <- forwarded:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}
