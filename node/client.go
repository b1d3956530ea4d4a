package node

import (
	"context"
	"crypto/ed25519"
	"math/big"
	"time"

	"github.com/pwang200/payment-rollup/ledger"
	"github.com/pwang200/payment-rollup/log"
)

// ClientNode is a synthetic traffic generator: the fourth single-threaded
// task kind alongside L1, L2, and Prover. It owns the faucet account's
// signing key and sqn counter, creates the rollup account on L1 once at
// startup, then pays a rotating set of peers on every tick.
type ClientNode struct {
	faucet *ledger.Signer

	rollupPK ed25519.PublicKey
	peers    []ed25519.PublicKey
	nextPeer int
	amount   *big.Int

	ToL1      chan<- *ledger.Transaction
	tickEvery time.Duration
	logger    *log.Logger
}

// NewClientNode builds a ClientNode paying peers in round-robin order,
// funded from faucetSK, and registering rollupPK as the L1 rollup account.
func NewClientNode(faucetSK ed25519.PrivateKey, rollupPK ed25519.PublicKey, peers []ed25519.PublicKey, toL1 chan<- *ledger.Transaction, tickEvery time.Duration) *ClientNode {
	return &ClientNode{
		faucet:    ledger.NewSigner(faucetSK),
		rollupPK:  rollupPK,
		peers:     peers,
		amount:    big.NewInt(0),
		ToL1:      toL1,
		tickEvery: tickEvery,
		logger:    log.Default().Node("client"),
	}
}

// Name implements Service.
func (c *ClientNode) Name() string { return "client" }

// Run implements Service: it registers the rollup account, then loops
// sending one payment per tick to the next peer in round-robin order.
func (c *ClientNode) Run(ctx context.Context) error {
	select {
	case c.ToL1 <- c.faucet.RollupCreate(c.rollupPK):
	case <-ctx.Done():
		return nil
	}

	if len(c.peers) == 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(c.tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.amount.Add(c.amount, big.NewInt(1))
			to := c.peers[c.nextPeer]
			c.nextPeer = (c.nextPeer + 1) % len(c.peers)
			tx := c.faucet.Payment(to, new(big.Int).Set(c.amount))
			select {
			case c.ToL1 <- tx:
				c.logger.Debug("payment sent", "sqn", tx.Sqn(), "to", to)
			case <-ctx.Done():
				return nil
			}
		}
	}
}
