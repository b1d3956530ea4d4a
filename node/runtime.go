package node

import (
	"context"
	"crypto/ed25519"
	"math/big"

	"github.com/pwang200/payment-rollup/engine"
	"github.com/pwang200/payment-rollup/ledger"
	"github.com/pwang200/payment-rollup/prover"
)

// Runtime wires ClientNode, L1Node, L2Node, and ProverNode together over
// channels and runs them under one LifecycleManager, mirroring the
// original host binary's channel topology: client -> l1, l1 -> l2
// (deposits), l2 -> l1 (settlement), l2 <-> prover (proving jobs).
type Runtime struct {
	L1     *L1Node
	L2     *L2Node
	Prover *ProverNode
	Client *ClientNode

	l2Updates <-chan *ledger.Transaction
	lm        *LifecycleManager
}

// NewRuntime assembles a Runtime from cfg. faucetSK funds the genesis
// account and drives ClientNode's synthetic traffic; rollupSK is the
// rollup account's signing key, custodied by L2Node to sign RollupUpdate
// settlement transactions; peers are the public keys ClientNode pays in
// round-robin order.
func NewRuntime(cfg Config, faucetSK, rollupSK ed25519.PrivateKey, peers []ed25519.PublicKey) *Runtime {
	faucetPK := faucetSK.Public().(ed25519.PublicKey)
	rollupPK := rollupSK.Public().(ed25519.PublicKey)

	l1Book := ledger.NewGenesisBook(faucetPK, cfg.GenesisAmount)
	l1Data := engine.NewGenesisData(l1Book)

	l2Book := ledger.NewGenesisBook(faucetPK, big.NewInt(0))
	l2Data := engine.NewGenesisData(l2Book)

	var prv prover.Prover
	var verifier ledger.ReceiptVerifier
	if cfg.Dev {
		prv = prover.NewNativeProver()
		verifier = prover.NewNativeVerifier()
	} else {
		prv = prover.NewMockZkProver(cfg.ProverDelay)
		verifier = prover.NewMockZkVerifier()
	}

	proverNode := NewProverNode(prv, l2Data)

	updateOut := make(chan *ledger.Transaction, ChannelCapacity)
	l1Node := NewL1Node(l1Data, verifier, nil, cfg.L1TickInterval)
	l2Node := NewL2Node(rollupSK, proverNode.Jobs(), updateOut, cfg.L2TickInterval)
	l1Node.DepositOut = l2Node.DepositIn

	clientNode := NewClientNode(faucetSK, rollupPK, peers, l1Node.TxIn, cfg.L1TickInterval)

	lm := NewLifecycleManager()
	_ = lm.Register(proverNode, 0)
	_ = lm.Register(l1Node, 1)
	_ = lm.Register(l2Node, 2)
	_ = lm.Register(clientNode, 3)

	return &Runtime{L1: l1Node, L2: l2Node, Prover: proverNode, Client: clientNode, l2Updates: updateOut, lm: lm}
}

// forwardUpdates pumps the L2 node's outgoing RollupUpdate transactions
// into the L1 node's inbox, the other leg of the l2<->l1 channel pair.
func (r *Runtime) forwardUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case tx := <-r.l2Updates:
			select {
			case r.L1.TxIn <- tx:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Run starts every node and blocks until ctx is cancelled or a node
// returns an error.
func (r *Runtime) Run(ctx context.Context) error {
	go r.forwardUpdates(ctx)
	return r.lm.RunAll(ctx)
}
