// Command perf builds a synthetic L2 transaction set, proves it, verifies
// the resulting receipt, and cross-checks the decoded header hash against
// an independent native re-execution of the same input. It exits non-zero
// on any mismatch, making it usable as a regression check as well as a
// rough throughput measurement.
//
// Usage:
//
//	perf --network-size N --transactions M [--dev] [--genesis-amount V]
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pwang200/payment-rollup/engine"
	"github.com/pwang200/payment-rollup/ledger"
	"github.com/pwang200/payment-rollup/log"
	"github.com/pwang200/payment-rollup/prover"
)

func main() {
	app := &cli.App{
		Name:  "perf",
		Usage: "prove a synthetic L2 block and cross-check it against native re-execution",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "network-size", Value: 100, Usage: "number of synthetic accounts"},
			&cli.IntFlag{Name: "transactions", Value: 1000, Usage: "number of synthetic payment transactions"},
			&cli.BoolFlag{Name: "dev", Value: true, Usage: "use the native dev-mode prover instead of the mock zk prover"},
			&cli.Int64Flag{Name: "genesis-amount", Value: 1000, Usage: "per-account L2 balance seeded via DepositL2"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Error("perf failed", "err", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	n := c.Int("network-size")
	m := c.Int("transactions")
	if n < 1 {
		return fmt.Errorf("--network-size must be at least 1")
	}
	amount := big.NewInt(c.Int64("genesis-amount"))

	accounts := make([]ed25519.PublicKey, n)
	signers := make([]*ledger.Signer, n)
	deposits := make([]*ledger.Transaction, n)
	for i := 0; i < n; i++ {
		pk, sk, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return fmt.Errorf("generate account %d: %w", i, err)
		}
		accounts[i] = pk
		signers[i] = ledger.NewSigner(sk)
		deposits[i] = ledger.NewDeposit(pk, 0, pk, amount, sk).AsDepositL2()
	}

	payments := make([]*ledger.Transaction, m)
	for i := 0; i < m; i++ {
		from := i % n
		to := (i + 1) % n
		payments[i] = signers[from].Payment(accounts[to], big.NewInt(1))
	}

	txns := append(append([]*ledger.Transaction{}, deposits...), payments...)

	faucetPK, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate faucet key: %w", err)
	}

	proveData := engine.NewGenesisData(ledger.NewGenesisBook(faucetPK, big.NewInt(0)))
	proveData.Txns = append(proveData.Txns, txns...)

	nativeData := engine.NewGenesisData(ledger.NewGenesisBook(faucetPK, big.NewInt(0)))
	nativeData.Txns = append(nativeData.Txns, txns...)

	var prv prover.Prover
	var verifier ledger.ReceiptVerifier
	if c.Bool("dev") {
		prv = prover.NewNativeProver()
		verifier = prover.NewNativeVerifier()
	} else {
		prv = prover.NewMockZkProver(0)
		verifier = prover.NewMockZkVerifier()
	}

	start := time.Now()
	receipt, err := prv.Prove(context.Background(), proveData)
	elapsed := time.Since(start)
	if err != nil {
		return fmt.Errorf("prove: %w", err)
	}

	provedHeader, err := verifier.VerifyReceipt(receipt)
	if err != nil {
		return fmt.Errorf("verify receipt: %w", err)
	}

	nativeEng := engine.NewL2Engine()
	nativeHeader, err := nativeEng.Process(nativeData)
	if err != nil {
		return fmt.Errorf("native re-execution: %w", err)
	}

	if provedHeader.Hash() != nativeHeader.Hash() {
		return fmt.Errorf("header hash mismatch: proved=%x native=%x", provedHeader.Hash(), nativeHeader.Hash())
	}

	fmt.Printf("accounts=%d transactions=%d prove_time=%s receipt_bytes=%d header_hash=%x\n",
		n, m, elapsed, len(receipt), provedHeader.Hash())
	return nil
}

