// Command rollupd is the host binary: it wires a synthetic client, an L1
// node, an L2 node, and a prover together over channels and runs them
// until SIGINT or SIGTERM.
//
// Usage:
//
//	rollupd [flags]
//
// Flags:
//
//	--dev             use the native dev-mode prover instead of the mock
//	                  zk prover (default: true)
//	--prover-delay    simulated proving latency when --dev=false
//	--l1-tick         L1 block production interval
//	--l2-tick         L2 block production interval
//	--genesis-amount  faucet account's starting L1 balance
//	--peers           number of synthetic peer accounts the client pays
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pwang200/payment-rollup/log"
	"github.com/pwang200/payment-rollup/metrics"
	"github.com/pwang200/payment-rollup/node"
)

func main() {
	app := &cli.App{
		Name:  "rollupd",
		Usage: "run an L1/L2 payment rollup host",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dev", Value: true, Usage: "use the native dev-mode prover"},
			&cli.DurationFlag{Name: "prover-delay", Value: 300 * time.Millisecond, Usage: "simulated proving latency when --dev=false"},
			&cli.DurationFlag{Name: "l1-tick", Value: 2 * time.Second, Usage: "L1 block production interval"},
			&cli.DurationFlag{Name: "l2-tick", Value: 500 * time.Millisecond, Usage: "L2 block production interval"},
			&cli.Int64Flag{Name: "genesis-amount", Value: 1_000_000_000, Usage: "faucet account's starting L1 balance"},
			&cli.IntFlag{Name: "peers", Value: 16, Usage: "number of synthetic peer accounts the client pays"},
			&cli.IntFlag{Name: "metrics-port", Value: 9090, Usage: "port to serve /metrics on, 0 disables"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Error("rollupd exited with error", "err", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := node.Config{
		Dev:            c.Bool("dev"),
		ProverDelay:    c.Duration("prover-delay"),
		L1TickInterval: c.Duration("l1-tick"),
		L2TickInterval: c.Duration("l2-tick"),
		GenesisAmount:  big.NewInt(c.Int64("genesis-amount")),
	}

	_, faucetSK, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate faucet key: %w", err)
	}
	_, rollupSK, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate rollup key: %w", err)
	}

	peers := make([]ed25519.PublicKey, c.Int("peers"))
	for i := range peers {
		pk, _, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return fmt.Errorf("generate peer key %d: %w", i, err)
		}
		peers[i] = pk
	}

	rt := node.NewRuntime(cfg, faucetSK, rollupSK, peers)

	if port := c.Int("metrics-port"); port > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.DefaultRegistry.Handler())
		srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server stopped", "err", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	log.Info("rollupd starting", "dev", cfg.Dev, "l1_tick", cfg.L1TickInterval, "l2_tick", cfg.L2TickInterval)
	if err := rt.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("runtime exited: %w", err)
	}
	log.Info("rollupd stopped")
	return nil
}
