package node

import (
	"math/big"
	"time"
)

// ChannelCapacity is the bound on every transaction-input channel between
// nodes. Senders must await capacity; there is no unbounded buffering.
const ChannelCapacity = 1000

// ProverChannelCapacity is the bound on the channel feeding the prover: a
// capacity of 1 makes backpressure explicit, since the L2 node cannot
// enqueue a second proof request until the first has returned.
const ProverChannelCapacity = 1

// Config holds the tunables for a running set of nodes.
type Config struct {
	// L1TickInterval is how often the L1 node checks its pool for a new
	// block.
	L1TickInterval time.Duration
	// L2TickInterval is how often the L2 node checks its pool for a new
	// block, subject to the prover-busy gate.
	L2TickInterval time.Duration
	// GenesisAmount is the faucet account's starting L1 balance.
	GenesisAmount *big.Int
	// Dev selects NativeProver (no simulated proving delay) over
	// MockZkProver when true.
	Dev bool
	// ProverDelay is the artificial latency MockZkProver sleeps before
	// returning, ignored when Dev is true.
	ProverDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults for local runs.
func DefaultConfig() Config {
	return Config{
		L1TickInterval: 2 * time.Second,
		L2TickInterval: 500 * time.Millisecond,
		GenesisAmount:  big.NewInt(1_000_000_000),
		Dev:            true,
		ProverDelay:    300 * time.Millisecond,
	}
}
