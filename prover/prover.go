// Package prover implements the zk-VM boundary (component C7): proving an
// L2 block and verifying the resulting receipt without either side peeking
// at the other's internals. Two Prover implementations are provided:
// NativeProver, a dev-mode prover that runs the L2 engine directly and
// wraps its output in a receipt envelope without any real proof, and
// MockZkProver, which does the same under a different fixed image id, the
// way a real zk-VM toolchain pins a compiled guest program. Each envelope
// carries its prover's image id, so a verifier rejects the other's receipts.
package prover

import (
	"context"
	"errors"

	"github.com/pwang200/payment-rollup/engine"
)

// Prover is the sequential contract of component C7: Prove is a single,
// blocking, expensive operation. Callers must not invoke Prove again on
// the same Prover until the previous call returns; the L2 node enforces
// this with a "busy" flag rather than the Prover itself serializing calls.
type Prover interface {
	// Prove runs the L2 engine against d, mutating d exactly as a direct
	// engine.L2Engine.Process call would, and returns an opaque receipt
	// whose journal decodes to the produced BlockHeaderL2.
	Prove(ctx context.Context, d *engine.Data) ([]byte, error)
}

// ImageID identifies a compiled L2 guest program. L1 only accepts receipts
// whose embedded image id matches the one it was configured with.
type ImageID [32]byte

var (
	// ImageIDNative marks receipts produced by NativeProver: no proof was
	// generated, the journal is trusted only because this process also
	// ran the computation.
	ImageIDNative = ImageID{0x01}

	// ImageIDMock marks receipts produced by MockZkProver: still no real
	// proof, but the image id is checked the way a real verifier would
	// check it against a compiled guest binary's fixed id.
	ImageIDMock = ImageID{0x02}
)

// ErrImageMismatch is returned when a receipt's embedded image id does not
// match the verifier's configured id.
var ErrImageMismatch = errors.New("prover: receipt image id mismatch")
