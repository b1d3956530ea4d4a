package prover

import (
	"context"
	"time"

	"github.com/pwang200/payment-rollup/engine"
	"github.com/pwang200/payment-rollup/ledger"
)

// MockZkProver simulates a zk-VM prover: it runs the L2 engine natively
// (there is no real proving backend here) but tags its receipts with
// ImageIDMock and pads the call with an artificial delay, so that callers
// exercise the same "slow, blocking, one-at-a-time" contract a real
// prover would impose.
type MockZkProver struct {
	eng   *engine.L2Engine
	delay time.Duration
}

// NewMockZkProver returns a MockZkProver that sleeps for delay before
// returning, simulating proving latency. A zero delay disables the sleep.
func NewMockZkProver(delay time.Duration) *MockZkProver {
	return &MockZkProver{eng: engine.NewL2Engine(), delay: delay}
}

// Prove runs the L2 engine against d, waits out the simulated delay (or
// returns early on context cancellation), and returns the encoded receipt.
func (p *MockZkProver) Prove(ctx context.Context, d *engine.Data) ([]byte, error) {
	header, err := p.eng.Process(d)
	if err != nil {
		return nil, err
	}
	if p.delay > 0 {
		t := time.NewTimer(p.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return encodeReceipt(ImageIDMock, header)
}

// MockZkVerifier verifies receipts produced by MockZkProver.
type MockZkVerifier struct{}

// NewMockZkVerifier returns a MockZkVerifier.
func NewMockZkVerifier() *MockZkVerifier { return &MockZkVerifier{} }

// VerifyReceipt implements ledger.ReceiptVerifier.
func (v *MockZkVerifier) VerifyReceipt(receipt []byte) (*ledger.BlockHeaderL2, error) {
	image, header, err := decodeReceipt(receipt)
	if err != nil {
		return nil, err
	}
	if image != ImageIDMock {
		return nil, ErrImageMismatch
	}
	return header, nil
}
