package prover

import (
	"context"

	"github.com/pwang200/payment-rollup/engine"
	"github.com/pwang200/payment-rollup/ledger"
)

// NativeProver runs the L2 engine directly in this process and wraps its
// output as a receipt tagged with ImageIDNative. It exists for local
// development and testing where standing up a real zk-VM toolchain is
// unnecessary: the journal it produces is exactly what a native
// re-execution would produce, by construction.
type NativeProver struct {
	eng *engine.L2Engine
}

// NewNativeProver returns a NativeProver.
func NewNativeProver() *NativeProver {
	return &NativeProver{eng: engine.NewL2Engine()}
}

// Prove runs the L2 engine against d and returns the encoded receipt.
func (p *NativeProver) Prove(ctx context.Context, d *engine.Data) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	header, err := p.eng.Process(d)
	if err != nil {
		return nil, err
	}
	return encodeReceipt(ImageIDNative, header)
}

// NativeVerifier verifies receipts produced by NativeProver.
type NativeVerifier struct{}

// NewNativeVerifier returns a NativeVerifier.
func NewNativeVerifier() *NativeVerifier { return &NativeVerifier{} }

// VerifyReceipt implements ledger.ReceiptVerifier.
func (v *NativeVerifier) VerifyReceipt(receipt []byte) (*ledger.BlockHeaderL2, error) {
	image, header, err := decodeReceipt(receipt)
	if err != nil {
		return nil, err
	}
	if image != ImageIDNative {
		return nil, ErrImageMismatch
	}
	return header, nil
}
