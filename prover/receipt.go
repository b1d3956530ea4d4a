package prover

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"

	"github.com/pwang200/payment-rollup/crypto"
	"github.com/pwang200/payment-rollup/ledger"
)

// receiptMagic tags the start of every encoded receipt, guarding against
// decoding an unrelated byte blob as a header.
var receiptMagic = [4]byte{'R', 'U', 'P', '1'}

// encodeReceipt serializes image and h into the wire format of an opaque
// receipt: magic || image_id(32) || journal, where journal is h's fields
// in the same order as its hash preimage, plus a withdrawal count prefix.
func encodeReceipt(image ImageID, h *ledger.BlockHeaderL2) ([]byte, error) {
	buf := make([]byte, 0, 4+32+32+32+4+32+32+4+4+len(h.Withdrawals)*(32+ledger.AmountLen))
	buf = append(buf, receiptMagic[:]...)
	buf = append(buf, image[:]...)
	buf = append(buf, h.Parent[:]...)
	buf = append(buf, h.StateRoot[:]...)
	buf = appendUint32(buf, h.Sqn)
	buf = append(buf, h.TxnsHash[:]...)
	buf = append(buf, h.InboxMsgHash[:]...)
	buf = appendUint32(buf, h.InboxMsgCount)
	buf = appendUint32(buf, uint32(len(h.Withdrawals)))
	for _, w := range h.Withdrawals {
		if len(w.To) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("prover: withdrawal recipient key has %d bytes, want %d", len(w.To), ed25519.PublicKeySize)
		}
		buf = append(buf, w.To...)
		amt, err := ledger.EncodeAmount(w.Amount)
		if err != nil {
			return nil, err
		}
		buf = append(buf, amt[:]...)
	}
	return buf, nil
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

// decodeReceipt parses the wire format written by encodeReceipt, checking
// the magic and returning the embedded image id alongside the header it
// commits to.
func decodeReceipt(receipt []byte) (ImageID, *ledger.BlockHeaderL2, error) {
	var image ImageID
	p := receipt
	if len(p) < 4 || [4]byte(p[:4]) != receiptMagic {
		return image, nil, fmt.Errorf("%w: bad magic", ledger.ErrReceiptDecode)
	}
	p = p[4:]
	if len(p) < 32 {
		return image, nil, fmt.Errorf("%w: truncated image id", ledger.ErrReceiptDecode)
	}
	copy(image[:], p[:32])
	p = p[32:]

	h := &ledger.BlockHeaderL2{}
	var err error
	if p, err = readHash(p, &h.Parent); err != nil {
		return image, nil, err
	}
	if p, err = readHash(p, &h.StateRoot); err != nil {
		return image, nil, err
	}
	if p, h.Sqn, err = readUint32(p); err != nil {
		return image, nil, err
	}
	if p, err = readHash(p, &h.TxnsHash); err != nil {
		return image, nil, err
	}
	if p, err = readHash(p, &h.InboxMsgHash); err != nil {
		return image, nil, err
	}
	if p, h.InboxMsgCount, err = readUint32(p); err != nil {
		return image, nil, err
	}
	var count uint32
	if p, count, err = readUint32(p); err != nil {
		return image, nil, err
	}
	h.Withdrawals = make([]ledger.WithdrawalOut, count)
	for i := uint32(0); i < count; i++ {
		if len(p) < ed25519.PublicKeySize+ledger.AmountLen {
			return image, nil, fmt.Errorf("%w: truncated withdrawal", ledger.ErrReceiptDecode)
		}
		to := make(ed25519.PublicKey, ed25519.PublicKeySize)
		copy(to, p[:ed25519.PublicKeySize])
		p = p[ed25519.PublicKeySize:]
		var amtBuf [ledger.AmountLen]byte
		copy(amtBuf[:], p[:ledger.AmountLen])
		p = p[ledger.AmountLen:]
		h.Withdrawals[i] = ledger.WithdrawalOut{To: to, Amount: ledger.DecodeAmount(amtBuf)}
	}
	if len(p) != 0 {
		return image, nil, fmt.Errorf("%w: trailing bytes", ledger.ErrReceiptDecode)
	}
	return image, h, nil
}

func readHash(p []byte, out *crypto.Hash) ([]byte, error) {
	if len(p) < crypto.HashLen {
		return nil, fmt.Errorf("%w: truncated hash", ledger.ErrReceiptDecode)
	}
	*out = crypto.BytesToHash(p[:crypto.HashLen])
	return p[crypto.HashLen:], nil
}

func readUint32(p []byte) ([]byte, uint32, error) {
	if len(p) < 4 {
		return nil, 0, fmt.Errorf("%w: truncated uint32", ledger.ErrReceiptDecode)
	}
	return p[4:], binary.BigEndian.Uint32(p[:4]), nil
}
