package ledger

import (
	"errors"
	"math/big"
)

// AmountLen is the width in bytes of an amount in the wire/hash preimages:
// balances are u128, encoded big-endian.
const AmountLen = 16

// ErrAmountOverflow is returned when a balance does not fit in AmountLen
// bytes (the u128 ceiling the reference implementation enforces implicitly
// through its fixed-width integer type).
var ErrAmountOverflow = errors.New("ledger: amount exceeds u128 range")

var amountCeiling = new(big.Int).Lsh(big.NewInt(1), AmountLen*8)

// NewAmount returns a non-negative *big.Int amount, or an error if v
// overflows the u128 range or is negative.
func NewAmount(v int64) (*big.Int, error) {
	return checkAmount(big.NewInt(v))
}

func checkAmount(v *big.Int) (*big.Int, error) {
	if v.Sign() < 0 || v.Cmp(amountCeiling) >= 0 {
		return nil, ErrAmountOverflow
	}
	return v, nil
}

// encodeAmount writes v as AmountLen big-endian bytes.
func encodeAmount(v *big.Int) ([AmountLen]byte, error) {
	var buf [AmountLen]byte
	if _, err := checkAmount(v); err != nil {
		return buf, err
	}
	v.FillBytes(buf[:])
	return buf, nil
}

// decodeAmount reads AmountLen big-endian bytes into a *big.Int.
func decodeAmount(buf [AmountLen]byte) *big.Int {
	return new(big.Int).SetBytes(buf[:])
}

// EncodeAmount is the exported form of encodeAmount, for packages that
// build hash preimages containing amounts outside the ledger account
// model itself (e.g. engine's BlockHeaderL2 withdrawal list).
func EncodeAmount(v *big.Int) ([AmountLen]byte, error) {
	return encodeAmount(v)
}

// DecodeAmount is the exported form of decodeAmount.
func DecodeAmount(buf [AmountLen]byte) *big.Int {
	return decodeAmount(buf)
}

// addAmount returns a+b, erroring on u128 overflow.
func addAmount(a, b *big.Int) (*big.Int, error) {
	return checkAmount(new(big.Int).Add(a, b))
}

// subAmount returns a-b, erroring if b > a.
func subAmount(a, b *big.Int) (*big.Int, error) {
	if a.Cmp(b) < 0 {
		return nil, ErrInsufficientBalance
	}
	return new(big.Int).Sub(a, b), nil
}
