package ledger

import "errors"

// Error kinds surfaced by the account book.
// Sentinel errors (rather than a closed enum type) are the idiom this
// corpus uses throughout (engine.ErrInvalidParams and friends in the
// teacher's pkg/engine/errors.go) so callers can compare with errors.Is
// even after a tx-context wrap.
var (
	// ErrBadSignature is returned when a transaction's Ed25519 signature
	// does not verify against its canonical preimage.
	ErrBadSignature = errors.New("ledger: bad signature")

	// ErrUnknownAccount is returned when the sender account does not exist.
	ErrUnknownAccount = errors.New("ledger: unknown account")

	// ErrBadSequence is returned when tx.Sqn does not match the sender's
	// expected next sequence number.
	ErrBadSequence = errors.New("ledger: unexpected sequence number")

	// ErrInsufficientBalance is returned when a debit would exceed the
	// sender's balance.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrAccountExists is returned when RollupCreate targets an account
	// that is already present.
	ErrAccountExists = errors.New("ledger: account already exists")

	// ErrNotRollupAccount is returned when a deposit or state update
	// targets an account with no RollupState.
	ErrNotRollupAccount = errors.New("ledger: not a rollup account")

	// ErrSamePair is returned by GetAccountPair when both ids refer to the
	// same account (debit/credit must touch two distinct accounts).
	ErrSamePair = errors.New("ledger: account pair must be distinct")

	// ErrBadParent is returned when a RollupStateUpdate's header.Parent
	// does not chain from the rollup's last committed header hash.
	ErrBadParent = errors.New("ledger: rollup update parent mismatch")

	// ErrInboxMismatch is returned when the claimed inbox digest does not
	// match the hash of the first InboxMsgCount pending inbox entries.
	ErrInboxMismatch = errors.New("ledger: inbox digest mismatch")

	// ErrWithdrawExceedsEscrow is returned when declared withdrawals
	// exceed the rollup account's L1 escrow balance.
	ErrWithdrawExceedsEscrow = errors.New("ledger: withdrawals exceed escrow")

	// ErrUnsupportedTxType is returned when an engine is asked to process
	// a transaction kind it does not admit.
	ErrUnsupportedTxType = errors.New("ledger: unsupported transaction type for this engine")

	// ErrReceiptDecode is returned when a zk receipt fails to verify or
	// its journal does not decode into a BlockHeaderL2.
	ErrReceiptDecode = errors.New("ledger: receipt decode failed")
)
