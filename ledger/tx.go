package ledger

import (
	"crypto/ed25519"
	"math/big"

	"github.com/pwang200/payment-rollup/crypto"
)

// TxKind discriminates the transaction variants. It plays
// the role of go-ethereum's txType byte (core/types.Transaction wraps an
// inner TxData behind a type discriminant); we keep the discriminant on the
// envelope itself rather than deriving it from the payload's Go type so
// that Deposit and DepositL2 can share one payload struct (L1ToL2Deposit)
// while routing to different account-book methods: DepositL2 is the
// internal L1->L2 delivery form of a Deposit.
type TxKind uint8

const (
	KindPay TxKind = iota + 1
	KindDeposit
	KindRollupCreate
	KindRollupUpdate
	KindDepositL2
	KindWithdrawal
)

// String returns a human-readable name, used in logs.
func (k TxKind) String() string {
	switch k {
	case KindPay:
		return "Pay"
	case KindDeposit:
		return "Deposit"
	case KindRollupCreate:
		return "RollupCreate"
	case KindRollupUpdate:
		return "RollupUpdate"
	case KindDepositL2:
		return "DepositL2"
	case KindWithdrawal:
		return "Withdrawal"
	default:
		return "Unknown"
	}
}

// Payload is implemented by each transaction payload variant. hashInto
// appends the payload's canonical preimage bytes to a running hash.
type Payload interface {
	hashInto(h *crypto.Hasher)
}

// Payment is the Pay transaction payload.
type Payment struct {
	To     ed25519.PublicKey
	Amount *big.Int
}

func (p *Payment) hashInto(h *crypto.Hasher) {
	buf, err := encodeAmount(p.Amount)
	if err != nil {
		panic(err) // amounts are validated at construction time
	}
	h.Write(p.To).Write(buf[:])
}

// CreateRollupAccount is the RollupCreate transaction payload.
type CreateRollupAccount struct {
	RollupPK ed25519.PublicKey
}

func (c *CreateRollupAccount) hashInto(h *crypto.Hasher) {
	h.Write(c.RollupPK)
}

// L1ToL2Deposit is the payload shared by Deposit (L1-authored, signed) and
// DepositL2 (the internal L1->L2 delivery message forwarded by the L1
// engine).
type L1ToL2Deposit struct {
	RollupPK ed25519.PublicKey
	Amount   *big.Int
}

func (d *L1ToL2Deposit) hashInto(h *crypto.Hasher) {
	buf, err := encodeAmount(d.Amount)
	if err != nil {
		panic(err)
	}
	h.Write(d.RollupPK).Write(buf[:])
}

// L2ToL1Withdrawal is the Withdrawal transaction payload.
type L2ToL1Withdrawal struct {
	Amount *big.Int
}

func (w *L2ToL1Withdrawal) hashInto(h *crypto.Hasher) {
	buf, err := encodeAmount(w.Amount)
	if err != nil {
		panic(err)
	}
	h.Write(buf[:])
}

// RollupStateUpdate is the RollupUpdate transaction payload: a raw zk
// receipt, not signed by any relayer key other than the rollup account's
// own sqn-checked envelope.
type RollupStateUpdate struct {
	ProofReceipt []byte
}

func (r *RollupStateUpdate) hashInto(h *crypto.Hasher) {
	h.Write(r.ProofReceipt)
}

// Transaction is a signed envelope wrapping one of the payload variants,
// tagged by Kind.
type Transaction struct {
	kind    TxKind
	sender  ed25519.PublicKey
	sqn     uint32
	payload Payload
	sig     []byte

	idCached *crypto.Hash
}

// signingPreimage computes H(sender || sqn_be || payload-bytes), the
// message that gets Ed25519-signed.
func signingPreimage(sender ed25519.PublicKey, sqn uint32, payload Payload) crypto.Hash {
	h := crypto.NewHasher().Write(sender).WriteUint32(sqn)
	payload.hashInto(h)
	return h.Sum()
}

func newSignedTx(kind TxKind, sender ed25519.PublicKey, sqn uint32, payload Payload, sk ed25519.PrivateKey) *Transaction {
	pre := signingPreimage(sender, sqn, payload)
	sig := ed25519.Sign(sk, pre[:])
	return &Transaction{kind: kind, sender: sender, sqn: sqn, payload: payload, sig: sig}
}

// NewPayment builds a signed Pay transaction.
func NewPayment(sender ed25519.PublicKey, sqn uint32, to ed25519.PublicKey, amount *big.Int, sk ed25519.PrivateKey) *Transaction {
	return newSignedTx(KindPay, sender, sqn, &Payment{To: to, Amount: amount}, sk)
}

// NewRollupCreate builds a signed RollupCreate transaction.
func NewRollupCreate(sender ed25519.PublicKey, sqn uint32, rollupPK ed25519.PublicKey, sk ed25519.PrivateKey) *Transaction {
	return newSignedTx(KindRollupCreate, sender, sqn, &CreateRollupAccount{RollupPK: rollupPK}, sk)
}

// NewDeposit builds a signed L1->L2 Deposit transaction.
func NewDeposit(sender ed25519.PublicKey, sqn uint32, rollupPK ed25519.PublicKey, amount *big.Int, sk ed25519.PrivateKey) *Transaction {
	return newSignedTx(KindDeposit, sender, sqn, &L1ToL2Deposit{RollupPK: rollupPK, Amount: amount}, sk)
}

// NewWithdrawal builds a signed L2->L1 Withdrawal transaction.
func NewWithdrawal(sender ed25519.PublicKey, sqn uint32, amount *big.Int, sk ed25519.PrivateKey) *Transaction {
	return newSignedTx(KindWithdrawal, sender, sqn, &L2ToL1Withdrawal{Amount: amount}, sk)
}

// NewRollupUpdate builds a signed RollupUpdate transaction carrying a raw
// zk receipt.
func NewRollupUpdate(sender ed25519.PublicKey, sqn uint32, receipt []byte, sk ed25519.PrivateKey) *Transaction {
	return newSignedTx(KindRollupUpdate, sender, sqn, &RollupStateUpdate{ProofReceipt: receipt}, sk)
}

// AsDepositL2 converts a signed Deposit transaction into its internal
// DepositL2 delivery form: same sender/payload/signature, re-tagged. The L2
// engine's process_deposit_l2 equivalent does not check the signature or
// sqn on this variant -- the legitimacy of the message is the L1->L2
// channel itself.
func (t *Transaction) AsDepositL2() *Transaction {
	cp := *t
	cp.kind = KindDepositL2
	cp.idCached = nil
	return &cp
}

// Kind returns the transaction variant.
func (t *Transaction) Kind() TxKind { return t.kind }

// Sender returns the sender's Ed25519 public key.
func (t *Transaction) Sender() ed25519.PublicKey { return t.sender }

// SenderID returns H(sender public key), the account id.
func (t *Transaction) SenderID() crypto.Hash { return PKHash(t.sender) }

// Sqn returns the transaction's claimed sequence number.
func (t *Transaction) Sqn() uint32 { return t.sqn }

// Sig returns the raw Ed25519 signature bytes.
func (t *Transaction) Sig() []byte { return t.sig }

// Payment returns the payload as *Payment, panicking if Kind is not Pay.
func (t *Transaction) Payment() *Payment { return t.payload.(*Payment) }

// CreateRollupAccount returns the payload, panicking if Kind is not RollupCreate.
func (t *Transaction) CreateRollupAccount() *CreateRollupAccount {
	return t.payload.(*CreateRollupAccount)
}

// Deposit returns the payload as *L1ToL2Deposit; valid for Kind Deposit or DepositL2.
func (t *Transaction) Deposit() *L1ToL2Deposit { return t.payload.(*L1ToL2Deposit) }

// Withdrawal returns the payload, panicking if Kind is not Withdrawal.
func (t *Transaction) Withdrawal() *L2ToL1Withdrawal { return t.payload.(*L2ToL1Withdrawal) }

// RollupUpdate returns the payload, panicking if Kind is not RollupUpdate.
func (t *Transaction) RollupUpdate() *RollupStateUpdate { return t.payload.(*RollupStateUpdate) }

// ID returns H(sender || sqn_be || payload-bytes || sig), the transaction
// identifier used in tx-set hashing and inbox entries. It is computed once
// and cached, mirroring go-ethereum's Transaction.Hash() memoization.
func (t *Transaction) ID() crypto.Hash {
	if t.idCached != nil {
		return *t.idCached
	}
	h := crypto.NewHasher().Write(t.sender).WriteUint32(t.sqn)
	t.payload.hashInto(h)
	h.Write(t.sig)
	id := h.Sum()
	t.idCached = &id
	return id
}

// SigVerify reports whether Sig is a valid Ed25519 signature by Sender over
// the canonical signing preimage, recomputed from the current sender, sqn
// and payload on every call.
func (t *Transaction) SigVerify() bool {
	pre := signingPreimage(t.sender, t.sqn, t.payload)
	return ed25519.Verify(t.sender, pre[:], t.sig)
}

// PKHash returns H(public_key_bytes), the AccountID derived from an Ed25519
// public key.
func PKHash(pk ed25519.PublicKey) crypto.Hash {
	return crypto.Sum256(pk)
}

// TxSetHash returns H(concat(tx.ID() for tx in txns)), the txns_hash field
// of a block header.
func TxSetHash(txns []*Transaction) crypto.Hash {
	h := crypto.NewHasher()
	for _, tx := range txns {
		id := tx.ID()
		h.Write(id[:])
	}
	return h.Sum()
}
