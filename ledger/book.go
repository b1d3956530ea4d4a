package ledger

import (
	"crypto/ed25519"
	"fmt"
	"math/big"

	"github.com/pwang200/payment-rollup/crypto"
	"github.com/pwang200/payment-rollup/smt"
)

// GenesisAmount is the reference faucet balance, 10^9. NewGenesisBook does
// not read it: the faucet is credited with the amount passed to it.
var GenesisAmount = big.NewInt(1_000_000_000)

// AccountUpdate is an (account id, new account hash) pair produced by a
// per-transaction processing method, accumulated by the engine and applied
// to the tree once per block via Book.UpdateTree.
type AccountUpdate struct {
	ID   crypto.Hash
	Hash crypto.Hash
}

// Book is the Account Book of spec component C2: a mutable account set
// layered over the sparse Merkle tree of component C1.
type Book struct {
	tree     *smt.Tree
	root     crypto.Hash
	accounts map[crypto.Hash]*Account
}

// NewGenesisBook creates a book with exactly one account, the faucet,
// credited with amount.
func NewGenesisBook(faucet ed25519.PublicKey, amount *big.Int) *Book {
	b := &Book{
		tree:     smt.New(),
		root:     smt.EmptyRoot(),
		accounts: make(map[crypto.Hash]*Account),
	}
	acct := NewAccount(faucet, new(big.Int).Set(amount))
	id := acct.ID()
	b.accounts[id] = acct
	b.root = b.tree.Insert(b.root, id, acct.Hash())
	return b
}

// Snapshot returns an independent copy of b: its own deep-cloned accounts,
// sharing the same underlying Tree (safe, since Insert/BatchInsert only ever
// add nodes, never mutate or remove existing ones, so two Books can read
// from one content-addressed node store without interfering). Engines use
// this for block-level atomicity: mutate the snapshot, discard it on
// failure, or swap it in as the new live Book on success.
func (b *Book) Snapshot() *Book {
	cp := &Book{
		tree:     b.tree,
		root:     b.root,
		accounts: make(map[crypto.Hash]*Account, len(b.accounts)),
	}
	for id, a := range b.accounts {
		cp.accounts[id] = a.clone()
	}
	return cp
}

// Root returns the current Merkle root of the account set.
func (b *Book) Root() crypto.Hash { return b.root }

// NumAccounts returns the number of accounts tracked.
func (b *Book) NumAccounts() int { return len(b.accounts) }

// GetAccount returns the account for id, or nil if absent. The returned
// pointer aliases book state; callers within the owning engine may mutate
// it, callers elsewhere should treat it as read-only.
func (b *Book) GetAccount(id crypto.Hash) *Account {
	return b.accounts[id]
}

// GetOrCreate returns the account owned by pk, creating a fresh zero
// balance account if none exists yet.
func (b *Book) GetOrCreate(pk ed25519.PublicKey) *Account {
	id := PKHash(pk)
	if a, ok := b.accounts[id]; ok {
		return a
	}
	a := NewAccount(pk, big.NewInt(0))
	b.accounts[id] = a
	return a
}

// GetAccountPair returns mutable handles to two distinct accounts: explicit
// pair lookup with a sentinel error when the ids coincide or either
// account is missing.
func (b *Book) GetAccountPair(x, y crypto.Hash) (*Account, *Account, error) {
	if x == y {
		return nil, nil, ErrSamePair
	}
	ax, ok := b.accounts[x]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %x", ErrUnknownAccount, x)
	}
	ay, ok := b.accounts[y]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %x", ErrUnknownAccount, y)
	}
	return ax, ay, nil
}

// senderCheck verifies tx's signature and that its sender account exists
// with the expected next sequence number.
func (b *Book) senderCheck(tx *Transaction) (crypto.Hash, error) {
	if !tx.SigVerify() {
		return crypto.Hash{}, ErrBadSignature
	}
	id := tx.SenderID()
	sender, ok := b.accounts[id]
	if !ok {
		return crypto.Hash{}, fmt.Errorf("%w: %x", ErrUnknownAccount, id)
	}
	if sender.SqnExpect != tx.Sqn() {
		return crypto.Hash{}, fmt.Errorf("%w: want %d got %d", ErrBadSequence, sender.SqnExpect, tx.Sqn())
	}
	return id, nil
}

// ProcessPayment applies a Pay transaction: sender_check, debit sender,
// credit or create recipient.
func (b *Book) ProcessPayment(tx *Transaction) ([]AccountUpdate, error) {
	senderID, err := b.senderCheck(tx)
	if err != nil {
		return nil, err
	}
	p := tx.Payment()
	sender := b.accounts[senderID]
	newSenderBalance, err := subAmount(sender.Balance, p.Amount)
	if err != nil {
		return nil, err
	}
	recipientID := PKHash(p.To)
	if r, ok := b.accounts[recipientID]; ok && recipientID != senderID {
		if _, err := addAmount(r.Balance, p.Amount); err != nil {
			return nil, err
		}
	}
	sender.Balance = newSenderBalance
	sender.SqnExpect++

	recipient, ok := b.accounts[recipientID]
	if !ok {
		recipient = NewAccount(p.To, new(big.Int).Set(p.Amount))
		b.accounts[recipientID] = recipient
	} else {
		newRecipientBalance, err := addAmount(recipient.Balance, p.Amount)
		if err != nil {
			return nil, err
		}
		recipient.Balance = newRecipientBalance
	}

	return []AccountUpdate{
		{ID: senderID, Hash: sender.Hash()},
		{ID: recipientID, Hash: recipient.Hash()},
	}, nil
}

// ProcessCreateRollupAccount applies a RollupCreate transaction: the
// target rollup public key must not already be an account.
func (b *Book) ProcessCreateRollupAccount(tx *Transaction) ([]AccountUpdate, error) {
	senderID, err := b.senderCheck(tx)
	if err != nil {
		return nil, err
	}
	c := tx.CreateRollupAccount()
	targetID := PKHash(c.RollupPK)
	if _, exists := b.accounts[targetID]; exists {
		return nil, fmt.Errorf("%w: %x", ErrAccountExists, targetID)
	}

	sender := b.accounts[senderID]
	sender.SqnExpect++

	target := NewAccount(c.RollupPK, big.NewInt(0))
	target.Rollup = newRollupState()
	b.accounts[targetID] = target

	return []AccountUpdate{
		{ID: senderID, Hash: sender.Hash()},
		{ID: targetID, Hash: target.Hash()},
	}, nil
}

// ProcessDepositL1 applies a Deposit transaction on the L1 side: debit the
// sender, credit the rollup's L1 escrow, and push the transaction id onto
// the rollup's inbox.
func (b *Book) ProcessDepositL1(tx *Transaction) ([]AccountUpdate, error) {
	senderID, err := b.senderCheck(tx)
	if err != nil {
		return nil, err
	}
	d := tx.Deposit()
	targetID := PKHash(d.RollupPK)
	sender, target, err := b.GetAccountPair(senderID, targetID)
	if err != nil {
		return nil, err
	}
	if target.Rollup == nil {
		return nil, fmt.Errorf("%w: %x", ErrNotRollupAccount, targetID)
	}
	newSenderBalance, err := subAmount(sender.Balance, d.Amount)
	if err != nil {
		return nil, err
	}
	newTargetBalance, err := addAmount(target.Balance, d.Amount)
	if err != nil {
		return nil, err
	}

	sender.Balance = newSenderBalance
	sender.SqnExpect++

	target.Balance = newTargetBalance
	target.Rollup.Inbox = append(target.Rollup.Inbox, tx.ID())

	return []AccountUpdate{
		{ID: senderID, Hash: sender.Hash()},
		{ID: targetID, Hash: target.Hash()},
	}, nil
}

// ProcessDepositL2 applies the internal L1->L2 delivery form of a deposit:
// credit-only, no signature or sqn check, since the legitimacy of the
// message is the L1->L2 channel itself.
func (b *Book) ProcessDepositL2(tx *Transaction) ([]AccountUpdate, error) {
	d := tx.Deposit()
	id := tx.SenderID()
	acct, ok := b.accounts[id]
	if !ok {
		acct = NewAccount(tx.Sender(), new(big.Int).Set(d.Amount))
		b.accounts[id] = acct
	} else {
		newBalance, err := addAmount(acct.Balance, d.Amount)
		if err != nil {
			return nil, err
		}
		acct.Balance = newBalance
	}
	return []AccountUpdate{{ID: id, Hash: acct.Hash()}}, nil
}

// ProcessWithdrawal applies a Withdrawal transaction on the L2 side: debit
// the sender and append a WithdrawalRecord to records.
func (b *Book) ProcessWithdrawal(tx *Transaction, records *[]WithdrawalRecord) ([]AccountUpdate, error) {
	senderID, err := b.senderCheck(tx)
	if err != nil {
		return nil, err
	}
	w := tx.Withdrawal()
	sender := b.accounts[senderID]
	newBalance, err := subAmount(sender.Balance, w.Amount)
	if err != nil {
		return nil, err
	}
	sender.Balance = newBalance
	sender.SqnExpect++

	*records = append(*records, WithdrawalRecord{To: tx.Sender(), Amount: new(big.Int).Set(w.Amount)})

	return []AccountUpdate{{ID: senderID, Hash: sender.Hash()}}, nil
}

// ReceiptVerifier decodes and verifies a zk receipt, returning the
// BlockHeaderL2 it commits to. Implemented by package prover; declared
// here (rather than imported from there) to avoid an import cycle, since
// prover needs ledger's header types.
type ReceiptVerifier interface {
	VerifyReceipt(receipt []byte) (*BlockHeaderL2, error)
}

// ProcessRollupStateUpdate applies a RollupUpdate transaction: verifies
// the receipt, reconciles parent/sqn/inbox/withdrawals against the sender
// rollup account, and settles withdrawals. Every failure here is fatal for
// the whole block.
func (b *Book) ProcessRollupStateUpdate(tx *Transaction, verifier ReceiptVerifier) ([]AccountUpdate, error) {
	senderID, err := b.senderCheck(tx)
	if err != nil {
		return nil, err
	}
	sender := b.accounts[senderID]
	if sender.Rollup == nil {
		return nil, fmt.Errorf("%w: %x", ErrNotRollupAccount, senderID)
	}

	header, err := verifier.VerifyReceipt(tx.RollupUpdate().ProofReceipt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReceiptDecode, err)
	}

	rollup := sender.Rollup
	if header.Parent != rollup.HeaderHash {
		return nil, ErrBadParent
	}
	if header.Sqn != rollup.Sqn {
		return nil, fmt.Errorf("%w: want %d got %d", ErrBadSequence, rollup.Sqn, header.Sqn)
	}
	if int(header.InboxMsgCount) > len(rollup.Inbox) {
		return nil, fmt.Errorf("%w: claims %d messages, inbox has %d", ErrInboxMismatch, header.InboxMsgCount, len(rollup.Inbox))
	}

	h := crypto.NewHasher()
	for i := uint32(0); i < header.InboxMsgCount; i++ {
		h.Write(rollup.Inbox[i][:])
	}
	if h.Sum() != header.InboxMsgHash {
		return nil, ErrInboxMismatch
	}

	total := big.NewInt(0)
	for _, w := range header.Withdrawals {
		total.Add(total, w.Amount)
	}
	if total.Cmp(sender.Balance) > 0 {
		return nil, ErrWithdrawExceedsEscrow
	}

	newSenderBalance, err := subAmount(sender.Balance, total)
	if err != nil {
		return nil, err
	}

	rollup.Inbox = append([]crypto.Hash(nil), rollup.Inbox[header.InboxMsgCount:]...)
	rollup.Sqn++
	rollup.HeaderHash = header.Hash()
	sender.Balance = newSenderBalance
	sender.SqnExpect++

	updates := []AccountUpdate{{ID: senderID, Hash: sender.Hash()}}
	for _, w := range header.Withdrawals {
		acct := b.GetOrCreate(w.To)
		newBalance, err := addAmount(acct.Balance, w.Amount)
		if err != nil {
			return nil, err
		}
		acct.Balance = newBalance
		updates = append(updates, AccountUpdate{ID: acct.ID(), Hash: acct.Hash()})
	}
	return updates, nil
}

// UpdateTree batch-writes the accumulated account-hash updates into the
// sparse Merkle tree and advances Root. It is called once per block,
// after every per-tx update method has run.
func (b *Book) UpdateTree(updates map[crypto.Hash]crypto.Hash) {
	if len(updates) == 0 {
		return
	}
	ids := make([]crypto.Hash, 0, len(updates))
	vals := make([]crypto.Hash, 0, len(updates))
	for id, h := range updates {
		ids = append(ids, id)
		vals = append(vals, h)
	}
	root, err := b.tree.BatchInsert(b.root, ids, vals)
	if err != nil {
		panic(err) // ids/vals built from the same map, lengths always match
	}
	b.root = root
}

// Proof returns a Merkle proof that account id has the hash currently
// recorded for it in the tree under Root().
func (b *Book) Proof(id crypto.Hash) smt.Proof {
	return b.tree.Proof(b.root, id)
}

// VerifyAccount checks that id's current in-memory account hashes to the
// value the tree commits to under Root(), and that the accompanying proof
// verifies.
func (b *Book) VerifyAccount(id crypto.Hash) bool {
	acct, ok := b.accounts[id]
	if !ok {
		return false
	}
	h := acct.Hash()
	leaf, err := b.tree.Get(b.root, id)
	if err != nil || leaf != h {
		return false
	}
	return smt.Verify(b.root, id, h, b.Proof(id))
}
