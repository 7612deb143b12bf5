package validity

import (
	"errors"
	"fmt"

	"github.com/vocdoni/zkledger/accumulator"
	"github.com/vocdoni/zkledger/circuits"
	circuitacc "github.com/vocdoni/zkledger/circuits/accumulator"
	circuitschnorr "github.com/vocdoni/zkledger/circuits/schnorr"
	"github.com/vocdoni/zkledger/crypto/hash"
	"github.com/vocdoni/zkledger/crypto/schnorr"
	"github.com/vocdoni/zkledger/ledger"
	"github.com/vocdoni/zkledger/params"
)

var (
	// ErrNotMember is returned when the sender account is not authenticated
	// by the path against the root.
	ErrNotMember = errors.New("sender account is not a member of the snapshot")
	// ErrInvalidSignature is returned when the transaction signature does
	// not verify under the sender key.
	ErrInvalidSignature = errors.New("invalid transaction signature")
	// ErrNonceMismatch is returned when the transaction nonce is not the
	// current sender nonce.
	ErrNonceMismatch = errors.New("transaction nonce does not match the sender account")
)

// Witness holds the native values a validity proof is built from.
type Witness struct {
	Root        hash.Digest
	Account     *ledger.Account
	Path        accumulator.Path
	Transaction *ledger.Transaction
	Signature   *schnorr.Signature
}

// WitnessFromSnapshot looks the sender up in the snapshot and returns the
// witness of tx.
func WitnessFromSnapshot(snap *ledger.Snapshot, sender *schnorr.PublicKey, tx *ledger.Transaction, sig *schnorr.Signature) (*Witness, error) {
	i, err := snap.IndexOf(sender)
	if err != nil {
		return nil, err
	}
	account, err := snap.Account(i)
	if err != nil {
		return nil, err
	}
	path, err := snap.Path(i)
	if err != nil {
		return nil, err
	}
	return &Witness{
		Root:        snap.Root(),
		Account:     account,
		Path:        path,
		Transaction: tx,
		Signature:   sig,
	}, nil
}

// Check evaluates natively every predicate the circuit enforces and returns
// the first failing one. A witness that passes Check satisfies the circuit.
func (w *Witness) Check(p *params.Parameters) error {
	if w.Account == nil || w.Transaction == nil || w.Signature == nil {
		return fmt.Errorf("incomplete witness")
	}
	if !accumulator.Verify(p.Hasher(), w.Root, w.Account.Marshal(), w.Path) {
		return ErrNotMember
	}
	if w.Transaction.Nonce != w.Account.Nonce {
		return fmt.Errorf("%w: account %d, transaction %d", ErrNonceMismatch, w.Account.Nonce, w.Transaction.Nonce)
	}
	if !schnorr.Verify(p, w.Account.PublicKey, w.Transaction.Marshal(), w.Signature) {
		return ErrInvalidSignature
	}
	debit, err := w.Transaction.Debit()
	if err != nil {
		return err
	}
	if _, err := ledger.CheckedSub(w.Account.Balance, debit); err != nil {
		return err
	}
	return nil
}

// NewAssignment returns the full circuit assignment of the witness.
func NewAssignment(w *Witness) (*Circuit, error) {
	if w.Account == nil || w.Transaction == nil || w.Signature == nil {
		return nil, fmt.Errorf("incomplete witness")
	}
	c := &Circuit{
		Root:      w.Root.BigInt(),
		Path:      circuitacc.PathFromNative(w.Path),
		Signature: circuitschnorr.SignatureFromNative(w.Signature),
		Amount:    w.Transaction.Amount,
		Fee:       w.Transaction.Fee,
	}
	copy(c.Account[:], circuits.BytesToVariables(w.Account.Marshal()))
	copy(c.Recipient[:], circuits.BytesToVariables(w.Transaction.Recipient.Marshal()))
	return c, nil
}

// PublicAssignment returns the assignment of the public inputs only, the
// one a verifier builds from the root.
func PublicAssignment(root hash.Digest) *Circuit {
	return &Circuit{Root: root.BigInt()}
}
