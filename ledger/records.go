// Package ledger defines the records the validity circuit reasons about:
// accounts, which are the accumulator leaves, and transactions, which are
// the signed messages. It also builds authenticated snapshots of a set of
// accounts.
package ledger

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vocdoni/zkledger/crypto/hash"
	"github.com/vocdoni/zkledger/crypto/schnorr"
	"github.com/vocdoni/zkledger/params"
	"github.com/vocdoni/zkledger/types"
)

// Account is the ledger leaf. Its encoding is pk.X || pk.Y || balance ||
// nonce, every field big-endian.
type Account struct {
	PublicKey *schnorr.PublicKey
	Balance   uint64
	Nonce     uint64
}

// Marshal encodes the account as a types.AccountSize byte leaf.
func (a *Account) Marshal() []byte {
	buf := make([]byte, 0, types.AccountSize)
	buf = append(buf, a.PublicKey.Marshal()...)
	buf = binary.BigEndian.AppendUint64(buf, a.Balance)
	return binary.BigEndian.AppendUint64(buf, a.Nonce)
}

// UnmarshalAccount decodes an account leaf.
func UnmarshalAccount(buf []byte) (*Account, error) {
	if len(buf) != types.AccountSize {
		return nil, fmt.Errorf("%w: account must be %d bytes, got %d",
			types.ErrSerialization, types.AccountSize, len(buf))
	}
	pk, err := schnorr.UnmarshalPublicKey(buf[:types.PublicKeySize])
	if err != nil {
		return nil, err
	}
	return &Account{
		PublicKey: pk,
		Balance:   binary.BigEndian.Uint64(buf[types.PublicKeySize:]),
		Nonce:     binary.BigEndian.Uint64(buf[types.PublicKeySize+types.AmountSize:]),
	}, nil
}

// AccountID returns the identifier of the account owning pk:
// Poseidon(pk.X, pk.Y). It is used to look accounts up, never inside a
// circuit.
func AccountID(pk *schnorr.PublicKey) (hash.Digest, error) {
	x, y := pk.Point.Coordinates()
	id, err := hash.MultiPoseidon(x, y)
	if err != nil {
		return hash.Digest{}, fmt.Errorf("account id: %w", err)
	}
	return hash.DigestFromBigInt(id)
}

// Transaction is the message an account holder signs to move Amount to
// Recipient, paying Fee. Nonce must match the sender account nonce.
type Transaction struct {
	Recipient *schnorr.PublicKey
	Amount    uint64
	Fee       uint64
	Nonce     uint64
}

// Marshal encodes the transaction as recipient || amount || fee || nonce.
func (tx *Transaction) Marshal() []byte {
	buf := make([]byte, 0, types.TransactionSize)
	buf = append(buf, tx.Recipient.Marshal()...)
	buf = binary.BigEndian.AppendUint64(buf, tx.Amount)
	buf = binary.BigEndian.AppendUint64(buf, tx.Fee)
	return binary.BigEndian.AppendUint64(buf, tx.Nonce)
}

// UnmarshalTransaction decodes a transaction message.
func UnmarshalTransaction(buf []byte) (*Transaction, error) {
	if len(buf) != types.TransactionSize {
		return nil, fmt.Errorf("%w: transaction must be %d bytes, got %d",
			types.ErrSerialization, types.TransactionSize, len(buf))
	}
	recipient, err := schnorr.UnmarshalPublicKey(buf[:types.PublicKeySize])
	if err != nil {
		return nil, err
	}
	amounts := buf[types.PublicKeySize:]
	return &Transaction{
		Recipient: recipient,
		Amount:    binary.BigEndian.Uint64(amounts),
		Fee:       binary.BigEndian.Uint64(amounts[types.AmountSize:]),
		Nonce:     binary.BigEndian.Uint64(amounts[2*types.AmountSize:]),
	}, nil
}

// Debit returns the total the sender pays, Amount + Fee.
func (tx *Transaction) Debit() (uint64, error) {
	return CheckedAdd(tx.Amount, tx.Fee)
}

// Sign signs the transaction message.
func (tx *Transaction) Sign(p *params.Parameters, sk *schnorr.SecretKey, pk *schnorr.PublicKey, rng io.Reader) (*schnorr.Signature, error) {
	return schnorr.Sign(p, sk, pk, tx.Marshal(), rng)
}

// Apply returns the sender account after the transaction: the balance minus
// the debit and the nonce increased by one. It fails when the nonce does not
// match or the balance cannot cover the debit.
func (a *Account) Apply(tx *Transaction) (*Account, error) {
	if tx.Nonce != a.Nonce {
		return nil, fmt.Errorf("nonce mismatch: account %d, transaction %d", a.Nonce, tx.Nonce)
	}
	debit, err := tx.Debit()
	if err != nil {
		return nil, err
	}
	balance, err := CheckedSub(a.Balance, debit)
	if err != nil {
		return nil, err
	}
	nonce, err := CheckedAdd(a.Nonce, 1)
	if err != nil {
		return nil, err
	}
	return &Account{PublicKey: a.PublicKey, Balance: balance, Nonce: nonce}, nil
}
