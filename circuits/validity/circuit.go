// Package validity composes the accumulator, signature and arithmetic
// gadgets into the circuit that proves a ledger transaction valid against a
// public snapshot root, without revealing the sender, the recipient or the
// amounts.
package validity

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/vocdoni/zkledger/circuits"
	"github.com/vocdoni/zkledger/circuits/accumulator"
	"github.com/vocdoni/zkledger/circuits/arithmetic"
	"github.com/vocdoni/zkledger/circuits/schnorr"
	"github.com/vocdoni/zkledger/params"
	"github.com/vocdoni/zkledger/types"
)

// offsets of the account record fields
const (
	pkXEnd     = types.FieldSize
	pkYEnd     = types.PublicKeySize
	balanceEnd = pkYEnd + types.AmountSize
	nonceEnd   = balanceEnd + types.AmountSize
)

// constants are the public parameters, embedded in the circuit.
type constants struct {
	hasher    accumulator.MiMCHasher
	generator twistededwards.Point
}

// Circuit proves that the holder of an account of the snapshot with root
// Root signed a transfer of Amount plus Fee that the account balance
// covers.
type Circuit struct {
	Root frontend.Variable `gnark:",public"`

	Account   [types.AccountSize]frontend.Variable
	Path      accumulator.Path
	Signature schnorr.Signature
	Recipient [types.PublicKeySize]frontend.Variable
	Amount    frontend.Variable
	Fee       frontend.Variable

	params constants `gnark:"-"`
}

// Placeholder returns the circuit shape for a snapshot of the given depth.
// The shape depends only on the depth and the parameters.
func Placeholder(p *params.Parameters, depth int) *Circuit {
	return &Circuit{
		Path: accumulator.Placeholder(depth),
		params: constants{
			hasher:    accumulator.NewMiMCHasher(p),
			generator: schnorr.PointFromNative(p.Generator),
		},
	}
}

// Define implements frontend.Circuit.
func (c *Circuit) Define(api frontend.API) error {
	account := c.Account[:]

	// the sender account belongs to the snapshot
	member, err := accumulator.Verify(api, c.params.hasher, c.Root, account, c.Path)
	if err != nil {
		return fmt.Errorf("membership: %w", err)
	}
	api.AssertIsEqual(member, 1)

	pk := twistededwards.Point{
		X: circuits.FieldFromBytesBE(api, account[:pkXEnd]),
		Y: circuits.FieldFromBytesBE(api, account[pkXEnd:pkYEnd]),
	}
	balance := arithmetic.NewAmount(api, circuits.FieldFromBytesBE(api, account[pkYEnd:balanceEnd]))
	amount := arithmetic.NewAmount(api, c.Amount)
	fee := arithmetic.NewAmount(api, c.Fee)

	// the sender signed recipient || amount || fee || nonce, with the
	// current account nonce
	msg := make([]frontend.Variable, 0, types.TransactionSize)
	msg = append(msg, c.Recipient[:]...)
	msg = append(msg, amount.BytesBE(api)...)
	msg = append(msg, fee.BytesBE(api)...)
	msg = append(msg, account[balanceEnd:nonceEnd]...)
	signed, err := schnorr.Verify(api, c.params.generator, pk, msg, c.Signature)
	if err != nil {
		return fmt.Errorf("signature: %w", err)
	}
	api.AssertIsEqual(signed, 1)

	// the balance covers amount plus fee
	debit := arithmetic.CheckedAdd(api, amount, fee)
	// only the range check of the new balance is enforced, it is not
	// committed to
	_ = arithmetic.CheckedSub(api, balance, debit)
	return nil
}
