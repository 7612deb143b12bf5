package circuits

// The circuits package contains the gadgets that arithmetize the validity
// of a private ledger transaction, and the helpers shared by them. A
// transaction is valid when the sender account is a member of the ledger
// snapshot, the sender signed the transaction and the balance covers the
// amount plus the fee. Every check lives in its own subpackage:
//
//   accumulator  membership of a byte record in a fixed-depth tree
//   arithmetic   64-bit amounts with checked addition and subtraction
//   transcript   Fiat-Shamir challenge derivation
//   schnorr      Schnorr signature verification over BabyJubJub
//   validity     the composed transaction validity circuit
//
// Gadgets never assert their own verdict: verification gadgets return a
// boolean wire and the composing circuit asserts it. Everything runs over
// the BN254 scalar field, which is the base field of BabyJubJub.
//
// +------------+
// |  Validity  |  BN254         <- native
// |  Circuit   |  BabyJubJub    <- embedded curve
// +------------+
