// Package prover wraps the gnark Groth16 backend over BN254: it compiles a
// circuit and runs the trusted setup, produces serialized proofs and
// verifies them against a public assignment.
package prover

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/vocdoni/zkledger/log"
)

// ErrConstraintViolation is returned when an assignment does not satisfy
// the constraint system. It is never raised by the gadgets themselves.
var ErrConstraintViolation = errors.New("constraint system not satisfied")

// Curve is the curve every circuit is compiled for.
const Curve = ecc.BN254

// Keys holds the compiled constraint system and the Groth16 key pair.
type Keys struct {
	CS           constraint.ConstraintSystem
	ProvingKey   groth16.ProvingKey
	VerifyingKey groth16.VerifyingKey
}

// Compile compiles the circuit shape into an R1CS.
func Compile(circuit frontend.Circuit) (constraint.ConstraintSystem, error) {
	startTime := time.Now()
	cs, err := frontend.Compile(Curve.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}
	log.Infow("circuit compiled",
		"constraints", cs.GetNbConstraints(),
		"publicInputs", cs.GetNbPublicVariables(),
		"took", time.Since(startTime).String())
	return cs, nil
}

// Setup compiles the circuit and runs the Groth16 setup. The toxic waste
// is sampled by the backend from crypto/rand and discarded.
func Setup(circuit frontend.Circuit) (*Keys, error) {
	cs, err := Compile(circuit)
	if err != nil {
		return nil, err
	}
	startTime := time.Now()
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup: %w", err)
	}
	setupDuration.Observe(time.Since(startTime).Seconds())
	log.Infow("groth16 setup done", "took", time.Since(startTime).String())
	return &Keys{CS: cs, ProvingKey: pk, VerifyingKey: vk}, nil
}

// CheckSatisfied solves the constraint system with the full assignment and
// returns ErrConstraintViolation if some constraint does not hold.
func CheckSatisfied(cs constraint.ConstraintSystem, assignment frontend.Circuit) error {
	w, err := frontend.NewWitness(assignment, Curve.ScalarField())
	if err != nil {
		return fmt.Errorf("build witness: %w", err)
	}
	if err := cs.IsSolved(w); err != nil {
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}
	return nil
}

// Prove generates a proof for the full assignment and returns it
// serialized.
func Prove(keys *Keys, assignment frontend.Circuit) ([]byte, error) {
	startTime := time.Now()
	w, err := frontend.NewWitness(assignment, Curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("build witness: %w", err)
	}
	proof, err := groth16.Prove(keys.CS, keys.ProvingKey, w)
	if err != nil {
		proofsTotal.WithLabelValues(resultUnsatisfied).Inc()
		return nil, fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		proofsTotal.WithLabelValues(resultError).Inc()
		return nil, fmt.Errorf("serialize proof: %w", err)
	}
	proofsTotal.WithLabelValues(resultOK).Inc()
	proveDuration.Observe(time.Since(startTime).Seconds())
	log.Debugw("proof generated", "size", buf.Len(), "took", time.Since(startTime).String())
	return buf.Bytes(), nil
}

// Verify checks a serialized proof against the public assignment. A proof
// that does not verify returns false and no error; an error means the
// inputs could not be decoded.
func Verify(vk groth16.VerifyingKey, proof []byte, publicAssignment frontend.Circuit) (bool, error) {
	p := groth16.NewProof(Curve)
	if _, err := p.ReadFrom(bytes.NewReader(proof)); err != nil {
		return false, fmt.Errorf("decode proof: %w", err)
	}
	pub, err := frontend.NewWitness(publicAssignment, Curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, fmt.Errorf("build public witness: %w", err)
	}
	if err := groth16.Verify(p, vk, pub); err != nil {
		log.Debugw("proof rejected", "error", err.Error())
		return false, nil
	}
	return true, nil
}
