package util

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// RandomFieldElement reads a uniformly random BN254 scalar field element from
// rng.
func RandomFieldElement(rng io.Reader) (*big.Int, error) {
	return rand.Int(rng, fr.Modulus())
}

// TrimHex trims the '0x' prefix from a hex string.
func TrimHex(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// BigToFF function returns the finite field representation of the big.Int
// provided. It uses Euclidean Modulus and the BN254 curve scalar field to
// represent the provided number.
func BigToFF(iv *big.Int) *big.Int {
	z := big.NewInt(0)
	modulus := fr.Modulus()
	if c := iv.Cmp(modulus); c == 0 {
		return z
	} else if c != 1 && iv.Cmp(z) != -1 {
		return iv
	}
	return z.Mod(iv, modulus)
}

// PrettyHex returns a short hex representation of a frontend.Variable or a
// byte slice, used in circuit debug traces and log lines.
func PrettyHex(v any) string {
	switch t := v.(type) {
	case []byte:
		if len(t) > 4 {
			return fmt.Sprintf("%x", t[:4])
		}
		return fmt.Sprintf("%x", t)
	case *big.Int:
		return PrettyHex(t.Bytes())
	default:
		return fmt.Sprint(v)
	}
}
