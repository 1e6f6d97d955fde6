// Package modmath implements the prime-field helpers used by the curve engine
// and the key recovery solvers.
package modmath

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrDivisionByZero is returned when an inverse is requested for an element
// that shares a factor with the modulus.
var ErrDivisionByZero = errors.New("division by zero")

// InverseMod returns k⁻¹ mod p. k may be negative or larger than p.
func InverseMod(k, p *big.Int) (*big.Int, error) {
	if p.Sign() <= 0 {
		return nil, fmt.Errorf("%w: modulus %s is not positive", ErrDivisionByZero, p)
	}
	kk := new(big.Int).Mod(k, p)
	if kk.Sign() == 0 {
		return nil, fmt.Errorf("%w: %s ≡ 0 (mod %s)", ErrDivisionByZero, k, p)
	}
	inv := new(big.Int).ModInverse(kk, p)
	if inv == nil {
		return nil, fmt.Errorf("%w: gcd(%s, %s) ≠ 1", ErrDivisionByZero, k, p)
	}
	return inv, nil
}
