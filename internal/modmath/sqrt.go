package modmath

import (
	"math/big"
	"sort"
)

// SqrtProvider computes modular square roots over a prime field.
type SqrtProvider interface {
	// Roots returns every y in [0, prime) with y² ≡ value (mod prime), in
	// ascending order. The result is empty when value is a non-residue.
	Roots(value, prime *big.Int) []*big.Int
}

// TonelliShanks is the default SqrtProvider. It relies on big.Int.ModSqrt,
// which uses Tonelli-Shanks (or the p ≡ 3, 5 mod 8 shortcuts).
type TonelliShanks struct{}

// Roots implements SqrtProvider. Moduli below 2 and even moduli other than 2
// have no roots.
func (TonelliShanks) Roots(value, prime *big.Int) []*big.Int {
	if prime == nil || prime.Cmp(big.NewInt(2)) < 0 {
		return nil
	}
	v := new(big.Int).Mod(value, prime)
	if v.Sign() == 0 {
		return []*big.Int{new(big.Int)}
	}
	if prime.Cmp(big.NewInt(2)) == 0 {
		// Every element of GF(2) is its own unique root.
		return []*big.Int{v}
	}
	if prime.Bit(0) == 0 {
		return nil
	}
	if big.Jacobi(v, prime) != 1 {
		return nil
	}

	y := new(big.Int).ModSqrt(v, prime)
	if y == nil {
		return nil
	}
	neg := new(big.Int).Sub(prime, y)
	roots := []*big.Int{y, neg}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Cmp(roots[j]) < 0 })
	return roots
}
