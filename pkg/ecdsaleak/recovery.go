package ecdsaleak

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecdsa-leak/internal/modmath"
)

// SqrtProvider computes the complete set of modular square roots.
type SqrtProvider = modmath.SqrtProvider

// TonelliShanks is the default SqrtProvider.
type TonelliShanks = modmath.TonelliShanks

var (
	// ErrDivisionByZero is returned when a required modular inverse does not
	// exist.
	ErrDivisionByZero = modmath.ErrDivisionByZero

	// ErrNoResidue is returned by RecoverCaseB when the discriminant has no
	// square root mod n.
	ErrNoResidue = errors.New("no modular square root exists for discriminant")

	// ErrNoCandidate is returned by RecoverCaseB when every root had to be
	// skipped.
	ErrNoCandidate = errors.New("no root yields an invertible solution")
)

// CaseAInput holds the values consumed by the linear recovery.
type CaseAInput struct {
	S, Z, R, N *big.Int
	A          *big.Int // leaked factor
	M          *big.Int // multiplier, 1 for the scanner's Case A
}

// CaseBInput holds the values consumed by the quadratic recovery.
type CaseBInput struct {
	S, SZR, Z, R, N *big.Int
	A               *big.Int // leaked factor
}

// RecoverCaseA recovers the nonce inverse and the private key from a
// signature whose z·k component is known to be a·m:
//
//	k = a·m·z⁻¹
//	x = (s − a·m)·(r·k)⁻¹
func RecoverCaseA(in CaseAInput) (*RecoveryResult, error) {
	n := in.N
	if n == nil || n.Sign() <= 0 {
		return nil, fmt.Errorf("case A: %w: n must be positive", ErrInvalidConfig)
	}
	szk := new(big.Int).Mul(in.A, in.M)
	szk.Mod(szk, n)

	res, err := solveFromSZK(in.S, in.Z, in.R, n, szk)
	if err != nil {
		return nil, fmt.Errorf("case A: %w", err)
	}
	return res, nil
}

// RecoverCaseB solves a·m1² − s·m1 + (s + s_zr) ≡ 0 (mod n) for m1 and runs
// the Case A derivation with s_zk = a·m1 for every root. Roots for which an
// inverse does not exist are skipped. n must be an odd prime.
func RecoverCaseB(in CaseBInput, sqrt SqrtProvider) ([]*RecoveryResult, error) {
	n := in.N
	if n == nil || n.Cmp(big.NewInt(3)) < 0 || !n.ProbablyPrime(20) {
		return nil, fmt.Errorf("case B: %w: n = %s is not an odd prime", ErrInvalidConfig, n)
	}

	// D = s² − 4a·((s_zr + s) mod n)
	sum := new(big.Int).Add(in.SZR, in.S)
	sum.Mod(sum, n)
	fourAC := new(big.Int).Mul(in.A, sum)
	fourAC.Lsh(fourAC, 2)
	d := new(big.Int).Mul(in.S, in.S)
	d.Sub(d, fourAC)
	d.Mod(d, n)

	roots := sqrt.Roots(d, n)
	if len(roots) == 0 {
		return nil, fmt.Errorf("case B: %w (D = %s)", ErrNoResidue, d)
	}

	if _, err := modmath.InverseMod(in.Z, n); err != nil {
		return nil, fmt.Errorf("case B: z: %w", err)
	}

	results := make([]*RecoveryResult, 0, len(roots))
	for _, root := range roots {
		twoAInv, err := modmath.InverseMod(new(big.Int).Lsh(in.A, 1), n)
		if err != nil {
			continue
		}
		m1 := new(big.Int).Add(in.S, root)
		m1.Mul(m1, twoAInv)
		m1.Mod(m1, n)

		szk := new(big.Int).Mul(in.A, m1)
		szk.Mod(szk, n)

		res, err := solveFromSZK(in.S, in.Z, in.R, n, szk)
		if err != nil {
			continue
		}
		res.M1 = m1
		results = append(results, res)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("case B: %w", ErrNoCandidate)
	}
	return results, nil
}

// solveFromSZK splits s = s_zk + s_rxk and solves both halves for k and x.
func solveFromSZK(s, z, r, n, szk *big.Int) (*RecoveryResult, error) {
	zInv, err := modmath.InverseMod(z, n)
	if err != nil {
		return nil, fmt.Errorf("z: %w", err)
	}

	k := new(big.Int).Mul(szk, zInv)
	k.Mod(k, n)

	srxk := new(big.Int).Sub(s, szk)
	srxk.Mod(srxk, n)

	rk := new(big.Int).Mul(r, k)
	rk.Mod(rk, n)
	rkInv, err := modmath.InverseMod(rk, n)
	if err != nil {
		return nil, fmt.Errorf("r·k: %w", err)
	}

	x := new(big.Int).Mul(srxk, rkInv)
	x.Mod(x, n)

	// rk is a unit, so k is too.
	nonce, err := modmath.InverseMod(k, n)
	if err != nil {
		return nil, fmt.Errorf("k: %w", err)
	}

	return &RecoveryResult{
		K:     k,
		Nonce: nonce,
		X:     x,
		ZInv:  zInv,
		SZK:   new(big.Int).Set(szk),
		SRXK:  srxk,
		RK:    rk,
		RKInv: rkInv,
	}, nil
}

// CheckSigningEquation reports whether (s·nonce − z) ≡ r·x (mod n).
func CheckSigningEquation(s, z, r, n, nonce, x *big.Int) bool {
	lhs := new(big.Int).Mul(s, nonce)
	lhs.Sub(lhs, z)
	lhs.Mod(lhs, n)

	rhs := new(big.Int).Mul(r, x)
	rhs.Mod(rhs, n)

	return lhs.Cmp(rhs) == 0
}
