package ecdsaleak

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	sha256 "github.com/minio/sha256-simd"

	"github.com/mahdiidarabi/ecdsa-leak/internal/modmath"
)

// ErrInvalidKey is returned for private keys outside [1, n-1].
var ErrInvalidKey = errors.New("private key out of valid range")

// Engine signs and verifies over a single curve. Every random value it uses,
// from keys and nonces to test-mode message scalars, is drawn from the reader
// passed to NewEngine, so a seeded reader makes runs reproducible.
type Engine struct {
	curve  *Curve
	rand   io.Reader
	digest func(message []byte) (*big.Int, error)
}

// NewEngine returns an engine for curve that draws randomness from rand.
func NewEngine(curve *Curve, rand io.Reader) *Engine {
	e := &Engine{curve: curve, rand: rand}
	switch curve.Mode() {
	case ModeLegacy:
		e.digest = e.sha256Digest
	default:
		e.digest = e.randomDigest
	}
	return e
}

// Curve returns the engine's curve.
func (e *Engine) Curve() *Curve { return e.curve }

// randIntn returns a uniform value in [0, max) using rejection sampling on
// the top byte, as in FIPS 186-4, Appendix B.5.2.
func randIntn(rand io.Reader, max *big.Int) (*big.Int, error) {
	if max.Sign() <= 0 {
		return nil, fmt.Errorf("%w: empty range", ErrInvalidConfig)
	}
	bitLen := max.BitLen()
	b := make([]byte, (bitLen+7)/8)
	for {
		if _, err := io.ReadFull(rand, b); err != nil {
			return nil, err
		}
		if excess := len(b)*8 - bitLen; excess > 0 {
			b[0] &= byte(0xff) >> excess
		}
		k := new(big.Int).SetBytes(b)
		if k.Cmp(max) < 0 {
			return k, nil
		}
	}
}

// randFieldElement returns a uniform scalar in [1, n-1].
func randFieldElement(rand io.Reader, n *big.Int) (*big.Int, error) {
	k, err := randIntn(rand, new(big.Int).Sub(n, big.NewInt(1)))
	if err != nil {
		return nil, err
	}
	return k.Add(k, big.NewInt(1)), nil
}

// GenerateKeyPair derives the public key for priv. A nil priv draws a fresh
// private key from [1, n-1].
func (e *Engine) GenerateKeyPair(priv *big.Int) (*KeyPair, error) {
	n := e.curve.N()
	if priv == nil {
		var err error
		if priv, err = randFieldElement(e.rand, n); err != nil {
			return nil, err
		}
	} else if priv.Sign() <= 0 || priv.Cmp(n) >= 0 {
		return nil, ErrInvalidKey
	}

	q, err := e.curve.ScalarBaseMult(priv)
	if err != nil {
		return nil, err
	}
	return &KeyPair{D: new(big.Int).Set(priv), Q: q}, nil
}

// HashMessage maps message to a scalar according to the curve's mode.
func (e *Engine) HashMessage(message []byte) (*big.Int, error) {
	return e.digest(message)
}

// randomDigest ignores the message and returns a uniform scalar in [1, n-1].
func (e *Engine) randomDigest([]byte) (*big.Int, error) {
	return randFieldElement(e.rand, e.curve.N())
}

// sha256Digest returns SHA-256(message) mod n.
func (e *Engine) sha256Digest(message []byte) (*big.Int, error) {
	h := sha256.Sum256(message)
	z := new(big.Int).SetBytes(h[:])
	return z.Mod(z, e.curve.N()), nil
}

// Sign signs message with priv.
func (e *Engine) Sign(priv *big.Int, message []byte) (*Signature, error) {
	z, err := e.HashMessage(message)
	if err != nil {
		return nil, err
	}
	return e.SignHash(priv, z)
}

// SignHash signs an already-mapped message scalar z. Nonces yielding r = 0 or
// s = 0 are discarded and redrawn.
func (e *Engine) SignHash(priv, z *big.Int) (*Signature, error) {
	n := e.curve.N()
	if priv.Sign() <= 0 || priv.Cmp(n) >= 0 {
		return nil, ErrInvalidKey
	}

	for {
		k, err := randFieldElement(e.rand, n)
		if err != nil {
			return nil, err
		}

		pt, err := e.curve.ScalarBaseMult(k)
		if err != nil {
			return nil, err
		}
		if pt.IsInfinity() {
			continue
		}
		r := new(big.Int).Mod(pt.X, n)
		if r.Sign() == 0 {
			continue
		}

		kInv, err := modmath.InverseMod(k, n)
		if err != nil {
			return nil, err
		}

		s := new(big.Int).Mul(r, priv)
		s.Add(s, z)
		s.Mul(s, kInv)
		s.Mod(s, n)
		if s.Sign() == 0 {
			continue
		}

		return &Signature{KInv: kInv, Z: new(big.Int).Set(z), R: r, S: s}, nil
	}
}

// Verify reports whether sig is a valid signature of sig.Z under pub.
func (e *Engine) Verify(pub Point, sig *Signature) bool {
	c := e.curve
	n := c.N()

	if sig == nil || sig.R == nil || sig.S == nil || sig.Z == nil {
		return false
	}
	if sig.R.Sign() <= 0 || sig.S.Sign() <= 0 {
		return false
	}
	if sig.R.Cmp(n) >= 0 || sig.S.Cmp(n) >= 0 {
		return false
	}

	// SEC 1, Version 2.0, Section 4.1.4
	w, err := modmath.InverseMod(sig.S, n)
	if err != nil {
		return false
	}

	u1 := new(big.Int).Mul(sig.Z, w)
	u1.Mod(u1, n)
	u2 := new(big.Int).Mul(sig.R, w)
	u2.Mod(u2, n)

	p1, err := c.ScalarBaseMult(u1)
	if err != nil {
		return false
	}
	p2, err := c.ScalarMult(u2, pub)
	if err != nil {
		return false
	}
	pt, err := c.Add(p1, p2)
	if err != nil || pt.IsInfinity() {
		return false
	}

	x := new(big.Int).Mod(pt.X, n)
	return x.Cmp(sig.R) == 0
}

// VerifyRecoveredKey reports whether priv is the private key behind pub.
// Legacy-mode keys are checked with the decred secp256k1 implementation.
func VerifyRecoveredKey(curve *Curve, priv *big.Int, pub Point) (bool, error) {
	n := curve.N()
	if priv.Sign() <= 0 || priv.Cmp(n) >= 0 {
		return false, ErrInvalidKey
	}
	if pub.IsInfinity() {
		return false, nil
	}

	if curve.Mode() == ModeLegacy {
		var privKeyBytes [32]byte
		priv.FillBytes(privKeyBytes[:])
		pubKey := secp256k1.PrivKeyFromBytes(privKeyBytes[:]).PubKey()
		return pubKey.X().Cmp(pub.X) == 0 && pubKey.Y().Cmp(pub.Y) == 0, nil
	}

	derived, err := curve.ScalarBaseMult(priv)
	if err != nil {
		return false, err
	}
	return derived.Equal(pub), nil
}
