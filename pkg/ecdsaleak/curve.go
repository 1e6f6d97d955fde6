package ecdsaleak

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/mahdiidarabi/ecdsa-leak/internal/modmath"
)

// Mode selects how messages are turned into scalars.
type Mode int

const (
	// ModeTest draws the message scalar uniformly from [1, n-1] instead of
	// hashing, decoupling message content from z.
	ModeTest Mode = iota
	// ModeLegacy uses SHA-256(message) mod n.
	ModeLegacy
)

func (m Mode) String() string {
	switch m {
	case ModeTest:
		return "test"
	case ModeLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "test" or "legacy".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "test":
		return ModeTest, nil
	case "legacy":
		return ModeLegacy, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
}

// ErrInvalidConfig is returned for curve, search or scan parameters that
// cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// CurveParams contains the parameters of a curve y² = x³ + ax + b over GF(p).
type CurveParams struct {
	Name   string
	Mode   Mode
	P      *big.Int // field characteristic
	A, B   *big.Int // curve coefficients
	Gx, Gy *big.Int // base point
	N      *big.Int // order of the base point
}

// Point is an affine curve point. The zero value is the point at infinity.
type Point struct {
	X, Y *big.Int
}

// Infinity returns the group identity.
func Infinity() Point { return Point{} }

// NewPoint returns the affine point (x, y).
func NewPoint(x, y int64) Point {
	return Point{X: big.NewInt(x), Y: big.NewInt(y)}
}

// IsInfinity reports whether pt is the point at infinity.
func (pt Point) IsInfinity() bool { return pt.X == nil || pt.Y == nil }

// Equal reports whether pt and q are the same point.
func (pt Point) Equal(q Point) bool {
	if pt.IsInfinity() || q.IsInfinity() {
		return pt.IsInfinity() == q.IsInfinity()
	}
	return pt.X.Cmp(q.X) == 0 && pt.Y.Cmp(q.Y) == 0
}

func (pt Point) String() string {
	if pt.IsInfinity() {
		return "infinity"
	}
	return fmt.Sprintf("(%s, %s)", pt.X, pt.Y)
}

// Curve implements the group law on a short Weierstrass curve in affine
// coordinates. It is not constant time.
type Curve struct {
	params CurveParams
	g      Point
}

// NewCurve validates params and returns the curve they describe. The base
// point must lie on the curve; n·G = ∞ is not checked.
func NewCurve(params CurveParams) (*Curve, error) {
	for name, v := range map[string]*big.Int{
		"p": params.P, "a": params.A, "b": params.B,
		"gx": params.Gx, "gy": params.Gy, "n": params.N,
	} {
		if v == nil {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidConfig, name)
		}
	}
	if params.P.Cmp(big.NewInt(2)) < 0 || params.N.Sign() <= 0 {
		return nil, fmt.Errorf("%w: p and n must be positive", ErrInvalidConfig)
	}

	c := &Curve{params: params}
	c.params.A = new(big.Int).Mod(params.A, params.P)
	c.params.B = new(big.Int).Mod(params.B, params.P)
	c.g = Point{X: new(big.Int).Set(params.Gx), Y: new(big.Int).Set(params.Gy)}
	if !c.IsOnCurve(c.g) {
		return nil, fmt.Errorf("%w: base point %s is not on the curve", ErrInvalidConfig, c.g)
	}
	return c, nil
}

// newRawCurve builds a curve from candidate coefficients without a base
// point. It is used while searching for curves.
func newRawCurve(p, a, b *big.Int) *Curve {
	return &Curve{params: CurveParams{P: p, A: a, B: b}}
}

// TestCurveParams returns the small curve the toolkit is built around.
func TestCurveParams() CurveParams {
	return CurveParams{
		Name: "secp256k1",
		Mode: ModeTest,
		P:    big.NewInt(10007),
		A:    big.NewInt(48),
		B:    big.NewInt(22),
		Gx:   big.NewInt(4),
		Gy:   big.NewInt(1668),
		N:    big.NewInt(9967),
	}
}

// LegacyCurveParams returns the real secp256k1 parameters.
func LegacyCurveParams() CurveParams {
	sp := secp256k1.S256().Params()
	return CurveParams{
		Name: "secp256k1",
		Mode: ModeLegacy,
		P:    new(big.Int).Set(sp.P),
		A:    new(big.Int),
		B:    new(big.Int).Set(sp.B),
		Gx:   new(big.Int).Set(sp.Gx),
		Gy:   new(big.Int).Set(sp.Gy),
		N:    new(big.Int).Set(sp.N),
	}
}

// TestCurve returns the curve described by TestCurveParams.
func TestCurve() *Curve {
	c, err := NewCurve(TestCurveParams())
	if err != nil {
		panic(err)
	}
	return c
}

// LegacyCurve returns the curve described by LegacyCurveParams.
func LegacyCurve() *Curve {
	c, err := NewCurve(LegacyCurveParams())
	if err != nil {
		panic(err)
	}
	return c
}

// Params returns a copy of the curve parameters.
func (c *Curve) Params() CurveParams { return c.params }

// Mode returns the message mode of the curve.
func (c *Curve) Mode() Mode { return c.params.Mode }

// N returns the base point order.
func (c *Curve) N() *big.Int { return c.params.N }

// G returns the base point.
func (c *Curve) G() Point { return c.g }

// Polynomial returns x³ + ax + b mod p.
func (c *Curve) Polynomial(x *big.Int) *big.Int {
	x3 := new(big.Int).Mul(x, x)
	x3.Add(x3, c.params.A) // x² + a
	x3.Mul(x3, x)          // x³ + ax
	x3.Add(x3, c.params.B) // x³ + ax + b

	return x3.Mod(x3, c.params.P)
}

// IsOnCurve reports whether pt satisfies the curve equation. The point at
// infinity is on every curve.
func (c *Curve) IsOnCurve(pt Point) bool {
	if pt.IsInfinity() {
		return true
	}
	if pt.X.Sign() < 0 || pt.Y.Sign() < 0 || pt.X.Cmp(c.params.P) >= 0 || pt.Y.Cmp(c.params.P) >= 0 {
		return false
	}

	// y² = x³ + ax + b
	y2 := new(big.Int).Mul(pt.Y, pt.Y)
	y2.Mod(y2, c.params.P)

	return c.Polynomial(pt.X).Cmp(y2) == 0
}

// Add returns p1 + p2. Doubling and addition share the formula
// x₃ = m² − x₁ − x₂, y₃ = m(x₁ − x₃) − y₁.
func (c *Curve) Add(p1, p2 Point) (Point, error) {
	if p1.IsInfinity() {
		return p2, nil
	}
	if p2.IsInfinity() {
		return p1, nil
	}
	p := c.params.P

	if p1.X.Cmp(p2.X) == 0 {
		sum := new(big.Int).Add(p1.Y, p2.Y)
		if sum.Mod(sum, p).Sign() == 0 {
			// p1 + (-p1) = ∞, which also covers doubling a point with y = 0.
			return Infinity(), nil
		}
	}

	var m *big.Int
	if p1.X.Cmp(p2.X) == 0 {
		// m = (3x₁² + a) / 2y₁
		num := new(big.Int).Mul(p1.X, p1.X)
		num.Mul(num, big.NewInt(3))
		num.Add(num, c.params.A)
		den, err := modmath.InverseMod(new(big.Int).Lsh(p1.Y, 1), p)
		if err != nil {
			return Point{}, err
		}
		m = num.Mul(num, den)
	} else {
		// m = (y₂ − y₁) / (x₂ − x₁)
		num := new(big.Int).Sub(p2.Y, p1.Y)
		den, err := modmath.InverseMod(new(big.Int).Sub(p2.X, p1.X), p)
		if err != nil {
			return Point{}, err
		}
		m = num.Mul(num, den)
	}
	m.Mod(m, p)

	x3 := new(big.Int).Mul(m, m)
	x3.Sub(x3, p1.X)
	x3.Sub(x3, p2.X)
	x3.Mod(x3, p)

	y3 := new(big.Int).Sub(p1.X, x3)
	y3.Mul(y3, m)
	y3.Sub(y3, p1.Y)
	y3.Mod(y3, p)

	return Point{X: x3, Y: y3}, nil
}

// Double returns 2·pt.
func (c *Curve) Double(pt Point) (Point, error) {
	return c.Add(pt, pt)
}

// Neg returns −pt.
func (c *Curve) Neg(pt Point) Point {
	if pt.IsInfinity() {
		return pt
	}
	y := new(big.Int).Neg(pt.Y)
	return Point{X: new(big.Int).Set(pt.X), Y: y.Mod(y, c.params.P)}
}

// ScalarMult returns k·pt. Scalars that are multiples of n map to infinity
// without further work, which is only correct for points in the subgroup
// generated by G.
func (c *Curve) ScalarMult(k *big.Int, pt Point) (Point, error) {
	if c.params.N != nil && new(big.Int).Mod(k, c.params.N).Sign() == 0 {
		return Infinity(), nil
	}
	return c.multiply(k, pt)
}

// ScalarBaseMult returns k·G.
func (c *Curve) ScalarBaseMult(k *big.Int) (Point, error) {
	return c.ScalarMult(k, c.g)
}

// multiply is plain double-and-add, least significant bit first.
func (c *Curve) multiply(k *big.Int, pt Point) (Point, error) {
	if pt.IsInfinity() || k.Sign() == 0 {
		return Infinity(), nil
	}
	if k.Sign() < 0 {
		return c.multiply(new(big.Int).Neg(k), c.Neg(pt))
	}

	acc := Infinity()
	base := pt
	var err error
	for i := 0; i < k.BitLen(); i++ {
		if k.Bit(i) == 1 {
			if acc, err = c.Add(acc, base); err != nil {
				return Point{}, err
			}
		}
		if base, err = c.Add(base, base); err != nil {
			return Point{}, err
		}
	}
	return acc, nil
}
