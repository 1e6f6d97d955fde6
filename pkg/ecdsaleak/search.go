package ecdsaleak

import (
	"context"
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecdsa-leak/internal/bruteforce"
)

// SearchStatus is the terminal state of a curve search.
type SearchStatus int

const (
	// SearchFound means at least one curve was accepted.
	SearchFound SearchStatus = iota
	// SearchExhausted means the whole coefficient range was tried without
	// accepting a curve.
	SearchExhausted
)

func (s SearchStatus) String() string {
	if s == SearchFound {
		return "found"
	}
	return "exhausted"
}

// FoundCurve is a curve accepted by the search. Params carries ModeTest and
// a generated name of the form "curve-a<a>-b<b>"; callers may overwrite both.
type FoundCurve struct {
	Params CurveParams
	Order  *big.Int // number of points, including infinity
}

// SearchResult lists accepted curves in (a, b) order.
type SearchResult struct {
	Curves []FoundCurve
	Status SearchStatus
}

// CurveSearch looks for curves over a small prime field whose order is
// divisible by a given subgroup order. The cost is O(p · |a range| · |b range|)
// square roots; it is meant for toy fields only.
type CurveSearch struct {
	config SearchConfig
	sqrt   SqrtProvider
}

// NewCurveSearch creates a search with the given configuration.
func NewCurveSearch(config SearchConfig) *CurveSearch {
	return &CurveSearch{config: config, sqrt: TonelliShanks{}}
}

// WithSqrtProvider replaces the square root implementation.
func (cs *CurveSearch) WithSqrtProvider(sqrt SqrtProvider) *CurveSearch {
	cs.sqrt = sqrt
	return cs
}

// Search runs the search. Candidates are tried in order of a, then b, and
// the first MaxResults accepted curves are returned.
func (cs *CurveSearch) Search(ctx context.Context) (*SearchResult, error) {
	cfg := cs.config
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	out := cfg.out()

	fmt.Fprintf(out, "Searching for up to %d working curves with p = %s, n = %s ...\n", cfg.MaxResults, cfg.P, cfg.N)

	nb := cfg.MaxB - cfg.MinB
	jobs := (cfg.MaxA - cfg.MinA) * nb
	job := func(ctx context.Context, i int) (FoundCurve, bool, error) {
		a := big.NewInt(int64(cfg.MinA + i/nb))
		b := big.NewInt(int64(cfg.MinB + i%nb))
		fc, ok := cs.tryCandidate(a, b)
		return fc, ok, nil
	}

	result := &SearchResult{Status: SearchExhausted}
	err := bruteforce.Run(ctx, bruteforce.Config{Jobs: jobs, NumWorkers: cfg.NumWorkers}, job, func(_ int, fc FoundCurve) bool {
		result.Curves = append(result.Curves, fc)
		fmt.Fprintf(out, "Found working curve #%d:\n", len(result.Curves))
		fmt.Fprintf(out, "p = %s\na = %s\nb = %s\nG = (%s, %s)\nn = %s\n",
			fc.Params.P, fc.Params.A, fc.Params.B, fc.Params.Gx, fc.Params.Gy, fc.Params.N)
		return len(result.Curves) < cfg.MaxResults
	})
	if err != nil {
		return nil, err
	}

	if len(result.Curves) > 0 {
		result.Status = SearchFound
	} else {
		fmt.Fprintln(out, "No valid curves found.")
	}
	return result, nil
}

// tryCandidate checks a single (a, b) pair.
func (cs *CurveSearch) tryCandidate(a, b *big.Int) (FoundCurve, bool) {
	cfg := cs.config
	c := newRawCurve(cfg.P, a, b)

	order := CurveOrder(c, cs.sqrt)
	if new(big.Int).Mod(order, cfg.N).Sign() != 0 {
		return FoundCurve{}, false
	}

	g, ok := FindPoint(c, cs.sqrt)
	if !ok || !c.IsOnCurve(g) {
		return FoundCurve{}, false
	}

	// n is only a hypothesis here, so use the multiply without the mod-n
	// shortcut.
	test, err := c.multiply(cfg.N, g)
	if err != nil || !test.IsInfinity() {
		return FoundCurve{}, false
	}

	if g.X.Cmp(big.NewInt(cfg.GxMore)) <= 0 || g.Y.Cmp(big.NewInt(cfg.GyMore)) <= 0 {
		return FoundCurve{}, false
	}

	return FoundCurve{
		Params: CurveParams{
			Name: fmt.Sprintf("curve-a%s-b%s", a, b),
			Mode: ModeTest,
			P:    new(big.Int).Set(cfg.P),
			A:    a,
			B:    b,
			Gx:   g.X,
			Gy:   g.Y,
			N:    new(big.Int).Set(cfg.N),
		},
		Order: order,
	}, true
}

// CurveOrder counts the points of c, the point at infinity included, by
// summing the number of square roots of x³ + ax + b over every x.
func CurveOrder(c *Curve, sqrt SqrtProvider) *big.Int {
	p := c.params.P
	count := big.NewInt(1)
	x := new(big.Int)
	for ; x.Cmp(p) < 0; x.Add(x, big.NewInt(1)) {
		count.Add(count, big.NewInt(int64(len(sqrt.Roots(c.Polynomial(x), p)))))
	}
	return count
}

// FindPoint returns the first point with x ≥ 2 and y > 1, scanning x upward
// and roots in ascending order.
func FindPoint(c *Curve, sqrt SqrtProvider) (Point, bool) {
	p := c.params.P
	one := big.NewInt(1)
	for x := big.NewInt(2); x.Cmp(p) < 0; x = new(big.Int).Add(x, one) {
		for _, y := range sqrt.Roots(c.Polynomial(x), p) {
			if y.Cmp(one) > 0 {
				return Point{X: x, Y: y}, true
			}
		}
	}
	return Point{}, false
}
