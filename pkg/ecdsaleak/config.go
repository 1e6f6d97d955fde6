package ecdsaleak

import (
	"fmt"
	"io"
	"math/big"
)

// SearchConfig configures a curve-parameter search.
type SearchConfig struct {
	// P is the field characteristic and N the required subgroup order.
	P, N *big.Int

	// Coefficient ranges, a in [MinA, MaxA) and b in [MinB, MaxB)
	MinA, MaxA int
	MinB, MaxB int

	// MaxResults stops the search after this many curves
	MaxResults int

	// GxMore and GyMore reject generators with coordinates not above these
	// thresholds
	GxMore, GyMore int64

	// NumWorkers controls parallelization (0 = auto-detect, 1 = sequential)
	NumWorkers int

	// Out receives progress output (nil = discard)
	Out io.Writer
}

// DefaultSearchConfig returns the settings used to find the test curve.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		P:          big.NewInt(10007),
		N:          big.NewInt(9967),
		MinA:       0,
		MaxA:       50,
		MinB:       1,
		MaxB:       50,
		MaxResults: 10,
		GxMore:     1,
		GyMore:     1,
		NumWorkers: 0,
	}
}

// WithCoefficientRange sets the a and b ranges.
func (c SearchConfig) WithCoefficientRange(minA, maxA, minB, maxB int) SearchConfig {
	c.MinA, c.MaxA, c.MinB, c.MaxB = minA, maxA, minB, maxB
	return c
}

// WithGeneratorThresholds sets GxMore and GyMore.
func (c SearchConfig) WithGeneratorThresholds(gx, gy int64) SearchConfig {
	c.GxMore, c.GyMore = gx, gy
	return c
}

func (c SearchConfig) validate() error {
	switch {
	case c.P == nil || c.N == nil:
		return fmt.Errorf("%w: p and n are required", ErrInvalidConfig)
	case c.P.Cmp(big.NewInt(3)) < 0 || c.N.Sign() <= 0:
		return fmt.Errorf("%w: p must be an odd prime and n positive", ErrInvalidConfig)
	case !c.P.ProbablyPrime(20):
		return fmt.Errorf("%w: p = %s is not prime", ErrInvalidConfig, c.P)
	case c.MinA < 0 || c.MinB < 0 || c.MaxA < c.MinA || c.MaxB < c.MinB:
		return fmt.Errorf("%w: bad coefficient range", ErrInvalidConfig)
	case c.MaxResults <= 0:
		return fmt.Errorf("%w: max results must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c SearchConfig) out() io.Writer {
	if c.Out == nil {
		return io.Discard
	}
	return c.Out
}

// ScanConfig configures a leak scan.
type ScanConfig struct {
	// KeyCount distinct private keys are drawn from [KeyRangeStart, KeyRangeEnd)
	KeyCount      int
	KeyRangeStart *big.Int
	KeyRangeEnd   *big.Int

	// TxPerKey is the number of signatures made under each key
	TxPerKey int

	// NumWorkers controls parallelization (0 = auto-detect, 1 = sequential)
	NumWorkers int

	// VerifySignatures checks every signature before classifying it
	VerifySignatures bool

	// Out receives progress output (nil = discard)
	Out io.Writer
}

// DefaultScanConfig returns a full scan of the key space of curve: every key
// in [1, n-2], 10036 transactions each.
func DefaultScanConfig(curve *Curve) ScanConfig {
	n := curve.N()
	end := new(big.Int).Sub(n, big.NewInt(1))
	keyCount := 9965
	if end.IsInt64() && end.Int64()-1 < int64(keyCount) {
		keyCount = int(end.Int64() - 1)
	}
	return ScanConfig{
		KeyCount:      keyCount,
		KeyRangeStart: big.NewInt(1),
		KeyRangeEnd:   end,
		TxPerKey:      10036,
		NumWorkers:    0,
	}
}

// WithKeys sets the number of keys and the range they are drawn from.
func (c ScanConfig) WithKeys(count int, start, end *big.Int) ScanConfig {
	c.KeyCount, c.KeyRangeStart, c.KeyRangeEnd = count, start, end
	return c
}

// WithTxPerKey sets the number of signatures per key.
func (c ScanConfig) WithTxPerKey(n int) ScanConfig {
	c.TxPerKey = n
	return c
}

func (c ScanConfig) validate() error {
	switch {
	case c.KeyRangeStart == nil || c.KeyRangeEnd == nil:
		return fmt.Errorf("%w: key range is required", ErrInvalidConfig)
	case c.KeyRangeStart.Sign() <= 0:
		return fmt.Errorf("%w: key range must start at 1 or above", ErrInvalidConfig)
	case c.KeyCount <= 0 || c.TxPerKey <= 0:
		return fmt.Errorf("%w: key count and transactions per key must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c ScanConfig) out() io.Writer {
	if c.Out == nil {
		return io.Discard
	}
	return c.Out
}
