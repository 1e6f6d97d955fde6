package ecdsaleak

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"math/rand/v2"

	"github.com/mahdiidarabi/ecdsa-leak/internal/bruteforce"
)

// Classify applies the leak predicate to a signature made with private key x.
// The signature's nonce inverse plays the role of k. It returns the record and
// true when the signature falls into Case A or Case B.
func Classify(sig *Signature, x, n *big.Int) (*LeakRecord, bool) {
	k := sig.KInv

	szk := new(big.Int).Mul(sig.Z, k)
	szk.Mod(szk, n)
	srxk := new(big.Int).Mul(sig.R, x)
	srxk.Mul(srxk, k)
	srxk.Mod(srxk, n)
	if szk.Sign() <= 0 || srxk.Sign() <= 0 {
		return nil, false
	}

	// Holds for every well-formed signature: s = z·k⁻¹ + r·x·k⁻¹.
	sum := new(big.Int).Add(szk, srxk)
	if sum.Mod(sum, n).Cmp(sig.S) != 0 {
		return nil, false
	}

	szr := new(big.Int).Mul(sig.Z, sig.R)
	szr.Mod(szr, n)
	if szr.Cmp(sig.S) <= 0 {
		return nil, false
	}

	q := new(big.Int).Sub(szr, sig.S)
	a := new(big.Int).Mod(sig.S, q)
	if a.Cmp(big.NewInt(1)) <= 0 || a.Cmp(sig.S) == 0 {
		return nil, false
	}
	if a.Cmp(new(big.Int).Mod(szr, q)) != 0 {
		return nil, false
	}

	m1 := new(big.Rat).SetFrac(szk, a)
	m2 := new(big.Rat).SetFrac(new(big.Int).Add(sig.S, szr), srxk)
	if !m1.IsInt() {
		return nil, false
	}

	one := big.NewRat(1, 1)
	var c Case
	switch {
	case m1.Cmp(m2) != 0 && m1.Cmp(one) == 0:
		c = CaseA
	case m1.Cmp(m2) == 0 && m1.Cmp(one) > 0:
		c = CaseB
	default:
		return nil, false
	}

	return &LeakRecord{
		Case: c,
		S:    new(big.Int).Set(sig.S),
		SZK:  szk,
		SRXK: srxk,
		SZR:  szr,
		Z:    new(big.Int).Set(sig.Z),
		R:    new(big.Int).Set(sig.R),
		X:    new(big.Int).Set(x),
		K:    new(big.Int).Set(k),
		Q:    q,
		A:    a,
		M1:   m1,
		M2:   m2,
	}, true
}

// ScanStats summarizes a scan.
type ScanStats struct {
	Keys         int
	TxPerKey     int
	Transactions int
	CaseA        int
	CaseB        int
	SkippedKeys  int // keys whose public key failed the curve check
	Rejected     int // signatures that failed verification, when enabled
}

// ScanResult contains the leak records of a scan in key order.
type ScanResult struct {
	Records []*LeakRecord
	Stats   ScanStats
}

// Scanner signs many random messages under many keys and keeps the
// signatures that match the leak pattern.
type Scanner struct {
	curve  *Curve
	rand   io.Reader
	config ScanConfig
}

// NewScanner creates a scanner with default settings.
func NewScanner(curve *Curve, rand io.Reader) *Scanner {
	return &Scanner{
		curve:  curve,
		rand:   rand,
		config: DefaultScanConfig(curve),
	}
}

// WithConfig sets the scan configuration.
func (s *Scanner) WithConfig(config ScanConfig) *Scanner {
	s.config = config
	return s
}

// Config returns the scan configuration.
func (s *Scanner) Config() ScanConfig { return s.config }

type keyScan struct {
	records  []*LeakRecord
	skipped  bool
	rejected int
}

// Scan runs the configured scan. Keys are drawn first, then one ChaCha8 seed
// per key, both from the scanner's reader; each key is then scanned on its own
// stream so the result does not depend on NumWorkers.
func (s *Scanner) Scan(ctx context.Context) (*ScanResult, error) {
	cfg := s.config
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.KeyRangeEnd.Cmp(s.curve.N()) > 0 {
		return nil, fmt.Errorf("%w: key range ends above n = %s", ErrInvalidConfig, s.curve.N())
	}
	out := cfg.out()

	keys, err := UniqueKeys(s.rand, cfg.KeyCount, cfg.KeyRangeStart, cfg.KeyRangeEnd)
	if err != nil {
		return nil, err
	}
	seeds := make([][32]byte, len(keys))
	for i := range seeds {
		if _, err := io.ReadFull(s.rand, seeds[i][:]); err != nil {
			return nil, err
		}
	}

	fmt.Fprintf(out, "Scanning %d keys with %d transactions each...\n", len(keys), cfg.TxPerKey)

	job := func(ctx context.Context, i int) (keyScan, bool, error) {
		res, err := s.scanKey(ctx, keys[i], rand.NewChaCha8(seeds[i]))
		return res, err == nil, err
	}

	result := &ScanResult{
		Stats: ScanStats{
			Keys:         len(keys),
			TxPerKey:     cfg.TxPerKey,
			Transactions: len(keys) * cfg.TxPerKey,
		},
	}
	progressEvery := len(keys) / 10
	if progressEvery < 1 {
		progressEvery = 1
	}
	err = bruteforce.Run(ctx, bruteforce.Config{
		Jobs:          len(keys),
		NumWorkers:    cfg.NumWorkers,
		Out:           out,
		ProgressEvery: progressEvery,
		Label:         "keys",
	}, job, func(_ int, ks keyScan) bool {
		if ks.skipped {
			result.Stats.SkippedKeys++
		}
		result.Stats.Rejected += ks.rejected
		for _, rec := range ks.records {
			switch rec.Case {
			case CaseA:
				result.Stats.CaseA++
			case CaseB:
				result.Stats.CaseB++
			}
			result.Records = append(result.Records, rec)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "Found %d case A and %d case B transactions\n", result.Stats.CaseA, result.Stats.CaseB)
	return result, nil
}

// scanKey signs cfg.TxPerKey random messages under priv.
func (s *Scanner) scanKey(ctx context.Context, priv *big.Int, stream io.Reader) (keyScan, error) {
	var ks keyScan
	engine := NewEngine(s.curve, stream)
	n := s.curve.N()

	kp, err := engine.GenerateKeyPair(priv)
	if err != nil {
		return ks, err
	}
	if !s.curve.IsOnCurve(kp.Q) {
		ks.skipped = true
		return ks, nil
	}

	for t := 0; t < s.config.TxPerKey; t++ {
		if t%1024 == 0 && ctx.Err() != nil {
			return ks, ctx.Err()
		}

		msg, err := randFieldElement(stream, n)
		if err != nil {
			return ks, err
		}
		sig, err := engine.Sign(kp.D, []byte(msg.String()))
		if err != nil {
			return ks, err
		}
		if s.config.VerifySignatures && !engine.Verify(kp.Q, sig) {
			ks.rejected++
			continue
		}

		if rec, ok := Classify(sig, kp.D, n); ok {
			ks.records = append(ks.records, rec)
		}
	}
	return ks, nil
}

// UniqueKeys draws count distinct private keys from [start, end).
func UniqueKeys(rng io.Reader, count int, start, end *big.Int) ([]*big.Int, error) {
	size := new(big.Int).Sub(end, start)
	if count < 0 || size.Sign() <= 0 || size.Cmp(big.NewInt(int64(count))) < 0 {
		return nil, fmt.Errorf("%w: cannot draw %d distinct keys from [%s, %s)", ErrInvalidConfig, count, start, end)
	}

	keys := make([]*big.Int, 0, count)

	// Small ranges: partial Fisher-Yates over the materialized range.
	if size.IsInt64() && size.Int64() <= 1<<20 {
		pool := make([]int64, size.Int64())
		for i := range pool {
			pool[i] = int64(i)
		}
		for i := 0; i < count; i++ {
			j, err := randIntn(rng, big.NewInt(int64(len(pool)-i)))
			if err != nil {
				return nil, err
			}
			swap := i + int(j.Int64())
			pool[i], pool[swap] = pool[swap], pool[i]
			keys = append(keys, new(big.Int).Add(start, big.NewInt(pool[i])))
		}
		return keys, nil
	}

	seen := make(map[string]struct{}, count)
	for len(keys) < count {
		off, err := randIntn(rng, size)
		if err != nil {
			return nil, err
		}
		k := off.Add(off, start)
		if _, dup := seen[k.String()]; dup {
			continue
		}
		seen[k.String()] = struct{}{}
		keys = append(keys, k)
	}
	return keys, nil
}
