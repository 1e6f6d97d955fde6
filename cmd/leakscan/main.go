package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"math/big"
	mrand "math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/mahdiidarabi/ecdsa-leak/internal/parser"
	"github.com/mahdiidarabi/ecdsa-leak/internal/report"
	"github.com/mahdiidarabi/ecdsa-leak/pkg/ecdsaleak"
)

func main() {
	var (
		mode       = flag.String("mode", "test", "Curve mode (test or legacy)")
		seed       = flag.Uint64("seed", 0, "Seed for a reproducible scan (0 = crypto/rand)")
		keyCount   = flag.Int("keys", 0, "Number of private keys (0 = default for the curve)")
		txPerKey   = flag.Int("tx", 0, "Transactions per key (0 = default)")
		rangeStart = flag.String("range-start", "", "First private key of the range (default: 1)")
		rangeEnd   = flag.String("range-end", "", "End of the private key range, exclusive (default: n-1)")
		numWorkers = flag.Int("workers", 0, "Number of parallel workers (0 = auto-detect based on CPU cores)")
		verify     = flag.Bool("verify", false, "Verify every signature before classifying it")
		outDir     = flag.String("out", ".", "Directory for the transaction list")
		skipDemo   = flag.Bool("skip-demo", false, "Skip the sign/verify demonstration")
	)
	flag.Parse()

	m, err := ecdsaleak.ParseMode(*mode)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	curve := ecdsaleak.TestCurve()
	if m == ecdsaleak.ModeLegacy {
		curve = ecdsaleak.LegacyCurve()
	}

	var rng io.Reader = rand.Reader
	if *seed != 0 {
		var s [32]byte
		binary.LittleEndian.PutUint64(s[:], *seed)
		rng = mrand.NewChaCha8(s)
	}

	if !*skipDemo {
		if err := demo(curve, rng); err != nil {
			log.Fatalf("Error: %v", err)
		}
	}

	cfg := ecdsaleak.DefaultScanConfig(curve)
	if *rangeStart != "" || *rangeEnd != "" {
		start, end := cfg.KeyRangeStart, cfg.KeyRangeEnd
		if *rangeStart != "" {
			start = mustBigInt("range-start", *rangeStart)
		}
		if *rangeEnd != "" {
			end = mustBigInt("range-end", *rangeEnd)
		}
		cfg = cfg.WithKeys(cfg.KeyCount, start, end)
	}
	if *keyCount > 0 {
		cfg.KeyCount = *keyCount
	}
	if *txPerKey > 0 {
		cfg = cfg.WithTxPerKey(*txPerKey)
	}
	cfg.NumWorkers = *numWorkers
	cfg.VerifySignatures = *verify
	cfg.Out = os.Stdout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, err := ecdsaleak.NewScanner(curve, rng).WithConfig(cfg).Scan(ctx)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}
	elapsed := time.Since(start)

	path := filepath.Join(*outDir, report.FileName(time.Now()))
	file, err := os.Create(path)
	if err != nil {
		log.Fatalf("Failed to create report: %v", err)
	}
	defer file.Close()

	if err := report.WriteScan(file, curve, result, elapsed); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	fmt.Printf("Transaction list written to %s\n", path)
}

// demo walks through key generation, signing and verification once.
func demo(curve *ecdsaleak.Curve, rng io.Reader) error {
	engine := ecdsaleak.NewEngine(curve, rng)

	start := time.Now()
	kp, err := engine.GenerateKeyPair(nil)
	if err != nil {
		return err
	}
	fmt.Println("Private key:")
	fmt.Printf("  d: %s, (%s)\n", kp.D, kp.D.Text(2))
	fmt.Println("Public key:")
	fmt.Printf("  x: %s\n", kp.Q.X)
	fmt.Printf("  y: %s\n", kp.Q.Y)
	spent(start)

	start = time.Now()
	fmt.Printf("Is the point on curve?: %v\n", curve.IsOnCurve(kp.Q))
	spent(start)

	start = time.Now()
	sig, err := engine.Sign(kp.D, []byte("Hello, secp256k1!"))
	if err != nil {
		return err
	}
	der, err := sig.MarshalASN1()
	if err != nil {
		return err
	}
	fmt.Println("Signature parameters:")
	fmt.Printf("  c: %s\n", sig.KInv.Text(16))
	fmt.Printf("  z: %s\n", sig.Z.Text(16))
	fmt.Printf("  r: %s\n", sig.R.Text(16))
	fmt.Printf("  s: %s\n", sig.S.Text(16))
	fmt.Printf("  DER: %s\n", hex.EncodeToString(der))
	spent(start)

	start = time.Now()
	fmt.Printf("Signature validation: %v\n", engine.Verify(kp.Q, sig))
	spent(start)
	return nil
}

func spent(start time.Time) {
	fmt.Printf("Spent time: %.3f sec.\n\n", time.Since(start).Seconds())
}

func mustBigInt(name, value string) *big.Int {
	v, err := parser.ParseBigInt(value)
	if err != nil {
		log.Fatalf("Error parsing --%s: %v", name, err)
	}
	return v
}
