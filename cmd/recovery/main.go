package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"

	"github.com/mahdiidarabi/ecdsa-leak/internal/parser"
	"github.com/mahdiidarabi/ecdsa-leak/pkg/ecdsaleak"
)

func main() {
	var (
		inputFile = flag.String("input", "", "Path to recovery cases file (JSON or CSV)")
		format    = flag.String("format", "json", "Input file format (json or csv)")
		caseKind  = flag.String("case", "", "Recover a single case given on the command line (A or B)")
		order     = flag.String("n", "", "Subgroup order n (default: test curve order)")
		sValue    = flag.String("s", "", "Signature value s")
		zValue    = flag.String("z", "", "Message scalar z")
		rValue    = flag.String("r", "", "Signature value r")
		aValue    = flag.String("a", "", "Leaked factor a")
		mValue    = flag.String("m", "1", "Multiplier m (case A)")
		szrValue  = flag.String("s-zr", "", "z·r mod n (case B)")
		publicKey = flag.String("public-key", "", "Public key as x,y for verification (test curve only)")
	)
	flag.Parse()

	n := ecdsaleak.TestCurveParams().N
	if *order != "" {
		n = mustBigInt("n", *order)
	}

	client := ecdsaleak.NewClient()
	ctx := context.Background()

	var outcomes []*ecdsaleak.CaseOutcome
	switch {
	case *inputFile != "":
		var p ecdsaleak.CaseParser = &ecdsaleak.JSONParser{N: n}
		if *format == "csv" {
			p = &ecdsaleak.CSVParser{N: n}
		}
		fmt.Printf("Loading recovery cases from %s...\n", *inputFile)
		var err error
		outcomes, err = client.WithParser(p).RecoverFromFile(ctx, *inputFile)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

	case *caseKind != "":
		rc := &ecdsaleak.RecoveryCase{Name: "command line"}
		s, z, r, a := mustBigInt("s", *sValue), mustBigInt("z", *zValue), mustBigInt("r", *rValue), mustBigInt("a", *aValue)
		switch strings.ToUpper(*caseKind) {
		case "A":
			rc.Case = ecdsaleak.CaseA
			rc.A = ecdsaleak.CaseAInput{S: s, Z: z, R: r, N: n, A: a, M: mustBigInt("m", *mValue)}
		case "B":
			rc.Case = ecdsaleak.CaseB
			rc.B = ecdsaleak.CaseBInput{S: s, SZR: mustBigInt("s-zr", *szrValue), Z: z, R: r, N: n, A: a}
		default:
			log.Fatalf("Error: unknown case %q (want A or B)", *caseKind)
		}
		var err error
		outcomes, err = client.RecoverCases(ctx, []*ecdsaleak.RecoveryCase{rc})
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

	default:
		fmt.Fprintf(os.Stderr, "Error: Must specify --input or --case\n")
		flag.Usage()
		os.Exit(1)
	}

	pub, hasPub := parsePublicKey(*publicKey)
	for _, out := range outcomes {
		printOutcome(out, pub, hasPub)
	}
}

func printOutcome(out *ecdsaleak.CaseOutcome, pub ecdsaleak.Point, hasPub bool) {
	fmt.Printf("\n[%s] case %s\n", out.Case.Name, out.Case.Case)
	if out.Err != nil {
		fmt.Printf("    Recovery failed: %v\n", out.Err)
		return
	}
	for i, res := range out.Results {
		if out.Case.Case == ecdsaleak.CaseB {
			fmt.Printf("  Root #%d (m1 = %s):\n", i+1, res.M1)
		}
		fmt.Printf("    z⁻¹:         %s\n", res.ZInv)
		fmt.Printf("    s_zk:        %s\n", res.SZK)
		fmt.Printf("    s_rxk:       %s\n", res.SRXK)
		fmt.Printf("    k:           %s\n", res.K)
		fmt.Printf("    nonce:       %s\n", res.Nonce)
		fmt.Printf("    Private key: %s\n", res.X)

		in := out.Case.A
		s, z, r, n := in.S, in.Z, in.R, in.N
		if out.Case.Case == ecdsaleak.CaseB {
			s, z, r, n = out.Case.B.S, out.Case.B.Z, out.Case.B.R, out.Case.B.N
		}
		if ecdsaleak.CheckSigningEquation(s, z, r, n, res.Nonce, res.X) {
			fmt.Println("    ✓ Signing equation holds")
		} else {
			fmt.Println("    ✗ Signing equation does not hold")
		}

		if hasPub {
			ok, err := ecdsaleak.VerifyRecoveredKey(ecdsaleak.TestCurve(), res.X, pub)
			switch {
			case err != nil:
				fmt.Printf("    Verification error: %v\n", err)
			case ok:
				fmt.Println("    ✓ Verified against public key!")
			default:
				fmt.Println("    ✗ Does not match public key")
			}
		}
	}
}

func mustBigInt(name, value string) *big.Int {
	if value == "" {
		log.Fatalf("Error: --%s is required", name)
	}
	v, err := parser.ParseBigInt(value)
	if err != nil {
		log.Fatalf("Error parsing --%s: %v", name, err)
	}
	return v
}

func parsePublicKey(s string) (ecdsaleak.Point, bool) {
	if s == "" {
		return ecdsaleak.Point{}, false
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		log.Fatalf("Error: invalid public key format: %s (want x,y)", s)
	}
	return ecdsaleak.Point{X: mustBigInt("public-key", parts[0]), Y: mustBigInt("public-key", parts[1])}, true
}
