// Package ecdsaleak is a toolkit for studying algebraic structure in ECDSA
// signatures over a tiny, fully enumerable curve.
//
// It provides affine short-Weierstrass arithmetic, a brute-force search for
// curve parameters, ECDSA signing and verification with an injectable
// randomness source, a scanner that flags signatures whose components match a
// leak pattern, and two closed-form private key recoveries for those patterns.
//
// Nothing here is constant time. Use it on toy curves only.
//
// # Quick Start
//
//	curve := ecdsaleak.TestCurve()
//	engine := ecdsaleak.NewEngine(curve, rand.NewChaCha8(seed))
//
//	kp, _ := engine.GenerateKeyPair(nil)
//	sig, _ := engine.Sign(kp.D, []byte("Hello, secp256k1!"))
//	fmt.Println(engine.Verify(kp.Q, sig))
//
// # Key Recovery
//
// Case A applies when z·k⁻¹ ≡ a·m (mod n) for a known leaked factor a:
//
//	res, err := ecdsaleak.RecoverCaseA(ecdsaleak.CaseAInput{
//	    S: big.NewInt(7584), Z: big.NewInt(9572), R: big.NewInt(4141),
//	    N: big.NewInt(9967), A: big.NewInt(1204), M: big.NewInt(1),
//	})
//
// Case B solves a quadratic in m1 and returns one candidate per square root
// of its discriminant:
//
//	results, err := ecdsaleak.RecoverCaseB(ecdsaleak.CaseBInput{
//	    S: big.NewInt(4559), SZR: big.NewInt(5917), Z: big.NewInt(142),
//	    R: big.NewInt(533), A: big.NewInt(485), N: big.NewInt(9967),
//	}, ecdsaleak.TonelliShanks{})
//
// # Scanning
//
//	cfg := ecdsaleak.DefaultScanConfig(curve).WithTxPerKey(1000)
//	result, err := ecdsaleak.NewScanner(curve, rng).WithConfig(cfg).Scan(ctx)
package ecdsaleak
