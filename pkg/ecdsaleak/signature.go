package ecdsaleak

import (
	"math/big"
)

// Signature is an ECDSA signature together with the values that produced it.
type Signature struct {
	KInv *big.Int // k⁻¹ mod n for the ephemeral nonce k
	Z    *big.Int // message scalar
	R    *big.Int // x(k·G) mod n
	S    *big.Int // (z + r·d)·k⁻¹ mod n
}

// KeyPair is a private scalar and its public point.
type KeyPair struct {
	D *big.Int // private key in [1, n-1]
	Q Point    // D·G
}

// Case identifies which recovery equation a leak matches.
type Case byte

const (
	// CaseA is the linear case, m1 = 1.
	CaseA Case = 'A'
	// CaseB is the quadratic case, m1 = m2 > 1.
	CaseB Case = 'B'
)

func (c Case) String() string { return string(c) }

// LeakRecord is a signature that matched the leak pattern, along with every
// quantity the classifier derived from it.
type LeakRecord struct {
	Case Case
	S    *big.Int
	SZK  *big.Int // z·k mod n
	SRXK *big.Int // r·x·k mod n
	SZR  *big.Int // z·r mod n
	Z    *big.Int
	R    *big.Int
	X    *big.Int // private key
	K    *big.Int // the signature's nonce inverse
	Q    *big.Int // s_zr − s
	A    *big.Int // s mod q, the leaked factor
	M1   *big.Rat // s_zk / a
	M2   *big.Rat // (s + s_zr) / s_rxk
}

// RecoveryResult holds a recovered key and the intermediate values of the
// derivation.
type RecoveryResult struct {
	K     *big.Int // recovered nonce inverse, s_zk·z⁻¹ mod n
	Nonce *big.Int // K⁻¹ mod n, satisfies s·Nonce − z ≡ r·X (mod n)
	X     *big.Int // recovered private key
	ZInv  *big.Int // z⁻¹ mod n
	SZK   *big.Int
	SRXK  *big.Int
	RK    *big.Int // r·K mod n
	RKInv *big.Int
	M1    *big.Int // solved m1, Case B only
}
