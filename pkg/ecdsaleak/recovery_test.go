package ecdsaleak

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

var testN = big.NewInt(9967)

func requireInt(t *testing.T, want int64, got *big.Int, name string) {
	t.Helper()
	require.NotNil(t, got, name)
	require.Equal(t, want, got.Int64(), name)
}

func TestRecoverCaseA(t *testing.T) {
	// Tx #1, Vulnerability A, m1 = 1
	in := CaseAInput{
		S: big.NewInt(7584),
		Z: big.NewInt(9572),
		R: big.NewInt(4141),
		N: testN,
		A: big.NewInt(1204),
		M: big.NewInt(1),
	}
	res, err := RecoverCaseA(in)
	require.NoError(t, err)

	requireInt(t, 1842, res.ZInv, "z⁻¹")
	requireInt(t, 1204, res.SZK, "s_zk")
	requireInt(t, 6380, res.SRXK, "s_rxk")
	requireInt(t, 4082, res.RK, "rk")
	requireInt(t, 691, res.RKInv, "(rk)⁻¹")
	requireInt(t, 5094, res.K, "k")
	requireInt(t, 902, res.Nonce, "nonce")
	requireInt(t, 3166, res.X, "x")
	require.Nil(t, res.M1)

	require.True(t, CheckSigningEquation(in.S, in.Z, in.R, in.N, res.Nonce, res.X))

	ok, err := VerifyRecoveredKey(TestCurve(), res.X, mustMulBase(t, 3166))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRecoverCaseA_NotInvertible(t *testing.T) {
	in := CaseAInput{S: big.NewInt(7584), Z: big.NewInt(0), R: big.NewInt(4141), N: testN, A: big.NewInt(1204), M: big.NewInt(1)}
	_, err := RecoverCaseA(in)
	require.ErrorIs(t, err, ErrDivisionByZero)

	// s_zk = 0 makes k and therefore r·k zero.
	in = CaseAInput{S: big.NewInt(7584), Z: big.NewInt(9572), R: big.NewInt(4141), N: testN, A: big.NewInt(0), M: big.NewInt(1)}
	_, err = RecoverCaseA(in)
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestRecoverCaseB(t *testing.T) {
	// Tx #6, Case B
	in := CaseBInput{
		S:   big.NewInt(4559),
		SZR: big.NewInt(5917),
		Z:   big.NewInt(142),
		R:   big.NewInt(533),
		A:   big.NewInt(485),
		N:   testN,
	}
	results, err := RecoverCaseB(in, TonelliShanks{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Roots of D = 2559 in ascending order: 679, 9288.
	requireInt(t, 7979, results[0].M1, "m1")
	requireInt(t, 2619, results[0].SZK, "s_zk")
	requireInt(t, 3177, results[0].K, "k")
	requireInt(t, 5642, results[0].X, "x")

	requireInt(t, 4, results[1].M1, "m1")
	requireInt(t, 1940, results[1].SZK, "s_zk")
	requireInt(t, 2619, results[1].SRXK, "s_rxk")
	requireInt(t, 8998, results[1].K, "k")
	requireInt(t, 8937, results[1].X, "x")

	for _, res := range results {
		require.True(t, CheckSigningEquation(in.S, in.Z, in.R, in.N, res.Nonce, res.X))
	}
}

func TestRecoverCaseB_NoResidue(t *testing.T) {
	// D = 2² − 4·1·2 = −4 ≡ 9963, a non-residue mod 9967.
	in := CaseBInput{S: big.NewInt(2), SZR: big.NewInt(0), Z: big.NewInt(1), R: big.NewInt(1), A: big.NewInt(1), N: testN}
	_, err := RecoverCaseB(in, TonelliShanks{})
	require.ErrorIs(t, err, ErrNoResidue)
}

func TestRecoverCaseB_SkipsNonInvertibleRoots(t *testing.T) {
	// a = 0 makes 2a non-invertible for every root.
	in := CaseBInput{S: big.NewInt(4559), SZR: big.NewInt(5917), Z: big.NewInt(142), R: big.NewInt(533), A: big.NewInt(0), N: testN}
	_, err := RecoverCaseB(in, TonelliShanks{})
	require.ErrorIs(t, err, ErrNoCandidate)

	in = CaseBInput{S: big.NewInt(4559), SZR: big.NewInt(5917), Z: big.NewInt(0), R: big.NewInt(533), A: big.NewInt(485), N: testN}
	_, err = RecoverCaseB(in, TonelliShanks{})
	require.ErrorIs(t, err, ErrDivisionByZero)
}

// fixedRoots is a SqrtProvider that always answers with the same roots.
type fixedRoots []int64

func (f fixedRoots) Roots(_, _ *big.Int) []*big.Int {
	out := make([]*big.Int, len(f))
	for i, v := range f {
		out[i] = big.NewInt(v)
	}
	return out
}

func TestRecoverCaseB_CustomSqrtProvider(t *testing.T) {
	in := CaseBInput{S: big.NewInt(4559), SZR: big.NewInt(5917), Z: big.NewInt(142), R: big.NewInt(533), A: big.NewInt(485), N: testN}
	results, err := RecoverCaseB(in, fixedRoots{9288})
	require.NoError(t, err)
	require.Len(t, results, 1)
	requireInt(t, 8937, results[0].X, "x")
}

func mustMulBase(t *testing.T, k int64) Point {
	t.Helper()
	pt, err := TestCurve().ScalarBaseMult(big.NewInt(k))
	require.NoError(t, err)
	return pt
}

func TestRecover_InvalidModulus(t *testing.T) {
	for _, n := range []*big.Int{nil, big.NewInt(0), big.NewInt(-7)} {
		_, err := RecoverCaseA(CaseAInput{S: big.NewInt(3), Z: big.NewInt(1), R: big.NewInt(1), N: n, A: big.NewInt(1), M: big.NewInt(1)})
		require.ErrorIs(t, err, ErrInvalidConfig, "n=%v", n)
	}

	// Even and composite moduli have no square-root structure to rely on.
	for _, n := range []*big.Int{nil, big.NewInt(2), big.NewInt(10), big.NewInt(9), big.NewInt(-7)} {
		_, err := RecoverCaseB(CaseBInput{S: big.NewInt(3), SZR: big.NewInt(5), Z: big.NewInt(1), R: big.NewInt(1), A: big.NewInt(1), N: n}, TonelliShanks{})
		require.ErrorIs(t, err, ErrInvalidConfig, "n=%v", n)
	}
}
