package ecdsaleak

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func smallSearch(n int64) SearchConfig {
	cfg := DefaultSearchConfig().WithCoefficientRange(0, 10, 0, 10)
	cfg.P = big.NewInt(97)
	cfg.N = big.NewInt(n)
	return cfg
}

type wantCurve struct {
	a, b, gx, gy int64
}

func requireCurves(t *testing.T, want []wantCurve, got []FoundCurve) {
	t.Helper()
	require.Len(t, got, len(want))
	for i, w := range want {
		p := got[i].Params
		require.Equal(t, w.a, p.A.Int64(), "curve %d a", i)
		require.Equal(t, w.b, p.B.Int64(), "curve %d b", i)
		require.Equal(t, w.gx, p.Gx.Int64(), "curve %d Gx", i)
		require.Equal(t, w.gy, p.Gy.Int64(), "curve %d Gy", i)
	}
}

func TestCurveSearch(t *testing.T) {
	tests := []struct {
		name       string
		n          int64
		maxResults int
		gx         int64
		want       []wantCurve
	}{
		{"order 103", 103, 10, 1, []wantCurve{{3, 2, 2, 4}, {8, 2, 3, 21}, {9, 1, 2, 30}}},
		{"stops at max results", 103, 2, 1, []wantCurve{{3, 2, 2, 4}, {8, 2, 3, 21}}},
		{"generator threshold", 103, 10, 2, []wantCurve{{8, 2, 3, 21}}},
		{"order 79", 79, 10, 1, []wantCurve{{0, 5, 3, 41}, {0, 7, 5, 36}, {7, 6, 3, 32}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallSearch(tt.n).WithGeneratorThresholds(tt.gx, 1)
			cfg.MaxResults = tt.maxResults
			res, err := NewCurveSearch(cfg).Search(context.Background())
			require.NoError(t, err)
			require.Equal(t, SearchFound, res.Status)
			requireCurves(t, tt.want, res.Curves)

			for _, fc := range res.Curves {
				c, err := NewCurve(fc.Params)
				require.NoError(t, err, "accepted parameters form a valid curve")
				nG, err := c.multiply(fc.Params.N, c.G())
				require.NoError(t, err)
				require.True(t, nG.IsInfinity())
				require.Zero(t, new(big.Int).Mod(fc.Order, fc.Params.N).Sign())
			}
		})
	}
}

func TestCurveSearch_WorkerIndependent(t *testing.T) {
	var seq *SearchResult
	for _, workers := range []int{1, 2, 8} {
		cfg := smallSearch(79)
		cfg.NumWorkers = workers
		res, err := NewCurveSearch(cfg).Search(context.Background())
		require.NoError(t, err)
		if seq == nil {
			seq = res
			continue
		}
		require.Len(t, res.Curves, len(seq.Curves))
		for i := range seq.Curves {
			require.Equal(t, seq.Curves[i].Params.Name, res.Curves[i].Params.Name)
		}
	}
}

func TestCurveSearch_Exhausted(t *testing.T) {
	var out bytes.Buffer
	cfg := smallSearch(107)
	cfg.Out = &out
	res, err := NewCurveSearch(cfg).Search(context.Background())
	require.NoError(t, err)
	require.Equal(t, SearchExhausted, res.Status)
	require.Empty(t, res.Curves)
	require.Contains(t, out.String(), "No valid curves found.")
}

func TestCurveSearch_FindsTestCurve(t *testing.T) {
	var out bytes.Buffer
	cfg := DefaultSearchConfig().WithCoefficientRange(48, 49, 22, 23)
	cfg.Out = &out
	res, err := NewCurveSearch(cfg).Search(context.Background())
	require.NoError(t, err)
	requireCurves(t, []wantCurve{{48, 22, 4, 1668}}, res.Curves)
	require.Equal(t, int64(9967), res.Curves[0].Order.Int64())
	require.Contains(t, out.String(), "Found working curve #1:")
	require.Contains(t, out.String(), "G = (4, 1668)")
}

func TestCurveSearch_InvalidConfig(t *testing.T) {
	cfg := smallSearch(103)
	cfg.P = big.NewInt(91)
	_, err := NewCurveSearch(cfg).Search(context.Background())
	require.ErrorIs(t, err, ErrInvalidConfig)

	cfg = smallSearch(103)
	cfg.MaxResults = 0
	_, err = NewCurveSearch(cfg).Search(context.Background())
	require.ErrorIs(t, err, ErrInvalidConfig)

	cfg = smallSearch(103).WithCoefficientRange(5, 1, 0, 10)
	_, err = NewCurveSearch(cfg).Search(context.Background())
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCurveOrder(t *testing.T) {
	c := smallCurve(t)
	require.Equal(t, int64(103), CurveOrder(c, TonelliShanks{}).Int64())

	g, ok := FindPoint(c, TonelliShanks{})
	require.True(t, ok)
	require.True(t, g.Equal(NewPoint(2, 4)))
}
