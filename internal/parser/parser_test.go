package parser

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBigInt(t *testing.T) {
	for _, tc := range []struct {
		in   interface{}
		want string
	}{
		{"7584", "7584"},
		{"0x1da0", "7584"},
		{"1DA0", "7584"},
		{" 42 ", "42"},
		{json.Number("9967"), "9967"},
		{float64(4141), "4141"},
		{int64(-3), "-3"},
		{12, "12"},
		{"115792089237316195423570985008687907852837564279074904382605163141518161494337", "115792089237316195423570985008687907852837564279074904382605163141518161494337"},
	} {
		got, err := ParseBigInt(tc.in)
		require.NoError(t, err, "%v", tc.in)
		want, _ := new(big.Int).SetString(tc.want, 10)
		require.Zero(t, want.Cmp(got), "%v: got %s", tc.in, got)
	}

	_, err := ParseBigInt("12z")
	require.Error(t, err)
	_, err = ParseBigInt(true)
	require.Error(t, err)
}

func TestReadJSON(t *testing.T) {
	recs, err := ReadJSON(strings.NewReader(`[{"case": "A", "s": 7584, "z": "0x2564"}, {"case": "B"}]`))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	c, ok := recs[0].String("case")
	require.True(t, ok)
	require.Equal(t, "A", c)

	s, ok, err := recs[0].BigInt("s")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(7584), s.Int64())

	z, _, err := recs[0].BigInt("z")
	require.NoError(t, err)
	require.Equal(t, int64(9572), z.Int64())

	_, ok, err = recs[1].BigInt("s")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = ReadJSON(strings.NewReader(`{"not": "an array"}`))
	require.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	recs, err := ReadCSV(strings.NewReader("case, s, z\nA, 7584, 9572\nB, 4559,\n"))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	s, ok, err := recs[1].BigInt("s")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(4559), s.Int64())

	_, ok, _ = recs[1].BigInt("z")
	require.False(t, ok, "empty cells are treated as absent")
}

func TestReadFileUnsupportedFormat(t *testing.T) {
	_, err := ReadFile("parser.go", "yaml")
	require.Error(t, err)
}
