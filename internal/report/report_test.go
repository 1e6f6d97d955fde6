package report

import (
	"bytes"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/ecdsa-leak/pkg/ecdsaleak"
)

func caseARecord(t *testing.T) *ecdsaleak.LeakRecord {
	t.Helper()
	sig := &ecdsaleak.Signature{KInv: big.NewInt(5094), Z: big.NewInt(9572), R: big.NewInt(4141), S: big.NewInt(7584)}
	rec, ok := ecdsaleak.Classify(sig, big.NewInt(3166), big.NewInt(9967))
	require.True(t, ok)
	return rec
}

func TestLayoutFor(t *testing.T) {
	for _, l := range []Layout{LayoutFor(ecdsaleak.ModeTest), LayoutFor(ecdsaleak.ModeLegacy)} {
		require.Len(t, l.Widths, len(Header))
		sum := 0
		for _, w := range l.Widths {
			sum += w
		}
		require.Equal(t, l.LineLength, sum)
	}
	require.Equal(t, 166, LayoutFor(ecdsaleak.ModeTest).LineLength)
	require.Equal(t, 1126, LayoutFor(ecdsaleak.ModeLegacy).LineLength)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, LayoutFor(ecdsaleak.ModeTest), []*ecdsaleak.LeakRecord{caseARecord(t)}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	require.Equal(t, strings.Repeat("-", 166), lines[0])
	require.Equal(t, lines[0], lines[2])
	require.Equal(t, lines[1], lines[5])
	require.True(t, strings.HasPrefix(lines[1], "case  s           s_zk        "))

	row := lines[3]
	require.Len(t, row, 166)
	require.Equal(t, "A     ", row[:6])
	require.Equal(t, "7584        ", row[6:18])
	require.Equal(t, "1                   4111/1595           ", row[126:])
}

func TestWriteTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, LayoutFor(ecdsaleak.ModeTest), nil))
	require.Zero(t, buf.Len())
}

func TestWriteScan(t *testing.T) {
	var buf bytes.Buffer
	result := &ecdsaleak.ScanResult{
		Records: []*ecdsaleak.LeakRecord{caseARecord(t)},
		Stats:   ecdsaleak.ScanStats{Keys: 2, TxPerKey: 3, Transactions: 6, CaseA: 1},
	}
	require.NoError(t, WriteScan(&buf, ecdsaleak.TestCurve(), result, 1500*time.Millisecond))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "Elliptic curve parameters:\nname = secp256k1\nmode = test\np = 10007\na = 48\nb = 22\ng = (4, 1668)\nn = 9967\n\n"))
	require.Contains(t, out, "Total transaction count:   6\n")
	require.Contains(t, out, "Case A transaction count:  1\n")
	require.Contains(t, out, "Case B transaction count:  0\n")
	require.True(t, strings.HasSuffix(out, "Spent time: 1.500 sec.\n"))
}

func TestWriteSearch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSearch(&buf, &ecdsaleak.SearchResult{Status: ecdsaleak.SearchExhausted}))
	require.Equal(t, "No valid curves found.\n", buf.String())

	buf.Reset()
	res := &ecdsaleak.SearchResult{
		Status: ecdsaleak.SearchFound,
		Curves: []ecdsaleak.FoundCurve{{Params: ecdsaleak.TestCurveParams(), Order: big.NewInt(9967)}},
	}
	require.NoError(t, WriteSearch(&buf, res))
	require.Equal(t, "Curve #1: a = 48, b = 22, G = (4, 1668), #E = 9967\n", buf.String())
}

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)
	require.Equal(t, "transaction_list_20240309070501.txt", FileName(ts))
}
