// Package report renders scan and curve-search results as plain text.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mahdiidarabi/ecdsa-leak/pkg/ecdsaleak"
)

// Header lists the leak table columns.
var Header = []string{"case", "s", "s_zk", "s_rxk", "s_zr", "z", "r", "x", "k", "q", "a", "m1", "m2"}

// Layout is the column layout of the leak table.
type Layout struct {
	Widths     []int
	LineLength int
}

var (
	testLayout   = Layout{Widths: []int{6, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 20, 20}, LineLength: 166}
	legacyLayout = Layout{Widths: []int{6, 80, 80, 80, 80, 80, 80, 80, 80, 80, 80, 160, 160}, LineLength: 1126}
)

// LayoutFor returns the layout used for curves in mode m. Legacy values are
// up to 78 decimal digits.
func LayoutFor(m ecdsaleak.Mode) Layout {
	if m == ecdsaleak.ModeLegacy {
		return legacyLayout
	}
	return testLayout
}

// FileName returns the report file name for a scan finished at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("transaction_list_%s.txt", t.Format("20060102150405"))
}

// Row returns the table cells of rec in Header order.
func Row(rec *ecdsaleak.LeakRecord) []string {
	return []string{
		rec.Case.String(),
		rec.S.String(), rec.SZK.String(), rec.SRXK.String(), rec.SZR.String(),
		rec.Z.String(), rec.R.String(), rec.X.String(), rec.K.String(),
		rec.Q.String(), rec.A.String(),
		rec.M1.RatString(), rec.M2.RatString(),
	}
}

// WriteCurve writes the curve parameter block.
func WriteCurve(w io.Writer, params ecdsaleak.CurveParams) error {
	_, err := fmt.Fprintf(w, "Elliptic curve parameters:\nname = %s\nmode = %s\np = %s\na = %s\nb = %s\ng = (%s, %s)\nn = %s\n\n",
		params.Name, params.Mode, params.P, params.A, params.B, params.Gx, params.Gy, params.N)
	return err
}

// WriteTable writes the leak table, framed by a header above and below. An
// empty record list writes nothing.
func WriteTable(w io.Writer, layout Layout, records []*ecdsaleak.LeakRecord) error {
	if len(records) == 0 {
		return nil
	}

	line := strings.Repeat("-", layout.LineLength)
	var b strings.Builder
	header := func() {
		b.WriteString(line + "\n")
		writeRow(&b, layout.Widths, Header)
		b.WriteString(line + "\n")
	}

	header()
	for _, rec := range records {
		writeRow(&b, layout.Widths, Row(rec))
	}
	header()

	_, err := io.WriteString(w, b.String())
	return err
}

// writeRow left-aligns each cell in its column. Cells wider than the column
// are not truncated.
func writeRow(b *strings.Builder, widths []int, cells []string) {
	for i, cell := range cells {
		fmt.Fprintf(b, "%-*s", widths[i], cell)
	}
	b.WriteString("\n")
}

// WriteStats writes the statistics block.
func WriteStats(w io.Writer, stats ecdsaleak.ScanStats, elapsed time.Duration) error {
	_, err := fmt.Fprintf(w, "\nStatistics:\n\n"+
		"Total private key count:   %d\n"+
		"Transaction limit per key: %d\n"+
		"Total transaction count:   %d\n"+
		"Case A transaction count:  %d\n"+
		"Case B transaction count:  %d\n"+
		"Spent time: %.3f sec.\n",
		stats.Keys, stats.TxPerKey, stats.Transactions, stats.CaseA, stats.CaseB, elapsed.Seconds())
	return err
}

// WriteScan writes the complete scan report for a scan over curve.
func WriteScan(w io.Writer, curve *ecdsaleak.Curve, result *ecdsaleak.ScanResult, elapsed time.Duration) error {
	if err := WriteCurve(w, curve.Params()); err != nil {
		return err
	}
	if err := WriteTable(w, LayoutFor(curve.Mode()), result.Records); err != nil {
		return err
	}
	return WriteStats(w, result.Stats, elapsed)
}

// WriteSearch lists the curves accepted by a curve search.
func WriteSearch(w io.Writer, result *ecdsaleak.SearchResult) error {
	if result.Status == ecdsaleak.SearchExhausted {
		_, err := fmt.Fprintln(w, "No valid curves found.")
		return err
	}
	for i, fc := range result.Curves {
		p := fc.Params
		if _, err := fmt.Fprintf(w, "Curve #%d: a = %s, b = %s, G = (%s, %s), #E = %s\n",
			i+1, p.A, p.B, p.Gx, p.Gy, fc.Order); err != nil {
			return err
		}
	}
	return nil
}
