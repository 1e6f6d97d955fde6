// Package parser reads numeric records from JSON and CSV files.
package parser

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
)

// Record is one input row, keyed by field or column name.
type Record map[string]interface{}

// ReadJSON reads a JSON array of objects.
//
// Expected format:
// [
//
//	{"case": "A", "s": 7584, "z": "9572", "r": "0x102d", ...}
//
// ]
func ReadJSON(r io.Reader) ([]Record, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber() // Preserve large numbers as json.Number instead of float64

	var items []Record
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return items, nil
}

// ReadCSV reads a CSV file with a header row. Cells are kept as strings.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// Read header
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				rec[col] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadFile reads path as JSON or CSV, chosen by format ("json" or "csv").
func ReadFile(path, format string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		return ReadJSON(file)
	case "csv":
		return ReadCSV(file)
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

// String returns the field as a string, if present.
func (r Record) String(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return string(s), true
	default:
		return fmt.Sprintf("%v", s), true
	}
}

// BigInt returns the field parsed with ParseBigInt. ok is false when the
// field is absent.
func (r Record) BigInt(field string) (v *big.Int, ok bool, err error) {
	raw, present := r[field]
	if !present || raw == nil {
		return nil, false, nil
	}
	v, err = ParseBigInt(raw)
	if err != nil {
		return nil, true, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return v, true, nil
}

// ParseBigInt parses a big integer from various formats (0x-prefixed or
// a-f containing hex string, decimal string, JSON number).
func ParseBigInt(val interface{}) (*big.Int, error) {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		base := 10
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			s, base = s[2:], 16
		} else if strings.ContainsAny(s, "abcdefABCDEF") {
			base = 16
		}
		z := new(big.Int)
		if _, ok := z.SetString(s, base); !ok {
			return nil, fmt.Errorf("invalid number format: %s", v)
		}
		return z, nil

	case json.Number:
		z := new(big.Int)
		if _, ok := z.SetString(string(v), 10); !ok {
			return nil, fmt.Errorf("invalid number format: %s", v)
		}
		return z, nil

	case float64:
		s := fmt.Sprintf("%.0f", v)
		z := new(big.Int)
		if _, ok := z.SetString(s, 10); !ok {
			return nil, fmt.Errorf("invalid number format: %v", v)
		}
		return z, nil

	case int64:
		return big.NewInt(v), nil

	case int:
		return big.NewInt(int64(v)), nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", val)
	}
}
