package ecdsaleak

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/mahdiidarabi/ecdsa-leak/internal/parser"
)

// RecoveryCase is one recovery problem read from an input file.
type RecoveryCase struct {
	Name string
	Case Case
	A    CaseAInput // set when Case == CaseA
	B    CaseBInput // set when Case == CaseB
}

// CaseParser defines the interface for reading recovery cases.
type CaseParser interface {
	// ParseCases parses recovery cases from a source.
	ParseCases(source string) ([]*RecoveryCase, error)
}

// JSONParser parses recovery cases from JSON files.
//
// Expected format:
// [
//
//	{"case": "A", "s": 7584, "z": 9572, "r": 4141, "a": 1204, "m": 1},
//	{"case": "B", "s": "4559", "s_zr": "5917", "z": "142", "r": "533", "a": "485", "n": "0x26ef"}
//
// ]
//
// A missing n defaults to the parser's curve order; a missing m defaults to 1.
type JSONParser struct {
	N *big.Int // default order (nil = test curve order)
}

// ParseCases parses recovery cases from a JSON file.
func (p *JSONParser) ParseCases(jsonFile string) ([]*RecoveryCase, error) {
	records, err := parser.ReadFile(jsonFile, "json")
	if err != nil {
		return nil, err
	}
	return casesFromRecords(records, p.N)
}

// CSVParser parses recovery cases from CSV files with the header
// case,s,s_zr,z,r,a,m,n (columns in any order, s_zr/m/n optional).
type CSVParser struct {
	N *big.Int // default order (nil = test curve order)
}

// ParseCases parses recovery cases from a CSV file.
func (p *CSVParser) ParseCases(csvFile string) ([]*RecoveryCase, error) {
	records, err := parser.ReadFile(csvFile, "csv")
	if err != nil {
		return nil, err
	}
	return casesFromRecords(records, p.N)
}

func casesFromRecords(records []parser.Record, defaultN *big.Int) ([]*RecoveryCase, error) {
	if defaultN == nil {
		defaultN = TestCurveParams().N
	}

	cases := make([]*RecoveryCase, 0, len(records))
	for i, rec := range records {
		rc, err := caseFromRecord(rec, defaultN)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if rc.Name == "" {
			rc.Name = fmt.Sprintf("#%d", i+1)
		}
		cases = append(cases, rc)
	}
	return cases, nil
}

func caseFromRecord(rec parser.Record, defaultN *big.Int) (*RecoveryCase, error) {
	kind, ok := rec.String("case")
	if !ok {
		return nil, fmt.Errorf("missing case field")
	}
	name, _ := rec.String("name")

	get := func(field string, required bool, def *big.Int) (*big.Int, error) {
		v, ok, err := rec.BigInt(field)
		if err != nil {
			return nil, err
		}
		if !ok {
			if required {
				return nil, fmt.Errorf("missing %s field", field)
			}
			return def, nil
		}
		return v, nil
	}

	var vals [4]*big.Int
	for i, field := range []string{"s", "z", "r", "a"} {
		v, err := get(field, true, nil)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	n, err := get("n", false, defaultN)
	if err != nil {
		return nil, err
	}
	if n.Sign() <= 0 {
		return nil, fmt.Errorf("n must be positive")
	}
	s, z, r, a := vals[0], vals[1], vals[2], vals[3]

	switch strings.ToUpper(strings.TrimSpace(kind)) {
	case "A":
		m, err := get("m", false, big.NewInt(1))
		if err != nil {
			return nil, err
		}
		return &RecoveryCase{Name: name, Case: CaseA, A: CaseAInput{S: s, Z: z, R: r, N: n, A: a, M: m}}, nil
	case "B":
		szr, err := get("s_zr", true, nil)
		if err != nil {
			return nil, err
		}
		return &RecoveryCase{Name: name, Case: CaseB, B: CaseBInput{S: s, SZR: szr, Z: z, R: r, N: n, A: a}}, nil
	}
	return nil, fmt.Errorf("unknown case %q", kind)
}
