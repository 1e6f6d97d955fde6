package ecdsaleak

import (
	"context"
	"fmt"
)

// CaseOutcome is the recovery output for one RecoveryCase.
type CaseOutcome struct {
	Case    *RecoveryCase
	Results []*RecoveryResult // one for Case A, one per usable root for Case B
	Err     error             // why recovery failed, if it did
}

// Client provides a high-level API for key recovery from input files.
type Client struct {
	parser CaseParser
	sqrt   SqrtProvider
}

// NewClient creates a new client with default settings.
func NewClient() *Client {
	return &Client{
		parser: &JSONParser{},
		sqrt:   TonelliShanks{},
	}
}

// WithParser sets a custom case parser.
func (c *Client) WithParser(parser CaseParser) *Client {
	c.parser = parser
	return c
}

// WithSqrtProvider sets the square root implementation used by Case B.
func (c *Client) WithSqrtProvider(sqrt SqrtProvider) *Client {
	c.sqrt = sqrt
	return c
}

// RecoverFromFile parses source and recovers every case in it. Failures of
// individual cases are reported in their CaseOutcome, not as an error.
func (c *Client) RecoverFromFile(ctx context.Context, source string) ([]*CaseOutcome, error) {
	cases, err := c.parser.ParseCases(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cases: %w", err)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("no cases in %s", source)
	}
	return c.RecoverCases(ctx, cases)
}

// RecoverCases recovers in-memory cases.
func (c *Client) RecoverCases(ctx context.Context, cases []*RecoveryCase) ([]*CaseOutcome, error) {
	outcomes := make([]*CaseOutcome, 0, len(cases))
	for _, rc := range cases {
		select {
		case <-ctx.Done():
			return outcomes, ctx.Err()
		default:
		}
		outcomes = append(outcomes, c.Recover(rc))
	}
	return outcomes, nil
}

// Recover runs the solver matching rc.Case.
func (c *Client) Recover(rc *RecoveryCase) *CaseOutcome {
	out := &CaseOutcome{Case: rc}
	switch rc.Case {
	case CaseA:
		res, err := RecoverCaseA(rc.A)
		if err != nil {
			out.Err = err
			return out
		}
		out.Results = []*RecoveryResult{res}
	case CaseB:
		out.Results, out.Err = RecoverCaseB(rc.B, c.sqrt)
	default:
		out.Err = fmt.Errorf("unknown case %q", rc.Case)
	}
	return out
}
