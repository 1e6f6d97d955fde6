package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/mahdiidarabi/ecdsa-leak/internal/report"
	"github.com/mahdiidarabi/ecdsa-leak/pkg/ecdsaleak"
)

func main() {
	defaults := ecdsaleak.DefaultSearchConfig()
	var (
		p          = flag.Int64("p", defaults.P.Int64(), "Field characteristic (prime)")
		n          = flag.Int64("n", defaults.N.Int64(), "Required subgroup order")
		aRange     = flag.String("a-range", "0,50", "Range for a values (format: min,max, max exclusive)")
		bRange     = flag.String("b-range", "1,50", "Range for b values (format: min,max, max exclusive)")
		maxResults = flag.Int("max-results", defaults.MaxResults, "Stop after this many curves")
		gxMore     = flag.Int64("gx-more", defaults.GxMore, "Reject generators with x not above this value")
		gyMore     = flag.Int64("gy-more", defaults.GyMore, "Reject generators with y not above this value")
		numWorkers = flag.Int("workers", 0, "Number of parallel workers (0 = auto-detect based on CPU cores)")
	)
	flag.Parse()

	aMin, aMax, err := parseRange(*aRange)
	if err != nil {
		log.Fatalf("Error parsing a-range: %v", err)
	}
	bMin, bMax, err := parseRange(*bRange)
	if err != nil {
		log.Fatalf("Error parsing b-range: %v", err)
	}

	cfg := defaults.
		WithCoefficientRange(aMin, aMax, bMin, bMax).
		WithGeneratorThresholds(*gxMore, *gyMore)
	cfg.P = big.NewInt(*p)
	cfg.N = big.NewInt(*n)
	cfg.MaxResults = *maxResults
	cfg.NumWorkers = *numWorkers
	cfg.Out = os.Stdout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := ecdsaleak.NewCurveSearch(cfg).Search(ctx)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if result.Status == ecdsaleak.SearchFound {
		if err := report.WriteSearch(os.Stdout, result); err != nil {
			log.Fatalf("Error: %v", err)
		}
	}
}

func parseRange(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid range format: %s", s)
	}

	min, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}

	max, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}

	return min, max, nil
}
