package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/kingrea/The-Almonry/internal/allocation"
)

// FitAnalyzer is the built-in financial evaluator. It scores preference
// alignment, liquidity headroom, and diversification, and blends them into a
// single fit score.
type FitAnalyzer struct{}

// NewFitAnalyzer returns the rule-based financial evaluator.
func NewFitAnalyzer() *FitAnalyzer {
	return &FitAnalyzer{}
}

const (
	fitWeightAlignment       = 0.5
	fitWeightLiquidity       = 0.3
	fitWeightDiversification = 0.2
)

// Evaluate scores the request. Excluded causes zero out their alignment
// contribution; requesting beyond available liquidity drives headroom to 0.
func (a *FitAnalyzer) Evaluate(ctx context.Context, req allocation.Request, fund allocation.FundState) (FinancialResult, error) {
	if err := ctx.Err(); err != nil {
		return FinancialResult{}, err
	}
	if err := req.Validate(); err != nil {
		return FinancialResult{}, err
	}
	alignment := a.preferenceAlignment(req)
	headroom := liquidityHeadroom(req, fund)
	diversification := diversificationScore(req)
	fit := fitWeightAlignment*alignment + fitWeightLiquidity*headroom + fitWeightDiversification*diversification
	result := FinancialResult{
		Approved:             fit >= 0.8,
		FitScore:             clamp01(fit),
		PreferenceAlignment:  alignment,
		LiquidityHeadroom:    headroom,
		DiversificationScore: diversification,
		Reasoning: fmt.Sprintf(
			"fit %.2f (alignment %.2f, liquidity headroom %.2f, diversification %.2f) for %s",
			fit, alignment, headroom, diversification, req.RequestID,
		),
	}
	return result, nil
}

func (a *FitAnalyzer) preferenceAlignment(req allocation.Request) float64 {
	if len(req.Allocations) == 0 {
		return 0
	}
	preferred := stringSet(req.Preferences.PreferredCauses)
	excluded := stringSet(req.Preferences.ExcludedCauses)
	score := 0.0
	for _, alloc := range req.Allocations {
		key := strings.ToLower(alloc.CauseID)
		switch {
		case contains(excluded, key):
			// excluded causes contribute nothing
		case len(preferred) == 0:
			score += 0.7
		case contains(preferred, key):
			score += 1.0
		default:
			score += 0.4
		}
	}
	return clamp01(score / float64(len(req.Allocations)))
}

func liquidityHeadroom(req allocation.Request, fund allocation.FundState) float64 {
	if fund.AvailableLiquidity <= 0 {
		return 0
	}
	return clamp01(1 - req.AllocatedTotal()/fund.AvailableLiquidity)
}

func diversificationScore(req allocation.Request) float64 {
	total := req.AllocatedTotal()
	if total <= 0 {
		return 0
	}
	largest := 0.0
	for _, alloc := range req.Allocations {
		if share := alloc.Amount / total; share > largest {
			largest = share
		}
	}
	return clamp01(1 - largest + 1/float64(len(req.Allocations)))
}

func stringSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return out
}

func contains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
