package evaluator

import (
	"context"
	"fmt"
	"math"

	"github.com/kingrea/The-Almonry/internal/allocation"
)

// MetaAnalyzer is the built-in meta-cognition evaluator. It judges the
// internal coherence of the request rather than its merits, and flags human
// override when the data is too inconsistent to trust an automated decision.
type MetaAnalyzer struct{}

// NewMetaAnalyzer returns the rule-based meta-cognition evaluator.
func NewMetaAnalyzer() *MetaAnalyzer {
	return &MetaAnalyzer{}
}

// Evaluate checks arithmetic and narrative coherence of the request.
func (a *MetaAnalyzer) Evaluate(ctx context.Context, req allocation.Request, fund allocation.FundState) (MetaResult, error) {
	if err := ctx.Err(); err != nil {
		return MetaResult{}, err
	}
	confidence := 1.0
	var sources []string
	chain := []string{fmt.Sprintf("inspecting request %s with %d allocations", req.RequestID, len(req.Allocations))}

	allocated := req.AllocatedTotal()
	if req.TotalAmount > 0 {
		drift := math.Abs(allocated-req.TotalAmount) / req.TotalAmount
		chain = append(chain, fmt.Sprintf("allocated total drifts %.1f%% from requested amount", drift*100))
		if drift > 0.05 {
			confidence -= 0.25
			sources = append(sources, "allocated amounts do not reconcile with the requested total")
		}
	}

	percentSum := 0.0
	for _, alloc := range req.Allocations {
		percentSum += alloc.Percentage
	}
	if percentSum > 0 && math.Abs(percentSum-100) > 1 {
		confidence -= 0.15
		sources = append(sources, fmt.Sprintf("allocation percentages sum to %.1f", percentSum))
	}

	missingRationale := 0
	for _, alloc := range req.Allocations {
		if alloc.Rationale == "" {
			missingRationale++
		}
	}
	if missingRationale > 0 {
		confidence -= 0.1 * float64(missingRationale) / float64(len(req.Allocations))
		sources = append(sources, fmt.Sprintf("%d of %d allocations lack a rationale", missingRationale, len(req.Allocations)))
	}

	if fund.TotalAssets > 0 && allocated > fund.TotalAssets {
		confidence -= 0.4
		sources = append(sources, "request exceeds total fund assets")
	}

	confidence = clamp01(confidence)
	override := confidence < 0.5
	if override {
		chain = append(chain, "coherence too low for an automated decision")
	}
	return MetaResult{
		Approved:           confidence >= 0.8 && !override,
		Confidence:         confidence,
		UncertaintySources: sources,
		ReasoningChain:     chain,
		HumanOverride:      override,
		Reasoning:          fmt.Sprintf("coherence confidence %.2f with %d uncertainty sources", confidence, len(sources)),
	}, nil
}
