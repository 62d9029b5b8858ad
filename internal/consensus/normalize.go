package consensus

import (
	"fmt"

	"github.com/kingrea/The-Almonry/internal/allocation"
	"github.com/kingrea/The-Almonry/internal/evaluator"
)

// Normalization thresholds. Each evaluator's raw scores map onto the shared
// proposal shape through these fixed cut lines.
const (
	financialApproveFit   = 0.8
	financialModifyFit    = 0.6
	financialReductionFit = 0.75

	riskApproveCeiling = 0.3
	riskModifyCeiling  = 0.5

	metaApproveConfidence = 0.8
	metaModifyConfidence  = 0.6

	concernThreshold = 0.5
)

// normalizeProposals converts one round's raw results into the three
// proposals, in canonical evaluator order.
func normalizeProposals(req allocation.Request, results evaluator.Results) []Proposal {
	return []Proposal{
		normalizeFinancial(req, results.Financial),
		normalizeRisk(req, results.Risk),
		normalizeMeta(results.Meta),
	}
}

// normalizeFinancial maps a fit score onto a vote. Modify votes with a fit
// score below the reduction line attach per-allocation reductions scaled by
// the fit score; modify votes at or above it attach none.
func normalizeFinancial(req allocation.Request, res evaluator.FinancialResult) Proposal {
	proposal := Proposal{
		Evaluator:  evaluator.FinancialAnalyzer,
		Confidence: res.FitScore,
		Reasoning:  res.Reasoning,
		Metrics: map[string]float64{
			"fit_score":             res.FitScore,
			"preference_alignment":  res.PreferenceAlignment,
			"liquidity_headroom":    res.LiquidityHeadroom,
			"diversification_score": res.DiversificationScore,
		},
	}
	switch {
	case res.FitScore >= financialApproveFit:
		proposal.Vote = VoteApprove
	case res.FitScore >= financialModifyFit:
		proposal.Vote = VoteModify
		if res.FitScore < financialReductionFit {
			for _, alloc := range req.Allocations {
				proposal.Modifications = append(proposal.Modifications, allocation.Modification{
					CauseID:        alloc.CauseID,
					Type:           allocation.AdjustAmount,
					OriginalAmount: alloc.Amount,
					ProposedAmount: alloc.Amount * res.FitScore,
					Reasoning:      fmt.Sprintf("scaled to fit score %.2f", res.FitScore),
				})
			}
		}
	default:
		proposal.Vote = VoteReject
	}
	return proposal
}

// normalizeRisk maps aggregate risk onto a vote. Modify votes attach
// reductions by factor 1 - aggregate*0.5, only where the reduced amount is
// strictly smaller than the original.
func normalizeRisk(req allocation.Request, res evaluator.RiskResult) Proposal {
	proposal := Proposal{
		Evaluator:  evaluator.RiskEngine,
		Confidence: 1 - res.AggregateRisk,
		Reasoning:  res.Reasoning,
		Metrics: map[string]float64{
			"market_risk":      res.MarketRisk,
			"credit_risk":      res.CreditRisk,
			"liquidity_risk":   res.LiquidityRisk,
			"operational_risk": res.OperationalRisk,
			"aggregate_risk":   res.AggregateRisk,
		},
	}
	if res.MarketRisk > concernThreshold {
		proposal.Concerns = append(proposal.Concerns, fmt.Sprintf("market risk %.2f exceeds %.2f", res.MarketRisk, concernThreshold))
	}
	if res.LiquidityRisk > concernThreshold {
		proposal.Concerns = append(proposal.Concerns, fmt.Sprintf("liquidity risk %.2f exceeds %.2f", res.LiquidityRisk, concernThreshold))
	}
	if !res.ConcentrationCompliant {
		proposal.Concerns = append(proposal.Concerns, "allocation breaches the fund's concentration limit")
	}
	switch {
	case res.AggregateRisk <= riskApproveCeiling && res.Approved:
		proposal.Vote = VoteApprove
	case res.AggregateRisk <= riskModifyCeiling:
		proposal.Vote = VoteModify
		factor := 1 - res.AggregateRisk*0.5
		for _, alloc := range req.Allocations {
			reduced := alloc.Amount * factor
			if reduced >= alloc.Amount {
				continue
			}
			proposal.Modifications = append(proposal.Modifications, allocation.Modification{
				CauseID:        alloc.CauseID,
				Type:           allocation.AdjustAmount,
				OriginalAmount: alloc.Amount,
				ProposedAmount: reduced,
				Reasoning:      fmt.Sprintf("reduced by risk factor %.2f", factor),
			})
		}
	default:
		proposal.Vote = VoteReject
	}
	return proposal
}

// normalizeMeta maps meta-cognition confidence onto a vote. The evaluator
// never synthesizes modifications; its uncertainty sources surface as
// concerns instead.
func normalizeMeta(res evaluator.MetaResult) Proposal {
	proposal := Proposal{
		Evaluator:  evaluator.MetaCognition,
		Confidence: res.Confidence,
		Reasoning:  res.Reasoning,
		Metrics: map[string]float64{
			"confidence": res.Confidence,
		},
	}
	switch {
	case res.Confidence >= metaApproveConfidence && !res.HumanOverride:
		proposal.Vote = VoteApprove
	case res.Confidence >= metaModifyConfidence:
		proposal.Vote = VoteModify
		proposal.Concerns = append(proposal.Concerns, res.UncertaintySources...)
		if res.HumanOverride {
			proposal.Concerns = append(proposal.Concerns, "human review recommended")
		}
	default:
		proposal.Vote = VoteReject
		proposal.Concerns = append(proposal.Concerns, res.UncertaintySources...)
	}
	return proposal
}
