package evaluator

import (
	"context"
	"fmt"

	"github.com/kingrea/The-Almonry/internal/allocation"
)

// RiskAnalyzer is the built-in risk evaluator. It derives market, credit,
// liquidity, and operational sub-scores from the fund snapshot and checks the
// fund's concentration and liquidity-reserve limits.
type RiskAnalyzer struct{}

// NewRiskAnalyzer returns the rule-based risk evaluator.
func NewRiskAnalyzer() *RiskAnalyzer {
	return &RiskAnalyzer{}
}

const (
	riskWeightMarket      = 0.35
	riskWeightCredit      = 0.20
	riskWeightLiquidity   = 0.30
	riskWeightOperational = 0.15

	approveRiskCeiling = 0.3
)

// Evaluate scores the request against the fund's risk parameters.
func (a *RiskAnalyzer) Evaluate(ctx context.Context, req allocation.Request, fund allocation.FundState) (RiskResult, error) {
	if err := ctx.Err(); err != nil {
		return RiskResult{}, err
	}
	if fund.TotalAssets <= 0 {
		return RiskResult{}, fmt.Errorf("evaluator: fund has no assets to allocate against")
	}
	maxShare := a.worstConcentration(req, fund)
	market := clamp01(maxShare / maxFloat(fund.RiskParameters.VolatilityCeiling, 0.1))
	credit := a.creditRisk(req, fund)
	liquidity := 1.0
	if fund.AvailableLiquidity > 0 {
		liquidity = clamp01(req.AllocatedTotal() / fund.AvailableLiquidity)
	}
	operational := clamp01(0.1 + 0.04*float64(len(req.Allocations)))
	aggregate := clamp01(riskWeightMarket*market +
		riskWeightCredit*credit +
		riskWeightLiquidity*liquidity +
		riskWeightOperational*operational)

	concentrationOK := maxShare <= fund.RiskParameters.MaxSingleCauseShare
	liquidityOK := (fund.AvailableLiquidity-req.AllocatedTotal())/fund.TotalAssets >= fund.RiskParameters.MinLiquidityReserve

	return RiskResult{
		Approved:               aggregate <= approveRiskCeiling && concentrationOK && liquidityOK,
		MarketRisk:             market,
		CreditRisk:             credit,
		LiquidityRisk:          liquidity,
		OperationalRisk:        operational,
		AggregateRisk:          aggregate,
		ConcentrationCompliant: concentrationOK,
		LiquidityCompliant:     liquidityOK,
		Reasoning: fmt.Sprintf(
			"aggregate risk %.2f (market %.2f, credit %.2f, liquidity %.2f, operational %.2f), worst concentration %.2f",
			aggregate, market, credit, liquidity, operational, maxShare,
		),
	}, nil
}

// worstConcentration returns the highest post-allocation share any single
// cause would hold of total assets.
func (a *RiskAnalyzer) worstConcentration(req allocation.Request, fund allocation.FundState) float64 {
	worst := 0.0
	for _, alloc := range req.Allocations {
		held := fund.CurrentAllocations[alloc.CauseID]
		share := (held + alloc.Amount) / fund.TotalAssets
		if share > worst {
			worst = share
		}
	}
	return worst
}

// creditRisk treats causes the fund already holds as known counterparties.
func (a *RiskAnalyzer) creditRisk(req allocation.Request, fund allocation.FundState) float64 {
	if len(req.Allocations) == 0 {
		return 1
	}
	unknown := 0
	for _, alloc := range req.Allocations {
		if _, held := fund.CurrentAllocations[alloc.CauseID]; !held {
			unknown++
		}
	}
	return clamp01(0.15 + 0.5*float64(unknown)/float64(len(req.Allocations)))
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
