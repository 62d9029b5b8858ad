package evaluator

import (
	"context"
	"testing"

	"github.com/kingrea/The-Almonry/internal/allocation"
)

func healthyFund() allocation.FundState {
	return allocation.FundState{
		TotalAssets:        1_000_000,
		AvailableLiquidity: 200_000,
		CurrentAllocations: map[string]float64{
			"shelter": 10_000,
		},
		RiskParameters: allocation.RiskParameters{
			MaxSingleCauseShare: 0.2,
			MinLiquidityReserve: 0.05,
			VolatilityCeiling:   0.3,
		},
	}
}

func TestFitAnalyzerRewardsPreferredCauses(t *testing.T) {
	analyzer := NewFitAnalyzer()
	req := testRequest()
	req.Preferences.PreferredCauses = []string{"shelter"}
	preferred, err := analyzer.Evaluate(context.Background(), req, healthyFund())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	req.Preferences.PreferredCauses = nil
	req.Preferences.ExcludedCauses = []string{"shelter"}
	excluded, err := analyzer.Evaluate(context.Background(), req, healthyFund())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if preferred.FitScore <= excluded.FitScore {
		t.Fatalf("preferred cause should outscore excluded: %.2f vs %.2f", preferred.FitScore, excluded.FitScore)
	}
	if preferred.PreferenceAlignment != 1.0 {
		t.Fatalf("expected full alignment, got %.2f", preferred.PreferenceAlignment)
	}
	if excluded.PreferenceAlignment != 0 {
		t.Fatalf("expected zero alignment for excluded cause, got %.2f", excluded.PreferenceAlignment)
	}
}

func TestFitAnalyzerPenalizesIlliquidFund(t *testing.T) {
	analyzer := NewFitAnalyzer()
	fund := healthyFund()
	fund.AvailableLiquidity = 500 // request is 1000
	result, err := analyzer.Evaluate(context.Background(), testRequest(), fund)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result.LiquidityHeadroom != 0 {
		t.Fatalf("expected zero headroom beyond liquidity, got %.2f", result.LiquidityHeadroom)
	}
}

func TestRiskAnalyzerFlagsConcentrationBreach(t *testing.T) {
	analyzer := NewRiskAnalyzer()
	fund := healthyFund()
	req := testRequest()
	req.Allocations[0].Amount = 300_000 // 30% of assets, limit is 20%
	result, err := analyzer.Evaluate(context.Background(), req, fund)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result.ConcentrationCompliant {
		t.Fatal("expected concentration breach")
	}
	if result.Approved {
		t.Fatal("breaching allocation must not be approved")
	}
}

func TestRiskAnalyzerApprovesModestKnownAllocation(t *testing.T) {
	analyzer := NewRiskAnalyzer()
	result, err := analyzer.Evaluate(context.Background(), testRequest(), healthyFund())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.ConcentrationCompliant || !result.LiquidityCompliant {
		t.Fatalf("expected compliant result, got %+v", result)
	}
	if result.AggregateRisk > approveRiskCeiling {
		t.Fatalf("expected low aggregate risk, got %.2f", result.AggregateRisk)
	}
	if !result.Approved {
		t.Fatalf("expected approval, got %+v", result)
	}
}

func TestMetaAnalyzerFlagsIncoherentRequest(t *testing.T) {
	analyzer := NewMetaAnalyzer()
	req := testRequest()
	req.TotalAmount = 5000 // allocations only cover 1000
	req.Allocations[0].Percentage = 180
	req.Allocations[0].Rationale = ""
	result, err := analyzer.Evaluate(context.Background(), req, healthyFund())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(result.UncertaintySources) == 0 {
		t.Fatal("expected uncertainty sources for incoherent request")
	}
	if result.Confidence >= 0.8 {
		t.Fatalf("expected degraded confidence, got %.2f", result.Confidence)
	}
}

func TestMetaAnalyzerTrustsCoherentRequest(t *testing.T) {
	analyzer := NewMetaAnalyzer()
	req := testRequest()
	req.Allocations[0].Rationale = "matched to donor intent"
	result, err := analyzer.Evaluate(context.Background(), req, healthyFund())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.Approved || result.HumanOverride {
		t.Fatalf("expected clean approval, got %+v", result)
	}
}
