package evaluator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kingrea/The-Almonry/internal/allocation"
)

type stubFinancial struct {
	result FinancialResult
	err    error
}

func (s stubFinancial) Evaluate(context.Context, allocation.Request, allocation.FundState) (FinancialResult, error) {
	return s.result, s.err
}

type stubRisk struct {
	result RiskResult
	err    error
}

func (s stubRisk) Evaluate(context.Context, allocation.Request, allocation.FundState) (RiskResult, error) {
	return s.result, s.err
}

type stubMeta struct {
	result MetaResult
	err    error
}

func (s stubMeta) Evaluate(context.Context, allocation.Request, allocation.FundState) (MetaResult, error) {
	return s.result, s.err
}

func testRequest() allocation.Request {
	return allocation.Request{
		RequestID:   "req-1",
		TotalAmount: 1000,
		Allocations: []allocation.SuggestedAllocation{
			{CauseID: "shelter", Amount: 1000, Percentage: 100},
		},
	}
}

func TestPanelJoinsAllThree(t *testing.T) {
	panel := Panel{
		Financial: stubFinancial{result: FinancialResult{FitScore: 0.9}},
		Risk:      stubRisk{result: RiskResult{AggregateRisk: 0.2}},
		Meta:      stubMeta{result: MetaResult{Confidence: 0.85}},
	}
	results, err := panel.Evaluate(context.Background(), testRequest(), allocation.FundState{TotalAssets: 1e6})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if results.Financial.FitScore != 0.9 {
		t.Fatalf("financial result lost: %+v", results.Financial)
	}
	if results.Risk.AggregateRisk != 0.2 {
		t.Fatalf("risk result lost: %+v", results.Risk)
	}
	if results.Meta.Confidence != 0.85 {
		t.Fatalf("meta result lost: %+v", results.Meta)
	}
}

func TestPanelFailureAbortsWithNoPartialResults(t *testing.T) {
	panel := Panel{
		Financial: stubFinancial{result: FinancialResult{FitScore: 0.9}},
		Risk:      stubRisk{err: fmt.Errorf("upstream timeout")},
		Meta:      stubMeta{result: MetaResult{Confidence: 0.85}},
	}
	results, err := panel.Evaluate(context.Background(), testRequest(), allocation.FundState{TotalAssets: 1e6})
	if err == nil {
		t.Fatal("expected evaluation failure")
	}
	if !errors.Is(err, ErrEvaluatorFailed) {
		t.Fatalf("expected ErrEvaluatorFailed, got %v", err)
	}
	if results.Financial.FitScore != 0 || results.Meta.Confidence != 0 {
		t.Fatalf("expected zero results on failure, got %+v", results)
	}
}

func TestPanelValidateRequiresEverySeat(t *testing.T) {
	panel := Panel{
		Financial: stubFinancial{},
		Meta:      stubMeta{},
	}
	if err := panel.Validate(); err == nil {
		t.Fatal("expected missing risk evaluator to fail validation")
	}
	if _, err := panel.Evaluate(context.Background(), testRequest(), allocation.FundState{}); err == nil {
		t.Fatal("expected evaluate to fail on incomplete panel")
	}
}
