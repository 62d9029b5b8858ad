package evaluator

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kingrea/The-Almonry/internal/allocation"
)

// ID names one of the three fixed evaluators.
type ID string

const (
	FinancialAnalyzer ID = "financial_analyzer"
	RiskEngine        ID = "risk_engine"
	MetaCognition     ID = "meta_cognition"
)

// Order is the canonical reporting order. All three must report every round.
var Order = []ID{FinancialAnalyzer, RiskEngine, MetaCognition}

// ErrEvaluatorFailed wraps any evaluator error surfaced by the panel. A
// failed evaluator aborts the consensus run; there is no partial-quorum
// fallback.
var ErrEvaluatorFailed = errors.New("evaluator: evaluation failed")

// FinancialResult is the raw output of the financial-fit evaluator.
type FinancialResult struct {
	Approved             bool
	FitScore             float64
	PreferenceAlignment  float64
	LiquidityHeadroom    float64
	DiversificationScore float64
	Reasoning            string
}

// RiskResult is the raw output of the risk evaluator.
type RiskResult struct {
	Approved               bool
	MarketRisk             float64
	CreditRisk             float64
	LiquidityRisk          float64
	OperationalRisk        float64
	AggregateRisk          float64
	ConcentrationCompliant bool
	LiquidityCompliant     bool
	Reasoning              string
}

// MetaResult is the raw output of the meta-cognition evaluator.
type MetaResult struct {
	Approved           bool
	Confidence         float64
	UncertaintySources []string
	ReasoningChain     []string
	HumanOverride      bool
	Reasoning          string
}

// Results bundles one round's raw assessments, one per evaluator.
type Results struct {
	Financial FinancialResult
	Risk      RiskResult
	Meta      MetaResult
}

// Financial scores how well a request fits the donor's stated preferences and
// the fund's capacity.
type Financial interface {
	Evaluate(ctx context.Context, req allocation.Request, fund allocation.FundState) (FinancialResult, error)
}

// Risk scores the request against the fund's risk parameters.
type Risk interface {
	Evaluate(ctx context.Context, req allocation.Request, fund allocation.FundState) (RiskResult, error)
}

// Meta judges the coherence of the request and of the other signals, and may
// demand human review.
type Meta interface {
	Evaluate(ctx context.Context, req allocation.Request, fund allocation.FundState) (MetaResult, error)
}

// Panel is the injected capability set: the three evaluators consulted each
// round. Alternate or stub evaluators can be substituted in tests.
type Panel struct {
	Financial Financial
	Risk      Risk
	Meta      Meta
}

// Validate ensures every seat on the panel is filled.
func (p Panel) Validate() error {
	if p.Financial == nil {
		return fmt.Errorf("evaluator: panel is missing %s", FinancialAnalyzer)
	}
	if p.Risk == nil {
		return fmt.Errorf("evaluator: panel is missing %s", RiskEngine)
	}
	if p.Meta == nil {
		return fmt.Errorf("evaluator: panel is missing %s", MetaCognition)
	}
	return nil
}

// Evaluate consults all three evaluators concurrently and returns once every
// one has reported. Each evaluator receives its own copy of the request. Any
// failure aborts the round with no partial results.
func (p Panel) Evaluate(ctx context.Context, req allocation.Request, fund allocation.FundState) (Results, error) {
	if err := p.Validate(); err != nil {
		return Results{}, err
	}
	var results Results
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		out, err := p.Financial.Evaluate(gctx, req.Clone(), fund)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrEvaluatorFailed, FinancialAnalyzer, err)
		}
		results.Financial = out
		return nil
	})
	group.Go(func() error {
		out, err := p.Risk.Evaluate(gctx, req.Clone(), fund)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrEvaluatorFailed, RiskEngine, err)
		}
		results.Risk = out
		return nil
	})
	group.Go(func() error {
		out, err := p.Meta.Evaluate(gctx, req.Clone(), fund)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrEvaluatorFailed, MetaCognition, err)
		}
		results.Meta = out
		return nil
	})
	if err := group.Wait(); err != nil {
		return Results{}, err
	}
	return results, nil
}
