package allocation

import "fmt"

// SuggestedAllocation is one line item of a donor's request: a cause plus the
// amount and share the donor (or their advisor) proposed for it.
type SuggestedAllocation struct {
	CauseID    string  `yaml:"cause_id" json:"causeId"`
	CauseName  string  `yaml:"cause_name,omitempty" json:"causeName,omitempty"`
	Amount     float64 `yaml:"amount" json:"amount"`
	Percentage float64 `yaml:"percentage" json:"percentage"`
	Rationale  string  `yaml:"rationale,omitempty" json:"rationale,omitempty"`
}

// DonorPreferences captures the stated giving preferences evaluated against a
// request.
type DonorPreferences struct {
	PreferredCauses []string `yaml:"preferred_causes,omitempty" json:"preferredCauses,omitempty"`
	ExcludedCauses  []string `yaml:"excluded_causes,omitempty" json:"excludedCauses,omitempty"`
	RiskTolerance   string   `yaml:"risk_tolerance,omitempty" json:"riskTolerance,omitempty"`
	ImpactFocus     string   `yaml:"impact_focus,omitempty" json:"impactFocus,omitempty"`
}

// Request is a charitable-fund allocation request. The negotiation engine
// treats it as immutable; modified views are built with ApplyModifications.
type Request struct {
	RequestID   string                `yaml:"request_id" json:"requestId"`
	DonorID     string                `yaml:"donor_id" json:"donorId"`
	TotalAmount float64               `yaml:"total_amount" json:"totalAmount"`
	Preferences DonorPreferences      `yaml:"preferences,omitempty" json:"preferences,omitempty"`
	Allocations []SuggestedAllocation `yaml:"allocations" json:"allocations"`
	// Conditions accumulates add_condition modifications. They are tracked on
	// the request but never change its structure.
	Conditions []string `yaml:"conditions,omitempty" json:"conditions,omitempty"`
}

// Validate ensures the request is well-formed enough to negotiate over.
func (r Request) Validate() error {
	if r.RequestID == "" {
		return fmt.Errorf("allocation: request id is required")
	}
	if r.TotalAmount <= 0 {
		return fmt.Errorf("allocation: total amount must be positive for %s", r.RequestID)
	}
	if len(r.Allocations) == 0 {
		return fmt.Errorf("allocation: request %s has no suggested allocations", r.RequestID)
	}
	seen := make(map[string]struct{}, len(r.Allocations))
	for _, alloc := range r.Allocations {
		if alloc.CauseID == "" {
			return fmt.Errorf("allocation: request %s has an allocation without a cause id", r.RequestID)
		}
		if _, dup := seen[alloc.CauseID]; dup {
			return fmt.Errorf("allocation: request %s lists cause %s twice", r.RequestID, alloc.CauseID)
		}
		seen[alloc.CauseID] = struct{}{}
	}
	return nil
}

// AllocatedTotal sums the amounts across all suggested allocations.
func (r Request) AllocatedTotal() float64 {
	total := 0.0
	for _, alloc := range r.Allocations {
		total += alloc.Amount
	}
	return total
}

// Clone returns a deep copy of the request.
func (r Request) Clone() Request {
	out := r
	out.Allocations = append([]SuggestedAllocation(nil), r.Allocations...)
	out.Conditions = append([]string(nil), r.Conditions...)
	out.Preferences.PreferredCauses = append([]string(nil), r.Preferences.PreferredCauses...)
	out.Preferences.ExcludedCauses = append([]string(nil), r.Preferences.ExcludedCauses...)
	return out
}

// RiskParameters are the fund-level limits the risk evaluator checks against.
type RiskParameters struct {
	MaxSingleCauseShare float64 `yaml:"max_single_cause_share" json:"maxSingleCauseShare"`
	MinLiquidityReserve float64 `yaml:"min_liquidity_reserve" json:"minLiquidityReserve"`
	VolatilityCeiling   float64 `yaml:"volatility_ceiling" json:"volatilityCeiling"`
}

// FundState is a read-only snapshot of the fund supplied once per consensus
// run.
type FundState struct {
	TotalAssets        float64            `yaml:"total_assets" json:"totalAssets"`
	AvailableLiquidity float64            `yaml:"available_liquidity" json:"availableLiquidity"`
	CurrentAllocations map[string]float64 `yaml:"current_allocations,omitempty" json:"currentAllocations,omitempty"`
	RiskParameters     RiskParameters     `yaml:"risk_parameters" json:"riskParameters"`
}
