package allocation

// ModificationType enumerates the ways an evaluator may ask to change a
// request.
type ModificationType string

const (
	AdjustAmount ModificationType = "adjust_amount"
	RejectCause  ModificationType = "reject_cause"
	AddCondition ModificationType = "add_condition"
)

// Modification is one evaluator-proposed change targeting a single cause.
// adjust_amount carries a proposed amount, add_condition carries a condition
// string, reject_cause carries neither.
type Modification struct {
	CauseID        string           `yaml:"cause_id" json:"causeId"`
	Type           ModificationType `yaml:"type" json:"type"`
	OriginalAmount float64          `yaml:"original_amount,omitempty" json:"originalAmount,omitempty"`
	ProposedAmount float64          `yaml:"proposed_amount,omitempty" json:"proposedAmount,omitempty"`
	Condition      string           `yaml:"condition,omitempty" json:"condition,omitempty"`
	Reasoning      string           `yaml:"reasoning,omitempty" json:"reasoning,omitempty"`
}

// WellFormed reports whether the modification carries the fields its type
// requires. Malformed modifications are skipped by mergers and by
// ApplyModifications rather than raising errors.
func (m Modification) WellFormed() bool {
	if m.CauseID == "" {
		return false
	}
	switch m.Type {
	case AdjustAmount:
		return m.ProposedAmount > 0
	case RejectCause:
		return true
	case AddCondition:
		return m.Condition != ""
	default:
		return false
	}
}

// ApplyModifications builds a new request with the modifications applied.
// Precedence per cause is reject > adjust > condition: a rejected cause is
// removed and any amount adjustment for it is discarded. Conditions are
// appended to the request's condition list without structural effect.
// Percentages are recomputed against the surviving allocation total. The
// input request is never mutated.
func ApplyModifications(req Request, mods []Modification) Request {
	out := req.Clone()
	if len(mods) == 0 {
		return out
	}
	rejected := make(map[string]struct{})
	adjusted := make(map[string]float64)
	for _, mod := range mods {
		if !mod.WellFormed() {
			continue
		}
		switch mod.Type {
		case RejectCause:
			rejected[mod.CauseID] = struct{}{}
		case AdjustAmount:
			adjusted[mod.CauseID] = mod.ProposedAmount
		case AddCondition:
			out.Conditions = append(out.Conditions, mod.Condition)
		}
	}
	kept := make([]SuggestedAllocation, 0, len(out.Allocations))
	for _, alloc := range out.Allocations {
		if _, drop := rejected[alloc.CauseID]; drop {
			continue
		}
		if amount, ok := adjusted[alloc.CauseID]; ok {
			alloc.Amount = amount
		}
		kept = append(kept, alloc)
	}
	total := 0.0
	for _, alloc := range kept {
		total += alloc.Amount
	}
	if total > 0 {
		for i := range kept {
			kept[i].Percentage = kept[i].Amount / total * 100
		}
	}
	out.Allocations = kept
	return out
}
