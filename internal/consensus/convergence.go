package consensus

import (
	"math"

	"github.com/kingrea/The-Almonry/internal/allocation"
)

const (
	// convergingScore is the score at which two rounds count as converging.
	convergingScore = 0.8
	// amountMatchRatio bounds how far two proposed amounts may drift, as a
	// fraction of their average, and still match.
	amountMatchRatio = 0.1
)

// Convergence describes how similar two consecutive rounds' merged
// modification sets are.
type Convergence struct {
	Score      float64
	Converging bool
}

// checkConvergence compares two consecutive rounds by cause. Both sets empty
// scores 1.0; exactly one empty scores 0.5 without converging. Otherwise the
// score is the fraction of causes present in both sets whose modifications
// match: same type, and for adjust_amount a proposed-amount drift under 10%
// of the average (zero on both sides matches).
func checkConvergence(previous, current Round) Convergence {
	prev := byCause(previous.Merged)
	curr := byCause(current.Merged)
	switch {
	case len(prev) == 0 && len(curr) == 0:
		return Convergence{Score: 1.0, Converging: true}
	case len(prev) == 0 || len(curr) == 0:
		return Convergence{Score: 0.5, Converging: false}
	}
	shared, matches := 0, 0
	for causeID, prevMod := range prev {
		currMod, ok := curr[causeID]
		if !ok {
			continue
		}
		shared++
		if modificationsMatch(prevMod, currMod) {
			matches++
		}
	}
	if shared == 0 {
		return Convergence{Score: 0, Converging: false}
	}
	score := float64(matches) / float64(shared)
	return Convergence{Score: score, Converging: score >= convergingScore}
}

func modificationsMatch(a, b allocation.Modification) bool {
	if a.Type != b.Type {
		return false
	}
	if a.Type != allocation.AdjustAmount {
		return true
	}
	if a.ProposedAmount == 0 && b.ProposedAmount == 0 {
		return true
	}
	average := (a.ProposedAmount + b.ProposedAmount) / 2
	if average == 0 {
		return false
	}
	return math.Abs(a.ProposedAmount-b.ProposedAmount)/average < amountMatchRatio
}

func byCause(mods []allocation.Modification) map[string]allocation.Modification {
	if len(mods) == 0 {
		return nil
	}
	out := make(map[string]allocation.Modification, len(mods))
	for _, mod := range mods {
		if _, seen := out[mod.CauseID]; seen {
			continue
		}
		out[mod.CauseID] = mod
	}
	return out
}
