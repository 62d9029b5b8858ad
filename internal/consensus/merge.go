package consensus

import (
	"strings"

	"github.com/kingrea/The-Almonry/internal/allocation"
)

// mergeRoundModifications resolves all modifications proposed within a single
// round into one conflict-free set. Per cause: reject_cause wins outright and
// discards everything else for that cause; otherwise the minimum proposed
// amount wins among adjust_amount entries, with contributing reasonings
// concatenated. add_condition entries pass through unmerged. Malformed
// modifications are ignored.
func mergeRoundModifications(mods []allocation.Modification) []allocation.Modification {
	if len(mods) == 0 {
		return nil
	}
	var causeOrder []string
	rejects := make(map[string]allocation.Modification)
	adjusts := make(map[string][]allocation.Modification)
	var conditions []allocation.Modification
	for _, mod := range mods {
		if !mod.WellFormed() {
			continue
		}
		switch mod.Type {
		case allocation.RejectCause:
			if _, seen := rejects[mod.CauseID]; !seen {
				rejects[mod.CauseID] = mod
			}
			causeOrder = appendUnique(causeOrder, mod.CauseID)
		case allocation.AdjustAmount:
			adjusts[mod.CauseID] = append(adjusts[mod.CauseID], mod)
			causeOrder = appendUnique(causeOrder, mod.CauseID)
		case allocation.AddCondition:
			conditions = append(conditions, mod)
		}
	}
	var merged []allocation.Modification
	for _, causeID := range causeOrder {
		if reject, ok := rejects[causeID]; ok {
			merged = append(merged, reject)
			continue
		}
		entries := adjusts[causeID]
		if len(entries) == 0 {
			continue
		}
		winner := entries[0]
		reasonings := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.ProposedAmount < winner.ProposedAmount {
				winner = entry
			}
			if entry.Reasoning != "" {
				reasonings = append(reasonings, entry.Reasoning)
			}
		}
		winner.Reasoning = strings.Join(reasonings, "; ")
		merged = append(merged, winner)
	}
	merged = append(merged, conditions...)
	return merged
}

// mergeAcrossRounds folds every round's merged modifications into the final
// set. Later rounds fully override earlier ones per cause; there is no
// amount conservatism here. The fold is idempotent.
func mergeAcrossRounds(rounds []Round) []allocation.Modification {
	latest := make(map[string]allocation.Modification)
	var order []string
	for _, round := range rounds {
		for _, mod := range round.Merged {
			if mod.CauseID == "" {
				continue
			}
			latest[mod.CauseID] = mod
			order = appendUnique(order, mod.CauseID)
		}
	}
	if len(order) == 0 {
		return nil
	}
	merged := make([]allocation.Modification, 0, len(order))
	for _, causeID := range order {
		merged = append(merged, latest[causeID])
	}
	return merged
}

func appendUnique(values []string, value string) []string {
	for _, existing := range values {
		if existing == value {
			return values
		}
	}
	return append(values, value)
}
