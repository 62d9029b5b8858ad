package consensus

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kingrea/The-Almonry/internal/allocation"
)

func TestMergeRoundTakesMinimumAmount(t *testing.T) {
	merged := mergeRoundModifications([]allocation.Modification{
		{CauseID: "clean-water", Type: allocation.AdjustAmount, ProposedAmount: 100, Reasoning: "fit"},
		{CauseID: "clean-water", Type: allocation.AdjustAmount, ProposedAmount: 80, Reasoning: "risk"},
	})
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged modification, got %d", len(merged))
	}
	if merged[0].ProposedAmount != 80 {
		t.Fatalf("expected conservative minimum 80, got %.2f", merged[0].ProposedAmount)
	}
	if !strings.Contains(merged[0].Reasoning, "fit") || !strings.Contains(merged[0].Reasoning, "risk") {
		t.Fatalf("expected concatenated reasonings, got %q", merged[0].Reasoning)
	}
}

func TestMergeRoundRejectWinsOutright(t *testing.T) {
	merged := mergeRoundModifications([]allocation.Modification{
		{CauseID: "clean-water", Type: allocation.AdjustAmount, ProposedAmount: 80},
		{CauseID: "clean-water", Type: allocation.RejectCause, Reasoning: "excluded cause"},
		{CauseID: "clean-water", Type: allocation.AddCondition, Condition: "hold for review"},
	})
	want := 2 // reject plus the pass-through condition
	if len(merged) != want {
		t.Fatalf("expected %d modifications, got %d: %+v", want, len(merged), merged)
	}
	if merged[0].Type != allocation.RejectCause {
		t.Fatalf("expected reject to win, got %s", merged[0].Type)
	}
}

func TestMergeRoundConditionsPassThroughUnmerged(t *testing.T) {
	merged := mergeRoundModifications([]allocation.Modification{
		{CauseID: "literacy", Type: allocation.AddCondition, Condition: "quarterly report"},
		{CauseID: "literacy", Type: allocation.AddCondition, Condition: "site visit"},
	})
	if len(merged) != 2 {
		t.Fatalf("expected both conditions preserved, got %d", len(merged))
	}
}

func TestMergeRoundIgnoresMalformed(t *testing.T) {
	merged := mergeRoundModifications([]allocation.Modification{
		{CauseID: "literacy", Type: allocation.AdjustAmount}, // missing proposed amount
		{CauseID: "", Type: allocation.RejectCause},
		{CauseID: "literacy", Type: allocation.AddCondition},
	})
	if len(merged) != 0 {
		t.Fatalf("expected malformed modifications dropped, got %+v", merged)
	}
}

func TestMergeAcrossRoundsLastRoundWins(t *testing.T) {
	rounds := []Round{
		{Number: 1, Merged: []allocation.Modification{
			{CauseID: "clean-water", Type: allocation.AdjustAmount, ProposedAmount: 80},
			{CauseID: "literacy", Type: allocation.AdjustAmount, ProposedAmount: 40},
		}},
		{Number: 2, Merged: []allocation.Modification{
			{CauseID: "clean-water", Type: allocation.AdjustAmount, ProposedAmount: 95},
		}},
	}
	merged := mergeAcrossRounds(rounds)
	if len(merged) != 2 {
		t.Fatalf("expected 2 causes, got %d", len(merged))
	}
	for _, mod := range merged {
		if mod.CauseID == "clean-water" && mod.ProposedAmount != 95 {
			t.Fatalf("expected latest round to win with 95, got %.2f", mod.ProposedAmount)
		}
	}
}

func TestMergeAcrossRoundsIsIdempotent(t *testing.T) {
	round := Round{Number: 1, Merged: []allocation.Modification{
		{CauseID: "clean-water", Type: allocation.AdjustAmount, ProposedAmount: 80},
		{CauseID: "literacy", Type: allocation.RejectCause},
	}}
	once := mergeAcrossRounds([]Round{round})
	twice := mergeAcrossRounds([]Round{round, round})
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}
