package consensus

import (
	"math"
	"testing"

	"github.com/kingrea/The-Almonry/internal/allocation"
)

func TestResolveNoRoundsEscalates(t *testing.T) {
	verdict := resolveVote(nil, DefaultConfig())
	if verdict.Decision != DecisionEscalated {
		t.Fatalf("expected escalated, got %s", verdict.Decision)
	}
	if verdict.Confidence != 0 || !verdict.HumanReview {
		t.Fatalf("expected zero confidence and forced review, got %+v", verdict)
	}
}

func TestResolveConsensusWithoutModificationsApproves(t *testing.T) {
	rounds := []Round{{
		Number:    1,
		Status:    StatusConsensusReached,
		Proposals: []Proposal{{Vote: VoteApprove, Confidence: 0.9}, {Vote: VoteApprove, Confidence: 0.8}, {Vote: VoteApprove, Confidence: 0.85}},
	}}
	verdict := resolveVote(rounds, DefaultConfig())
	if verdict.Decision != DecisionApproved {
		t.Fatalf("expected approved, got %s", verdict.Decision)
	}
	if math.Abs(verdict.Confidence-0.85) > 1e-9 {
		t.Fatalf("expected mean confidence 0.85, got %.4f", verdict.Confidence)
	}
	if verdict.HumanReview {
		t.Fatal("confidence above minimum must not demand review")
	}
}

func TestResolveConsensusWithModificationsIsModified(t *testing.T) {
	rounds := []Round{
		{
			Number: 1,
			Status: StatusActive,
			Merged: []allocation.Modification{{CauseID: "x", Type: allocation.AdjustAmount, ProposedAmount: 50}},
		},
		{
			Number:    2,
			Status:    StatusConsensusReached,
			Proposals: []Proposal{{Vote: VoteApprove, Confidence: 0.6}, {Vote: VoteApprove, Confidence: 0.6}, {Vote: VoteApprove, Confidence: 0.6}},
		},
	}
	verdict := resolveVote(rounds, DefaultConfig())
	if verdict.Decision != DecisionModified {
		t.Fatalf("expected modified, got %s", verdict.Decision)
	}
	if !verdict.HumanReview {
		t.Fatal("confidence 0.6 under minimum 0.7 must recommend review")
	}
}

func TestResolveDeadlockDominatedByRejects(t *testing.T) {
	rounds := []Round{{
		Number:    1,
		Status:    StatusDeadlock,
		Proposals: []Proposal{{Vote: VoteReject, Confidence: 0.4}, {Vote: VoteReject, Confidence: 0.5}, {Vote: VoteReject, Confidence: 0.3}},
	}}
	for _, escalate := range []bool{true, false} {
		cfg := DefaultConfig()
		cfg.EscalateOnDeadlock = escalate
		verdict := resolveVote(rounds, cfg)
		if verdict.Decision != DecisionRejected {
			t.Fatalf("escalate=%v: expected rejected, got %s", escalate, verdict.Decision)
		}
		if !verdict.HumanReview {
			t.Fatalf("escalate=%v: deadlock must force review", escalate)
		}
	}
}

func TestResolveDeadlockWithoutRejectMajority(t *testing.T) {
	rounds := []Round{{
		Number:    1,
		Status:    StatusDeadlock,
		Proposals: []Proposal{{Vote: VoteApprove, Confidence: 0.8}, {Vote: VoteReject, Confidence: 0.4}, {Vote: VoteReject, Confidence: 0.4}},
	}}
	cfg := DefaultConfig()
	if verdict := resolveVote(rounds, cfg); verdict.Decision != DecisionEscalated {
		t.Fatalf("expected escalation with the flag set, got %s", verdict.Decision)
	}
	cfg.EscalateOnDeadlock = false
	if verdict := resolveVote(rounds, cfg); verdict.Decision != DecisionRejected {
		t.Fatalf("expected rejection with the flag cleared, got %s", verdict.Decision)
	}
}

func TestResolveExhaustedActiveRounds(t *testing.T) {
	rounds := []Round{{
		Number:    3,
		Status:    StatusActive,
		Proposals: []Proposal{{Vote: VoteModify, Confidence: 0.6}, {Vote: VoteModify, Confidence: 0.6}, {Vote: VoteApprove, Confidence: 0.8}},
	}}
	cfg := DefaultConfig()
	verdict := resolveVote(rounds, cfg)
	if verdict.Decision != DecisionEscalated || !verdict.HumanReview {
		t.Fatalf("expected forced escalation with review, got %+v", verdict)
	}
	cfg.EscalateOnDeadlock = false
	if verdict := resolveVote(rounds, cfg); verdict.Decision != DecisionModified {
		t.Fatalf("expected modified with the flag cleared, got %s", verdict.Decision)
	}
}
