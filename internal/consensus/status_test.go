package consensus

import "testing"

func votes(vs ...Vote) []Proposal {
	proposals := make([]Proposal, len(vs))
	for i, v := range vs {
		proposals[i] = Proposal{Vote: v, Confidence: 0.8}
	}
	return proposals
}

func TestRoundStatusUnanimousApprove(t *testing.T) {
	if got := roundStatus(votes(VoteApprove, VoteApprove, VoteApprove), 0.67); got != StatusConsensusReached {
		t.Fatalf("expected consensus, got %s", got)
	}
}

func TestRoundStatusTwoThirdsIsBelowDefaultThreshold(t *testing.T) {
	// 2/3 = 0.6667 under strict >= against 0.67 must NOT reach consensus;
	// the bridging modify vote keeps the negotiation active.
	if got := roundStatus(votes(VoteApprove, VoteApprove, VoteModify), 0.67); got != StatusActive {
		t.Fatalf("expected active at the 2/3 boundary, got %s", got)
	}
}

func TestRoundStatusTwoThirdsReachesLowerThreshold(t *testing.T) {
	if got := roundStatus(votes(VoteApprove, VoteApprove, VoteModify), 0.66); got != StatusConsensusReached {
		t.Fatalf("expected consensus below the boundary, got %s", got)
	}
}

func TestRoundStatusMajorityRejectDeadlocks(t *testing.T) {
	if got := roundStatus(votes(VoteReject, VoteReject, VoteReject), 0.67); got != StatusDeadlock {
		t.Fatalf("expected deadlock, got %s", got)
	}
}

func TestRoundStatusModifyKeepsNegotiationAlive(t *testing.T) {
	if got := roundStatus(votes(VoteReject, VoteReject, VoteModify), 0.67); got != StatusActive {
		t.Fatalf("expected modify vote to keep round active, got %s", got)
	}
}

func TestRoundStatusMixedWithoutModifyDeadlocks(t *testing.T) {
	if got := roundStatus(votes(VoteApprove, VoteReject, VoteReject), 0.67); got != StatusDeadlock {
		t.Fatalf("expected deadlock without a bridging vote, got %s", got)
	}
}
