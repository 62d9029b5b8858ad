package consensus

// resolution is the vote resolver's verdict over a finished negotiation.
type resolution struct {
	Decision    Decision
	Confidence  float64
	HumanReview bool
}

// resolveVote derives the final decision from the terminal round's status.
// Every path that does not end in a clean consensus forces human review.
func resolveVote(rounds []Round, cfg Config) resolution {
	if len(rounds) == 0 {
		return resolution{Decision: DecisionEscalated, Confidence: 0, HumanReview: true}
	}
	terminal := rounds[len(rounds)-1]
	switch terminal.Status {
	case StatusConsensusReached:
		decision := DecisionApproved
		if anyMergedModifications(rounds) {
			decision = DecisionModified
		}
		confidence := meanConfidence(terminal.Proposals)
		return resolution{
			Decision:    decision,
			Confidence:  confidence,
			HumanReview: confidence < cfg.MinConfidence,
		}
	case StatusDeadlock:
		rejects := 0
		for _, proposal := range terminal.Proposals {
			if proposal.Vote == VoteReject {
				rejects++
			}
		}
		if len(terminal.Proposals) > 0 && float64(rejects)/float64(len(terminal.Proposals)) >= cfg.ApprovalThreshold {
			return resolution{
				Decision:    DecisionRejected,
				Confidence:  meanConfidence(terminal.Proposals),
				HumanReview: true,
			}
		}
		decision := DecisionEscalated
		if !cfg.EscalateOnDeadlock {
			decision = DecisionRejected
		}
		return resolution{
			Decision:    decision,
			Confidence:  meanConfidence(terminal.Proposals),
			HumanReview: true,
		}
	case StatusActive:
		// maxRounds exhausted without resolution.
		decision := DecisionEscalated
		if !cfg.EscalateOnDeadlock {
			decision = DecisionModified
		}
		return resolution{
			Decision:    decision,
			Confidence:  meanConfidence(terminal.Proposals),
			HumanReview: true,
		}
	default:
		return resolution{Decision: DecisionEscalated, Confidence: 0, HumanReview: true}
	}
}

func anyMergedModifications(rounds []Round) bool {
	for _, round := range rounds {
		if len(round.Merged) > 0 {
			return true
		}
	}
	return false
}

func meanConfidence(proposals []Proposal) float64 {
	if len(proposals) == 0 {
		return 0
	}
	sum := 0.0
	for _, proposal := range proposals {
		sum += proposal.Confidence
	}
	return sum / float64(len(proposals))
}
