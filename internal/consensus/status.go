package consensus

// roundStatus derives a round's status from its proposals. Order matters:
// unanimous and majority approval are checked before majority rejection, and
// active is only reachable when a bridging modify vote exists.
func roundStatus(proposals []Proposal, approvalThreshold float64) Status {
	if len(proposals) == 0 {
		return StatusDeadlock
	}
	approves, rejects, modifies := 0, 0, 0
	for _, proposal := range proposals {
		switch proposal.Vote {
		case VoteApprove:
			approves++
		case VoteReject:
			rejects++
		case VoteModify:
			modifies++
		}
	}
	total := float64(len(proposals))
	switch {
	case approves == len(proposals):
		return StatusConsensusReached
	case float64(approves)/total >= approvalThreshold:
		return StatusConsensusReached
	case float64(rejects)/total >= approvalThreshold:
		return StatusDeadlock
	case modifies > 0:
		return StatusActive
	default:
		return StatusDeadlock
	}
}
