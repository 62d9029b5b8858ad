package consensus

import (
	"time"

	"github.com/kingrea/The-Almonry/internal/allocation"
	"github.com/kingrea/The-Almonry/internal/evaluator"
)

// Vote is an evaluator's position on the current working request.
type Vote string

const (
	VoteApprove Vote = "approve"
	VoteReject  Vote = "reject"
	VoteModify  Vote = "modify"
)

// Status is the state of a negotiation round. active is the only state from
// which another round may start.
type Status string

const (
	StatusActive           Status = "active"
	StatusConsensusReached Status = "consensus_reached"
	StatusDeadlock         Status = "deadlock"
	StatusEscalated        Status = "escalated"
)

// Terminal reports whether no further round may follow this status.
func (s Status) Terminal() bool {
	return s != StatusActive
}

// Decision is the final outcome of a consensus run.
type Decision string

const (
	DecisionApproved  Decision = "approved"
	DecisionModified  Decision = "modified"
	DecisionRejected  Decision = "rejected"
	DecisionEscalated Decision = "escalated"
)

// Proposal is one evaluator's normalized verdict for a round. Proposals are
// created by normalization and never mutated afterward.
type Proposal struct {
	Evaluator     evaluator.ID              `yaml:"evaluator" json:"evaluator"`
	Vote          Vote                      `yaml:"vote" json:"vote"`
	Confidence    float64                   `yaml:"confidence" json:"confidence"`
	Modifications []allocation.Modification `yaml:"modifications,omitempty" json:"modifications,omitempty"`
	Reasoning     string                    `yaml:"reasoning,omitempty" json:"reasoning,omitempty"`
	Concerns      []string                  `yaml:"concerns,omitempty" json:"concerns,omitempty"`
	Metrics       map[string]float64        `yaml:"metrics,omitempty" json:"metrics,omitempty"`
}

// Round is one synchronized pass of all three evaluators plus the merge and
// status computation over their proposals. Rounds are immutable once the
// engine stores them.
type Round struct {
	Number    int                       `yaml:"number" json:"number"`
	Proposals []Proposal                `yaml:"proposals" json:"proposals"`
	Status    Status                    `yaml:"status" json:"status"`
	Merged    []allocation.Modification `yaml:"merged,omitempty" json:"merged,omitempty"`
	Summary   string                    `yaml:"summary" json:"summary"`
	Timestamp time.Time                 `yaml:"timestamp" json:"timestamp"`
}

// Config controls a consensus run. Zero values are replaced by defaults via
// DefaultConfig and ConfigOverrides.
type Config struct {
	MaxRounds          int     `yaml:"max_rounds" json:"maxRounds"`
	ApprovalThreshold  float64 `yaml:"approval_threshold" json:"approvalThreshold"`
	EscalateOnDeadlock bool    `yaml:"escalate_on_deadlock" json:"escalateOnDeadlock"`
	MinConfidence      float64 `yaml:"min_confidence" json:"minConfidence"`
	VaultAddress       string  `yaml:"vault_address,omitempty" json:"vaultAddress,omitempty"`
}

// DefaultConfig returns the standard run parameters.
func DefaultConfig() Config {
	return Config{
		MaxRounds:          3,
		ApprovalThreshold:  0.67,
		EscalateOnDeadlock: true,
		MinConfidence:      0.7,
	}
}

// ConfigOverrides selectively replaces config fields; nil fields keep the
// base value.
type ConfigOverrides struct {
	MaxRounds          *int
	ApprovalThreshold  *float64
	EscalateOnDeadlock *bool
	MinConfidence      *float64
	VaultAddress       *string
}

// Apply returns the base config with every non-nil override applied.
func (o *ConfigOverrides) Apply(base Config) Config {
	if o == nil {
		return base
	}
	if o.MaxRounds != nil {
		base.MaxRounds = *o.MaxRounds
	}
	if o.ApprovalThreshold != nil {
		base.ApprovalThreshold = *o.ApprovalThreshold
	}
	if o.EscalateOnDeadlock != nil {
		base.EscalateOnDeadlock = *o.EscalateOnDeadlock
	}
	if o.MinConfidence != nil {
		base.MinConfidence = *o.MinConfidence
	}
	if o.VaultAddress != nil {
		base.VaultAddress = *o.VaultAddress
	}
	return base
}

// AuditEventType enumerates audit-trail events.
type AuditEventType string

const (
	AuditRoundStart          AuditEventType = "round_start"
	AuditProposalReceived    AuditEventType = "proposal_received"
	AuditModificationMerged  AuditEventType = "modification_merged"
	AuditConsensusReached    AuditEventType = "consensus_reached"
	AuditEscalation          AuditEventType = "escalation"
)

// AuditEntry is one event on the append-only audit trail.
type AuditEntry struct {
	Timestamp   time.Time      `yaml:"timestamp" json:"timestamp"`
	Event       AuditEventType `yaml:"event" json:"event"`
	Description string         `yaml:"description" json:"description"`
	Data        map[string]any `yaml:"data,omitempty" json:"data,omitempty"`
}

// Result is the single output artifact of a consensus run.
type Result struct {
	RunID                  string                    `yaml:"run_id" json:"runId"`
	Achieved               bool                      `yaml:"achieved" json:"achieved"`
	Decision               Decision                  `yaml:"decision" json:"decision"`
	Rounds                 []Round                   `yaml:"rounds" json:"rounds"`
	FinalModifications     []allocation.Modification `yaml:"final_modifications,omitempty" json:"finalModifications,omitempty"`
	AuditTrail             []AuditEntry              `yaml:"audit_trail" json:"auditTrail"`
	Confidence             float64                   `yaml:"confidence" json:"confidence"`
	HumanReviewRecommended bool                      `yaml:"human_review_recommended" json:"humanReviewRecommended"`
	Summary                string                    `yaml:"summary" json:"summary"`
}
