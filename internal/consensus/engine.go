package consensus

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/The-Almonry/internal/allocation"
	"github.com/kingrea/The-Almonry/internal/evaluator"
	"github.com/kingrea/The-Almonry/internal/logbook"
)

// convergenceExit is the score at which the engine forces consensus when two
// consecutive rounds are converging. It is deliberately stricter than the
// checker's own converging line.
const convergenceExit = 0.9

// DecisionRecord is the best-effort summary persisted after a run resolves.
type DecisionRecord struct {
	RunID              string                    `yaml:"run_id" json:"runId"`
	RequestID          string                    `yaml:"request_id" json:"requestId"`
	DonorID            string                    `yaml:"donor_id,omitempty" json:"donorId,omitempty"`
	VaultAddress       string                    `yaml:"vault_address,omitempty" json:"vaultAddress,omitempty"`
	Decision           Decision                  `yaml:"decision" json:"decision"`
	Achieved           bool                      `yaml:"achieved" json:"achieved"`
	Confidence         float64                   `yaml:"confidence" json:"confidence"`
	HumanReview        bool                      `yaml:"human_review" json:"humanReview"`
	Rounds             int                       `yaml:"rounds" json:"rounds"`
	FinalModifications []allocation.Modification `yaml:"final_modifications,omitempty" json:"finalModifications,omitempty"`
	Summary            string                    `yaml:"summary" json:"summary"`
	DecidedAt          time.Time                 `yaml:"decided_at" json:"decidedAt"`
}

// RecordSink receives decision records after the result is computed. Submit
// must not block and must never surface an error to the engine; the ledger
// implementation writes through a one-way channel for exactly that reason.
type RecordSink interface {
	Submit(record DecisionRecord)
}

// Engine runs the negotiation loop: sequential rounds of concurrent
// evaluation, merged modifications feeding the next round's working request,
// and early exits on consensus, deadlock, or convergence. The engine holds no
// state between runs.
type Engine struct {
	panel    evaluator.Panel
	cfg      Config
	sink     RecordSink
	log      *logbook.Logbook
	clock    func() time.Time
	newRunID func() string
}

// Option customizes the engine instance.
type Option func(*Engine)

// WithConfig replaces the default run configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithOverrides applies a partial configuration on top of the engine's
// current one.
func WithOverrides(overrides *ConfigOverrides) Option {
	return func(e *Engine) {
		e.cfg = overrides.Apply(e.cfg)
	}
}

// WithRecordSink installs the fire-and-forget decision-record collaborator.
func WithRecordSink(sink RecordSink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithLogbook attaches a run logbook.
func WithLogbook(log *logbook.Logbook) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithRunIDGenerator injects a deterministic run-id source for tests.
func WithRunIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newRunID = gen
		}
	}
}

// New wires a consensus engine to an evaluator panel.
func New(panel evaluator.Panel, opts ...Option) (*Engine, error) {
	if err := panel.Validate(); err != nil {
		return nil, err
	}
	engine := &Engine{
		panel:    panel,
		cfg:      DefaultConfig(),
		clock:    time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.cfg.MaxRounds <= 0 {
		return nil, fmt.Errorf("consensus: max rounds must be positive, got %d", engine.cfg.MaxRounds)
	}
	if engine.cfg.ApprovalThreshold <= 0 || engine.cfg.ApprovalThreshold > 1 {
		return nil, fmt.Errorf("consensus: approval threshold must be in (0,1], got %.2f", engine.cfg.ApprovalThreshold)
	}
	return engine, nil
}

// Config returns the engine's effective run configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Run drives the full negotiation for one allocation request. It returns the
// resolved result, or an error when the request is malformed or an evaluator
// fails; there is no degraded third shape.
func (e *Engine) Run(ctx context.Context, req allocation.Request, fund allocation.FundState) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	runID := e.newRunID()
	log := e.log.Scoped(runID)
	trail := newAuditTrail(e.clock)

	var rounds []Round
	var accumulated []allocation.Modification
	for i := 0; i < e.cfg.MaxRounds; i++ {
		working := allocation.ApplyModifications(req, accumulated)
		round, err := e.runRound(ctx, i+1, working, fund, trail)
		if err != nil {
			log.Error("round %d aborted: %v", i+1, err)
			return Result{}, err
		}
		rounds = append(rounds, round)
		log.Info("round %d finished with status %s", round.Number, round.Status)
		if len(round.Merged) > 0 {
			accumulated = mergeAcrossRounds(rounds)
		}
		if round.Status == StatusConsensusReached {
			trail.append(AuditConsensusReached,
				fmt.Sprintf("consensus reached in round %d", round.Number),
				map[string]any{"round": round.Number})
			break
		}
		if round.Status == StatusDeadlock {
			// The loop always stops on deadlock; the flag only shapes the
			// audit note and the resolver's rejected-vs-escalated mapping.
			if e.cfg.EscalateOnDeadlock {
				trail.append(AuditEscalation,
					fmt.Sprintf("deadlock in round %d escalated for human review", round.Number),
					map[string]any{"round": round.Number})
			}
			break
		}
		if len(rounds) >= 2 {
			conv := checkConvergence(rounds[len(rounds)-2], rounds[len(rounds)-1])
			if conv.Converging && conv.Score >= convergenceExit {
				rounds[len(rounds)-1].Status = StatusConsensusReached
				trail.append(AuditConsensusReached,
					fmt.Sprintf("rounds converged (score %.2f), treating round %d as consensus", conv.Score, round.Number),
					map[string]any{"round": round.Number, "score": conv.Score})
				break
			}
		}
	}

	verdict := resolveVote(rounds, e.cfg)
	final := mergeAcrossRounds(rounds)
	result := Result{
		RunID:                  runID,
		Achieved:               verdict.Decision == DecisionApproved || verdict.Decision == DecisionModified,
		Decision:               verdict.Decision,
		Rounds:                 rounds,
		FinalModifications:     final,
		AuditTrail:             trail.Entries(),
		Confidence:             verdict.Confidence,
		HumanReviewRecommended: verdict.HumanReview,
		Summary:                synthesizeSummary(rounds, verdict),
	}
	log.Info("resolved %s after %d rounds (confidence %.2f)", result.Decision, len(rounds), result.Confidence)
	e.notify(req, result, log)
	return result, nil
}

func (e *Engine) runRound(ctx context.Context, number int, working allocation.Request, fund allocation.FundState, trail *auditTrail) (Round, error) {
	trail.append(AuditRoundStart,
		fmt.Sprintf("round %d started with %d allocations in play", number, len(working.Allocations)),
		map[string]any{"round": number})
	results, err := e.panel.Evaluate(ctx, working, fund)
	if err != nil {
		return Round{}, err
	}
	proposals := normalizeProposals(working, results)
	for _, proposal := range proposals {
		trail.append(AuditProposalReceived,
			fmt.Sprintf("%s voted %s (confidence %.2f)", proposal.Evaluator, proposal.Vote, proposal.Confidence),
			map[string]any{
				"round":         number,
				"evaluator":     string(proposal.Evaluator),
				"vote":          string(proposal.Vote),
				"confidence":    proposal.Confidence,
				"modifications": len(proposal.Modifications),
			})
	}
	status := roundStatus(proposals, e.cfg.ApprovalThreshold)
	round := Round{
		Number:    number,
		Proposals: proposals,
		Status:    status,
		Summary:   roundSummary(number, proposals, status),
		Timestamp: e.clock(),
	}
	if status == StatusActive || status == StatusConsensusReached {
		var proposed []allocation.Modification
		for _, proposal := range proposals {
			proposed = append(proposed, proposal.Modifications...)
		}
		round.Merged = mergeRoundModifications(proposed)
		if len(round.Merged) > 0 {
			trail.append(AuditModificationMerged,
				fmt.Sprintf("round %d merged %d modifications from %d proposed", number, len(round.Merged), len(proposed)),
				map[string]any{"round": number, "merged": len(round.Merged)})
		}
	}
	return round, nil
}

// notify hands the decision record to the sink. The sink is fire-and-forget;
// nothing on this path may alter or delay the returned result.
func (e *Engine) notify(req allocation.Request, result Result, log *logbook.Logbook) {
	if e.sink == nil {
		return
	}
	record := DecisionRecord{
		RunID:              result.RunID,
		RequestID:          req.RequestID,
		DonorID:            req.DonorID,
		VaultAddress:       e.cfg.VaultAddress,
		Decision:           result.Decision,
		Achieved:           result.Achieved,
		Confidence:         result.Confidence,
		HumanReview:        result.HumanReviewRecommended,
		Rounds:             len(result.Rounds),
		FinalModifications: result.FinalModifications,
		Summary:            result.Summary,
		DecidedAt:          e.clock(),
	}
	e.sink.Submit(record)
	log.Info("decision record %s submitted to ledger", record.RunID)
}

func roundSummary(number int, proposals []Proposal, status Status) string {
	votes := make([]string, len(proposals))
	for i, proposal := range proposals {
		votes[i] = fmt.Sprintf("%s=%s", proposal.Evaluator, proposal.Vote)
	}
	return fmt.Sprintf("round %d: %s [%s]", number, strings.Join(votes, ", "), status)
}

// synthesizeSummary builds the human-readable account of the run: the
// decision, every round's vote listing, and the deduplicated concerns raised
// along the way.
func synthesizeSummary(rounds []Round, verdict resolution) string {
	var b strings.Builder
	fmt.Fprintf(&b, "decision %s after %d round(s), confidence %.2f", verdict.Decision, len(rounds), verdict.Confidence)
	if verdict.HumanReview {
		b.WriteString(", human review recommended")
	}
	for _, round := range rounds {
		b.WriteString("\n")
		b.WriteString(round.Summary)
	}
	if concerns := collectConcerns(rounds); len(concerns) > 0 {
		b.WriteString("\nconcerns: ")
		b.WriteString(strings.Join(concerns, "; "))
	}
	return b.String()
}

func collectConcerns(rounds []Round) []string {
	seen := make(map[string]struct{})
	var concerns []string
	for _, round := range rounds {
		for _, proposal := range round.Proposals {
			for _, concern := range proposal.Concerns {
				if _, dup := seen[concern]; dup {
					continue
				}
				seen[concern] = struct{}{}
				concerns = append(concerns, concern)
			}
		}
	}
	sort.Strings(concerns)
	return concerns
}
