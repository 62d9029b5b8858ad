// Package consensus reconciles the three evaluators' verdicts on a
// charitable-fund allocation request into one auditable decision.
//
// A run is a sequence of negotiation rounds. Each round evaluates the current
// working request concurrently across the panel, normalizes the raw
// assessments into proposals, derives a round status from the votes, and
// merges any proposed modifications conservatively (reject wins, then the
// minimum adjusted amount). Merged modifications accumulate across rounds
// with later rounds overriding earlier ones per cause, and the accumulated
// set produces the next round's working request.
//
// The loop exits early when a round reaches consensus, when it deadlocks, or
// when two consecutive rounds' modification sets converge closely enough that
// further negotiation would not change the outcome. The vote resolver then
// maps the terminal round onto the final decision, confidence, and
// human-review flag, and a best-effort decision record is handed to the
// ledger through a sink that can never fail or delay the result.
package consensus
