// Package roll drives one roll's luck interaction: pre-roll choices, the
// confirmed spend and formula, the rolled successes and post-roll moves.
//
// A Session moves through Idle, PreRollChoice, Resolved, PostRollChoice and
// Final. Choices made before confirmation never touch the pool; Confirm
// commits them as one all-or-nothing ledger update.
package roll
