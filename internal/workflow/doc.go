// Package workflow implements the state transitions of the treasury core as
// pure functions over caller-supplied models: the collection submission
// workflow and the member payout-date state machine.
//
// Functions mutate only the values passed to them and never touch storage.
// The service layer loads state, applies a transition and persists the
// result atomically.
package workflow
