// Package models defines the core domain models for the Ibimina treasury.
//
// # Entities
//
//   - GroupConfig: group-wide parameters (daily rate, currency, rotation interval)
//   - Member: identity, rotation rank and payout-date selection state
//   - Contribution: an append-only ledger entry for verified savings
//   - CollectionSubmission: a member's day selection plus payment attempt
//   - ActionPlan: an admin-scheduled task with a target date
//   - Announcement: a broadcast or member-targeted message
//
// # Design Principles
//
// 1. **Integer money**: amounts are Money (int64 minor units) so the
// days-times-rate comparison is exact
// 2. **IDs, not pointers**: relationships reference string IDs
// 3. **Versioned rows**: Member and CollectionSubmission carry a Version used
// for optimistic concurrency by the storage layer
// 4. **Stable error kinds**: every failure wraps one of the sentinel errors in
// errors.go so callers can branch on KindOf(err)
package models
