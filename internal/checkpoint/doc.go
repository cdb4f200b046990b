// Package checkpoint persists the migration ledger that makes repeated runs
// idempotent.
//
// The ledger is a three-level JSON document mapping collection names to project
// names to the set of repository names whose migration already completed.
package checkpoint
