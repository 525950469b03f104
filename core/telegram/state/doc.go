// Package state keeps per-user conversation sessions in memory and serializes
// the handling of updates that come from the same user.
// It is domain-agnostic: bots put their own payload in Session.Data.
package state
