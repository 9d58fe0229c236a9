// Package luck implements the Luck Move economy: the fixed move catalog,
// affordability checks against a character's temp/perm pools, spends, the
// Advantage effect of each move and the ledger that persists spends with
// compare-and-swap updates.
//
// The pure functions (CanUse, Spend, CanUseFudge, ApplyEffect) operate on a
// Pool snapshot and return the new pool; they never persist anything. Ledger
// is the only path that writes a pool, through a PoolStore.
package luck
