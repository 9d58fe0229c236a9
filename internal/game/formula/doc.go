// Package formula folds a base dice-pool formula, a stat selection, an
// Advantage level and a set of modifier lines into one executable
// "(NdScs>=T)" formula.
//
// Resolution is pure: Resolve reads its Request and the Context it carries
// and never mutates either. Luck pools are not touched here; the Fudge flag
// only records that the caller already passed the luck affordability check.
package formula
