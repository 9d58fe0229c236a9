// Package dice provides deterministic, seeded dice rolling and the dice-pool
// expression grammar used by the formula resolver.
//
// A pool expression has the form "<N>d<S>cs>=<T>": roll N dice with S sides
// and count every die showing T or more as a success. Either piece may be
// absent from an input formula; the resolver supplies defaults.
package dice
