// Package storage defines the persistence port for luck pools.
//
// The engine never stores character data itself. Pool stores live in
// subpackages (sqlite, bbolt) and implement luck.PoolStore with a
// compare-and-swap update so concurrent spends cannot lose writes.
//
// # Error Types
//
// Implementations report a missing pool with luck.ErrPoolNotFound.
package storage
