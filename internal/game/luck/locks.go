package luck

import (
	"context"
	"sync"
	"time"
)

// DefaultWatchInterval is the lock polling interval.
const DefaultWatchInterval = 250 * time.Millisecond

type lockKey struct {
	roll string
	move MoveKey
}

// Locks records at most one holder per roll and contested move.
type Locks struct {
	mu      sync.Mutex
	holders map[lockKey]string
}

// NewLocks creates an empty lock table.
func NewLocks() *Locks {
	return &Locks{holders: make(map[lockKey]string)}
}

// Claim takes the lock for holder. Claiming a lock already held by holder
// succeeds; a lock held by someone else fails with ErrMoveLocked carrying
// the holder.
func (l *Locks) Claim(roll string, move MoveKey, holder string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := lockKey{roll: roll, move: move}
	if current, ok := l.holders[key]; ok && current != holder {
		return lockedBy(current)
	}
	l.holders[key] = holder
	return nil
}

// Holder returns the current holder of a lock.
func (l *Locks) Holder(roll string, move MoveKey) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	holder, ok := l.holders[lockKey{roll: roll, move: move}]
	return holder, ok
}

// Release frees a lock held by holder. It reports whether a lock was freed.
func (l *Locks) Release(roll string, move MoveKey, holder string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := lockKey{roll: roll, move: move}
	if current, ok := l.holders[key]; !ok || current != holder {
		return false
	}
	delete(l.holders, key)
	return true
}

// ReleaseRoll frees every lock held for roll.
func (l *Locks) ReleaseRoll(roll string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.holders {
		if key.roll == roll {
			delete(l.holders, key)
		}
	}
}

// LockState is a snapshot of one lock.
type LockState struct {
	Holder string
	Locked bool
}

// WatchLock polls check every interval and calls onChange with the first
// state and every change after it, until ctx is done. The result is
// advisory; claims are decided by Locks.Claim.
func WatchLock(ctx context.Context, interval time.Duration, check func() LockState, onChange func(LockState)) error {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	last := check()
	onChange(last)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			state := check()
			if state != last {
				last = state
				onChange(state)
			}
		}
	}
}

// LockCheck adapts a lock table entry to WatchLock.
func (l *Locks) LockCheck(roll string, move MoveKey) func() LockState {
	return func() LockState {
		holder, ok := l.Holder(roll, move)
		return LockState{Holder: holder, Locked: ok}
	}
}
