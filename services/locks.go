package services

import (
	"sync"
	"time"

	"agent-arena/models"
)

// matchLocks serializes every mutation on a given match (join/leave/start/
// complete/cancel/append-turn) behind a per-match slot. Operations on
// different matches run fully in parallel. Acquisition waits at most
// maxWait and then fails with Busy instead of blocking the caller forever.
type matchLocks struct {
	mu      sync.Mutex
	slots   map[string]chan struct{}
	maxWait time.Duration
}

func newMatchLocks(maxWait time.Duration) *matchLocks {
	if maxWait <= 0 {
		maxWait = 2 * time.Second
	}
	return &matchLocks{
		slots:   make(map[string]chan struct{}),
		maxWait: maxWait,
	}
}

func (l *matchLocks) slot(matchID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[matchID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[matchID] = ch
	}
	return ch
}

// Acquire takes the match's critical section or fails with Busy after the
// bounded wait.
func (l *matchLocks) Acquire(matchID string) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()
	select {
	case l.slot(matchID) <- struct{}{}:
		return nil
	case <-timer.C:
		return models.Busyf("match %s is busy, retry", matchID)
	}
}

// Release frees the critical section. Must only follow a successful Acquire.
func (l *matchLocks) Release(matchID string) {
	<-l.slot(matchID)
}

// forget drops a match's lock entry so the map does not grow forever. Only
// called after the match reached a terminal state and the lock was released:
// a straggler racing the removal gets a fresh channel, reads the terminal
// status inside its transaction, and fails there.
func (l *matchLocks) forget(matchID string) {
	l.mu.Lock()
	delete(l.slots, matchID)
	l.mu.Unlock()
}
