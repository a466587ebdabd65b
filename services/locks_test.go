package services

import (
	"testing"
	"time"

	"agent-arena/models"
)

// TestMatchLockContention checks a held lock times out with Busy and
// becomes acquirable again after release.
func TestMatchLockContention(t *testing.T) {
	locks := newMatchLocks(20 * time.Millisecond)

	if err := locks.Acquire("m1"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	wantKind(t, locks.Acquire("m1"), models.ErrBusy)

	// Independent matches never contend.
	if err := locks.Acquire("m2"); err != nil {
		t.Fatalf("acquire of unrelated match: %v", err)
	}
	locks.Release("m2")

	locks.Release("m1")
	if err := locks.Acquire("m1"); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	locks.Release("m1")
}

// TestMatchLockForget checks terminal matches leave no entry behind and the
// id stays usable afterwards.
func TestMatchLockForget(t *testing.T) {
	locks := newMatchLocks(20 * time.Millisecond)

	if err := locks.Acquire("m1"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	locks.Release("m1")
	locks.forget("m1")

	if n := len(locks.slots); n != 0 {
		t.Fatalf("expected empty lock table after forget, got %d entries", n)
	}
	if err := locks.Acquire("m1"); err != nil {
		t.Fatalf("acquire after forget: %v", err)
	}
	locks.Release("m1")
}

// TestMatchLockHandoff checks a waiter inside the window gets the lock once
// the holder releases.
func TestMatchLockHandoff(t *testing.T) {
	locks := newMatchLocks(500 * time.Millisecond)

	if err := locks.Acquire("m1"); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- locks.Acquire("m1")
	}()

	time.Sleep(20 * time.Millisecond)
	locks.Release("m1")

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("waiter should have taken the lock: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the released lock")
	}
	locks.Release("m1")
}
