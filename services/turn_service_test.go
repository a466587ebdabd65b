package services

import (
	"testing"

	"agent-arena/models"
)

// startedMatch builds a Running two-seat match and returns it with its
// agents, the usual turn recording setup.
func startedMatch(t *testing.T, a *testArena) (*models.Match, *models.Agent, *models.Agent) {
	t.Helper()
	creator := a.user(t, "alice")
	gt := a.gameType(t, "leduc-holdem")
	ag1 := a.readyAgent(t, creator.ID, "poker-1", gt.ID)
	ag2 := a.readyAgent(t, creator.ID, "poker-2", gt.ID)

	match, err := a.Matches.Create(creator.ID, NewMatchInput{
		Name: "turn log game", GameTypeID: gt.ID, TotalGames: 3, AgentIDs: []string{ag1.ID, ag2.ID},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := a.Matches.Start(match.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	return match, ag1, ag2
}

// TestAppendTurnGaplessOrder checks indices must run 0,1,2 with no gaps and
// no repeats.
func TestAppendTurnGaplessOrder(t *testing.T) {
	a := newTestArena(t)
	match, ag1, ag2 := startedMatch(t, a)

	if _, err := a.Turns.AppendTurn(match.ID, 0, `{"deal":1}`, map[string]int64{ag1.ID: 1, ag2.ID: -1}); err != nil {
		t.Fatalf("turn 0: %v", err)
	}

	// Skipping ahead is rejected and leaves the log untouched.
	_, err := a.Turns.AppendTurn(match.ID, 2, `{"deal":3}`, nil)
	wantKind(t, err, models.ErrInvalidOrder)

	// So is replaying an index already written.
	_, err = a.Turns.AppendTurn(match.ID, 0, `{"deal":1}`, nil)
	wantKind(t, err, models.ErrInvalidOrder)

	if _, err := a.Turns.AppendTurn(match.ID, 1, `{"deal":2}`, map[string]int64{ag1.ID: 2, ag2.ID: -2}); err != nil {
		t.Fatalf("turn 1: %v", err)
	}

	turns, err := a.Turns.ListTurns(match.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 recorded turns, got %d", len(turns))
	}
	for i, turn := range turns {
		if turn.ITurn != i {
			t.Fatalf("turn %d has index %d", i, turn.ITurn)
		}
	}
}

// TestAppendTurnFirstIndexIsZero checks a fresh log only accepts index 0.
func TestAppendTurnFirstIndexIsZero(t *testing.T) {
	a := newTestArena(t)
	match, _, _ := startedMatch(t, a)

	_, err := a.Turns.AppendTurn(match.ID, 1, `{}`, nil)
	wantKind(t, err, models.ErrInvalidOrder)
}

// TestAppendTurnOnlyWhileRunning checks no turns land on Pending or
// terminal matches.
func TestAppendTurnOnlyWhileRunning(t *testing.T) {
	a := newTestArena(t)
	creator := a.user(t, "alice")
	gt := a.gameType(t, "uno")

	match, err := a.Matches.Create(creator.ID, NewMatchInput{
		Name: "not started", GameTypeID: gt.ID, TotalGames: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = a.Turns.AppendTurn(match.ID, 0, `{}`, nil)
	wantKind(t, err, models.ErrInvalidState)

	if err := a.Matches.Cancel(match.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err = a.Turns.AppendTurn(match.ID, 0, `{}`, nil)
	wantKind(t, err, models.ErrInvalidState)
}

// TestAppendTurnRejectsForeignAgentDelta checks score deltas may only name
// slot holders.
func TestAppendTurnRejectsForeignAgentDelta(t *testing.T) {
	a := newTestArena(t)
	match, ag1, _ := startedMatch(t, a)
	outsider := a.readyAgent(t, a.user(t, "bob").ID, "gate-crasher", a.gameType(t, "leduc-holdem").ID)

	_, err := a.Turns.AppendTurn(match.ID, 0, `{}`, map[string]int64{ag1.ID: 1, outsider.ID: -1})
	wantKind(t, err, models.ErrIneligible)

	turns, _ := a.Turns.ListTurns(match.ID)
	if len(turns) != 0 {
		t.Fatalf("expected rejected turn not to be written, found %d", len(turns))
	}
}

// TestCumulativeScores checks deltas sum per agent across the log.
func TestCumulativeScores(t *testing.T) {
	a := newTestArena(t)
	match, ag1, ag2 := startedMatch(t, a)

	deltas := []map[string]int64{
		{ag1.ID: 5, ag2.ID: -5},
		{ag1.ID: -3, ag2.ID: 3},
		{ag1.ID: 1, ag2.ID: -1},
	}
	for i, d := range deltas {
		if _, err := a.Turns.AppendTurn(match.ID, i, `{}`, d); err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
	}

	totals, err := a.Turns.CumulativeScores(match.ID)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if totals[ag1.ID] != 3 || totals[ag2.ID] != -3 {
		t.Fatalf("unexpected totals: %v", totals)
	}
}

// TestGetTurnByIndex checks single-turn lookup and the miss case.
func TestGetTurnByIndex(t *testing.T) {
	a := newTestArena(t)
	match, ag1, ag2 := startedMatch(t, a)

	if _, err := a.Turns.AppendTurn(match.ID, 0, `{"deal":1}`, map[string]int64{ag1.ID: 1, ag2.ID: -1}); err != nil {
		t.Fatalf("turn 0: %v", err)
	}

	turn, err := a.Turns.GetTurn(match.ID, 0)
	if err != nil {
		t.Fatalf("get turn: %v", err)
	}
	if turn.Log != `{"deal":1}` {
		t.Fatalf("unexpected payload %q", turn.Log)
	}

	_, err = a.Turns.GetTurn(match.ID, 7)
	wantKind(t, err, models.ErrNotFound)
}
