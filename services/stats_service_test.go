package services

import (
	"testing"

	"agent-arena/models"
)

// seedRecord writes played/won counters straight onto an agent row.
func seedRecord(t *testing.T, a *testArena, agentID string, played, won int) {
	t.Helper()
	err := a.DB.Model(&models.Agent{}).Where("id = ?", agentID).
		Updates(map[string]interface{}{"played_games": played, "won_games": won}).Error
	if err != nil {
		t.Fatalf("seed record for %s: %v", agentID, err)
	}
}

// TestApplyMatchResultCounters checks a completion bumps played_games for
// everyone and won_games for the winner only.
func TestApplyMatchResultCounters(t *testing.T) {
	a := newTestArena(t)
	owner := a.user(t, "alice")
	gt := a.gameType(t, "leduc-holdem")
	winner := a.readyAgent(t, owner.ID, "poker-1", gt.ID)
	loser := a.readyAgent(t, owner.ID, "poker-2", gt.ID)

	if err := a.Stats.ApplyMatchResult(a.DB, []string{winner.ID, loser.ID}, &winner.ID); err != nil {
		t.Fatalf("apply match result: %v", err)
	}
	if err := a.Stats.RecomputeGameType(gt.ID); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	var w, l models.Agent
	a.DB.First(&w, "id = ?", winner.ID)
	a.DB.First(&l, "id = ?", loser.ID)
	if w.PlayedGames != 1 || w.WonGames != 1 {
		t.Fatalf("winner record %d/%d, want 1/1", w.WonGames, w.PlayedGames)
	}
	if l.PlayedGames != 1 || l.WonGames != 0 {
		t.Fatalf("loser record %d/%d, want 0/1", l.WonGames, l.PlayedGames)
	}

	ranked, err := a.Stats.ListRanked(gt.ID)
	if err != nil {
		t.Fatalf("list ranked: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked agents, got %d", len(ranked))
	}
	if ranked[0].AgentID != winner.ID || ranked[0].Rank != 1 {
		t.Fatalf("expected winner at rank 1, got %s at %d", ranked[0].AgentID, ranked[0].Rank)
	}
}

// TestApplyMatchResultNoWinner checks a drawn match counts as played for
// everyone and won for nobody.
func TestApplyMatchResultNoWinner(t *testing.T) {
	a := newTestArena(t)
	owner := a.user(t, "alice")
	gt := a.gameType(t, "leduc-holdem")
	ag1 := a.readyAgent(t, owner.ID, "poker-1", gt.ID)
	ag2 := a.readyAgent(t, owner.ID, "poker-2", gt.ID)

	if err := a.Stats.ApplyMatchResult(a.DB, []string{ag1.ID, ag2.ID}, nil); err != nil {
		t.Fatalf("apply match result: %v", err)
	}

	var total int64
	a.DB.Model(&models.Agent{}).Where("won_games > 0").Count(&total)
	if total != 0 {
		t.Fatalf("expected no wins recorded, found %d agents with wins", total)
	}
}

// TestRankingOrder checks the full ordering chain: win rate first, then
// total wins, then agent id, with decommissioned and unplayed agents left
// out entirely.
func TestRankingOrder(t *testing.T) {
	a := newTestArena(t)
	owner := a.user(t, "alice")
	gt := a.gameType(t, "uno")

	strong := a.readyAgent(t, owner.ID, "strong", gt.ID)  // 75% over 4
	veteran := a.readyAgent(t, owner.ID, "veteran", gt.ID) // 50% over 10
	rookie := a.readyAgent(t, owner.ID, "rookie", gt.ID)   // 50% over 2
	fresh := a.readyAgent(t, owner.ID, "fresh", gt.ID)     // never played
	retired := a.readyAgent(t, owner.ID, "retired", gt.ID) // decommissioned

	seedRecord(t, a, strong.ID, 4, 3)
	seedRecord(t, a, veteran.ID, 10, 5)
	seedRecord(t, a, rookie.ID, 2, 1)
	seedRecord(t, a, retired.ID, 20, 20)
	if err := a.Agents.DeleteAgent(owner.ID, retired.ID); err != nil {
		t.Fatalf("retire agent: %v", err)
	}

	if err := a.Stats.RecomputeGameType(gt.ID); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	ranked, err := a.Stats.ListRanked(gt.ID)
	if err != nil {
		t.Fatalf("list ranked: %v", err)
	}
	want := []string{strong.ID, veteran.ID, rookie.ID}
	if len(ranked) != len(want) {
		t.Fatalf("expected %d ranked agents, got %d", len(want), len(ranked))
	}
	for i, id := range want {
		if ranked[i].AgentID != id {
			t.Fatalf("rank %d: expected %s, got %s", i+1, id, ranked[i].AgentID)
		}
		if ranked[i].Rank != i+1 {
			t.Fatalf("rank %d stored as %d", i+1, ranked[i].Rank)
		}
	}
	_ = fresh // excluded by played_games = 0
}

// TestRankingTieBreakByAgentID checks identical records order by agent id
// so recomputes are deterministic.
func TestRankingTieBreakByAgentID(t *testing.T) {
	a := newTestArena(t)
	owner := a.user(t, "alice")
	gt := a.gameType(t, "uno")

	ag1 := a.readyAgent(t, owner.ID, "twin-1", gt.ID)
	ag2 := a.readyAgent(t, owner.ID, "twin-2", gt.ID)
	seedRecord(t, a, ag1.ID, 4, 2)
	seedRecord(t, a, ag2.ID, 4, 2)

	if err := a.Stats.RecomputeGameType(gt.ID); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	ranked, err := a.Stats.ListRanked(gt.ID)
	if err != nil {
		t.Fatalf("list ranked: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked agents, got %d", len(ranked))
	}
	first, second := ag1.ID, ag2.ID
	if second < first {
		first, second = second, first
	}
	if ranked[0].AgentID != first || ranked[1].AgentID != second {
		t.Fatalf("tie not broken by agent id: got %s then %s", ranked[0].AgentID, ranked[1].AgentID)
	}
}

// TestRecomputeUpdatesExistingEntries checks re-ranking rewrites rows in
// place instead of stacking duplicates.
func TestRecomputeUpdatesExistingEntries(t *testing.T) {
	a := newTestArena(t)
	owner := a.user(t, "alice")
	gt := a.gameType(t, "uno")

	ag1 := a.readyAgent(t, owner.ID, "climber", gt.ID)
	ag2 := a.readyAgent(t, owner.ID, "slipper", gt.ID)
	seedRecord(t, a, ag1.ID, 4, 1)
	seedRecord(t, a, ag2.ID, 4, 3)
	if err := a.Stats.RecomputeGameType(gt.ID); err != nil {
		t.Fatalf("first recompute: %v", err)
	}

	// The records flip, the ranks should follow.
	seedRecord(t, a, ag1.ID, 6, 5)
	if err := a.Stats.RecomputeGameType(gt.ID); err != nil {
		t.Fatalf("second recompute: %v", err)
	}

	var rows int64
	a.DB.Model(&models.StatsEntry{}).Where("game_type_id = ?", gt.ID).Count(&rows)
	if rows != 2 {
		t.Fatalf("expected 2 stats rows after recompute, got %d", rows)
	}
	ranked, _ := a.Stats.ListRanked(gt.ID)
	if ranked[0].AgentID != ag1.ID {
		t.Fatalf("expected climber at rank 1 after record flip, got %s", ranked[0].AgentID)
	}
}

// TestRebuildAll checks every game type with ranked agents gets refreshed.
func TestRebuildAll(t *testing.T) {
	a := newTestArena(t)
	owner := a.user(t, "alice")
	uno := a.gameType(t, "uno")
	gin := a.gameType(t, "gin-rummy")

	unoBot := a.readyAgent(t, owner.ID, "uno-bot", uno.ID)
	ginBot := a.readyAgent(t, owner.ID, "gin-bot", gin.ID)
	seedRecord(t, a, unoBot.ID, 2, 1)
	seedRecord(t, a, ginBot.ID, 3, 3)

	if err := a.Stats.RebuildAll(); err != nil {
		t.Fatalf("rebuild all: %v", err)
	}

	for _, gtID := range []string{uno.ID, gin.ID} {
		ranked, err := a.Stats.ListRanked(gtID)
		if err != nil {
			t.Fatalf("list ranked %s: %v", gtID, err)
		}
		if len(ranked) != 1 {
			t.Fatalf("expected 1 ranked agent for %s, got %d", gtID, len(ranked))
		}
	}
}
