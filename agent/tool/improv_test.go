package tool

import (
	"testing"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/catalog"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/improv"
)

type scriptedRand struct {
	floats []float64
}

func (s *scriptedRand) IntN(int) int { return 0 }

func (s *scriptedRand) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func improvShow() catalog.Show {
	return catalog.Show{
		Info: catalog.ShowInfo{Name: "Improv Battle", MaxRounds: 2},
		Scenarios: []catalog.Scenario{
			{ID: "s1", Title: "The Barista Time Traveler", Setup: "You serve coffee in 1850.", Difficulty: "easy", Tags: []string{"time"}},
			{ID: "s2", Title: "Haunted Elevator", Setup: "The elevator only goes down."},
			{ID: "s3", Title: "Robot Job Interview", Setup: "You interview a toaster."},
		},
	}
}

func TestImprovShowRuns(t *testing.T) {
	t.Parallel()

	ex := newExecutor(t, SetImprov, Env{Show: improvShow(), Rand: &scriptedRand{floats: []float64{0.1, 0.9}}})
	st := newSession("improv")

	mustContain(t, call(t, ex, st, "get_current_scenario", nil), "No active scenario.")
	mustContain(t, call(t, ex, st, "advance_to_next_round", nil), "hasn't started yet")
	mustContain(t, call(t, ex, st, "record_performance_and_react", map[string]any{"performance_summary": "x"}), "no round waiting")

	mustContain(t, call(t, ex, st, "start_game", map[string]any{"player_name": "Priya"}),
		"GAME STARTED!", "Player: Priya", "Total Rounds: 2", `ROUND 1 SCENARIO: "The Barista Time Traveler"`)
	mustContain(t, call(t, ex, st, "start_game", map[string]any{"player_name": "Priya"}), "already running, round 1 of 2")
	mustContain(t, call(t, ex, st, "get_current_scenario", nil), "Difficulty: easy", "Tags: time")

	mustContain(t, call(t, ex, st, "record_performance_and_react", map[string]any{"performance_summary": "Sold espresso to a duke", "reaction": "Bold!"}),
		"ROUND 1 RECORDED", "Reaction Tone: positive")
	mustContain(t, call(t, ex, st, "advance_to_next_round", nil), "ADVANCING TO ROUND 2", `NEW SCENARIO: "Haunted Elevator"`)
	mustContain(t, call(t, ex, st, "record_performance_and_react", map[string]any{"performance_summary": "Screamed a lot"}),
		"Reaction Tone: critical")
	mustContain(t, call(t, ex, st, "advance_to_next_round", nil), "ALL ROUNDS COMPLETE!", "Completed: 2 rounds")
	mustContain(t, call(t, ex, st, "advance_to_next_round", nil), "already complete")

	mustContain(t, call(t, ex, st, "get_game_summary", nil),
		"IMPROV BATTLE SUMMARY for Priya", "[positive] Round 1: The Barista Time Traveler", "1 stellar, 0 good, 1 needs work", "Player Style: The Improviser")
	mustContain(t, call(t, ex, st, "get_current_state", nil), "Phase: closing", "Current Round: 2/2", "Scenarios Remaining: 1")
	mustContain(t, call(t, ex, st, "end_game", nil), "GAME ENDED", "Rounds Completed: 2/2")
	if st.Improv.Phase != improv.PhaseDone {
		t.Fatalf("phase = %s, want done", st.Improv.Phase)
	}
}

func TestImprovEmptyPool(t *testing.T) {
	t.Parallel()

	ex := newExecutor(t, SetImprov, Env{Show: catalog.EmptyShow()})
	st := newSession("improv")

	mustContain(t, call(t, ex, st, "start_game", map[string]any{"player_name": "Sam"}), "no scenarios loaded")
	mustContain(t, call(t, ex, st, "get_game_summary", nil), "No rounds played yet.")
	mustContain(t, call(t, ex, st, "get_current_state", nil), "Player: Not set", "Phase: intro", "Game Started: false")
}
