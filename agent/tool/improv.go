package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/improv"
	statex "github.com/tanpawarit/Chative-Voice-Agents/agent/state"
)

const performancePreview = 100

func improvTools() []Tool {
	return []Tool{
		{
			Info: describe("start_game", "Start the improv battle for a contestant.",
				map[string]*schema.ParameterInfo{
					"player_name": {Type: schema.String, Desc: "The contestant's name", Required: true},
				}),
			Run: startImprov,
		},
		{
			Info: describe("get_current_scenario", "Get the scenario for the current round.", nil),
			Run:  currentScenario,
		},
		{
			Info: describe("record_performance_and_react", "Record the player's performance for this round and get the tone to react with.",
				map[string]*schema.ParameterInfo{
					"performance_summary": {Type: schema.String, Desc: "Brief summary of what the player did", Required: true},
					"reaction":            {Type: schema.String, Desc: "The host's reaction", Required: true},
				}),
			Run: recordPerformance,
		},
		{
			Info: describe("advance_to_next_round", "Move on after reacting to the current performance.", nil),
			Run:  advanceRound,
		},
		{
			Info: describe("get_game_summary", "Summarize all rounds for the closing.", nil),
			Run:  improvSummary,
		},
		{
			Info: describe("end_game", "End the show.", nil),
			Run:  endImprov,
		},
		{
			Info: describe("get_current_state", "Get the current game state.", nil),
			Run:  improvState,
		},
	}
}

func show(env *Env, st *statex.SessionState) *improv.Game {
	if st.Improv == nil {
		g := improv.NewGame(env.Show)
		st.Improv = &g
	}
	return st.Improv
}

func startImprov(_ context.Context, env *Env, st *statex.SessionState, args Args) (string, error) {
	g := show(env, st)
	player := args.String("player_name")
	s, err := g.Start(player, env.Rand)
	switch {
	case errors.Is(err, improv.ErrAlreadyStarted):
		return fmt.Sprintf("The game with %s is already running, round %d of %d.", g.PlayerName, g.Round, g.MaxRounds), nil
	case errors.Is(err, improv.ErrPoolEmpty):
		return "There are no scenarios loaded, so the game can't start. Apologize and chat with the player instead.", nil
	case err != nil:
		return "", err
	}
	return strings.Join([]string{
		"GAME STARTED!",
		"",
		"Player: " + player,
		"Show: " + g.ShowName,
		fmt.Sprintf("Total Rounds: %d", g.MaxRounds),
		"",
		fmt.Sprintf("ROUND 1 SCENARIO: %q", s.Title),
		"",
		s.Setup,
		"",
		fmt.Sprintf("Tell %s to begin their improv performance!", player),
	}, "\n"), nil
}

func currentScenario(_ context.Context, env *Env, st *statex.SessionState, _ Args) (string, error) {
	g := show(env, st)
	if g.Current == nil {
		return "No active scenario. Start the game first!", nil
	}
	s := g.Current
	difficulty := s.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}
	return strings.Join([]string{
		fmt.Sprintf("ROUND %d SCENARIO: %q", g.Round, s.Title),
		"",
		s.Setup,
		"",
		"Difficulty: " + difficulty,
		"Tags: " + strings.Join(s.Tags, ", "),
	}, "\n"), nil
}

func recordPerformance(_ context.Context, env *Env, st *statex.SessionState, args Args) (string, error) {
	g := show(env, st)
	round, err := g.Record(args.String("performance_summary"), args.String("reaction"), env.Rand)
	if errors.Is(err, improv.ErrNoActiveRound) {
		return "There's no round waiting for a performance. Start the game or advance to the next round first.", nil
	}
	return strings.Join([]string{
		fmt.Sprintf("ROUND %d RECORDED", round.Number),
		"",
		"Performance: " + round.Performance,
		"Reaction Tone: " + string(round.Tone),
		"",
		fmt.Sprintf("Host should now deliver the reaction with a %s tone.", round.Tone),
	}, "\n"), nil
}

func advanceRound(_ context.Context, env *Env, st *statex.SessionState, _ Args) (string, error) {
	g := show(env, st)
	next, closing, err := g.Advance(env.Rand)
	switch {
	case errors.Is(err, improv.ErrNotStarted):
		return "The game hasn't started yet. Ask for the player's name and start it.", nil
	case errors.Is(err, improv.ErrGameOver):
		return "All rounds are already complete. Give the final summary and say goodbye.", nil
	case err != nil:
		return "", err
	}
	if closing {
		return strings.Join([]string{
			"ALL ROUNDS COMPLETE!",
			"",
			fmt.Sprintf("Completed: %d rounds", len(g.Rounds)),
			"Phase: Closing",
			"",
			"Time for the final summary and goodbye!",
		}, "\n"), nil
	}
	return strings.Join([]string{
		fmt.Sprintf("ADVANCING TO ROUND %d", g.Round),
		"",
		fmt.Sprintf("NEW SCENARIO: %q", next.Title),
		"",
		next.Setup,
		"",
		"Announce the new scenario to the player!",
	}, "\n"), nil
}

func improvSummary(_ context.Context, env *Env, st *statex.SessionState, _ Args) (string, error) {
	g := show(env, st)
	if len(g.Rounds) == 0 {
		return "No rounds played yet.", nil
	}
	sum := g.Summarize(env.Rand)

	lines := []string{
		"IMPROV BATTLE SUMMARY for " + sum.Player,
		fmt.Sprintf("Rounds Played: %d", len(sum.Rounds)),
		"",
		"Round Highlights:",
	}
	for _, r := range sum.Rounds {
		perf := r.Performance
		if runes := []rune(perf); len(runes) > performancePreview {
			perf = string(runes[:performancePreview]) + "..."
		}
		lines = append(lines,
			fmt.Sprintf("[%s] Round %d: %s", r.Tone, r.Number, r.ScenarioTitle),
			"   Performance: "+perf,
		)
	}
	lines = append(lines,
		"",
		"Feedback Breakdown: "+sum.String(),
		"",
		"Player Style: "+sum.Style,
	)
	return strings.Join(lines, "\n"), nil
}

func endImprov(_ context.Context, env *Env, st *statex.SessionState, _ Args) (string, error) {
	g := show(env, st)
	g.End()
	player := g.PlayerName
	if player == "" {
		player = "Not set"
	}
	return strings.Join([]string{
		"GAME ENDED",
		"",
		"Player: " + player,
		fmt.Sprintf("Rounds Completed: %d/%d", len(g.Rounds), g.MaxRounds),
		"Final Phase: Done",
		"",
		"Thank the player and sign off!",
	}, "\n"), nil
}

func improvState(_ context.Context, env *Env, st *statex.SessionState, _ Args) (string, error) {
	g := show(env, st)
	player := g.PlayerName
	if player == "" {
		player = "Not set"
	}
	return strings.Join([]string{
		"CURRENT GAME STATE",
		"",
		"Player: " + player,
		"Phase: " + string(g.Phase),
		fmt.Sprintf("Current Round: %d/%d", g.Round, g.MaxRounds),
		fmt.Sprintf("Rounds Completed: %d", len(g.Rounds)),
		fmt.Sprintf("Game Started: %t", g.Started()),
		fmt.Sprintf("Scenarios Remaining: %d", len(g.Pool)),
	}, "\n"), nil
}
