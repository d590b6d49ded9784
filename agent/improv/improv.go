// Package improv tracks an improv battle: scenario draws, rounds and the host's
// reaction tones.
package improv

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/catalog"
)

type Phase string

const (
	PhaseIntro    Phase = "intro"
	PhaseAwaiting Phase = "awaiting_improv"
	PhaseReacting Phase = "reacting"
	PhaseClosing  Phase = "closing"
	PhaseDone     Phase = "done"
)

type Tone string

const (
	TonePositive Tone = "positive"
	ToneMixed    Tone = "mixed"
	ToneCritical Tone = "critical"
)

const (
	DefaultShowName = "Improv Battle"
	defaultStyle    = "The Improviser - You brought creativity to every scene!"
)

var (
	ErrPoolEmpty      = errors.New("no scenarios left")
	ErrAlreadyStarted = errors.New("game already started")
	ErrNotStarted     = errors.New("game not started")
	ErrNoActiveRound  = errors.New("no round awaiting a performance")
	ErrGameOver       = errors.New("game is over")
)

// Rand is satisfied by *rand.Rand from math/rand/v2.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type Round struct {
	Number        int    `json:"round_number"`
	ScenarioTitle string `json:"scenario_title"`
	ScenarioSetup string `json:"scenario_setup"`
	Performance   string `json:"player_performance"`
	Reaction      string `json:"host_reaction"`
	Tone          Tone   `json:"tone"`
}

// Game is the improv host's session state.
type Game struct {
	PlayerName   string             `json:"player_name,omitempty"`
	ShowName     string             `json:"show_name"`
	Round        int                `json:"current_round"`
	MaxRounds    int                `json:"max_rounds"`
	Phase        Phase              `json:"phase"`
	Rounds       []Round            `json:"rounds,omitempty"`
	Pool         []catalog.Scenario `json:"available_scenarios"`
	Current      *catalog.Scenario  `json:"current_scenario,omitempty"`
	PlayerStyles []string           `json:"player_styles,omitempty"`
}

func NewGame(show catalog.Show) Game {
	name := strings.TrimSpace(show.Info.Name)
	if name == "" {
		name = DefaultShowName
	}
	pool := make([]catalog.Scenario, len(show.Scenarios))
	copy(pool, show.Scenarios)
	return Game{
		ShowName:     name,
		MaxRounds:    show.MaxRounds(),
		Phase:        PhaseIntro,
		Pool:         pool,
		PlayerStyles: append([]string(nil), show.PlayerStyles...),
	}
}

func (g *Game) Started() bool {
	return g.Phase != "" && g.Phase != PhaseIntro
}

// draw removes and returns a random scenario from the pool.
func (g *Game) draw(r Rand) (catalog.Scenario, error) {
	if len(g.Pool) == 0 {
		return catalog.Scenario{}, ErrPoolEmpty
	}
	i := r.IntN(len(g.Pool))
	s := g.Pool[i]
	g.Pool = append(g.Pool[:i], g.Pool[i+1:]...)
	return s, nil
}

// Start names the contestant and draws round one. An empty pool leaves the game in intro.
func (g *Game) Start(player string, r Rand) (catalog.Scenario, error) {
	if g.Started() {
		return catalog.Scenario{}, ErrAlreadyStarted
	}
	s, err := g.draw(r)
	if err != nil {
		return catalog.Scenario{}, err
	}
	g.PlayerName = strings.TrimSpace(player)
	g.Round = 1
	g.Phase = PhaseAwaiting
	g.Current = &s
	return s, nil
}

// Record stores the performance of the current round with a tone drawn 40/35/25.
func (g *Game) Record(performance, reaction string, r Rand) (Round, error) {
	if g.Phase != PhaseAwaiting || g.Current == nil {
		return Round{}, ErrNoActiveRound
	}
	round := Round{
		Number:        g.Round,
		ScenarioTitle: g.Current.Title,
		ScenarioSetup: g.Current.Setup,
		Performance:   strings.TrimSpace(performance),
		Reaction:      strings.TrimSpace(reaction),
		Tone:          DrawTone(r),
	}
	g.Rounds = append(g.Rounds, round)
	g.Phase = PhaseReacting
	return round, nil
}

func DrawTone(r Rand) Tone {
	switch f := r.Float64(); {
	case f < 0.40:
		return TonePositive
	case f < 0.75:
		return ToneMixed
	default:
		return ToneCritical
	}
}

// Advance moves to the next round. It returns closing=true once MaxRounds have been
// played or the pool has run dry.
func (g *Game) Advance(r Rand) (next catalog.Scenario, closing bool, err error) {
	switch g.Phase {
	case PhaseAwaiting, PhaseReacting:
	case PhaseClosing, PhaseDone:
		return catalog.Scenario{}, true, ErrGameOver
	default:
		return catalog.Scenario{}, false, ErrNotStarted
	}

	if g.Round >= g.MaxRounds {
		g.close()
		return catalog.Scenario{}, true, nil
	}
	s, err := g.draw(r)
	if errors.Is(err, ErrPoolEmpty) {
		g.close()
		return catalog.Scenario{}, true, nil
	}
	g.Round++
	g.Phase = PhaseAwaiting
	g.Current = &s
	return s, false, nil
}

func (g *Game) close() {
	g.Phase = PhaseClosing
	g.Current = nil
}

func (g *Game) End() { g.Phase = PhaseDone }

type Summary struct {
	Player   string
	Rounds   []Round
	Positive int
	Mixed    int
	Critical int
	Style    string
}

func (s Summary) String() string {
	return fmt.Sprintf("%d stellar, %d good, %d needs work", s.Positive, s.Mixed, s.Critical)
}

// Summarize counts tones and picks a player style at random.
func (g *Game) Summarize(r Rand) Summary {
	sum := Summary{Player: g.PlayerName, Rounds: append([]Round(nil), g.Rounds...)}
	for _, round := range g.Rounds {
		switch round.Tone {
		case TonePositive:
			sum.Positive++
		case ToneMixed:
			sum.Mixed++
		case ToneCritical:
			sum.Critical++
		}
	}
	styles := g.PlayerStyles
	if len(styles) == 0 {
		styles = []string{defaultStyle}
	}
	sum.Style = styles[r.IntN(len(styles))]
	return sum
}
