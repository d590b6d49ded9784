// Package game holds the game master persona's adventure state and dice rules.
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

type Outcome string

const (
	CriticalSuccess Outcome = "critical_success"
	Success         Outcome = "success"
	PartialSuccess  Outcome = "partial_success"
	Failure         Outcome = "failure"
)

const (
	DefaultSides      = 20
	DefaultDifficulty = 12
	neutralStat       = 10
	bandWidth         = 5
)

var difficultyClasses = map[string]int{
	"easy":      8,
	"normal":    12,
	"hard":      15,
	"very_hard": 18,
}

var ErrInvalidSides = errors.New("dice must have at least one side")

// Roller draws a uniform integer in [1, sides].
type Roller func(sides int) int

// RandomRoller uses r, or the global source when r is nil.
func RandomRoller(r *rand.Rand) Roller {
	return func(sides int) int {
		if r == nil {
			return rand.IntN(sides) + 1
		}
		return r.IntN(sides) + 1
	}
}

// FixedRoller always returns the same face; used to replay a roll.
func FixedRoller(face int) Roller {
	return func(int) int { return face }
}

// Modifier maps a stat to its bonus: (stat-10)/2 rounded toward negative infinity.
func Modifier(stat int) int {
	d := stat - neutralStat
	q := d / 2
	if d%2 != 0 && d < 0 {
		q--
	}
	return q
}

// DifficultyClass returns the threshold for a named difficulty, defaulting to normal.
func DifficultyClass(name string) int {
	if dc, ok := difficultyClasses[strings.ToLower(strings.TrimSpace(name))]; ok {
		return dc
	}
	return DefaultDifficulty
}

// Classify buckets total against dc. Each boundary is inclusive: dc+5 is critical,
// dc is success, dc-5 is partial.
func Classify(total, dc int) Outcome {
	switch {
	case total >= dc+bandWidth:
		return CriticalSuccess
	case total >= dc:
		return Success
	case total >= dc-bandWidth:
		return PartialSuccess
	default:
		return Failure
	}
}

type Check struct {
	Skill      string
	Stat       int
	Difficulty int
	Roll       int
	Modifier   int
	Total      int
	Outcome    Outcome
}

func (c Check) String() string {
	return fmt.Sprintf("%s check (DC %d): rolled %d %+d = %d, %s",
		strings.ToUpper(c.Skill), c.Difficulty, c.Roll, c.Modifier, c.Total, c.Outcome)
}

// SkillCheck rolls a d20 for the player's skill. Unknown skills use a neutral stat.
func SkillCheck(p PlayerStats, skill, difficulty string, roll Roller) Check {
	stat := p.Stat(skill)
	mod := Modifier(stat)
	dc := DifficultyClass(difficulty)
	face, total, _ := Roll(DefaultSides, mod, roll)
	return Check{
		Skill:      strings.ToLower(strings.TrimSpace(skill)),
		Stat:       stat,
		Difficulty: dc,
		Roll:       face,
		Modifier:   mod,
		Total:      total,
		Outcome:    Classify(total, dc),
	}
}

// Roll draws sides and adds modifier.
func Roll(sides, modifier int, roll Roller) (face, total int, err error) {
	if sides < 1 {
		return 0, 0, ErrInvalidSides
	}
	face = roll(sides)
	return face, face + modifier, nil
}
