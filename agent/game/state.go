package game

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

type Arc string

const (
	ArcBeginning  Arc = "beginning"
	ArcRising     Arc = "rising"
	ArcClimax     Arc = "climax"
	ArcResolution Arc = "resolution"
)

// StoryArc is derived from the number of recorded events and never stored.
func StoryArc(turns int) Arc {
	switch {
	case turns >= 12:
		return ArcResolution
	case turns >= 8:
		return ArcClimax
	case turns >= 4:
		return ArcRising
	default:
		return ArcBeginning
	}
}

type Condition string

const (
	Healthy  Condition = "Healthy"
	Injured  Condition = "Injured"
	Critical Condition = "Critical"
	Dead     Condition = "Dead"
)

func ConditionFor(health int) Condition {
	switch {
	case health <= 0:
		return Dead
	case health <= 25:
		return Critical
	case health <= 50:
		return Injured
	default:
		return Healthy
	}
}

var (
	ErrItemNotHeld    = errors.New("item not in inventory")
	ErrQuestNotActive = errors.New("quest not active")
	ErrBlank          = errors.New("value must not be blank")
)

type PlayerStats struct {
	Name      string   `json:"name"`
	Health    int      `json:"health"`
	MaxHealth int      `json:"max_health"`
	Strength  int      `json:"strength"`
	Agility   int      `json:"agility"`
	Signs     int      `json:"signs"`
	Gold      int      `json:"gold"`
	Inventory []string `json:"inventory"`
}

// Stat looks a skill up by name; unknown skills are neutral.
func (p PlayerStats) Stat(skill string) int {
	switch strings.ToLower(strings.TrimSpace(skill)) {
	case "strength":
		return p.Strength
	case "agility":
		return p.Agility
	case "signs", "magic":
		return p.Signs
	default:
		return neutralStat
	}
}

func (p PlayerStats) Condition() Condition { return ConditionFor(p.Health) }

type Quest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type NPC struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Attitude string `json:"attitude"`
}

type State struct {
	Player          PlayerStats `json:"player"`
	Location        string      `json:"location"`
	Scene           string      `json:"scene"`
	NPCs            []NPC       `json:"npcs,omitempty"`
	ActiveQuests    []Quest     `json:"active_quests,omitempty"`
	CompletedQuests []Quest     `json:"completed_quests,omitempty"`
	Events          []string    `json:"events,omitempty"`
	Turns           int         `json:"turns"`
}

// NewAdventure is the opening of the monster-hunt story.
func NewAdventure() State {
	return State{
		Player: PlayerStats{
			Name:      "The Witcher",
			Health:    100,
			MaxHealth: 100,
			Strength:  15,
			Agility:   14,
			Signs:     12,
			Gold:      50,
			Inventory: []string{"Steel Sword", "Silver Sword", "2 Swallow Potions", "Witcher Medallion"},
		},
		Location: "Crossroads Inn",
		Scene:    "A stormy night. Rain hammers the roof while frightened villagers huddle by the fire.",
	}
}

func (s *State) Arc() Arc { return StoryArc(s.Turns) }

// ChangeHealth applies change clamped to [0, MaxHealth] and returns the previous value.
func (s *State) ChangeHealth(change int) (before int) {
	before = s.Player.Health
	s.Player.Health = min(max(s.Player.Health+change, 0), s.Player.MaxHealth)
	return before
}

func (s *State) AddItem(item string) error {
	item = strings.TrimSpace(item)
	if item == "" {
		return ErrBlank
	}
	s.Player.Inventory = append(s.Player.Inventory, item)
	return nil
}

// RemoveItem drops the first inventory entry containing item, case-insensitively.
func (s *State) RemoveItem(item string) (string, error) {
	want := strings.ToLower(strings.TrimSpace(item))
	if want != "" {
		for i, have := range s.Player.Inventory {
			if strings.Contains(strings.ToLower(have), want) {
				s.Player.Inventory = slices.Delete(s.Player.Inventory, i, i+1)
				return have, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrItemNotHeld, item)
}

// Move changes location and logs the journey as an event without advancing the turn.
func (s *State) Move(location, description string) (from string) {
	from = s.Location
	s.Location = strings.TrimSpace(location)
	s.Scene = strings.TrimSpace(description)
	s.Events = append(s.Events, fmt.Sprintf("Traveled from %s to %s", from, s.Location))
	return from
}

// RecordEvent logs event and advances the turn counter.
func (s *State) RecordEvent(event string) Arc {
	s.Events = append(s.Events, strings.TrimSpace(event))
	s.Turns++
	return s.Arc()
}

func (s *State) AddQuest(name, description string) (Quest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Quest{}, ErrBlank
	}
	q := Quest{Name: name, Description: strings.TrimSpace(description), Status: "active"}
	s.ActiveQuests = append(s.ActiveQuests, q)
	return q, nil
}

// CompleteQuest closes the first active quest whose name contains name and pays reward.
func (s *State) CompleteQuest(name string, reward int) (Quest, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want != "" {
		for i, q := range s.ActiveQuests {
			if !strings.Contains(strings.ToLower(q.Name), want) {
				continue
			}
			s.ActiveQuests = slices.Delete(s.ActiveQuests, i, i+1)
			q.Status = "completed"
			s.CompletedQuests = append(s.CompletedQuests, q)
			s.Player.Gold += max(reward, 0)
			return q, nil
		}
	}
	return Quest{}, fmt.Errorf("%w: %s", ErrQuestNotActive, name)
}

func (s *State) MeetNPC(name, role, attitude string) (NPC, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return NPC{}, ErrBlank
	}
	npc := NPC{Name: name, Role: strings.TrimSpace(role), Attitude: strings.TrimSpace(attitude)}
	s.NPCs = append(s.NPCs, npc)
	return npc, nil
}
