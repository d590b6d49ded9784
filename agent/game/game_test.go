package game

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestModifierFloors(t *testing.T) {
	t.Parallel()

	cases := map[int]int{10: 0, 11: 0, 12: 1, 15: 2, 9: -1, 8: -1, 7: -2, 1: -5, 20: 5}
	for stat, want := range cases {
		if got := Modifier(stat); got != want {
			t.Fatalf("Modifier(%d) = %d, want %d", stat, got, want)
		}
	}
}

func TestClassifyBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total int
		want  Outcome
	}{
		{total: 17, want: CriticalSuccess},
		{total: 16, want: Success},
		{total: 12, want: Success},
		{total: 11, want: PartialSuccess},
		{total: 7, want: PartialSuccess},
		{total: 6, want: Failure},
	}
	for _, tt := range tests {
		if got := Classify(tt.total, 12); got != tt.want {
			t.Fatalf("Classify(%d, 12) = %s, want %s", tt.total, got, tt.want)
		}
	}
}

func TestSkillCheckIsDeterministic(t *testing.T) {
	t.Parallel()

	p := NewAdventure().Player
	p.Strength = 14

	check := SkillCheck(p, "Strength", "normal", FixedRoller(15))
	if check.Modifier != 2 || check.Total != 17 || check.Difficulty != 12 {
		t.Fatalf("SkillCheck() = %+v", check)
	}
	if check.Outcome != CriticalSuccess {
		t.Fatalf("17 against DC 12 = %s, want critical_success", check.Outcome)
	}

	check = SkillCheck(p, "strength", "normal", FixedRoller(14))
	if check.Outcome != Success {
		t.Fatalf("16 against DC 12 = %s, want success", check.Outcome)
	}

	unknown := SkillCheck(p, "charisma", "impossible", FixedRoller(10))
	if unknown.Stat != 10 || unknown.Modifier != 0 || unknown.Difficulty != DefaultDifficulty {
		t.Fatalf("unknown skill/difficulty = %+v", unknown)
	}
}

func TestRandomRollerStaysInRange(t *testing.T) {
	t.Parallel()

	roll := RandomRoller(rand.New(rand.NewPCG(1, 2)))
	for range 500 {
		face, _, err := Roll(6, 0, roll)
		if err != nil {
			t.Fatalf("Roll() error = %v", err)
		}
		if face < 1 || face > 6 {
			t.Fatalf("face %d out of range", face)
		}
	}
	if _, _, err := Roll(0, 0, roll); !errors.Is(err, ErrInvalidSides) {
		t.Fatalf("Roll(0) error = %v", err)
	}
}

func TestStoryArcThresholds(t *testing.T) {
	t.Parallel()

	want := map[int]Arc{0: ArcBeginning, 3: ArcBeginning, 4: ArcRising, 7: ArcRising, 8: ArcClimax, 11: ArcClimax, 12: ArcResolution, 30: ArcResolution}
	for turns, arc := range want {
		if got := StoryArc(turns); got != arc {
			t.Fatalf("StoryArc(%d) = %s, want %s", turns, got, arc)
		}
	}

	s := NewAdventure()
	for range 8 {
		s.RecordEvent("something happened")
	}
	if s.Arc() != ArcClimax || len(s.Events) != 8 {
		t.Fatalf("after 8 events arc = %s", s.Arc())
	}
	s.Move("Black Forest", "Dark trees.")
	if s.Turns != 8 || len(s.Events) != 9 {
		t.Fatalf("Move() must log but not advance: turns=%d events=%d", s.Turns, len(s.Events))
	}
}

func TestChangeHealthClampsAndConditions(t *testing.T) {
	t.Parallel()

	s := NewAdventure()
	if before := s.ChangeHealth(-60); before != 100 || s.Player.Health != 40 || s.Player.Condition() != Injured {
		t.Fatalf("after -60: %d %s", s.Player.Health, s.Player.Condition())
	}
	s.ChangeHealth(-20)
	if s.Player.Condition() != Critical {
		t.Fatalf("20 hp = %s", s.Player.Condition())
	}
	s.ChangeHealth(500)
	if s.Player.Health != 100 || s.Player.Condition() != Healthy {
		t.Fatalf("heal must clamp: %d", s.Player.Health)
	}
	s.ChangeHealth(-1000)
	if s.Player.Health != 0 || s.Player.Condition() != Dead {
		t.Fatalf("damage must clamp: %d", s.Player.Health)
	}
}

func TestInventoryAndQuests(t *testing.T) {
	t.Parallel()

	s := NewAdventure()
	removed, err := s.RemoveItem("potion")
	if err != nil || removed != "2 Swallow Potions" {
		t.Fatalf("RemoveItem() = %q %v", removed, err)
	}
	if _, err := s.RemoveItem("crossbow"); !errors.Is(err, ErrItemNotHeld) {
		t.Fatalf("RemoveItem(crossbow) error = %v", err)
	}
	if err := s.AddItem("  "); !errors.Is(err, ErrBlank) {
		t.Fatalf("AddItem(blank) error = %v", err)
	}

	if _, err := s.AddQuest("The Black Forest Beast", "Kill it"); err != nil {
		t.Fatalf("AddQuest() error = %v", err)
	}
	q, err := s.CompleteQuest("forest", 200)
	if err != nil || q.Status != "completed" {
		t.Fatalf("CompleteQuest() = %+v %v", q, err)
	}
	if s.Player.Gold != 250 || len(s.ActiveQuests) != 0 || len(s.CompletedQuests) != 1 {
		t.Fatalf("unexpected quest state %+v", s)
	}
	if _, err := s.CompleteQuest("forest", 10); !errors.Is(err, ErrQuestNotActive) {
		t.Fatalf("second CompleteQuest() error = %v", err)
	}

	if _, err := s.MeetNPC("Yorick", "innkeeper", "friendly"); err != nil || len(s.NPCs) != 1 {
		t.Fatalf("MeetNPC() error = %v", err)
	}
}
