package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/game"
	statex "github.com/tanpawarit/Chative-Voice-Agents/agent/state"
)

func gameMasterTools() []Tool {
	return []Tool{
		{
			Info: describe("roll_skill_check", "Roll a d20 skill check for a risky action.",
				map[string]*schema.ParameterInfo{
					"skill":      {Type: schema.String, Desc: "Skill to test", Enum: []string{"strength", "agility", "signs"}, Required: true},
					"difficulty": {Type: schema.String, Desc: "How hard the action is, default normal", Enum: []string{"easy", "normal", "hard", "very_hard"}},
				}),
			Run: rollSkillCheck,
		},
		{
			Info: describe("update_player_health", "Damage (negative) or heal (positive) the player.",
				map[string]*schema.ParameterInfo{
					"change": {Type: schema.Integer, Desc: "Health change", Required: true},
					"reason": {Type: schema.String, Desc: "What caused it", Required: true},
				}),
			Run: updatePlayerHealth,
		},
		{
			Info: describe("add_to_inventory", "Give the player an item.",
				map[string]*schema.ParameterInfo{
					"item": {Type: schema.String, Desc: "Item name", Required: true},
				}),
			Run: addToInventory,
		},
		{
			Info: describe("remove_from_inventory", "Take an item from the player, e.g. when it is used.",
				map[string]*schema.ParameterInfo{
					"item": {Type: schema.String, Desc: "Item name or part of it", Required: true},
				}),
			Run: removeFromInventory,
		},
		{
			Info: describe("check_inventory", "List what the player carries.", nil),
			Run:  checkInventory,
		},
		{
			Info: describe("get_player_status", "Show health, stats, gold, location and quests.", nil),
			Run:  playerStatus,
		},
		{
			Info: describe("update_location", "Move the player to a new place.",
				map[string]*schema.ParameterInfo{
					"new_location": {Type: schema.String, Desc: "Name of the place", Required: true},
					"description":  {Type: schema.String, Desc: "What the player sees there", Required: true},
				}),
			Run: updateLocation,
		},
		{
			Info: describe("record_event", "Record a story event. Each event advances the story.",
				map[string]*schema.ParameterInfo{
					"event":    {Type: schema.String, Desc: "What happened", Required: true},
					"is_major": {Type: schema.Boolean, Desc: "Whether this is a major story event"},
				}),
			Run: recordEvent,
		},
		{
			Info: describe("add_quest", "Start a new quest.",
				map[string]*schema.ParameterInfo{
					"quest_name":  {Type: schema.String, Desc: "Quest name", Required: true},
					"description": {Type: schema.String, Desc: "What the quest asks", Required: true},
				}),
			Run: addQuest,
		},
		{
			Info: describe("complete_quest", "Complete an active quest and pay the reward.",
				map[string]*schema.ParameterInfo{
					"quest_name":  {Type: schema.String, Desc: "Quest name or part of it", Required: true},
					"reward_gold": {Type: schema.Integer, Desc: "Gold reward, default 0"},
				}),
			Run: completeQuest,
		},
		{
			Info: describe("meet_npc", "Introduce a character the player meets.",
				map[string]*schema.ParameterInfo{
					"npc_name": {Type: schema.String, Desc: "Character name", Required: true},
					"role":     {Type: schema.String, Desc: "Who they are, e.g. innkeeper", Required: true},
					"attitude": {Type: schema.String, Desc: "friendly, neutral or hostile", Required: true},
				}),
			Run: meetNPC,
		},
	}
}

// adventure starts the story on first use.
func adventure(st *statex.SessionState) *game.State {
	if st.Game == nil {
		g := game.NewAdventure()
		st.Game = &g
	}
	return st.Game
}

var outcomeLines = map[game.Outcome]string{
	game.CriticalSuccess: "CRITICAL SUCCESS! Describe a spectacular result.",
	game.Success:         "SUCCESS. The action works.",
	game.PartialSuccess:  "PARTIAL SUCCESS. It works, but with a cost or complication.",
	game.Failure:         "FAILURE. The action fails; describe the consequence.",
}

func rollSkillCheck(_ context.Context, env *Env, st *statex.SessionState, args Args) (string, error) {
	g := adventure(st)
	difficulty := args.String("difficulty")
	if difficulty == "" {
		difficulty = "normal"
	}
	check := game.SkillCheck(g.Player, args.String("skill"), difficulty, env.Roller)
	return check.String() + "\n" + outcomeLines[check.Outcome], nil
}

func updatePlayerHealth(_ context.Context, _ *Env, st *statex.SessionState, args Args) (string, error) {
	g := adventure(st)
	if !args.Has("change") {
		return "update_player_health needs a change amount.", nil
	}
	change := args.Int("change", 0)
	before := g.ChangeHealth(change)
	condition := g.Player.Condition()

	reason := args.String("reason")
	if reason != "" {
		reason = " (" + reason + ")"
	}
	msg := fmt.Sprintf("Health: %d -> %d/%d%s. Condition: %s.", before, g.Player.Health, g.Player.MaxHealth, reason, condition)
	if condition == game.Dead {
		msg += " The player has fallen. Narrate the ending or a last-second rescue."
	}
	return msg, nil
}

func addToInventory(_ context.Context, _ *Env, st *statex.SessionState, args Args) (string, error) {
	g := adventure(st)
	item := args.String("item")
	if err := g.AddItem(item); err != nil {
		return "Which item should I add?", nil
	}
	return fmt.Sprintf("Added %s to inventory. Carrying %d items.", item, len(g.Player.Inventory)), nil
}

func removeFromInventory(_ context.Context, _ *Env, st *statex.SessionState, args Args) (string, error) {
	g := adventure(st)
	item := args.String("item")
	removed, err := g.RemoveItem(item)
	if errors.Is(err, game.ErrItemNotHeld) {
		return fmt.Sprintf("The player doesn't have '%s'.", item), nil
	}
	return fmt.Sprintf("Removed %s from inventory.", removed), nil
}

func checkInventory(_ context.Context, _ *Env, st *statex.SessionState, _ Args) (string, error) {
	g := adventure(st)
	if len(g.Player.Inventory) == 0 {
		return fmt.Sprintf("Inventory is empty. Gold: %d", g.Player.Gold), nil
	}
	lines := []string{"INVENTORY:"}
	for _, item := range g.Player.Inventory {
		lines = append(lines, "- "+item)
	}
	lines = append(lines, fmt.Sprintf("Gold: %d", g.Player.Gold))
	return strings.Join(lines, "\n"), nil
}

func playerStatus(_ context.Context, _ *Env, st *statex.SessionState, _ Args) (string, error) {
	g := adventure(st)
	p := g.Player
	quests := "none"
	if len(g.ActiveQuests) > 0 {
		names := make([]string, 0, len(g.ActiveQuests))
		for _, q := range g.ActiveQuests {
			names = append(names, q.Name)
		}
		quests = strings.Join(names, ", ")
	}
	return strings.Join([]string{
		p.Name,
		fmt.Sprintf("Health: %d/%d (%s)", p.Health, p.MaxHealth, p.Condition()),
		fmt.Sprintf("Strength %d, Agility %d, Signs %d", p.Strength, p.Agility, p.Signs),
		fmt.Sprintf("Gold: %d", p.Gold),
		"Location: " + g.Location,
		"Active quests: " + quests,
		fmt.Sprintf("Story: %s (turn %d)", g.Arc(), g.Turns),
	}, "\n"), nil
}

func updateLocation(_ context.Context, _ *Env, st *statex.SessionState, args Args) (string, error) {
	g := adventure(st)
	to := args.String("new_location")
	if to == "" {
		return "Where is the player going?", nil
	}
	from := g.Move(to, args.String("description"))
	return fmt.Sprintf("Moved from %s to %s. %s", from, g.Location, g.Scene), nil
}

func recordEvent(_ context.Context, _ *Env, st *statex.SessionState, args Args) (string, error) {
	g := adventure(st)
	event := args.String("event")
	if event == "" {
		return "Describe the event to record.", nil
	}
	arc := g.RecordEvent(event)
	if args.Bool("is_major", false) {
		return fmt.Sprintf("MAJOR EVENT RECORDED: %s. Story arc: %s", event, arc), nil
	}
	return fmt.Sprintf("Event recorded. Turn %d, story arc: %s", g.Turns, arc), nil
}

func addQuest(_ context.Context, _ *Env, st *statex.SessionState, args Args) (string, error) {
	g := adventure(st)
	q, err := g.AddQuest(args.String("quest_name"), args.String("description"))
	if err != nil {
		return "The quest needs a name.", nil
	}
	return fmt.Sprintf("NEW QUEST: %s - %s", q.Name, q.Description), nil
}

func completeQuest(_ context.Context, _ *Env, st *statex.SessionState, args Args) (string, error) {
	g := adventure(st)
	name := args.String("quest_name")
	reward := max(args.Int("reward_gold", 0), 0)
	q, err := g.CompleteQuest(name, reward)
	if errors.Is(err, game.ErrQuestNotActive) {
		return fmt.Sprintf("No active quest matches '%s'.", name), nil
	}
	return fmt.Sprintf("QUEST COMPLETE: %s! Reward: %d gold. Total gold: %d", q.Name, reward, g.Player.Gold), nil
}

func meetNPC(_ context.Context, _ *Env, st *statex.SessionState, args Args) (string, error) {
	g := adventure(st)
	npc, err := g.MeetNPC(args.String("npc_name"), args.String("role"), args.String("attitude"))
	if err != nil {
		return "The character needs a name.", nil
	}
	return fmt.Sprintf("Met %s, the %s. Attitude: %s.", npc.Name, npc.Role, npc.Attitude), nil
}
