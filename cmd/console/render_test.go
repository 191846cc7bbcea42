package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/combat-tracker/pkg/encounter"
	"github.com/jwebster45206/combat-tracker/pkg/showcase"
	"github.com/jwebster45206/combat-tracker/pkg/tracker"
)

func TestHPBar(t *testing.T) {
	tests := []struct {
		hp   encounter.HP
		want string
	}{
		{encounter.HP{Current: 10, Max: 10}, "█████"},
		{encounter.HP{Current: 5, Max: 10}, "██░░░"},
		{encounter.HP{Current: 1, Max: 100}, "█░░░░"},
		{encounter.HP{Current: 0, Max: 10}, "░░░░░"},
		{encounter.HP{Current: 0, Max: 0}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hpBar(tt.hp, 5), "%+v", tt.hp)
	}
}

func TestDeathSaveMarks(t *testing.T) {
	assert.Empty(t, deathSaveMarks(nil))
	assert.Equal(t, "saves ●○○ ✕✕·", deathSaveMarks(&encounter.DeathSaveState{Status: encounter.DeathSavePending, Successes: 1, Failures: 2}))
	assert.Equal(t, "saves ●●○ ✕✕✕ DEAD", deathSaveMarks(&encounter.DeathSaveState{Status: encounter.DeathSaveDead, Successes: 2, Failures: 3}))
	assert.Equal(t, "saves ●●● ··· stable", deathSaveMarks(&encounter.DeathSaveState{Status: encounter.DeathSaveStable, Successes: 3}))
}

func TestStatusLabel(t *testing.T) {
	two := 2
	level := 3
	assert.Equal(t, "🤢 Poisoned (2)", statusLabel(encounter.StatusEffect{
		StatusTemplate:  encounter.StatusTemplate{ID: "poisoned", Label: "Poisoned", Icon: "🤢"},
		RemainingRounds: &two,
	}))
	assert.Equal(t, "Exhaustion 3", statusLabel(encounter.StatusEffect{
		StatusTemplate: encounter.StatusTemplate{ID: encounter.ExhaustionID, Label: "Exhaustion"},
		Level:          &level,
	}))
}

func TestRenderOrder(t *testing.T) {
	empty := renderOrder(tracker.NewView("crypt", encounter.NewState()), 60)
	assert.Contains(t, empty, "No combatants")

	view := testView()
	out := renderOrder(view, 60)
	assert.Contains(t, out, "Round 2")
	assert.Contains(t, out, "Aldo")
	assert.Contains(t, out, "Goblin Boss")
	assert.Contains(t, out, "12/12")
	assert.Contains(t, out, "Blessed")
	assert.Less(t, strings.Index(out, "Aldo"), strings.Index(out, "Goblin Archer"))
}

func TestRenderLog(t *testing.T) {
	assert.Contains(t, renderLog(nil, 40), "Nothing has happened yet.")

	out := renderLog([]encounter.LogEntry{
		{ID: "1", Type: encounter.LogDamage, Message: "Goblin took 4 damage", Round: 1},
		{ID: "2", Type: encounter.LogDeath, Message: "Goblin was defeated", Round: 2},
	}, 40)
	assert.Contains(t, out, "Goblin took 4 damage")
	assert.Contains(t, out, "Goblin was defeated")
	assert.Less(t, strings.Index(out, "took"), strings.Index(out, "defeated"))
}

func TestRenderBanner(t *testing.T) {
	assert.Empty(t, renderBanner(nil, 80))
	out := renderBanner(&showcase.Showcase{Name: "Goblin", Message: "Goblin was defeated", Round: 3}, 80)
	assert.Contains(t, out, "GOBLIN")
	assert.Contains(t, out, "Goblin was defeated")
}
