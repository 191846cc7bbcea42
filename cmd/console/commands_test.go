package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/combat-tracker/pkg/encounter"
	"github.com/jwebster45206/combat-tracker/pkg/tracker"
)

func testView() tracker.View {
	m := encounter.NewMachine()
	s := m.Reduce(nil, encounter.Hydrate{State: &encounter.State{
		Round: 2,
		Combatants: []encounter.Combatant{
			{ID: "aldo", Name: "Aldo", Type: encounter.TypePlayer, Initiative: 15, HP: encounter.HP{Current: 12, Max: 12}},
			{ID: "gob1", Name: "Goblin Archer", Type: encounter.TypeEnemy, Initiative: 12, HP: encounter.HP{Current: 7, Max: 7}},
			{ID: "gob2", Name: "Goblin Boss", Type: encounter.TypeEnemy, Initiative: 10, HP: encounter.HP{Current: 21, Max: 21}},
		},
	}})
	s = m.Reduce(s, encounter.AddStatus{CombatantID: "aldo", Template: encounter.StatusTemplate{ID: "blessed", Label: "Blessed"}})
	return tracker.NewView("crypt", s)
}

func TestResolve(t *testing.T) {
	view := testView()

	tests := []struct {
		who     string
		want    string
		wantErr bool
	}{
		{"1", "aldo", false},
		{"3", "gob2", false},
		{"4", "", true},
		{"aldo", "aldo", false},
		{"al", "aldo", false},
		{"goblin_boss", "gob2", false},
		{"Goblin", "", true}, // ambiguous
		{"troll", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.who, func(t *testing.T) {
			got, err := resolve(tt.who, view)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Actions(t *testing.T) {
	view := testView()
	three := 3

	tests := []struct {
		input string
		want  encounter.Action
	}{
		{"next", encounter.Advance{}},
		{"/prev", encounter.Rewind{}},
		{"start", encounter.StartEncounter{}},
		{"clearlog", encounter.ClearLog{}},
		{"dmg 2 5", encounter.ApplyDelta{ID: "gob1", Amount: 5}},
		{"dmg aldo -4", encounter.ApplyDelta{ID: "aldo", Amount: -4}},
		{"heal aldo 3 cure wounds", encounter.Heal{TargetID: "aldo", Amount: 3, Source: "cure wounds"}},
		{"atk aldo goblin_a 6 slashing", encounter.Attack{AttackerID: "aldo", TargetID: "gob1", Amount: 6, DamageType: "slashing"}},
		{"save aldo f", encounter.RecordDeathSave{ID: "aldo", Result: encounter.DeathSaveFailure}},
		{"save aldo success", encounter.RecordDeathSave{ID: "aldo", Result: encounter.DeathSaveSuccess}},
		{"saves aldo 2 1", encounter.SetDeathSaveCounts{ID: "aldo", Successes: 2, Failures: 1}},
		{"startsaves aldo", encounter.StartDeathSaves{ID: "aldo"}},
		{"clearsaves aldo", encounter.ClearDeathSaves{ID: "aldo"}},
		{"dead goblin_boss", encounter.MarkDead{ID: "gob2"}},
		{"active 3", encounter.SetActive{ID: "gob2"}},
		{"rm 3", encounter.RemoveCombatant{ID: "gob2"}},
		{"status gob1 poisoned 3", encounter.AddStatus{CombatantID: "gob1", Template: mustPreset(t, "poisoned"), Rounds: &three}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := parseCommand(tt.input, view)
			require.NoError(t, err)
			assert.Equal(t, opNone, cmd.local)
			assert.Equal(t, tt.want, cmd.action)
		})
	}
}

func mustPreset(t *testing.T, id string) encounter.StatusTemplate {
	t.Helper()
	cmd, err := parseStatus("x", []string{id})
	require.NoError(t, err)
	return cmd.action.(encounter.AddStatus).Template
}

func TestParseCommand_Add(t *testing.T) {
	cmd, err := parseCommand("add goblin 12 7", tracker.View{})
	require.NoError(t, err)
	add := cmd.action.(encounter.AddCombatant)
	assert.Equal(t, "goblin", add.Combatant.Name)
	assert.Equal(t, encounter.TypeEnemy, add.Combatant.Type)
	assert.Equal(t, encounter.HP{Current: 7, Max: 7}, add.Combatant.HP)
	assert.NotEmpty(t, add.Combatant.Icon)
	assert.Nil(t, add.Combatant.ArmorClass)

	cmd, err = parseCommand("add Sister_Ysolde 14 22 ally 16", tracker.View{})
	require.NoError(t, err)
	add = cmd.action.(encounter.AddCombatant)
	assert.Equal(t, "Sister Ysolde", add.Combatant.Name)
	assert.Equal(t, encounter.TypeAlly, add.Combatant.Type)
	require.NotNil(t, add.Combatant.ArmorClass)
	assert.Equal(t, 16, *add.Combatant.ArmorClass)
}

func TestParseCommand_StatusCustomAndUnstatus(t *testing.T) {
	view := testView()

	cmd, err := parseCommand("status aldo hunter's mark", view)
	require.NoError(t, err)
	add := cmd.action.(encounter.AddStatus)
	assert.Equal(t, "Hunter's Mark", add.Template.Label)
	assert.Nil(t, add.Rounds)

	cmd, err = parseCommand("unstatus aldo blessed", view)
	require.NoError(t, err)
	aldo, _ := view.State.Combatant("aldo")
	assert.Equal(t, encounter.RemoveStatus{CombatantID: "aldo", InstanceID: aldo.Statuses[0].InstanceID}, cmd.action)

	_, err = parseCommand("unstatus aldo poisoned", view)
	assert.Error(t, err)
}

func TestParseCommand_LocalOps(t *testing.T) {
	for input, want := range map[string]localOp{
		"help":    opHelp,
		"copy":    opCopy,
		"dismiss": opDismiss,
		"quit":    opQuit,
	} {
		cmd, err := parseCommand(input, tracker.View{})
		require.NoError(t, err)
		assert.Equal(t, want, cmd.local, input)
		assert.Nil(t, cmd.action)
	}
}

func TestParseCommand_Errors(t *testing.T) {
	view := testView()

	for _, input := range []string{
		"",
		"fireball aldo",
		"dmg",
		"dmg aldo",
		"dmg aldo lots",
		"save aldo maybe",
		"add goblin",
		"add goblin x 7",
		"add goblin 12 7 dragon",
		"atk aldo",
	} {
		_, err := parseCommand(input, view)
		assert.Error(t, err, input)
	}

	_, err := parseCommand("dmg aldo", view)
	assert.True(t, errors.Is(err, errUsage))
}

func TestParseCommand_Reset(t *testing.T) {
	cmd, err := parseCommand("reset", tracker.View{})
	require.NoError(t, err)
	hydrate, ok := cmd.action.(encounter.Hydrate)
	require.True(t, ok)
	assert.Empty(t, hydrate.State.Combatants)
	assert.Equal(t, 1, hydrate.State.Round)
}
