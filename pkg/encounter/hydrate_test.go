package encounter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHydrate_DefaultsMissingFields(t *testing.T) {
	m := newTestMachine()
	payload := `{
		"combatants": [
			{"id": "a", "name": "Aldo", "type": "player", "initiative": 10, "hp": {"current": 25, "max": 20}},
			{"id": "b", "name": "Bram", "type": "ally", "initiative": 14, "hp": {"current": 0, "max": 20},
			 "deathSaves": {"status": "pending", "successes": 1, "failures": 5}}
		],
		"activeCombatantId": "ghost",
		"round": 0
	}`
	var in State
	require.NoError(t, json.Unmarshal([]byte(payload), &in))

	s := m.Reduce(NewState(), Hydrate{State: &in})

	require.Len(t, s.Combatants, 2)
	assert.Equal(t, "b", s.Combatants[0].ID, "re-sorted by initiative")
	a, _ := s.Combatant("a")
	assert.NotNil(t, a.Statuses)
	assert.Empty(t, a.Statuses)
	assert.Equal(t, 20, a.HP.Current)

	b, _ := s.Combatant("b")
	require.NotNil(t, b.DeathSaves)
	assert.Equal(t, DeathSaveDead, b.DeathSaves.Status, "status re-derived from the counters")
	assert.Equal(t, 3, b.DeathSaves.Failures)

	assert.Nil(t, s.ActiveCombatantID, "unknown active id is dropped")
	assert.Equal(t, 1, s.Round)
	assert.NotNil(t, s.Log)
}

func TestHydrate_NilState(t *testing.T) {
	m := newTestMachine()
	s := m.Reduce(encounterWith(m, combatant("a", "Aldo", TypePlayer, 10, 20)), Hydrate{})
	assert.Equal(t, NewState(), s)
}

func TestHydrate_RoundTrip(t *testing.T) {
	m := newTestMachine()
	s := encounterWith(m,
		combatant("a", "Aldo", TypePlayer, 20, 20),
		combatant("g", "Goblin", TypeEnemy, 12, 7),
		combatant("c", "Cora", TypeAlly, 5, 18),
	)
	s = m.Reduce(s, StartEncounter{})
	s = m.Reduce(s, AddStatus{CombatantID: "g", Template: poisoned, Rounds: intPtr(3), Note: "dagger"})
	s = m.Reduce(s, AddStatus{CombatantID: "a", Template: exhaustion})
	s = m.Reduce(s, Attack{AttackerID: "g", TargetID: "c", Amount: 30, DamageType: "piercing"})
	s = m.Reduce(s, RecordDeathSave{ID: "c", Result: DeathSaveFailure})
	s = m.Reduce(s, Advance{})

	again := m.Reduce(NewState(), Hydrate{State: s})
	assert.Equal(t, s, again)
	assert.NotSame(t, s, again)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	var decoded State
	require.NoError(t, json.Unmarshal(data, &decoded))
	fromJSON := m.Reduce(NewState(), Hydrate{State: &decoded})

	assert.Equal(t, s.Combatants, fromJSON.Combatants)
	assert.Equal(t, s.ActiveCombatantID, fromJSON.ActiveCombatantID)
	assert.Equal(t, s.Round, fromJSON.Round)
	assert.Len(t, fromJSON.Log, len(s.Log))
}

func TestHydrate_DropsExpiredAndAssignsInstanceIDs(t *testing.T) {
	m := newTestMachine()
	in := NewState()
	c := combatant("a", "Aldo", TypePlayer, 10, 20)
	c.Statuses = []StatusEffect{
		{StatusTemplate: poisoned, RemainingRounds: intPtr(0)},
		{StatusTemplate: poisoned},
	}
	in.Combatants = []Combatant{c}

	s := m.Sanitize(in)
	a, _ := s.Combatant("a")
	require.Len(t, a.Statuses, 1)
	assert.NotEmpty(t, a.Statuses[0].InstanceID)
}
