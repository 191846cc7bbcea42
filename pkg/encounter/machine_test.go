package encounter

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 5, 1, 19, 30, 0, 0, time.UTC)

func newTestMachine() *Machine {
	n := 0
	return NewMachine(
		WithClock(func() time.Time { return testTime }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
}

func combatant(id, name string, t CombatantType, init, hp int) Combatant {
	return Combatant{
		ID:         id,
		Name:       name,
		Type:       t,
		Initiative: init,
		HP:         HP{Current: hp, Max: hp},
		Statuses:   []StatusEffect{},
	}
}

// encounterWith hydrates a state holding the given combatants.
func encounterWith(m *Machine, cs ...Combatant) *State {
	s := NewState()
	s.Combatants = cs
	return m.Reduce(nil, Hydrate{State: s})
}

func lastLog(t *testing.T, s *State) LogEntry {
	t.Helper()
	require.NotEmpty(t, s.Log)
	return s.Log[len(s.Log)-1]
}

func logsOfType(s *State, lt LogType) []LogEntry {
	var out []LogEntry
	for _, e := range s.Log {
		if e.Type == lt {
			out = append(out, e)
		}
	}
	return out
}

func TestReduce_UnknownActionReturnsSameState(t *testing.T) {
	m := newTestMachine()
	s := encounterWith(m, combatant("a", "Aldo", TypePlayer, 10, 20))

	type bogus struct{ Advance }
	assert.Same(t, s, m.Reduce(s, bogus{}))
	assert.Same(t, s, m.Reduce(s, ApplyDelta{ID: "missing", Amount: 5}))
	assert.Same(t, s, m.Reduce(s, RemoveCombatant{ID: "missing"}))
	assert.Same(t, s, m.Reduce(s, ClearLog{}))
}

func TestReduce_AddAndRemoveCombatant(t *testing.T) {
	m := newTestMachine()
	s := NewState()

	s = m.Reduce(s, AddCombatant{Combatant: Combatant{Name: "  Goblin ", Type: "dragon", HP: HP{Current: 12, Max: 7}}})
	require.Len(t, s.Combatants, 1)
	g := s.Combatants[0]
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, "Goblin", g.Name)
	assert.Equal(t, TypeEnemy, g.Type, "unknown types fall back to enemy")
	assert.Equal(t, HP{Current: 7, Max: 7}, g.HP)
	assert.NotNil(t, g.Statuses)
	assert.Equal(t, LogCombatantAdd, lastLog(t, s).Type)

	s = m.Reduce(s, SetActive{ID: g.ID})
	require.Equal(t, g.ID, s.ActiveID())

	s = m.Reduce(s, RemoveCombatant{ID: g.ID})
	assert.Empty(t, s.Combatants)
	assert.Nil(t, s.ActiveCombatantID, "removing the active combatant frees the cursor")
	assert.Equal(t, LogCombatantRemove, lastLog(t, s).Type)
}

func TestReduce_AddCombatantDuplicateIDGetsFreshID(t *testing.T) {
	m := newTestMachine()
	s := encounterWith(m, combatant("a", "Aldo", TypePlayer, 10, 20))
	s = m.Reduce(s, AddCombatant{Combatant: combatant("a", "Bram", TypePlayer, 5, 20)})

	require.Len(t, s.Combatants, 2)
	assert.NotEqual(t, s.Combatants[0].ID, s.Combatants[1].ID)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	m := newTestMachine()
	s := encounterWith(m, combatant("a", "Aldo", TypePlayer, 10, 20))
	before := m.Sanitize(s)

	_ = m.Reduce(s, ApplyDelta{ID: "a", Amount: 5})
	_ = m.Reduce(s, AddStatus{CombatantID: "a", Template: StatusTemplate{ID: "poisoned", Label: "Poisoned"}})
	_ = m.Reduce(s, Advance{})

	assert.Equal(t, before.Combatants, s.Combatants)
	assert.Equal(t, before.Log, s.Log)
}

func TestReduce_ApplyDeltaDropsToZero(t *testing.T) {
	m := newTestMachine()
	s := encounterWith(m, combatant("a", "Aldo", TypePlayer, 10, 20))

	s = m.Reduce(s, ApplyDelta{ID: "a", Amount: 25})
	a, _ := s.Combatant("a")
	assert.Equal(t, 0, a.HP.Current)
	assert.Nil(t, a.DeathSaves, "death saves are not created until requested")

	death := lastLog(t, s)
	assert.Equal(t, LogDeath, death.Type)
	assert.Equal(t, "Aldo fell unconscious", death.Message)
	assert.Equal(t, "a", death.CombatantID)

	dmg := logsOfType(s, LogDamage)
	require.Len(t, dmg, 1)
	require.NotNil(t, dmg[0].Amount)
	assert.Equal(t, 20, *dmg[0].Amount)
}

func TestReduce_ApplyDeltaNegativeHeals(t *testing.T) {
	m := newTestMachine()
	c := combatant("g", "Goblin", TypeEnemy, 10, 10)
	c.HP.Current = 4
	s := encounterWith(m, c)

	s = m.Reduce(s, ApplyDelta{ID: "g", Amount: -100})
	g, _ := s.Combatant("g")
	assert.Equal(t, 10, g.HP.Current)
	assert.Equal(t, LogHeal, lastLog(t, s).Type)
	assert.Equal(t, 6, *lastLog(t, s).Amount)
}

func TestReduce_EnemyDeathMessage(t *testing.T) {
	m := newTestMachine()
	s := encounterWith(m, combatant("g", "Goblin", TypeEnemy, 10, 7))
	s = m.Reduce(s, ApplyDelta{ID: "g", Amount: 7})
	assert.Equal(t, "Goblin was defeated", lastLog(t, s).Message)
}

func TestReduce_AttackClampsToCurrentHP(t *testing.T) {
	m := newTestMachine()
	y := combatant("y", "Yrsa", TypeEnemy, 5, 10)
	y.HP.Current = 3
	s := encounterWith(m, combatant("x", "Xan", TypePlayer, 10, 20), y)

	s = m.Reduce(s, Attack{AttackerID: "x", TargetID: "y", Amount: 5, DamageType: "fire"})
	target, _ := s.Combatant("y")
	assert.Equal(t, 0, target.HP.Current)

	attacks := logsOfType(s, LogAttack)
	require.Len(t, attacks, 1)
	assert.Contains(t, attacks[0].Message, "3 fire damage")
	assert.Contains(t, attacks[0].Message, "Xan")
	assert.Equal(t, 3, *attacks[0].Amount)
	assert.Len(t, logsOfType(s, LogDeath), 1)
}

func TestReduce_AttackEdgeCases(t *testing.T) {
	m := newTestMachine()
	s := encounterWith(m, combatant("y", "Yrsa", TypeEnemy, 5, 10))

	t.Run("unknown attacker", func(t *testing.T) {
		next := m.Reduce(s, Attack{AttackerID: "gone", TargetID: "y", Amount: 2})
		assert.Equal(t, "Unknown attacker hit Yrsa for 2 damage", lastLog(t, next).Message)
	})
	t.Run("negative amount is a no-op", func(t *testing.T) {
		assert.Same(t, s, m.Reduce(s, Attack{TargetID: "y", Amount: -4}))
	})
	t.Run("zero amount is a no-op", func(t *testing.T) {
		assert.Same(t, s, m.Reduce(s, Attack{TargetID: "y", Amount: 0}))
	})
	t.Run("target already down", func(t *testing.T) {
		down := m.Reduce(s, ApplyDelta{ID: "y", Amount: 10})
		assert.Same(t, down, m.Reduce(down, Attack{TargetID: "y", Amount: 3}))
	})
}

func TestReduce_HealClampsToMissingHP(t *testing.T) {
	m := newTestMachine()
	c := combatant("a", "Aldo", TypePlayer, 10, 20)
	c.HP.Current = 15
	s := encounterWith(m, c)

	s = m.Reduce(s, Heal{TargetID: "a", Amount: 12, Source: "Cure Wounds"})
	a, _ := s.Combatant("a")
	assert.Equal(t, 20, a.HP.Current)
	assert.Equal(t, "Aldo regained 5 HP from Cure Wounds", lastLog(t, s).Message)

	assert.Same(t, s, m.Reduce(s, Heal{TargetID: "a", Amount: 3}), "full HP heals nothing")
}

func TestReduce_HealingClearsDeathSaves(t *testing.T) {
	m := newTestMachine()
	s := encounterWith(m, combatant("a", "Aldo", TypePlayer, 10, 20))
	s = m.Reduce(s, ApplyDelta{ID: "a", Amount: 20})
	s = m.Reduce(s, RecordDeathSave{ID: "a", Result: DeathSaveFailure})
	a, _ := s.Combatant("a")
	require.NotNil(t, a.DeathSaves)

	s = m.Reduce(s, Heal{TargetID: "a", Amount: 4})
	a, _ = s.Combatant("a")
	assert.Equal(t, 4, a.HP.Current)
	assert.Nil(t, a.DeathSaves)
}

func TestReduce_HPStaysInRange(t *testing.T) {
	m := newTestMachine()
	s := encounterWith(m,
		combatant("a", "Aldo", TypePlayer, 10, 20),
		combatant("g", "Goblin", TypeEnemy, 12, 7),
	)
	steps := []Action{
		ApplyDelta{ID: "a", Amount: 8},
		Attack{AttackerID: "g", TargetID: "a", Amount: 30, DamageType: "slashing"},
		Heal{TargetID: "a", Amount: 100},
		ApplyDelta{ID: "g", Amount: -50},
		Attack{AttackerID: "a", TargetID: "g", Amount: -3},
		ApplyDelta{ID: "g", Amount: 99},
		Heal{TargetID: "g", Amount: 2},
		UpdateCombatant{ID: "a", Patch: CombatantPatch{HP: &HP{Current: 50, Max: 10}}},
		UpdateCombatant{ID: "g", Patch: CombatantPatch{HP: &HP{Current: -5, Max: -5}}},
	}
	for i, act := range steps {
		s = m.Reduce(s, act)
		for _, c := range s.Combatants {
			assert.GreaterOrEqual(t, c.HP.Current, 0, "step %d %s", i, c.Name)
			assert.LessOrEqual(t, c.HP.Current, c.HP.Max, "step %d %s", i, c.Name)
		}
	}
}

func TestReduce_UpdateCombatantResorts(t *testing.T) {
	m := newTestMachine()
	s := encounterWith(m,
		combatant("a", "Aldo", TypePlayer, 15, 20),
		combatant("b", "Bram", TypePlayer, 10, 20),
	)
	initiative := 20
	name := "Bram the Bold"
	s = m.Reduce(s, UpdateCombatant{ID: "b", Patch: CombatantPatch{Initiative: &initiative, Name: &name}})

	assert.Equal(t, "b", s.Combatants[0].ID)
	assert.Equal(t, "Bram the Bold", s.Combatants[0].Name)
}

func TestReduce_UpdateCombatantNoChange(t *testing.T) {
	m := newTestMachine()
	s := encounterWith(m, combatant("a", "Aldo", TypePlayer, 15, 20))

	same := 15
	hp := HP{Current: 20, Max: 20}
	blank := "   "
	tests := []struct {
		name  string
		patch CombatantPatch
	}{
		{"empty patch", CombatantPatch{}},
		{"same initiative", CombatantPatch{Initiative: &same}},
		{"same hp", CombatantPatch{HP: &hp}},
		{"blank name", CombatantPatch{Name: &blank}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, s, m.Reduce(s, UpdateCombatant{ID: "a", Patch: tt.patch}))
		})
	}
}

func TestReduce_StartEncounter(t *testing.T) {
	m := newTestMachine()
	down := combatant("g", "Goblin", TypeEnemy, 20, 7)
	down.HP.Current = 0
	s := encounterWith(m, down, combatant("a", "Aldo", TypePlayer, 10, 20))
	s.Round = 4

	s = m.Reduce(s, StartEncounter{})
	assert.Equal(t, 1, s.Round)
	require.NotNil(t, s.StartedAt)
	assert.Equal(t, testTime, *s.StartedAt)
	assert.Equal(t, "a", s.ActiveID(), "the defeated goblin does not act first")

	empty := NewState()
	assert.Same(t, empty, m.Reduce(empty, StartEncounter{}))
}

func TestReduce_ClearLog(t *testing.T) {
	m := newTestMachine()
	s := encounterWith(m, combatant("a", "Aldo", TypePlayer, 10, 20))
	s = m.Reduce(s, Advance{})
	require.NotEmpty(t, s.Log)

	s = m.Reduce(s, ClearLog{})
	assert.Empty(t, s.Log)
	assert.NotNil(t, s.Log)
}

func TestReduce_LogIsBounded(t *testing.T) {
	m := newTestMachine()
	s := encounterWith(m, combatant("a", "Aldo", TypePlayer, 10, 20), combatant("b", "Bram", TypePlayer, 5, 20))
	for range MaxLogEntries + 25 {
		s = m.Reduce(s, Advance{})
	}
	assert.Len(t, s.Log, MaxLogEntries)
	assert.Equal(t, LogTurn, lastLog(t, s).Type)
}

func TestReduce_LogUsesRoundBeforeTransition(t *testing.T) {
	m := newTestMachine()
	s := encounterWith(m, combatant("a", "Aldo", TypePlayer, 10, 20))
	s = m.Reduce(s, AddStatus{CombatantID: "a", Template: StatusTemplate{ID: "blessed", Label: "Blessed"}, Rounds: intPtr(1)})
	s = m.Reduce(s, Advance{}) // Aldo's turn, round 1
	s = m.Reduce(s, Advance{}) // wraps to round 2

	expired := logsOfType(s, LogStatusRemove)
	require.Len(t, expired, 1)
	assert.Equal(t, 1, expired[0].Round)

	turn := lastLog(t, s)
	assert.Equal(t, LogTurn, turn.Type)
	assert.Equal(t, 2, turn.Round)
}
