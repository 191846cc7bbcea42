package encounter

import (
	"fmt"
	"strings"
)

// deathSaveOverride lets a caller of updateHP decide the death save state
// explicitly instead of leaving it to the HP rules.
type deathSaveOverride struct {
	set   bool
	value *DeathSaveState
}

var noOverride = deathSaveOverride{}

func clampHP(hp HP) HP {
	hp.Max = max(0, hp.Max)
	hp.Current = max(0, min(hp.Max, hp.Current))
	return hp
}

// updateHP is the single path for HP changes on an already-cloned state.
// Dropping from above 0 to 0 logs a death entry; rising above 0 ends any
// death saving throws unless an override says otherwise.
func (m *Machine) updateHP(next *State, idx int, hp HP, ds deathSaveOverride, round int) {
	prev := next.Combatants[idx]
	c := cloneCombatant(prev)
	c.HP = clampHP(hp)

	switch {
	case ds.set:
		c.DeathSaves = ds.value
	case c.HP.Current > 0:
		c.DeathSaves = nil
	}
	next.Combatants[idx] = c

	if prev.HP.Current > 0 && c.HP.Current <= 0 {
		msg := c.Name + " was defeated"
		switch {
		case c.DeathSaves != nil && c.DeathSaves.Status == DeathSaveDead:
			msg = c.Name + " has died"
		case c.Type.IsParty():
			msg = c.Name + " fell unconscious"
		}
		next.Log = m.appendLog(next.Log, m.entry(LogDeath, msg, round, c.ID, nil))
	}
}

func (m *Machine) applyDelta(s *State, act ApplyDelta) *State {
	idx := s.Find(act.ID)
	if idx < 0 || act.Amount == 0 {
		return s
	}
	c := s.Combatants[idx]

	var applied int
	var entry LogEntry
	if act.Amount > 0 {
		applied = min(act.Amount, c.HP.Current)
		entry = m.entry(LogDamage, fmt.Sprintf("%s took %d damage", c.Name, applied), s.Round, c.ID, intPtr(applied))
	} else {
		applied = min(-act.Amount, c.HP.Max-c.HP.Current)
		entry = m.entry(LogHeal, fmt.Sprintf("%s regained %d HP", c.Name, applied), s.Round, c.ID, intPtr(applied))
	}
	if applied <= 0 {
		return s
	}

	hp := c.HP
	if act.Amount > 0 {
		hp.Current -= applied
	} else {
		hp.Current += applied
	}

	next := s.clone()
	next.Log = m.appendLog(next.Log, entry)
	m.updateHP(next, idx, hp, noOverride, s.Round)
	return next
}

func (m *Machine) attack(s *State, act Attack) *State {
	idx := s.Find(act.TargetID)
	if idx < 0 {
		return s
	}
	target := s.Combatants[idx]
	applied := min(normalizeAmount(act.Amount), target.HP.Current)
	if applied <= 0 {
		return s
	}

	attacker := "Unknown attacker"
	if a, ok := s.Combatant(act.AttackerID); ok {
		attacker = a.Name
	}
	damage := fmt.Sprintf("%d damage", applied)
	if dt := strings.TrimSpace(act.DamageType); dt != "" {
		damage = fmt.Sprintf("%d %s damage", applied, dt)
	}

	next := s.clone()
	msg := fmt.Sprintf("%s hit %s for %s", attacker, target.Name, damage)
	next.Log = m.appendLog(next.Log, m.entry(LogAttack, msg, s.Round, target.ID, intPtr(applied)))

	hp := target.HP
	hp.Current -= applied
	m.updateHP(next, idx, hp, noOverride, s.Round)
	return next
}

func (m *Machine) heal(s *State, act Heal) *State {
	idx := s.Find(act.TargetID)
	if idx < 0 {
		return s
	}
	target := s.Combatants[idx]
	applied := min(normalizeAmount(act.Amount), target.HP.Max-target.HP.Current)
	if applied <= 0 {
		return s
	}

	msg := fmt.Sprintf("%s regained %d HP", target.Name, applied)
	if src := strings.TrimSpace(act.Source); src != "" {
		msg += " from " + src
	}

	next := s.clone()
	next.Log = m.appendLog(next.Log, m.entry(LogHeal, msg, s.Round, target.ID, intPtr(applied)))

	hp := target.HP
	hp.Current += applied
	m.updateHP(next, idx, hp, noOverride, s.Round)
	return next
}

// normalizeAmount turns negative amounts into no-ops.
func normalizeAmount(n int) int {
	return max(0, n)
}
