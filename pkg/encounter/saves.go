package encounter

import "fmt"

// downedParty returns the index of a party member at 0 HP, or -1.
func downedParty(s *State, id string) int {
	idx := s.Find(id)
	if idx < 0 {
		return -1
	}
	c := &s.Combatants[idx]
	if !c.Type.IsParty() || !c.IsDown() {
		return -1
	}
	return idx
}

func (m *Machine) startDeathSaves(s *State, act StartDeathSaves) *State {
	idx := downedParty(s, act.ID)
	if idx < 0 || s.Combatants[idx].DeathSaves != nil {
		return s
	}
	next := s.clone()
	c := cloneCombatant(next.Combatants[idx])
	c.DeathSaves = NewDeathSaves(s.Round)
	next.Combatants[idx] = c
	next.Log = m.appendLog(next.Log, m.entry(LogInfo, c.Name+" is making death saving throws", s.Round, c.ID, nil))
	return next
}

func (m *Machine) recordDeathSave(s *State, act RecordDeathSave) *State {
	idx := downedParty(s, act.ID)
	if idx < 0 {
		return s
	}
	if act.Result != DeathSaveSuccess && act.Result != DeathSaveFailure {
		return s
	}
	c := s.Combatants[idx]
	ds := NewDeathSaves(s.Round)
	if c.DeathSaves != nil {
		ds = c.DeathSaves
	}
	if ds.Status != DeathSavePending {
		return s
	}
	rolled := ds.Record(act.Result, s.Round)

	next := s.clone()
	msg := fmt.Sprintf("%s succeeded on a death save (%d/%d)", c.Name, rolled.Successes, DeathSaveLimit)
	if act.Result == DeathSaveFailure {
		msg = fmt.Sprintf("%s failed a death save (%d/%d)", c.Name, rolled.Failures, DeathSaveLimit)
	}
	next.Log = m.appendLog(next.Log, m.entry(LogInfo, msg, s.Round, c.ID, nil))
	m.resolveDeathSaves(next, idx, rolled, ds.Status, s.Round)
	return next
}

func (m *Machine) setDeathSaveCounts(s *State, act SetDeathSaveCounts) *State {
	idx := downedParty(s, act.ID)
	if idx < 0 {
		return s
	}
	c := s.Combatants[idx]
	ds := NewDeathSaves(s.Round)
	if c.DeathSaves != nil {
		ds = c.DeathSaves
	}
	updated := ds.WithCounts(act.Successes, act.Failures)
	if c.DeathSaves != nil && updated == *c.DeathSaves {
		return s
	}
	next := s.clone()
	m.resolveDeathSaves(next, idx, updated, ds.Status, s.Round)
	return next
}

func (m *Machine) markDead(s *State, act MarkDead) *State {
	idx := s.Find(act.ID)
	if idx < 0 {
		return s
	}
	c := s.Combatants[idx]

	if !c.Type.IsParty() {
		if c.IsDown() {
			return s
		}
		next := s.clone()
		hp := c.HP
		hp.Current = 0
		m.updateHP(next, idx, hp, noOverride, s.Round)
		return next
	}

	ds := NewDeathSaves(s.Round)
	if c.DeathSaves != nil {
		ds = c.DeathSaves
	}
	if ds.Status == DeathSaveDead {
		return s
	}
	next := s.clone()
	if !c.IsDown() {
		// Instant death: drop to 0 HP carrying the dead record.
		killed := ds.Killed()
		hp := c.HP
		hp.Current = 0
		m.updateHP(next, idx, hp, deathSaveOverride{set: true, value: &killed}, s.Round)
		return next
	}
	m.resolveDeathSaves(next, idx, ds.Killed(), ds.Status, s.Round)
	return next
}

func (m *Machine) clearDeathSaves(s *State, act ClearDeathSaves) *State {
	idx := s.Find(act.ID)
	if idx < 0 || s.Combatants[idx].DeathSaves == nil {
		return s
	}
	next := s.clone()
	c := cloneCombatant(next.Combatants[idx])
	c.DeathSaves = nil
	next.Combatants[idx] = c
	next.Log = m.appendLog(next.Log, m.entry(LogInfo, c.Name+"'s death saves were cleared", s.Round, c.ID, nil))
	return next
}

// resolveDeathSaves stores ds on the combatant at idx and applies the
// consequences of a status change: stabilizing restores 1 HP and ends the
// throws, dying is logged and kept as a terminal record.
func (m *Machine) resolveDeathSaves(next *State, idx int, ds DeathSaveState, prev DeathSaveStatus, round int) {
	c := cloneCombatant(next.Combatants[idx])

	switch ds.Status {
	case DeathSaveStable:
		hp := c.HP
		hp.Current = min(hp.Max, max(1, hp.Current))
		m.updateHP(next, idx, hp, deathSaveOverride{set: true, value: nil}, round)
		if prev != DeathSaveStable {
			next.Log = m.appendLog(next.Log, m.entry(LogInfo, c.Name+" is stable", round, c.ID, nil))
		}
		return
	case DeathSaveDead:
		c.DeathSaves = &ds
		next.Combatants[idx] = c
		if prev != DeathSaveDead {
			next.Log = m.appendLog(next.Log, m.entry(LogDeath, c.Name+" has died", round, c.ID, nil))
		}
		return
	default:
		c.DeathSaves = &ds
		next.Combatants[idx] = c
		if prev == DeathSaveDead {
			next.Log = m.appendLog(next.Log, m.entry(LogInfo, c.Name+" is making death saving throws again", round, c.ID, nil))
		}
	}
}
