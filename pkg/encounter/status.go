package encounter

import (
	"fmt"
	"slices"
	"strings"
)

// ExhaustionID is the status template that stacks by level instead of
// adding another instance.
const ExhaustionID = "exhaustion"

// displayName renders "<icon> <label>" without stray spaces.
func (t StatusTemplate) displayName() string {
	return strings.TrimSpace(t.Icon + " " + strings.TrimSpace(t.Label))
}

func roundsLabel(n int) string {
	if n == 1 {
		return "1 round"
	}
	return fmt.Sprintf("%d rounds", n)
}

func (m *Machine) addStatus(s *State, act AddStatus) *State {
	idx := s.Find(act.CombatantID)
	if idx < 0 {
		return s
	}
	tmpl := act.Template
	if tmpl.ID == "" && strings.TrimSpace(tmpl.Label) == "" {
		return s
	}
	if tmpl.Label == "" {
		tmpl.Label = tmpl.ID
	}
	var rounds *int
	if act.Rounds != nil && *act.Rounds > 0 {
		rounds = intPtr(*act.Rounds)
	}

	next := s.clone()
	c := cloneCombatant(next.Combatants[idx])
	if c.Statuses == nil {
		c.Statuses = []StatusEffect{}
	}

	if tmpl.ID == ExhaustionID {
		if i := slices.IndexFunc(c.Statuses, func(st StatusEffect) bool { return st.ID == ExhaustionID }); i >= 0 {
			st := c.Statuses[i]
			level := 1
			if st.Level != nil {
				level = *st.Level
			}
			level++
			st.Level = intPtr(level)
			if rounds != nil {
				st.RemainingRounds = rounds
			}
			if act.Note != "" {
				st.Note = act.Note
			}
			c.Statuses[i] = st
			next.Combatants[idx] = c
			msg := fmt.Sprintf("%s's %s increased to Level %d", c.Name, st.displayName(), level)
			next.Log = m.appendLog(next.Log, m.entry(LogStatusAdd, msg, s.Round, c.ID, nil))
			return next
		}
	}

	inst := StatusEffect{
		StatusTemplate:  tmpl,
		InstanceID:      m.newID(),
		RemainingRounds: rounds,
		Note:            act.Note,
	}
	if tmpl.ID == ExhaustionID {
		inst.Level = intPtr(1)
	}
	c.Statuses = append(c.Statuses, inst)
	next.Combatants[idx] = c

	msg := fmt.Sprintf("%s gained %s", c.Name, tmpl.displayName())
	if rounds != nil {
		msg += " (" + roundsLabel(*rounds) + ")"
	}
	next.Log = m.appendLog(next.Log, m.entry(LogStatusAdd, msg, s.Round, c.ID, nil))
	return next
}

func (m *Machine) removeStatus(s *State, act RemoveStatus) *State {
	idx := s.Find(act.CombatantID)
	if idx < 0 {
		return s
	}
	si := slices.IndexFunc(s.Combatants[idx].Statuses, func(st StatusEffect) bool {
		return st.InstanceID == act.InstanceID
	})
	if si < 0 {
		return s
	}

	next := s.clone()
	c := cloneCombatant(next.Combatants[idx])
	removed := c.Statuses[si]
	c.Statuses = slices.Delete(c.Statuses, si, si+1)
	next.Combatants[idx] = c

	msg := fmt.Sprintf("%s removed from %s", removed.displayName(), c.Name)
	next.Log = m.appendLog(next.Log, m.entry(LogStatusRemove, msg, s.Round, c.ID, nil))
	return next
}

// tickStatuses counts down timed statuses on every combatant of an
// already-cloned state, dropping those that reach zero.
func (m *Machine) tickStatuses(next *State, round int) {
	for i := range next.Combatants {
		c := next.Combatants[i]
		if !slices.ContainsFunc(c.Statuses, func(st StatusEffect) bool { return st.RemainingRounds != nil }) {
			continue
		}
		c = cloneCombatant(c)
		kept := make([]StatusEffect, 0, len(c.Statuses))
		for _, st := range c.Statuses {
			if st.RemainingRounds == nil {
				kept = append(kept, st)
				continue
			}
			remaining := *st.RemainingRounds - 1
			if remaining <= 0 {
				msg := fmt.Sprintf("%s's %s expired", c.Name, st.displayName())
				next.Log = m.appendLog(next.Log, m.entry(LogStatusRemove, msg, round, c.ID, nil))
				continue
			}
			st.RemainingRounds = intPtr(remaining)
			kept = append(kept, st)
		}
		c.Statuses = kept
		next.Combatants[i] = c
	}
}
