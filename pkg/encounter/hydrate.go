package encounter

import "slices"

// Sanitize builds a well-formed State from a possibly partial or malformed
// one. Missing arrays are defaulted, HP and round are clamped, death saves
// are re-derived, and combatants are put in turn order. nil yields NewState().
func (m *Machine) Sanitize(in *State) *State {
	out := NewState()
	if in == nil {
		return out
	}
	out.Round = max(1, in.Round)
	if in.StartedAt != nil {
		started := *in.StartedAt
		out.StartedAt = &started
	}

	combatants := make([]Combatant, 0, len(in.Combatants))
	seen := make(map[string]bool, len(in.Combatants))
	for _, c := range in.Combatants {
		c = cloneCombatant(c)
		if c.ID == "" || seen[c.ID] {
			c.ID = m.newID()
		}
		seen[c.ID] = true
		m.normalizeCombatant(&c, out.Round)
		combatants = append(combatants, c)
	}
	out.Combatants = SortByInitiative(combatants)

	if id := in.ActiveID(); id != "" && out.Find(id) >= 0 {
		out.ActiveCombatantID = strPtr(id)
	}

	if len(in.Log) > 0 {
		log := in.Log
		if over := len(log) - MaxLogEntries; over > 0 {
			log = log[over:]
		}
		out.Log = slices.Clone(log)
	}
	return out
}
