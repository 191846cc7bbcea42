package encounter

import "fmt"

func (m *Machine) advance(s *State) *State {
	order := SortByInitiative(s.Combatants)
	if len(order) == 0 {
		return s
	}
	cur := ActiveIndex(order, s.ActiveID())
	nextIdx, wrapped := NextTurn(order, cur)

	next := s.clone()
	next.Combatants = order
	if wrapped {
		next.Round = s.Round + 1
		m.tickStatuses(next, s.Round)
	}
	active := order[nextIdx]
	next.ActiveCombatantID = strPtr(active.ID)

	msg := fmt.Sprintf("It's %s's turn", active.Name)
	if wrapped {
		msg = fmt.Sprintf("Round %d begins. It's %s's turn", next.Round, active.Name)
	}
	next.Log = m.appendLog(next.Log, m.entry(LogTurn, msg, next.Round, active.ID, nil))
	return next
}

func (m *Machine) rewind(s *State) *State {
	order := SortByInitiative(s.Combatants)
	if len(order) == 0 {
		return s
	}
	cur := ActiveIndex(order, s.ActiveID())
	prevIdx, wrapped := PrevTurn(order, cur)

	next := s.clone()
	next.Combatants = order
	if wrapped {
		next.Round = max(1, s.Round-1)
	}
	active := order[prevIdx]
	next.ActiveCombatantID = strPtr(active.ID)

	msg := fmt.Sprintf("Back to %s's turn", active.Name)
	if wrapped {
		msg = fmt.Sprintf("Back to round %d. It's %s's turn", next.Round, active.Name)
	}
	next.Log = m.appendLog(next.Log, m.entry(LogTurn, msg, next.Round, active.ID, nil))
	return next
}
