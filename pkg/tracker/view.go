package tracker

import "github.com/jwebster45206/combat-tracker/pkg/encounter"

// View is the read model handed to the UI layers.
type View struct {
	EncounterID string                `json:"encounterId"`
	State       *encounter.State      `json:"state"`
	Order       []encounter.Combatant `json:"order"`
	ActiveIndex int                   `json:"activeIndex"`
	Hydrated    bool                  `json:"hydrated"`
}

// Active returns the combatant whose turn it is.
func (v View) Active() (encounter.Combatant, bool) {
	if v.ActiveIndex < 0 || v.ActiveIndex >= len(v.Order) {
		return encounter.Combatant{}, false
	}
	return v.Order[v.ActiveIndex], true
}

// NewView derives the turn order and active index from s.
func NewView(encounterID string, s *encounter.State) View {
	order := encounter.SortByInitiative(s.Combatants)
	return View{
		EncounterID: encounterID,
		State:       s,
		Order:       order,
		ActiveIndex: encounter.ActiveIndex(order, s.ActiveID()),
	}
}

// View returns the current read model.
func (c *Controller) View() View {
	c.mu.Lock()
	id, s, hydrated := c.encounterID, c.state, c.hydrated
	c.mu.Unlock()

	v := NewView(id, s)
	v.Hydrated = hydrated
	return v
}
