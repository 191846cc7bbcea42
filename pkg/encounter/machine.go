package encounter

import (
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Machine applies Actions to encounter States. It holds no encounter data;
// the clock and id generator are its only inputs besides the arguments.
type Machine struct {
	now   func() time.Time
	newID func() string
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock overrides the time source used for log timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithIDGenerator overrides how combatant, status and log ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(m *Machine) {
		m.newID = newID
	}
}

// NewMachine creates a Machine using wall-clock time and random UUIDs.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Reduce returns the state that results from applying a to s. Actions that
// do not change anything (unknown types, missing ids, zero amounts) return s itself.
func (m *Machine) Reduce(s *State, a Action) *State {
	if s == nil {
		s = NewState()
	}

	switch act := a.(type) {
	case AddCombatant:
		return m.addCombatant(s, act)
	case RemoveCombatant:
		return m.removeCombatant(s, act)
	case UpdateCombatant:
		return m.updateCombatant(s, act)
	case ApplyDelta:
		return m.applyDelta(s, act)
	case Attack:
		return m.attack(s, act)
	case Heal:
		return m.heal(s, act)
	case AddStatus:
		return m.addStatus(s, act)
	case RemoveStatus:
		return m.removeStatus(s, act)
	case StartDeathSaves:
		return m.startDeathSaves(s, act)
	case RecordDeathSave:
		return m.recordDeathSave(s, act)
	case SetDeathSaveCounts:
		return m.setDeathSaveCounts(s, act)
	case MarkDead:
		return m.markDead(s, act)
	case ClearDeathSaves:
		return m.clearDeathSaves(s, act)
	case SetActive:
		return m.setActive(s, act)
	case StartEncounter:
		return m.startEncounter(s)
	case Advance:
		return m.advance(s)
	case Rewind:
		return m.rewind(s)
	case ClearLog:
		if len(s.Log) == 0 {
			return s
		}
		next := s.clone()
		next.Log = []LogEntry{}
		return next
	case Hydrate:
		return m.Sanitize(act.State)
	default:
		return s
	}
}

func (m *Machine) addCombatant(s *State, act AddCombatant) *State {
	c := cloneCombatant(act.Combatant)
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		c.Name = "Unnamed"
	}
	if c.ID == "" || s.Find(c.ID) >= 0 {
		c.ID = m.newID()
	}
	m.normalizeCombatant(&c, s.Round)

	next := s.clone()
	next.Combatants = SortByInitiative(append(next.Combatants, c))
	next.Log = m.appendLog(next.Log, m.entry(LogCombatantAdd, c.Name+" joined the encounter", s.Round, c.ID, nil))
	return next
}

func (m *Machine) removeCombatant(s *State, act RemoveCombatant) *State {
	idx := s.Find(act.ID)
	if idx < 0 {
		return s
	}
	removed := s.Combatants[idx]

	next := s.clone()
	next.Combatants = append(next.Combatants[:idx:idx], next.Combatants[idx+1:]...)
	if s.ActiveID() == act.ID {
		next.ActiveCombatantID = nil
	}
	next.Log = m.appendLog(next.Log, m.entry(LogCombatantRemove, removed.Name+" was removed from the encounter", s.Round, removed.ID, nil))
	return next
}

func (m *Machine) updateCombatant(s *State, act UpdateCombatant) *State {
	idx := s.Find(act.ID)
	if idx < 0 {
		return s
	}
	p := act.Patch
	next := s.clone()
	c := cloneCombatant(next.Combatants[idx])

	if p.Name != nil {
		if name := strings.TrimSpace(*p.Name); name != "" {
			c.Name = name
		}
	}
	if p.Type != nil && validType(*p.Type) {
		c.Type = *p.Type
		if !c.Type.IsParty() {
			c.DeathSaves = nil
		}
	}
	if p.Initiative != nil {
		c.Initiative = *p.Initiative
	}
	if p.ArmorClass != nil {
		c.ArmorClass = intPtr(*p.ArmorClass)
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Note != nil {
		c.Note = *p.Note
	}
	next.Combatants[idx] = c

	if p.HP != nil {
		m.updateHP(next, idx, *p.HP, noOverride, s.Round)
	}
	if reflect.DeepEqual(next.Combatants[idx], s.Combatants[idx]) {
		return s
	}
	next.Combatants = SortByInitiative(next.Combatants)
	return next
}

func (m *Machine) setActive(s *State, act SetActive) *State {
	if s.Find(act.ID) < 0 || s.ActiveID() == act.ID {
		return s
	}
	next := s.clone()
	next.ActiveCombatantID = strPtr(act.ID)
	return next
}

func (m *Machine) startEncounter(s *State) *State {
	if len(s.Combatants) == 0 {
		return s
	}
	order := SortByInitiative(s.Combatants)
	first := 0
	for i := range order {
		if IsEligible(&order[i]) {
			first = i
			break
		}
	}

	started := m.now()
	next := s.clone()
	next.Combatants = order
	next.Round = 1
	next.StartedAt = &started
	next.ActiveCombatantID = strPtr(order[first].ID)
	next.Log = m.appendLog(next.Log, m.entry(LogInfo, "Encounter started. "+order[first].Name+" acts first.", 1, order[first].ID, nil))
	return next
}

// normalizeCombatant enforces the per-combatant invariants shared by
// add-combatant and hydrate.
func (m *Machine) normalizeCombatant(c *Combatant, round int) {
	if !validType(c.Type) {
		c.Type = TypeEnemy
	}
	c.HP = clampHP(c.HP)
	if c.ArmorClass != nil {
		c.ArmorClass = intPtr(*c.ArmorClass)
	}

	statuses := make([]StatusEffect, 0, len(c.Statuses))
	for _, st := range c.Statuses {
		if st.RemainingRounds != nil {
			if *st.RemainingRounds <= 0 {
				continue
			}
			st.RemainingRounds = intPtr(*st.RemainingRounds)
		}
		if st.Level != nil {
			st.Level = intPtr(max(1, *st.Level))
		}
		if st.InstanceID == "" {
			st.InstanceID = m.newID()
		}
		statuses = append(statuses, st)
	}
	c.Statuses = statuses

	if !c.Type.IsParty() || c.HP.Current > 0 {
		c.DeathSaves = nil
	} else {
		c.DeathSaves = SanitizeDeathSaves(c.DeathSaves, round)
	}
}

func validType(t CombatantType) bool {
	switch t {
	case TypePlayer, TypeAlly, TypeEnemy:
		return true
	}
	return false
}
