package encounter

import (
	"time"
)

// CombatantType classifies a combatant for turn eligibility and death handling.
type CombatantType string

const (
	TypePlayer CombatantType = "player"
	TypeAlly   CombatantType = "ally"
	TypeEnemy  CombatantType = "enemy"
)

// IsParty reports whether the type makes death saving throws instead of dying outright.
func (t CombatantType) IsParty() bool {
	return t == TypePlayer || t == TypeAlly
}

// HP is a combatant's hit point pool. Current is always within [0, Max].
type HP struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// StatusTemplate is the reusable definition of a status effect.
type StatusTemplate struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// StatusEffect is one application of a StatusTemplate to a combatant.
type StatusEffect struct {
	StatusTemplate
	InstanceID      string `json:"instanceId"`
	RemainingRounds *int   `json:"remainingRounds"` // nil means indefinite
	Note            string `json:"note,omitempty"`
	Level           *int   `json:"level,omitempty"` // exhaustion only
}

// Combatant is a single participant in the encounter.
type Combatant struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       CombatantType   `json:"type"`
	Initiative int             `json:"initiative"`
	HP         HP              `json:"hp"`
	ArmorClass *int            `json:"ac,omitempty"`
	Icon       string          `json:"icon"`
	Statuses   []StatusEffect  `json:"statuses"`
	Note       string          `json:"note,omitempty"`
	DeathSaves *DeathSaveState `json:"deathSaves,omitempty"`
}

// IsDown reports whether the combatant is at 0 HP.
func (c *Combatant) IsDown() bool {
	return c.HP.Current <= 0
}

// LogType categorizes combat log entries.
type LogType string

const (
	LogAttack          LogType = "attack"
	LogDamage          LogType = "damage"
	LogHeal            LogType = "heal"
	LogTurn            LogType = "turn"
	LogStatusAdd       LogType = "status-add"
	LogStatusRemove    LogType = "status-remove"
	LogCombatantAdd    LogType = "combatant-add"
	LogCombatantRemove LogType = "combatant-remove"
	LogDeath           LogType = "death"
	LogInfo            LogType = "info"
)

// LogEntry is an immutable combat log record.
type LogEntry struct {
	ID          string    `json:"id"`
	Type        LogType   `json:"type"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	Round       int       `json:"round"`
	CombatantID string    `json:"combatantId,omitempty"`
	Amount      *int      `json:"amount,omitempty"`
}

// MaxLogEntries bounds the combat log; the oldest entries are evicted first.
const MaxLogEntries = 1000

// State is the unit of persistence and broadcast. A State is never mutated
// after it has been returned by the Machine; transitions copy what they change.
type State struct {
	Combatants        []Combatant `json:"combatants"`
	ActiveCombatantID *string     `json:"activeCombatantId"`
	Round             int         `json:"round"`
	StartedAt         *time.Time  `json:"startedAt,omitempty"`
	Log               []LogEntry  `json:"log"`
}

// NewState returns an empty encounter at round 1.
func NewState() *State {
	return &State{
		Combatants: []Combatant{},
		Round:      1,
		Log:        []LogEntry{},
	}
}

// Find returns the index of the combatant with the given id, or -1.
func (s *State) Find(id string) int {
	for i := range s.Combatants {
		if s.Combatants[i].ID == id {
			return i
		}
	}
	return -1
}

// Combatant returns a copy of the combatant with the given id.
func (s *State) Combatant(id string) (Combatant, bool) {
	if i := s.Find(id); i >= 0 {
		return s.Combatants[i], true
	}
	return Combatant{}, false
}

// ActiveID returns the active combatant id or "".
func (s *State) ActiveID() string {
	if s.ActiveCombatantID == nil {
		return ""
	}
	return *s.ActiveCombatantID
}

// clone makes a shallow copy with its own combatant and log slices so the
// receiver can be modified without touching the original.
func (s *State) clone() *State {
	next := *s
	next.Combatants = make([]Combatant, len(s.Combatants))
	copy(next.Combatants, s.Combatants)
	next.Log = make([]LogEntry, len(s.Log))
	copy(next.Log, s.Log)
	return &next
}

// cloneCombatant copies the slices and pointers owned by a combatant.
func cloneCombatant(c Combatant) Combatant {
	out := c
	if c.Statuses != nil {
		out.Statuses = make([]StatusEffect, len(c.Statuses))
		copy(out.Statuses, c.Statuses)
	}
	if c.DeathSaves != nil {
		ds := *c.DeathSaves
		out.DeathSaves = &ds
	}
	return out
}

func intPtr(n int) *int {
	return &n
}

func strPtr(s string) *string {
	return &s
}
