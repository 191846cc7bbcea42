package roster

import (
	"fmt"
	"maps"

	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/combat-tracker/pkg/encounter"
)

// Stats5e represents the six core D&D 5e ability scores
type Stats5e struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// ToAttributes converts Stats5e to a map for d20.Actor compatibility
func (s *Stats5e) ToAttributes() map[string]int {
	return map[string]int{
		"strength":     s.Strength,
		"dexterity":    s.Dexterity,
		"constitution": s.Constitution,
		"intelligence": s.Intelligence,
		"wisdom":       s.Wisdom,
		"charisma":     s.Charisma,
	}
}

// PCSpec is the serializable specification for a party member, as stored
// under DATA_DIR/pcs/<id>.json.
type PCSpec struct {
	ID              string         `json:"id"`
	Name            string         `json:"name,omitempty"`
	Class           string         `json:"class,omitempty"`
	Level           int            `json:"level,omitempty"`
	Race            string         `json:"race,omitempty"`
	Icon            string         `json:"icon,omitempty"`
	Ally            bool           `json:"ally,omitempty"` // companion NPC rather than a player
	Stats           Stats5e        `json:"stats,omitempty"`
	HP              int            `json:"hp,omitempty"`     // Current HP
	MaxHP           int            `json:"max_hp,omitempty"` // Maximum HP
	AC              int            `json:"ac,omitempty"`
	CombatModifiers map[string]int `json:"combat_modifiers,omitempty"`
	Attributes      map[string]int `json:"attributes,omitempty"`
}

// PC is the runtime representation of a party member
type PC struct {
	Spec  *PCSpec
	Actor *d20.Actor // Built at runtime from PCSpec
}

// NewPCFromSpec creates a PC from a PCSpec, validating HP and AC through d20.
func NewPCFromSpec(spec *PCSpec) (*PC, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}

	allAttrs := spec.Stats.ToAttributes()
	maps.Copy(allAttrs, spec.Attributes)

	actor, err := d20.NewActor(spec.ID).
		WithHP(spec.MaxHP).
		WithAC(spec.AC).
		WithAttributes(allAttrs).
		WithCombatModifiers(spec.CombatModifiers).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	// Set current HP if different from max
	if spec.HP != spec.MaxHP && spec.HP > 0 {
		if err := actor.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}

	return &PC{Spec: spec, Actor: actor}, nil
}

// abilityModifier is the 5e modifier for an ability score.
func abilityModifier(score int) int {
	mod := score - 10
	if mod < 0 {
		mod--
	}
	return mod / 2
}

// InitiativeBonus is the dexterity modifier plus any "initiative" combat modifier.
func (pc *PC) InitiativeBonus() int {
	dex, _ := pc.Actor.Attribute("dexterity")
	bonus := abilityModifier(dex)
	for _, mod := range pc.Actor.GetCombatModifiers() {
		if mod.Reason == "initiative" {
			bonus += mod.Value
		}
	}
	return bonus
}

// Combatant converts the PC into an encounter combatant with the given
// initiative roll. The combatant id is left empty so the encounter assigns one.
func (pc *PC) Combatant(initiative int) encounter.Combatant {
	name := pc.Spec.Name
	if name == "" {
		name = pc.Spec.ID
	}
	ac := pc.Actor.AC()
	ctype := encounter.TypePlayer
	if pc.Spec.Ally {
		ctype = encounter.TypeAlly
	}
	return encounter.Combatant{
		Name:       name,
		Type:       ctype,
		Initiative: initiative,
		HP:         encounter.HP{Current: pc.Actor.HP(), Max: pc.Actor.MaxHP()},
		ArmorClass: &ac,
		Icon:       pc.Spec.Icon,
		Statuses:   []encounter.StatusEffect{},
	}
}
