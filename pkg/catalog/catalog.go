package catalog

import (
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/combat-tracker/pkg/encounter"
)

// statuses are the built-in status templates, keyed by id.
var statuses = map[string]encounter.StatusTemplate{
	"blinded":       {ID: "blinded", Label: "Blinded", Icon: "🙈", Color: "#607d8b", Description: "Can't see. Attacks against it have advantage; its attacks have disadvantage."},
	"charmed":       {ID: "charmed", Label: "Charmed", Icon: "💘", Color: "#e91e63", Description: "Can't attack the charmer, who has advantage on social checks against it."},
	"deafened":      {ID: "deafened", Label: "Deafened", Icon: "🙉", Color: "#9e9e9e", Description: "Can't hear and fails checks that require hearing."},
	"frightened":    {ID: "frightened", Label: "Frightened", Icon: "😱", Color: "#673ab7", Description: "Disadvantage while the source of fear is in sight; can't move closer to it."},
	"grappled":      {ID: "grappled", Label: "Grappled", Icon: "🤼", Color: "#795548", Description: "Speed becomes 0."},
	"incapacitated": {ID: "incapacitated", Label: "Incapacitated", Icon: "💫", Color: "#ff9800", Description: "Can't take actions or reactions."},
	"invisible":     {ID: "invisible", Label: "Invisible", Icon: "👻", Color: "#b0bec5", Description: "Can't be seen without magic. Its attacks have advantage."},
	"paralyzed":     {ID: "paralyzed", Label: "Paralyzed", Icon: "⚡", Color: "#ffeb3b", Description: "Incapacitated and can't move or speak. Hits within 5 feet are critical."},
	"petrified":     {ID: "petrified", Label: "Petrified", Icon: "🗿", Color: "#8d6e63", Description: "Transformed into stone along with what it carries."},
	"poisoned":      {ID: "poisoned", Label: "Poisoned", Icon: "🤢", Color: "#4caf50", Description: "Disadvantage on attack rolls and ability checks."},
	"prone":         {ID: "prone", Label: "Prone", Icon: "🛌", Color: "#a1887f", Description: "Can only crawl. Melee attacks against it have advantage."},
	"restrained":    {ID: "restrained", Label: "Restrained", Icon: "⛓️", Color: "#546e7a", Description: "Speed 0. Attacks against it have advantage; its attacks have disadvantage."},
	"stunned":       {ID: "stunned", Label: "Stunned", Icon: "😵", Color: "#ffc107", Description: "Incapacitated, can't move, and fails Strength and Dexterity saves."},
	"unconscious":   {ID: "unconscious", Label: "Unconscious", Icon: "💤", Color: "#37474f", Description: "Incapacitated, prone, and unaware of its surroundings."},
	encounter.ExhaustionID: {ID: encounter.ExhaustionID, Label: "Exhaustion", Icon: "😫", Color: "#6d4c41", Description: "Stacks by level. Each level worsens checks, speed, and hit points."},
	"concentrating": {ID: "concentrating", Label: "Concentrating", Icon: "🧠", Color: "#2196f3", Description: "Maintaining a spell. Damage forces a Constitution save."},
	"blessed":       {ID: "blessed", Label: "Blessed", Icon: "✨", Color: "#fdd835", Description: "Adds a d4 to attack rolls and saving throws."},
	"burning":       {ID: "burning", Label: "Burning", Icon: "🔥", Color: "#f44336", Description: "Takes fire damage at the start of each turn until extinguished."},
	"hasted":        {ID: "hasted", Label: "Hasted", Icon: "🏃", Color: "#00bcd4", Description: "Doubled speed, +2 AC, and an extra action."},
	"hidden":        {ID: "hidden", Label: "Hidden", Icon: "🫥", Color: "#78909c", Description: "Unseen and unheard until it gives itself away."},
}

// icons are the preset combatant icons, keyed by name.
var icons = map[string]string{
	"fighter":  "⚔️",
	"wizard":   "🧙",
	"cleric":   "✝️",
	"rogue":    "🗡️",
	"ranger":   "🏹",
	"bard":     "🎻",
	"druid":    "🌿",
	"paladin":  "🛡️",
	"monk":     "🥋",
	"goblin":   "👺",
	"skeleton": "💀",
	"wolf":     "🐺",
	"dragon":   "🐉",
	"spider":   "🕷️",
	"ogre":     "👹",
	"ghost":    "👻",
	"beast":    "🐗",
	"npc":      "🧑",
}

// Status returns the built-in template for id.
func Status(id string) (encounter.StatusTemplate, bool) {
	t, ok := statuses[strings.ToLower(strings.TrimSpace(id))]
	return t, ok
}

// Statuses returns every built-in template ordered by label.
func Statuses() []encounter.StatusTemplate {
	out := slices.Collect(maps.Values(statuses))
	slices.SortFunc(out, func(a, b encounter.StatusTemplate) int {
		return strings.Compare(a.Label, b.Label)
	})
	return out
}

// Icon returns the preset icon for name.
func Icon(name string) (string, bool) {
	icon, ok := icons[strings.ToLower(strings.TrimSpace(name))]
	return icon, ok
}

// Icons returns a copy of the icon presets.
func Icons() map[string]string {
	return maps.Clone(icons)
}

// Custom builds a template for a status that is not in the catalog. The
// label is title-cased and the id derived from it.
func Custom(label, icon, color string) encounter.StatusTemplate {
	label = strings.Join(strings.Fields(label), " ")
	title := cases.Title(language.English).String(label)
	return encounter.StatusTemplate{
		ID:    slug(label),
		Label: title,
		Icon:  strings.TrimSpace(icon),
		Color: strings.TrimSpace(color),
	}
}

// Resolve returns the built-in template for id, or a custom one using id as
// the label.
func Resolve(id string) encounter.StatusTemplate {
	if t, ok := Status(id); ok {
		return t
	}
	return Custom(id, "", "")
}

func slug(label string) string {
	lower := cases.Lower(language.English).String(label)
	var b strings.Builder
	dash := false
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
