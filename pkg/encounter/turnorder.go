package encounter

import (
	"slices"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collators keep scratch buffers and are not safe for concurrent use.
var collators = sync.Pool{
	New: func() any {
		return collate.New(language.English, collate.IgnoreCase)
	},
}

// SortByInitiative returns a new slice ordered by initiative descending, with
// names compared in locale order as the tie-break. Equal keys keep their input order.
func SortByInitiative(combatants []Combatant) []Combatant {
	out := make([]Combatant, len(combatants))
	copy(out, combatants)
	if len(out) < 2 {
		return out
	}
	col := collators.Get().(*collate.Collator)
	defer collators.Put(col)
	slices.SortStableFunc(out, func(a, b Combatant) int {
		if a.Initiative != b.Initiative {
			if a.Initiative > b.Initiative {
				return -1
			}
			return 1
		}
		return col.CompareString(a.Name, b.Name)
	})
	return out
}

// IsEligible reports whether a combatant takes a turn. Downed party members
// still act to roll death saves unless they are dead.
func IsEligible(c *Combatant) bool {
	if c.HP.Current > 0 {
		return true
	}
	if !c.Type.IsParty() {
		return false
	}
	return c.DeathSaves == nil || c.DeathSaves.Status != DeathSaveDead
}

// ActiveIndex returns the position of id within order, or -1.
func ActiveIndex(order []Combatant, id string) int {
	if id == "" {
		return -1
	}
	for i := range order {
		if order[i].ID == id {
			return i
		}
	}
	return -1
}

// NextTurn returns the index after current in order and whether the cursor
// wrapped around to the start.
func NextTurn(order []Combatant, current int) (int, bool) {
	n := len(order)
	if n == 0 {
		return -1, false
	}
	eligible := eligibleIndexes(order)
	if len(eligible) == 0 {
		next := (current + 1) % n
		return next, next <= current
	}
	next := eligible[0]
	for _, i := range eligible {
		if i > current {
			next = i
			break
		}
	}
	return next, next <= current
}

// PrevTurn mirrors NextTurn, moving backwards. wrapped is true when the
// cursor moved from the start of the order to its end.
func PrevTurn(order []Combatant, current int) (int, bool) {
	n := len(order)
	if n == 0 {
		return -1, false
	}
	eligible := eligibleIndexes(order)
	if len(eligible) == 0 {
		prev := current - 1
		if prev < 0 {
			prev = n - 1
		}
		return prev, prev >= current
	}
	for j := len(eligible) - 1; j >= 0; j-- {
		if eligible[j] < current {
			return eligible[j], false
		}
	}
	return eligible[len(eligible)-1], true
}

func eligibleIndexes(order []Combatant) []int {
	var out []int
	for i := range order {
		if IsEligible(&order[i]) {
			out = append(out, i)
		}
	}
	return out
}
