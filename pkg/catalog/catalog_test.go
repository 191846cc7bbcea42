package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/combat-tracker/pkg/encounter"
)

func TestStatus(t *testing.T) {
	p, ok := Status("Poisoned ")
	require.True(t, ok)
	assert.Equal(t, "poisoned", p.ID)
	assert.Equal(t, "Poisoned", p.Label)
	assert.NotEmpty(t, p.Icon)

	ex, ok := Status(encounter.ExhaustionID)
	require.True(t, ok)
	assert.Equal(t, encounter.ExhaustionID, ex.ID)

	_, ok = Status("sleepy")
	assert.False(t, ok)
}

func TestStatuses_SortedAndComplete(t *testing.T) {
	all := Statuses()
	assert.Len(t, all, len(statuses))
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Label, all[i].Label)
	}
	for _, st := range all {
		assert.NotEmpty(t, st.ID)
		assert.NotEmpty(t, st.Label)
	}
}

func TestIcons_ReturnsCopy(t *testing.T) {
	icons := Icons()
	icons["goblin"] = "x"
	got, ok := Icon("Goblin")
	require.True(t, ok)
	assert.NotEqual(t, "x", got)
}

func TestCustom(t *testing.T) {
	tests := []struct {
		label     string
		wantID    string
		wantLabel string
	}{
		{"hunter's mark", "hunter-s-mark", "Hunter's Mark"},
		{"  bane  ", "bane", "Bane"},
		{"marked by   the WITCH", "marked-by-the-witch", "Marked By The Witch"},
		{"Rage (2)", "rage-2", "Rage (2)"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := Custom(tt.label, " 🎯 ", "#123456")
			assert.Equal(t, tt.wantID, got.ID)
			assert.Equal(t, tt.wantLabel, got.Label)
			assert.Equal(t, "🎯", got.Icon)
			assert.Equal(t, "#123456", got.Color)
		})
	}
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "Stunned", Resolve("stunned").Label)
	custom := Resolve("cursed blade")
	assert.Equal(t, "cursed-blade", custom.ID)
	assert.Equal(t, "Cursed Blade", custom.Label)
}
