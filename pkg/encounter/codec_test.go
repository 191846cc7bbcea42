package encounter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected Action
		wantErr  bool
	}{
		{
			name:     "attack",
			body:     `{"type":"attack","attackerId":"x","targetId":"y","amount":5,"damageType":"fire"}`,
			expected: Attack{AttackerID: "x", TargetID: "y", Amount: 5, DamageType: "fire"},
		},
		{
			name:     "record death save",
			body:     `{"type":"record-death-save","id":"a","result":"failure"}`,
			expected: RecordDeathSave{ID: "a", Result: DeathSaveFailure},
		},
		{
			name:     "advance has no payload",
			body:     `{"type":"advance"}`,
			expected: Advance{},
		},
		{
			name:     "add status",
			body:     `{"type":"add-status","combatantId":"a","template":{"id":"poisoned","label":"Poisoned"},"rounds":2}`,
			expected: AddStatus{CombatantID: "a", Template: StatusTemplate{ID: "poisoned", Label: "Poisoned"}, Rounds: intPtr(2)},
		},
		{name: "missing type", body: `{"id":"a"}`, wantErr: true},
		{name: "unknown type", body: `{"type":"teleport"}`, wantErr: true},
		{name: "bad field", body: `{"type":"heal","amount":"lots"}`, wantErr: true},
		{name: "not json", body: `heal`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAction([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEncodeAction(t *testing.T) {
	data, err := EncodeAction(Heal{TargetID: "a", Amount: 4, Source: "Potion"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"heal","targetId":"a","amount":4,"source":"Potion"}`, string(data))

	back, err := DecodeAction(data)
	require.NoError(t, err)
	assert.Equal(t, Heal{TargetID: "a", Amount: 4, Source: "Potion"}, back)

	data, err = EncodeAction(Rewind{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"rewind"}`, string(data))
}
