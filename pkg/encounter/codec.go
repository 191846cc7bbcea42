package encounter

import (
	"encoding/json"
	"fmt"
)

// envelope is the wire form of an Action: {"type": "...", ...fields}.
type envelope struct {
	Type ActionType `json:"type"`
}

// DecodeAction parses a tagged JSON action.
func DecodeAction(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode action: %w", err)
	}

	switch env.Type {
	case ActAddCombatant:
		return decodeAs[AddCombatant](data)
	case ActRemoveCombatant:
		return decodeAs[RemoveCombatant](data)
	case ActUpdateCombatant:
		return decodeAs[UpdateCombatant](data)
	case ActApplyDelta:
		return decodeAs[ApplyDelta](data)
	case ActAttack:
		return decodeAs[Attack](data)
	case ActHeal:
		return decodeAs[Heal](data)
	case ActAddStatus:
		return decodeAs[AddStatus](data)
	case ActRemoveStatus:
		return decodeAs[RemoveStatus](data)
	case ActStartDeathSaves:
		return decodeAs[StartDeathSaves](data)
	case ActRecordDeathSave:
		return decodeAs[RecordDeathSave](data)
	case ActSetDeathSaveCounts:
		return decodeAs[SetDeathSaveCounts](data)
	case ActMarkDead:
		return decodeAs[MarkDead](data)
	case ActClearDeathSaves:
		return decodeAs[ClearDeathSaves](data)
	case ActSetActive:
		return decodeAs[SetActive](data)
	case ActStartEncounter:
		return StartEncounter{}, nil
	case ActAdvance:
		return Advance{}, nil
	case ActRewind:
		return Rewind{}, nil
	case ActClearLog:
		return ClearLog{}, nil
	case ActHydrate:
		return decodeAs[Hydrate](data)
	case "":
		return nil, fmt.Errorf("action type is required")
	default:
		return nil, fmt.Errorf("unknown action type: %s", env.Type)
	}
}

func decodeAs[T Action](data []byte) (Action, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s action: %w", out.Type(), err)
	}
	return out, nil
}

// EncodeAction writes an Action in its tagged JSON form.
func EncodeAction(a Action) ([]byte, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode action: %w", err)
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode action: %w", err)
	}
	tag, err := json.Marshal(a.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to encode action type: %w", err)
	}
	fields["type"] = tag
	return json.Marshal(fields)
}
