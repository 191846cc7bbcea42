package encounter

// ActionType is the wire tag of an Action.
type ActionType string

const (
	ActAddCombatant       ActionType = "add-combatant"
	ActRemoveCombatant    ActionType = "remove-combatant"
	ActUpdateCombatant    ActionType = "update-combatant"
	ActApplyDelta         ActionType = "apply-delta"
	ActAttack             ActionType = "attack"
	ActHeal               ActionType = "heal"
	ActAddStatus          ActionType = "add-status"
	ActRemoveStatus       ActionType = "remove-status"
	ActStartDeathSaves    ActionType = "start-death-saves"
	ActRecordDeathSave    ActionType = "record-death-save"
	ActSetDeathSaveCounts ActionType = "set-death-save-counts"
	ActMarkDead           ActionType = "mark-dead"
	ActClearDeathSaves    ActionType = "clear-death-saves"
	ActSetActive          ActionType = "set-active"
	ActStartEncounter     ActionType = "start-encounter"
	ActAdvance            ActionType = "advance"
	ActRewind             ActionType = "rewind"
	ActClearLog           ActionType = "clear-log"
	ActHydrate            ActionType = "hydrate"
)

// Action is the closed set of transitions accepted by Machine.Reduce.
type Action interface {
	Type() ActionType
}

// AddCombatant adds a combatant. An empty ID is filled in by the Machine.
type AddCombatant struct {
	Combatant Combatant `json:"combatant"`
}

type RemoveCombatant struct {
	ID string `json:"id"`
}

// CombatantPatch holds the editable fields of a combatant; nil fields are left as is.
type CombatantPatch struct {
	Name       *string        `json:"name,omitempty"`
	Type       *CombatantType `json:"type,omitempty"`
	Initiative *int           `json:"initiative,omitempty"`
	HP         *HP            `json:"hp,omitempty"`
	ArmorClass *int           `json:"ac,omitempty"`
	Icon       *string        `json:"icon,omitempty"`
	Note       *string        `json:"note,omitempty"`
}

type UpdateCombatant struct {
	ID    string         `json:"id"`
	Patch CombatantPatch `json:"patch"`
}

// ApplyDelta changes HP directly. Positive amounts are damage, negative are healing.
type ApplyDelta struct {
	ID     string `json:"id"`
	Amount int    `json:"amount"`
}

type Attack struct {
	AttackerID string `json:"attackerId"`
	TargetID   string `json:"targetId"`
	Amount     int    `json:"amount"`
	DamageType string `json:"damageType,omitempty"`
}

type Heal struct {
	TargetID string `json:"targetId"`
	Amount   int    `json:"amount"`
	Source   string `json:"source,omitempty"`
}

// AddStatus applies a status template. Rounds nil or <= 0 means indefinite.
type AddStatus struct {
	CombatantID string         `json:"combatantId"`
	Template    StatusTemplate `json:"template"`
	Rounds      *int           `json:"rounds,omitempty"`
	Note        string         `json:"note,omitempty"`
}

type RemoveStatus struct {
	CombatantID string `json:"combatantId"`
	InstanceID  string `json:"instanceId"`
}

type StartDeathSaves struct {
	ID string `json:"id"`
}

type RecordDeathSave struct {
	ID     string          `json:"id"`
	Result DeathSaveResult `json:"result"`
}

type SetDeathSaveCounts struct {
	ID        string `json:"id"`
	Successes int    `json:"successes"`
	Failures  int    `json:"failures"`
}

type MarkDead struct {
	ID string `json:"id"`
}

type ClearDeathSaves struct {
	ID string `json:"id"`
}

type SetActive struct {
	ID string `json:"id"`
}

type StartEncounter struct{}

type Advance struct{}

type Rewind struct{}

type ClearLog struct{}

// Hydrate replaces the whole state.
type Hydrate struct {
	State *State `json:"state"`
}

func (AddCombatant) Type() ActionType       { return ActAddCombatant }
func (RemoveCombatant) Type() ActionType    { return ActRemoveCombatant }
func (UpdateCombatant) Type() ActionType    { return ActUpdateCombatant }
func (ApplyDelta) Type() ActionType         { return ActApplyDelta }
func (Attack) Type() ActionType             { return ActAttack }
func (Heal) Type() ActionType               { return ActHeal }
func (AddStatus) Type() ActionType          { return ActAddStatus }
func (RemoveStatus) Type() ActionType       { return ActRemoveStatus }
func (StartDeathSaves) Type() ActionType    { return ActStartDeathSaves }
func (RecordDeathSave) Type() ActionType    { return ActRecordDeathSave }
func (SetDeathSaveCounts) Type() ActionType { return ActSetDeathSaveCounts }
func (MarkDead) Type() ActionType           { return ActMarkDead }
func (ClearDeathSaves) Type() ActionType    { return ActClearDeathSaves }
func (SetActive) Type() ActionType          { return ActSetActive }
func (StartEncounter) Type() ActionType     { return ActStartEncounter }
func (Advance) Type() ActionType            { return ActAdvance }
func (Rewind) Type() ActionType             { return ActRewind }
func (ClearLog) Type() ActionType           { return ActClearLog }
func (Hydrate) Type() ActionType            { return ActHydrate }
