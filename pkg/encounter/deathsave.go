package encounter

// DeathSaveStatus is the sub-state of a downed party member.
type DeathSaveStatus string

const (
	DeathSavePending DeathSaveStatus = "pending"
	DeathSaveStable  DeathSaveStatus = "stable"
	DeathSaveDead    DeathSaveStatus = "dead"
)

// DeathSaveLimit is the number of successes or failures that ends the throws.
const DeathSaveLimit = 3

// DeathSaveResult is the outcome of a single roll.
type DeathSaveResult string

const (
	DeathSaveSuccess DeathSaveResult = "success"
	DeathSaveFailure DeathSaveResult = "failure"
)

// DeathSaveState tracks death saving throws while a party member is at 0 HP.
type DeathSaveState struct {
	Status         DeathSaveStatus `json:"status"`
	Successes      int             `json:"successes"`
	Failures       int             `json:"failures"`
	StartedAtRound int             `json:"startedAtRound"`
	LastRollRound  *int            `json:"lastRollRound"`
}

// DeriveDeathSaveStatus is the only source of truth for a death save status.
func DeriveDeathSaveStatus(successes, failures int) DeathSaveStatus {
	switch {
	case failures >= DeathSaveLimit:
		return DeathSaveDead
	case successes >= DeathSaveLimit:
		return DeathSaveStable
	default:
		return DeathSavePending
	}
}

func clampCount(n int) int {
	return max(0, min(DeathSaveLimit, n))
}

// NewDeathSaves starts a fresh pending sequence.
func NewDeathSaves(round int) *DeathSaveState {
	return &DeathSaveState{
		Status:         DeathSavePending,
		StartedAtRound: round,
	}
}

// SanitizeDeathSaves clamps counters and re-derives the status. A nil input
// stays nil, and a stable result is dropped because stabilizing ends the throws.
func SanitizeDeathSaves(ds *DeathSaveState, round int) *DeathSaveState {
	if ds == nil {
		return nil
	}
	out := *ds
	out.Successes = clampCount(out.Successes)
	out.Failures = clampCount(out.Failures)
	out.Status = DeriveDeathSaveStatus(out.Successes, out.Failures)
	if out.StartedAtRound < 1 {
		out.StartedAtRound = max(1, round)
	}
	if out.LastRollRound != nil && *out.LastRollRound < 1 {
		out.LastRollRound = nil
	}
	if out.Status == DeathSaveStable {
		return nil
	}
	return &out
}

// Record applies one roll and returns the next state. Rolls against a
// resolved sequence are ignored.
func (ds DeathSaveState) Record(result DeathSaveResult, round int) DeathSaveState {
	if ds.Status != DeathSavePending {
		return ds
	}
	switch result {
	case DeathSaveSuccess:
		ds.Successes = clampCount(ds.Successes + 1)
	case DeathSaveFailure:
		ds.Failures = clampCount(ds.Failures + 1)
	default:
		return ds
	}
	ds.LastRollRound = intPtr(round)
	ds.Status = DeriveDeathSaveStatus(ds.Successes, ds.Failures)
	return ds
}

// WithCounts sets both counters at once and re-derives the status.
func (ds DeathSaveState) WithCounts(successes, failures int) DeathSaveState {
	ds.Successes = clampCount(successes)
	ds.Failures = clampCount(failures)
	ds.Status = DeriveDeathSaveStatus(ds.Successes, ds.Failures)
	return ds
}

// Killed forces the dead terminal state.
func (ds DeathSaveState) Killed() DeathSaveState {
	ds.Failures = DeathSaveLimit
	ds.Status = DeathSaveDead
	return ds
}
