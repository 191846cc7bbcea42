package tracker

import "github.com/jwebster45206/combat-tracker/pkg/encounter"

// Each command returns whether the encounter changed.

func (c *Controller) AddCombatant(cb encounter.Combatant) bool {
	return c.Dispatch(encounter.AddCombatant{Combatant: cb})
}

func (c *Controller) RemoveCombatant(id string) bool {
	return c.Dispatch(encounter.RemoveCombatant{ID: id})
}

func (c *Controller) UpdateCombatant(id string, patch encounter.CombatantPatch) bool {
	return c.Dispatch(encounter.UpdateCombatant{ID: id, Patch: patch})
}

// ApplyDelta deals damage for a positive amount and heals for a negative one.
func (c *Controller) ApplyDelta(id string, amount int) bool {
	return c.Dispatch(encounter.ApplyDelta{ID: id, Amount: amount})
}

func (c *Controller) Attack(attackerID, targetID string, amount int, damageType string) bool {
	return c.Dispatch(encounter.Attack{AttackerID: attackerID, TargetID: targetID, Amount: amount, DamageType: damageType})
}

func (c *Controller) Heal(targetID string, amount int, source string) bool {
	return c.Dispatch(encounter.Heal{TargetID: targetID, Amount: amount, Source: source})
}

// AddStatus applies a status; rounds <= 0 means indefinite.
func (c *Controller) AddStatus(combatantID string, tmpl encounter.StatusTemplate, rounds int, note string) bool {
	act := encounter.AddStatus{CombatantID: combatantID, Template: tmpl, Note: note}
	if rounds > 0 {
		act.Rounds = &rounds
	}
	return c.Dispatch(act)
}

func (c *Controller) RemoveStatus(combatantID, instanceID string) bool {
	return c.Dispatch(encounter.RemoveStatus{CombatantID: combatantID, InstanceID: instanceID})
}

func (c *Controller) StartDeathSaves(id string) bool {
	return c.Dispatch(encounter.StartDeathSaves{ID: id})
}

func (c *Controller) RecordDeathSave(id string, result encounter.DeathSaveResult) bool {
	return c.Dispatch(encounter.RecordDeathSave{ID: id, Result: result})
}

func (c *Controller) SetDeathSaveCounts(id string, successes, failures int) bool {
	return c.Dispatch(encounter.SetDeathSaveCounts{ID: id, Successes: successes, Failures: failures})
}

func (c *Controller) ClearDeathSaves(id string) bool {
	return c.Dispatch(encounter.ClearDeathSaves{ID: id})
}

func (c *Controller) MarkDead(id string) bool {
	return c.Dispatch(encounter.MarkDead{ID: id})
}

func (c *Controller) SetActive(id string) bool {
	return c.Dispatch(encounter.SetActive{ID: id})
}

func (c *Controller) StartEncounter() bool {
	return c.Dispatch(encounter.StartEncounter{})
}

func (c *Controller) Advance() bool {
	return c.Dispatch(encounter.Advance{})
}

func (c *Controller) Rewind() bool {
	return c.Dispatch(encounter.Rewind{})
}

func (c *Controller) ClearLog() bool {
	return c.Dispatch(encounter.ClearLog{})
}

// Reset replaces the encounter with a fresh empty one.
func (c *Controller) Reset() bool {
	return c.Dispatch(encounter.Hydrate{State: encounter.NewState()})
}

// Hydrate overwrites the encounter with s.
func (c *Controller) Hydrate(s *encounter.State) bool {
	return c.Dispatch(encounter.Hydrate{State: s})
}
