package roster

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/combat-tracker/pkg/encounter"
)

// Source lists and loads party PC specs.
type Source interface {
	ListPCs(ctx context.Context) ([]string, error)
	GetPCSpec(ctx context.Context, pcID string) (*PCSpec, error)
}

// Roster turns stored PC specs into encounter combatants.
type Roster struct {
	source Source
	logger *slog.Logger
}

// New creates a Roster reading from source.
func New(source Source, logger *slog.Logger) *Roster {
	return &Roster{source: source, logger: logger}
}

// Load builds the PCs named by ids. An empty ids loads every stored PC.
func (r *Roster) Load(ctx context.Context, ids ...string) ([]*PC, error) {
	if len(ids) == 0 {
		all, err := r.source.ListPCs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list PCs: %w", err)
		}
		ids = all
	}

	pcs := make([]*PC, 0, len(ids))
	for _, id := range ids {
		spec, err := r.source.GetPCSpec(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load PC %q: %w", id, err)
		}
		pc, err := NewPCFromSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid PC %q: %w", id, err)
		}
		pcs = append(pcs, pc)
	}
	r.logger.Debug("Loaded party", "count", len(pcs))
	return pcs, nil
}

// Party loads the PCs named by ids and returns them as combatants. rolls
// maps a PC id to its initiative roll; a PC without a roll enters with its
// initiative bonus.
func (r *Roster) Party(ctx context.Context, rolls map[string]int, ids ...string) ([]encounter.Combatant, error) {
	pcs, err := r.Load(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]encounter.Combatant, 0, len(pcs))
	for _, pc := range pcs {
		roll, ok := rolls[pc.Spec.ID]
		if !ok {
			roll = pc.InitiativeBonus()
		}
		out = append(out, pc.Combatant(roll))
	}
	return out, nil
}
