package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/combat-tracker/pkg/encounter"
	"github.com/jwebster45206/combat-tracker/pkg/roster"
)

// Validates PC spec files (anything under a pcs/ directory) and encounter
// snapshot files (everything else, e.g. JSON copied from the console).
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <file.json>...\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		v := &Validator{}
		if err := v.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

type Validator struct {
	errors []string
}

func (v *Validator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("file must have .json extension: %s", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	v.errors = nil
	if isPCFile(filename) {
		err = v.validatePCData(strings.TrimSuffix(baseName, ".json"), data)
	} else {
		err = v.validateEncounterData(data)
	}
	if err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func isPCFile(filename string) bool {
	return filepath.Base(filepath.Dir(filename)) == "pcs"
}

func strictDecode(data []byte, out any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func (v *Validator) validatePCData(fileID string, data []byte) error {
	var spec roster.PCSpec
	if err := strictDecode(data, &spec); err != nil {
		return err
	}
	v.validatePC(fileID, &spec)
	return nil
}

func (v *Validator) validatePC(fileID string, spec *roster.PCSpec) {
	if !isValidID(fileID) {
		v.addError(fmt.Sprintf("PC filename '%s' should be lowercase snake_case", fileID))
	}
	// The file name is the PC's id; a different id in the body is ignored on load.
	if spec.ID != "" && spec.ID != fileID {
		v.addError(fmt.Sprintf("id '%s' does not match filename '%s'", spec.ID, fileID))
	}
	if strings.TrimSpace(spec.Name) == "" {
		v.addError("name is required")
	}
	if spec.Level < 0 || spec.Level > 20 {
		v.addError(fmt.Sprintf("level %d is out of range", spec.Level))
	}
	if spec.HP > spec.MaxHP {
		v.addError(fmt.Sprintf("hp %d exceeds max_hp %d", spec.HP, spec.MaxHP))
	}

	spec.ID = fileID
	if _, err := roster.NewPCFromSpec(spec); err != nil {
		v.addError(err.Error())
	}
}

func (v *Validator) validateEncounterData(data []byte) error {
	var s encounter.State
	if err := strictDecode(data, &s); err != nil {
		return err
	}
	v.validateEncounter(&s)
	return nil
}

func (v *Validator) validateEncounter(s *encounter.State) {
	if s.Round < 1 {
		v.addError(fmt.Sprintf("round %d should be at least 1", s.Round))
	}
	if len(s.Log) > encounter.MaxLogEntries {
		v.addError(fmt.Sprintf("log has %d entries, only the newest %d are kept", len(s.Log), encounter.MaxLogEntries))
	}

	seen := make(map[string]bool, len(s.Combatants))
	for i, c := range s.Combatants {
		label := fmt.Sprintf("combatant %d (%s)", i+1, c.Name)
		switch {
		case c.ID == "":
			v.addError(label + " has no id")
		case seen[c.ID]:
			v.addError(fmt.Sprintf("%s reuses id '%s'", label, c.ID))
		}
		seen[c.ID] = true
		v.validateCombatant(label, &c)
	}

	if id := s.ActiveID(); id != "" && !seen[id] {
		v.addError(fmt.Sprintf("activeCombatantId '%s' is not a combatant", id))
	}
}

func (v *Validator) validateCombatant(label string, c *encounter.Combatant) {
	switch c.Type {
	case encounter.TypePlayer, encounter.TypeAlly, encounter.TypeEnemy:
	default:
		v.addError(fmt.Sprintf("%s has unknown type '%s'", label, c.Type))
	}
	if c.HP.Max < 0 || c.HP.Current < 0 || c.HP.Current > c.HP.Max {
		v.addError(fmt.Sprintf("%s has hp %d/%d", label, c.HP.Current, c.HP.Max))
	}
	if c.DeathSaves != nil && (!c.Type.IsParty() || !c.IsDown()) {
		v.addError(label + " has death saves but is not a downed party member")
	}

	instances := make(map[string]bool, len(c.Statuses))
	for _, st := range c.Statuses {
		if st.Label == "" {
			v.addError(fmt.Sprintf("%s has a status without a label (%s)", label, st.ID))
		}
		if st.InstanceID != "" && instances[st.InstanceID] {
			v.addError(fmt.Sprintf("%s reuses status instance '%s'", label, st.InstanceID))
		}
		instances[st.InstanceID] = true
		if st.RemainingRounds != nil && *st.RemainingRounds <= 0 {
			v.addError(fmt.Sprintf("%s has expired status '%s'", label, st.Label))
		}
	}
}

func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
