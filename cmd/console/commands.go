package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jwebster45206/combat-tracker/pkg/catalog"
	"github.com/jwebster45206/combat-tracker/pkg/encounter"
	"github.com/jwebster45206/combat-tracker/pkg/tracker"
)

// localOp is a console command that does not change the encounter.
type localOp int

const (
	opNone localOp = iota
	opHelp
	opCopy
	opDismiss
	opQuit
)

// command is one parsed line of input.
type command struct {
	action encounter.Action
	local  localOp
}

const helpText = `Commands (who = order number, id, or name prefix):
  add <name> <init> <hp> [player|ally|enemy] [ac]
  rm <who>              remove a combatant
  dmg <who> <n>         damage (negative heals)
  heal <who> <n> [source]
  atk <attacker> <target> <n> [damage type]
  status <who> <preset or label> [rounds]
  unstatus <who> <status>
  save <who> s|f        record a death save
  saves <who> <successes> <failures>
  startsaves <who>      begin death saves
  clearsaves <who>
  dead <who>            mark dead
  start | next | prev   turn control
  active <who>          set the active combatant
  clearlog | reset
  copy                  copy the encounter JSON
  dismiss               skip the current death banner
  help | quit`

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

// parseCommand turns a line of input into a command against the current view.
func parseCommand(input string, view tracker.View) (command, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return command{}, errors.New("empty command")
	}
	verb := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	args := fields[1:]

	switch verb {
	case "help", "?":
		return command{local: opHelp}, nil
	case "copy":
		return command{local: opCopy}, nil
	case "dismiss":
		return command{local: opDismiss}, nil
	case "quit", "exit":
		return command{local: opQuit}, nil
	case "start":
		return command{action: encounter.StartEncounter{}}, nil
	case "next", "n":
		return command{action: encounter.Advance{}}, nil
	case "prev", "p":
		return command{action: encounter.Rewind{}}, nil
	case "clearlog":
		return command{action: encounter.ClearLog{}}, nil
	case "reset":
		return command{action: encounter.Hydrate{State: encounter.NewState()}}, nil
	case "add":
		return parseAdd(args)
	}

	// Everything else targets a combatant first.
	if len(args) == 0 {
		return command{}, usage(verb + " <who> ...")
	}
	id, err := resolve(args[0], view)
	if err != nil {
		return command{}, err
	}
	rest := args[1:]

	switch verb {
	case "rm", "remove":
		return command{action: encounter.RemoveCombatant{ID: id}}, nil
	case "dmg", "damage":
		n, err := intArg(rest, 0, "dmg <who> <n>")
		if err != nil {
			return command{}, err
		}
		return command{action: encounter.ApplyDelta{ID: id, Amount: n}}, nil
	case "heal":
		n, err := intArg(rest, 0, "heal <who> <n> [source]")
		if err != nil {
			return command{}, err
		}
		return command{action: encounter.Heal{TargetID: id, Amount: n, Source: strings.Join(rest[1:], " ")}}, nil
	case "atk", "attack":
		if len(rest) < 2 {
			return command{}, usage("atk <attacker> <target> <n> [damage type]")
		}
		target, err := resolve(rest[0], view)
		if err != nil {
			return command{}, err
		}
		n, err := intArg(rest, 1, "atk <attacker> <target> <n> [damage type]")
		if err != nil {
			return command{}, err
		}
		return command{action: encounter.Attack{
			AttackerID: id,
			TargetID:   target,
			Amount:     n,
			DamageType: strings.Join(rest[2:], " "),
		}}, nil
	case "status":
		return parseStatus(id, rest)
	case "unstatus":
		return parseUnstatus(id, rest, view)
	case "save":
		if len(rest) != 1 {
			return command{}, usage("save <who> s|f")
		}
		switch strings.ToLower(rest[0]) {
		case "s", "success", "pass":
			return command{action: encounter.RecordDeathSave{ID: id, Result: encounter.DeathSaveSuccess}}, nil
		case "f", "fail", "failure":
			return command{action: encounter.RecordDeathSave{ID: id, Result: encounter.DeathSaveFailure}}, nil
		}
		return command{}, usage("save <who> s|f")
	case "saves":
		s, err := intArg(rest, 0, "saves <who> <successes> <failures>")
		if err != nil {
			return command{}, err
		}
		f, err := intArg(rest, 1, "saves <who> <successes> <failures>")
		if err != nil {
			return command{}, err
		}
		return command{action: encounter.SetDeathSaveCounts{ID: id, Successes: s, Failures: f}}, nil
	case "startsaves":
		return command{action: encounter.StartDeathSaves{ID: id}}, nil
	case "clearsaves":
		return command{action: encounter.ClearDeathSaves{ID: id}}, nil
	case "dead", "kill":
		return command{action: encounter.MarkDead{ID: id}}, nil
	case "active":
		return command{action: encounter.SetActive{ID: id}}, nil
	}
	return command{}, fmt.Errorf("unknown command %q (try help)", verb)
}

func parseAdd(args []string) (command, error) {
	const form = "add <name> <init> <hp> [player|ally|enemy] [ac]"
	if len(args) < 3 {
		return command{}, usage(form)
	}
	initiative, err := intArg(args, 1, form)
	if err != nil {
		return command{}, err
	}
	hp, err := intArg(args, 2, form)
	if err != nil {
		return command{}, err
	}

	c := encounter.Combatant{
		Name:       strings.ReplaceAll(args[0], "_", " "),
		Type:       encounter.TypeEnemy,
		Initiative: initiative,
		HP:         encounter.HP{Current: hp, Max: hp},
	}
	if icon, ok := catalog.Icon(args[0]); ok {
		c.Icon = icon
	}
	if len(args) > 3 {
		t := encounter.CombatantType(strings.ToLower(args[3]))
		if t != encounter.TypePlayer && t != encounter.TypeAlly && t != encounter.TypeEnemy {
			return command{}, usage(form)
		}
		c.Type = t
	}
	if len(args) > 4 {
		ac, err := intArg(args, 4, form)
		if err != nil {
			return command{}, err
		}
		c.ArmorClass = &ac
	}
	return command{action: encounter.AddCombatant{Combatant: c}}, nil
}

func parseStatus(id string, rest []string) (command, error) {
	if len(rest) == 0 {
		return command{}, usage("status <who> <preset or label> [rounds]")
	}
	var rounds *int
	if n, err := strconv.Atoi(rest[len(rest)-1]); err == nil && len(rest) > 1 {
		rounds = &n
		rest = rest[:len(rest)-1]
	}
	return command{action: encounter.AddStatus{
		CombatantID: id,
		Template:    catalog.Resolve(strings.Join(rest, " ")),
		Rounds:      rounds,
	}}, nil
}

func parseUnstatus(id string, rest []string, view tracker.View) (command, error) {
	if len(rest) == 0 {
		return command{}, usage("unstatus <who> <status>")
	}
	c, _ := view.State.Combatant(id)
	want := strings.ToLower(strings.Join(rest, " "))
	i := slices.IndexFunc(c.Statuses, func(st encounter.StatusEffect) bool {
		return st.ID == want || strings.ToLower(st.Label) == want || st.InstanceID == want
	})
	if i < 0 {
		return command{}, fmt.Errorf("%s has no status %q", c.Name, want)
	}
	return command{action: encounter.RemoveStatus{CombatantID: id, InstanceID: c.Statuses[i].InstanceID}}, nil
}

// resolve finds a combatant by 1-based order number, id, exact name, or
// unique name prefix.
func resolve(who string, view tracker.View) (string, error) {
	if n, err := strconv.Atoi(who); err == nil {
		if n < 1 || n > len(view.Order) {
			return "", fmt.Errorf("no combatant #%d", n)
		}
		return view.Order[n-1].ID, nil
	}

	lower := strings.ToLower(strings.ReplaceAll(who, "_", " "))
	var matches []string
	for _, c := range view.Order {
		if c.ID == who || strings.ToLower(c.Name) == lower {
			return c.ID, nil
		}
		if strings.HasPrefix(strings.ToLower(c.Name), lower) {
			matches = append(matches, c.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no combatant matches %q", who)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("%q matches %d combatants", who, len(matches))
}

func intArg(args []string, i int, form string) (int, error) {
	if i >= len(args) {
		return 0, usage(form)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", args[i])
	}
	return n, nil
}
