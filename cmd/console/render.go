package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/combat-tracker/pkg/encounter"
	"github.com/jwebster45206/combat-tracker/pkg/showcase"
	"github.com/jwebster45206/combat-tracker/pkg/tracker"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214")). // yellow
			Bold(true)

	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	allyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	enemyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")) // salmon

	downStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")). // dark grey
			Strikethrough(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	roundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("196")).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("52")).
			Bold(true).
			Padding(1, 4).
			Align(lipgloss.Center)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

// logStyles colors log lines by entry type.
var logStyles = map[encounter.LogType]lipgloss.Style{
	encounter.LogAttack:       enemyStyle,
	encounter.LogDamage:       enemyStyle,
	encounter.LogHeal:         allyStyle,
	encounter.LogTurn:         roundStyle,
	encounter.LogDeath:        errorStyle.Bold(true),
	encounter.LogStatusAdd:    playerStyle,
	encounter.LogStatusRemove: promptStyle,
}

func typeStyle(t encounter.CombatantType) lipgloss.Style {
	switch t {
	case encounter.TypePlayer:
		return playerStyle
	case encounter.TypeAlly:
		return allyStyle
	}
	return enemyStyle
}

// hpBar draws current/max HP as a fixed-width bar.
func hpBar(hp encounter.HP, width int) string {
	if width <= 0 || hp.Max <= 0 {
		return ""
	}
	filled := hp.Current * width / hp.Max
	if hp.Current > 0 && filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// deathSaveMarks renders successes and failures as ● and ✕ against the limit.
func deathSaveMarks(ds *encounter.DeathSaveState) string {
	if ds == nil {
		return ""
	}
	s := strings.Repeat("●", ds.Successes) + strings.Repeat("○", encounter.DeathSaveLimit-ds.Successes)
	f := strings.Repeat("✕", ds.Failures) + strings.Repeat("·", encounter.DeathSaveLimit-ds.Failures)
	label := ""
	switch ds.Status {
	case encounter.DeathSaveStable:
		label = " stable"
	case encounter.DeathSaveDead:
		label = " DEAD"
	}
	return fmt.Sprintf("saves %s %s%s", s, f, label)
}

func statusLabel(st encounter.StatusEffect) string {
	label := strings.TrimSpace(st.Icon + " " + st.Label)
	if st.Level != nil {
		label += fmt.Sprintf(" %d", *st.Level)
	}
	if st.RemainingRounds != nil {
		label += fmt.Sprintf(" (%d)", *st.RemainingRounds)
	}
	return label
}

// renderOrder lists the combatants in turn order.
func renderOrder(view tracker.View, width int) string {
	var b strings.Builder
	round := 1
	if view.State != nil {
		round = view.State.Round
	}
	b.WriteString(titleStyle.Render("INITIATIVE") + "  " + roundStyle.Render(fmt.Sprintf("Round %d", round)) + "\n\n")

	if len(view.Order) == 0 {
		b.WriteString(promptStyle.Render("No combatants. Try: add goblin 12 7 enemy") + "\n")
		return b.String()
	}

	barWidth := min(max(width-30, 5), 20)
	for i, c := range view.Order {
		marker := "  "
		if i == view.ActiveIndex {
			marker = "▶ "
		}
		name := fmt.Sprintf("%s%2d. %s %s", marker, i+1, c.Icon, c.Name)
		switch {
		case i == view.ActiveIndex:
			name = activeStyle.Render(name)
		case !encounter.IsEligible(&c):
			name = downStyle.Render(name)
		default:
			name = typeStyle(c.Type).Render(name)
		}

		ac := ""
		if c.ArmorClass != nil {
			ac = fmt.Sprintf(" AC %d", *c.ArmorClass)
		}
		fmt.Fprintf(&b, "%s  [%d]\n", name, c.Initiative)
		fmt.Fprintf(&b, "      %s %d/%d%s\n", hpBar(c.HP, barWidth), c.HP.Current, c.HP.Max, ac)

		if marks := deathSaveMarks(c.DeathSaves); marks != "" {
			b.WriteString("      " + errorStyle.Render(marks) + "\n")
		} else if c.IsDown() && c.Type == encounter.TypeEnemy {
			b.WriteString("      " + errorStyle.Render("defeated") + "\n")
		}
		if len(c.Statuses) > 0 {
			labels := make([]string, 0, len(c.Statuses))
			for _, st := range c.Statuses {
				labels = append(labels, statusLabel(st))
			}
			b.WriteString(wordwrap.String("      "+strings.Join(labels, ", "), max(width, 20)) + "\n")
		}
		if c.Note != "" {
			b.WriteString(promptStyle.Render("      "+c.Note) + "\n")
		}
	}
	return b.String()
}

// renderLog formats the combat log, newest last.
func renderLog(entries []encounter.LogEntry, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("COMBAT LOG") + "\n\n")
	if len(entries) == 0 {
		b.WriteString(promptStyle.Render("Nothing has happened yet.") + "\n")
		return b.String()
	}
	wrap := max(width-6, 10)
	for _, e := range entries {
		line := wordwrap.String(e.Message, wrap)
		if style, ok := logStyles[e.Type]; ok {
			line = style.Render(line)
		}
		fmt.Fprintf(&b, "%s %s\n", promptStyle.Render(fmt.Sprintf("R%-3d", e.Round)), line)
	}
	return b.String()
}

// renderBanner is the death showcase overlay.
func renderBanner(sc *showcase.Showcase, width int) string {
	if sc == nil {
		return ""
	}
	title := "☠  " + strings.ToUpper(sc.Name) + "  ☠"
	if sc.Icon != "" {
		title = sc.Icon + "  " + title
	}
	body := title + "\n\n" + sc.Message + "\n\n" + promptStyle.Render(fmt.Sprintf("round %d · dismiss to continue", sc.Round))
	return bannerStyle.Width(min(max(width-10, 30), 60)).Render(body)
}
