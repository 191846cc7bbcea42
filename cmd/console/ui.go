package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jwebster45206/combat-tracker/pkg/encounter"
	"github.com/jwebster45206/combat-tracker/pkg/showcase"
	"github.com/jwebster45206/combat-tracker/pkg/tracker"
)

const PlaceHolderText = "Type a command (help for a list)..."

// Tracker is what the console drives. *tracker.Controller satisfies it.
type Tracker interface {
	Dispatch(a encounter.Action) bool
	View() tracker.View
}

// Showcaser is the death banner queue. *showcase.Queue satisfies it.
type Showcaser interface {
	Dismiss()
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	tracker   Tracker
	showcases Showcaser
	copyText  func(string) error

	view          tracker.View
	banner        *showcase.Showcase
	orderViewport viewport.Model
	logViewport   viewport.Model
	input         textinput.Model
	notice        string
	err           error
	showHelp      bool
	showQuitModal bool
	ready         bool
	width         int
	height        int
}

// stateMsg tells the UI the encounter changed.
type stateMsg struct{}

// showcaseMsg carries the death banner to display; nil clears it.
type showcaseMsg struct {
	showcase *showcase.Showcase
}

func NewConsoleUI(t Tracker, s Showcaser) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = PlaceHolderText
	ti.Prompt = promptStyle.Render(":: ")
	ti.CharLimit = 200
	ti.Focus()

	orderVp := viewport.New(40, 20)
	logVp := viewport.New(40, 20)
	logVp.MouseWheelEnabled = true

	return ConsoleUI{
		tracker:       t,
		showcases:     s,
		copyText:      clipboard.WriteAll,
		view:          t.View(),
		input:         ti,
		orderViewport: orderVp,
		logViewport:   logVp,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textinput.Blink
}

// layout sizes the panels for the current window.
func (m *ConsoleUI) layout() {
	orderWidth := max(m.width*2/5, 30)
	logWidth := max(m.width-orderWidth-4, 20)
	bodyHeight := max(m.height-6, 5)

	m.orderViewport.Width = orderWidth
	m.orderViewport.Height = bodyHeight
	m.logViewport.Width = logWidth
	m.logViewport.Height = bodyHeight
	m.input.Width = max(m.width-8, 10)
}

// refresh re-renders both panels from the latest view.
func (m *ConsoleUI) refresh() {
	m.view = m.tracker.View()
	m.orderViewport.SetContent(renderOrder(m.view, m.orderViewport.Width))
	if m.showHelp {
		m.logViewport.SetContent(titleStyle.Render("HELP") + "\n\n" + helpText)
		m.logViewport.GotoTop()
		return
	}
	var entries []encounter.LogEntry
	if m.view.State != nil {
		entries = m.view.State.Log
	}
	m.logViewport.SetContent(renderLog(entries, m.logViewport.Width))
	m.logViewport.GotoBottom()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		ovCmd tea.Cmd
		lvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.logViewport, lvCmd = m.logViewport.Update(msg)
		m.orderViewport, ovCmd = m.orderViewport.Update(msg)
		return m, tea.Batch(lvCmd, ovCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.refresh()

	case stateMsg:
		m.refresh()
		return m, nil

	case showcaseMsg:
		m.banner = msg.showcase
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.banner != nil {
				m.showcases.Dismiss()
				return m, nil
			}
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if input == "" {
				// Enter on an empty line advances the turn
				input = "next"
			}
			return m.run(input)
		}
	}

	m.input, tiCmd = m.input.Update(msg)
	m.logViewport, lvCmd = m.logViewport.Update(msg)
	m.orderViewport, ovCmd = m.orderViewport.Update(msg)
	return m, tea.Batch(tiCmd, lvCmd, ovCmd)
}

// run executes one line of input.
func (m ConsoleUI) run(input string) (tea.Model, tea.Cmd) {
	m.err = nil
	m.notice = ""

	cmd, err := parseCommand(input, m.view)
	if err != nil {
		m.err = err
		return m, nil
	}

	switch cmd.local {
	case opHelp:
		m.showHelp = !m.showHelp
		m.refresh()
		return m, nil
	case opCopy:
		m.copyState()
		return m, nil
	case opDismiss:
		m.showcases.Dismiss()
		return m, nil
	case opQuit:
		m.showQuitModal = true
		return m, nil
	}

	m.showHelp = false
	if !m.tracker.Dispatch(cmd.action) {
		m.notice = "No change."
	}
	m.refresh()
	return m, nil
}

func (m *ConsoleUI) copyState() {
	data, err := json.MarshalIndent(m.view.State, "", "  ")
	if err != nil {
		m.err = fmt.Errorf("failed to encode encounter: %w", err)
		return
	}
	if err := m.copyText(string(data)); err != nil {
		m.err = errors.New("clipboard is not available")
		return
	}
	m.notice = "Encounter JSON copied to clipboard."
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
	case stateMsg:
		m.refresh()
	case showcaseMsg:
		m.banner = msg.showcase
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		case tea.KeyEsc:
			m.showQuitModal = false
			return m, nil
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.input.Focus()
				return m, textinput.Blink
			}
		}
	}
	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("The encounter is saved automatically.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	header := titleStyle.Render("COMBAT TRACKER") + promptStyle.Render("  encounter "+m.view.EncounterID)
	if !m.view.Hydrated {
		header += promptStyle.Render("  (loading...)")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.orderViewport.View(),
		separatorStyle.Render(" │ "),
		m.logViewport.View(),
	)
	if m.banner != nil {
		body = lipgloss.Place(m.width, m.orderViewport.Height, lipgloss.Center, lipgloss.Center,
			renderBanner(m.banner, m.width), lipgloss.WithWhitespaceChars(" "))
	}

	footer := ""
	switch {
	case m.err != nil:
		footer = errorStyle.Render("Error: " + m.err.Error())
	case m.notice != "":
		footer = promptStyle.Render(m.notice)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		separatorStyle.Render(strings.Repeat("─", max(m.width-2, 1))),
		m.input.View(),
		footer,
	)
}
