// Package ui provides the Bubble Tea TUI for the arbitrage detector.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/arb-detector/pkg/ui/components"
)

// ConnectionInfo holds connection state and latency.
type ConnectionInfo struct {
	Connected bool
	Latency   time.Duration
	LastSeen  time.Time
}

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	market        *components.MarketComponent
	opportunities *components.OpportunitiesComponent
	keys          KeyMap

	ready    bool
	showHelp bool
	quitting bool
	paused   bool
	width    int
	height   int

	connectionState map[string]*ConnectionInfo
	lastUpdate      time.Time
	tickCount       uint64
	oppCount        uint64
	errors          []ErrorEntry
	logs            []string
}

// New creates a new TUI model.
func New(symbol string) Model {
	return Model{
		market:        components.NewMarketComponent(symbol),
		opportunities: components.NewOpportunitiesComponent(50),
		keys:          DefaultKeyMap(),
		connectionState: map[string]*ConnectionInfo{
			"binance": {Connected: false},
		},
		errors: make([]ErrorEntry, 0, 3),
		logs:   make([]string, 0, 5),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 250ms for animations.
func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.opportunities.Clear()
			return m, nil
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			m.opportunities.ScrollUp()
			return m, nil
		case "down", "j":
			m.opportunities.ScrollDown()
			return m, nil
		case "e":
			m.errors = make([]ErrorEntry, 0, 3)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		return m, tickCmd()

	case TickUpdateMsg:
		if msg.Update != nil && !m.paused {
			u := msg.Update
			m.market.Update(components.MarketRow{
				PoolPrice: u.PoolPrice,
				BidPrice:  u.BidPrice,
				BidQty:    u.BidQty,
				AskPrice:  u.AskPrice,
				AskQty:    u.AskQty,
				GasCost:   u.GasCost,
			})
			m.tickCount++
			m.lastUpdate = time.Now()
		}

	case OpportunityMsg:
		if msg.Opportunity != nil && !m.paused {
			opp := msg.Opportunity
			m.opportunities.Add(components.OpportunityRow{
				Timestamp: opp.Timestamp.Format("15:04:05"),
				Direction: opp.Direction.ShortString(),
				AmountIn:  opp.AmountIn,
				AmountOut: opp.AmountOut,
				ExecPrice: opp.ExecutionPrice,
				Pnl:       opp.Pnl,
				Capped:    opp.CappedByMax,
				Bounded:   opp.HitBoundary,
			})
			m.oppCount++
			m.lastUpdate = time.Now()
		}

	case ConnectionStatusMsg:
		m.connectionState[msg.Name] = &ConnectionInfo{
			Connected: msg.Connected,
			Latency:   msg.Latency,
			LastSeen:  time.Now(),
		}

	case ErrorMsg:
		m.logs = addLog(m.logs, "error", msg.Error.Error())
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)
	}

	return m, nil
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	logLine := fmt.Sprintf("[%s] %s: %s", time.Now().Format("15:04:05"), level, message)
	logs = append(logs, logLine)
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" CEX-DEX Arbitrage Detector "))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	leftCol := m.market.View()
	rightCol := m.opportunities.View()

	if m.width > 140 {
		left := BoxStyle.Width(m.width/3 - 2).Render(leftCol)
		right := BoxStyle.Width(2*m.width/3 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		b.WriteString(BoxStyle.Width(m.width - 4).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(m.width - 4).Render(rightCol))
	}

	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		errorStyle := lipgloss.NewStyle().Foreground(ColorDanger)
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)

		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(errorStyle.Render("  • " + err.Message))
			b.WriteString(MutedValue.Render(fmt.Sprintf(" (%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.paused {
		pauseStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)
		b.WriteString(pauseStyle.Render("⏸ PAUSED"))
		b.WriteString(" • ")
	}
	b.WriteString(HelpStyle.Render(m.renderHelp()))

	return b.String()
}

func (m Model) renderHelp() string {
	bindings := m.keys.ShortHelp()
	if m.showHelp {
		bindings = nil
		for _, row := range m.keys.FullHelp() {
			bindings = append(bindings, row...)
		}
	}

	parts := make([]string, 0, len(bindings)+1)
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	parts = append(parts, "↑↓: scroll")
	return strings.Join(parts, " • ")
}

func (m Model) renderStatusBar() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Ticks: %d", m.tickCount))

	oppStyle := MutedValue
	if m.oppCount > 0 {
		oppStyle = PositiveValue
	}
	parts = append(parts, oppStyle.Render(fmt.Sprintf("Opportunities: %d", m.oppCount)))

	for name, info := range m.connectionState {
		if info != nil && info.Connected {
			label := name
			if info.Latency > 0 {
				label = fmt.Sprintf("%s (%dms)", name, info.Latency.Milliseconds())
			}
			parts = append(parts, StatusConnected.Render("● "+label))
		} else {
			parts = append(parts, StatusDisconnected.Render("○ "+name+" (disconnected)"))
		}
	}

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// Run starts the Bubble Tea program and blocks until it exits.
func Run(symbol string) error {
	Program = tea.NewProgram(New(symbol), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
