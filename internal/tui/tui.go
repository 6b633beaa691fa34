// Package tui is an interactive terminal front end to the analyzer. Cards,
// pot and variant are set with short commands and each analysis is appended
// to a scrollable log.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/pokeradvisor/internal/analyzer"
	"github.com/lox/pokeradvisor/poker"
)

const (
	paneLog   = 0
	paneInput = 1
)

// Model is the Bubble Tea model for the interactive analyzer.
type Model struct {
	ctx      context.Context
	analyzer *analyzer.Analyzer
	logger   *log.Logger

	// UI components
	logViewport viewport.Model
	input       textinput.Model

	// Hand being built
	variant      poker.Variant
	hole         []string
	board        []string
	potSize      *float64
	amountToCall *float64
	gto          bool

	// State
	entries     []string
	analyzing   bool
	last        *analyzer.Result
	quitting    bool
	focusedPane int

	// Dimensions
	width       int
	height      int
	initialized bool
}

// AnalysisMsg carries a finished analysis back into Update.
type AnalysisMsg struct {
	Result *analyzer.Result
	Err    error
}

// New creates a Model that runs analyses with a under ctx.
func New(ctx context.Context, a *analyzer.Analyzer, logger *log.Logger) *Model {
	// Sized properly when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "hand AhKd, board Kc7d2s, pot 100 25, then Enter to analyze ('help' for more)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = promptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		ctx:         ctx,
		analyzer:    a,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
		focusedPane: paneInput,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case AnalysisMsg:
		m.analyzing = false
		if msg.Err != nil {
			m.addError(msg.Err)
			return m, nil
		}
		m.last = msg.Result
		m.logger.Debug("Analysis finished", "id", msg.Result.ID, "elapsed", msg.Result.Elapsed)
		m.addEntries(RenderResult(msg.Result)...)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == paneLog {
				m.focusedPane = paneInput
				m.input.Focus()
			} else {
				m.focusedPane = paneLog
				m.input.Blur()
			}
			return m, nil
		case "enter":
			if m.focusedPane == paneInput {
				line := strings.TrimSpace(m.input.Value())
				m.input.SetValue("")
				return m, m.execute(line)
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == paneInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		m.logViewport, cmd = m.logViewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// execute applies one line of input and returns the command to run, if any.
func (m *Model) execute(line string) tea.Cmd {
	c, err := ParseCommand(line)
	if err != nil {
		m.addError(err)
		return nil
	}
	if line != "" {
		m.addEntries(promptStyle.Render("> ") + line)
	}

	switch c.Name {
	case "analyze":
		return m.analyze()
	case "hand":
		codes, err := SplitCards(strings.Join(c.Args, ""))
		if err != nil {
			m.addError(err)
			return nil
		}
		m.hole = codes
	case "board":
		codes, err := SplitCards(strings.Join(c.Args, ""))
		if err != nil {
			m.addError(err)
			return nil
		}
		m.board = codes
	case "variant":
		if len(c.Args) != 1 {
			m.addError(fmt.Errorf("variant needs one of texasHoldem, omaha, omahaHiLo, shortDeck"))
			return nil
		}
		v, err := poker.ParseVariant(c.Args[0])
		if err != nil {
			m.addError(err)
			return nil
		}
		m.variant = v
	case "pot":
		if err := m.setPot(c.Args); err != nil {
			m.addError(err)
		}
	case "call":
		if len(c.Args) != 1 {
			m.addError(fmt.Errorf("call needs an amount"))
			return nil
		}
		amount, err := parseAmount("amount to call", c.Args[0])
		if err != nil {
			m.addError(err)
			return nil
		}
		m.amountToCall = amount
	case "gto":
		m.gto = !m.gto
		m.addEntries(InfoStyle.Render(fmt.Sprintf("GTO explanations %s", onOff(m.gto))))
	case "quick":
		hole, err := SplitCards(c.Args[0])
		if err != nil {
			m.addError(err)
			return nil
		}
		board, err := SplitCards(strings.Join(c.Args[1:], ""))
		if err != nil {
			m.addError(err)
			return nil
		}
		m.hole, m.board = hole, board
		return m.analyze()
	case "clear":
		m.Reset()
	case "help":
		for _, l := range helpLines {
			m.addEntries(InfoStyle.Render(l))
		}
	case "quit":
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	}
	return nil
}

func (m *Model) setPot(args []string) error {
	switch len(args) {
	case 0:
		m.potSize, m.amountToCall = nil, nil
		return nil
	case 1, 2:
		pot, err := parseAmount("pot size", args[0])
		if err != nil {
			return err
		}
		var call *float64
		if len(args) == 2 {
			if call, err = parseAmount("amount to call", args[1]); err != nil {
				return err
			}
		}
		m.potSize = pot
		if call != nil {
			m.amountToCall = call
		}
		return nil
	default:
		return fmt.Errorf("pot takes a pot size and an optional amount to call")
	}
}

// Request returns the analyzer request for the hand being built.
func (m *Model) Request() analyzer.Request {
	return analyzer.Request{
		HoleCards:    m.hole,
		BoardCards:   m.board,
		Variant:      m.variant.String(),
		PotSize:      m.potSize,
		AmountToCall: m.amountToCall,
		GTOMode:      m.gto,
	}
}

// analyze returns a command running the analysis off the update loop.
func (m *Model) analyze() tea.Cmd {
	if m.analyzing {
		m.addEntries(WarningStyle.Render("Analysis already running"))
		return nil
	}
	if len(m.hole) == 0 {
		m.addError(fmt.Errorf("no hole cards, try 'hand AhKd'"))
		return nil
	}

	m.analyzing = true
	req := m.Request()
	ctx, a := m.ctx, m.analyzer
	return func() tea.Msg {
		res, err := a.Analyze(ctx, req)
		return AnalysisMsg{Result: res, Err: err}
	}
}

// Reset forgets the hand and clears the log.
func (m *Model) Reset() {
	m.hole, m.board = nil, nil
	m.potSize, m.amountToCall = nil, nil
	m.last = nil
	m.entries = nil
	m.logViewport.SetContent("")
}

// Entries returns a copy of the log.
func (m *Model) Entries() []string {
	return append([]string(nil), m.entries...)
}

// LastResult returns the most recent successful analysis.
func (m *Model) LastResult() *analyzer.Result {
	return m.last
}

func (m *Model) addError(err error) {
	m.addEntries(ErrorStyle.Render("Error: " + err.Error()))
}

// addEntries appends to the log and scrolls to the bottom
func (m *Model) addEntries(lines ...string) {
	m.entries = append(m.entries, lines...)
	m.logViewport.SetContent(strings.Join(m.entries, "\n"))

	// Only call GotoBottom if viewport has valid dimensions
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	// Don't render until we have valid dimensions
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	inputContent := m.renderInputPane()
	inputHeight := lipgloss.Height(inputContent)

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(paneColor).
		Width(max(m.width-2, 1)).
		Height(max(inputHeight, 1))
	if m.focusedPane == paneInput {
		inputStyle = inputStyle.BorderForeground(focusColor)
	}
	inputPane := inputStyle.Render(inputContent)

	sidebarContent := m.renderSidebar()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-inputHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(paneColor).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight

	// On first proper sizing, reset to top to avoid starting scrolled down
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoTop()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(paneColor).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == paneLog {
		logStyle = logStyle.BorderForeground(focusColor)
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, inputPane)
}

// renderSidebar shows the hand being built
func (m *Model) renderSidebar() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(" " + m.variant.Label() + " "))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Hand:  %s\n", formatCodes(m.hole))
	fmt.Fprintf(&b, "Board: %s\n\n", formatCodes(m.board))
	b.WriteString(WarningStyle.Render("Pot: " + formatAmount(m.potSize)))
	b.WriteString("\n")
	b.WriteString(WarningStyle.Render("To call: " + formatAmount(m.amountToCall)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "GTO: %s\n", onOff(m.gto))

	if m.analyzing {
		b.WriteString("\n" + HandInfoStyle.Render("Analyzing..."))
	} else if m.last != nil {
		b.WriteString("\n" + ActionStyle(m.last.RecommendedAction).Render(strings.ToUpper(m.last.RecommendedAction.String())))
	}
	return b.String()
}

// renderInputPane renders the command input and help text
func (m *Model) renderInputPane() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.focusedPane == paneLog {
		b.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Tab to scroll log • Enter to analyze • Ctrl+C to quit"))
	}
	return b.String()
}

// formatCodes colours codes that parse and shows the rest as typed.
func formatCodes(codes []string) string {
	if len(codes) == 0 {
		return InfoStyle.Render("-")
	}
	cards, err := poker.ParseCards(codes)
	if err != nil {
		return strings.Join(codes, " ")
	}
	return FormatCards(cards)
}

func formatAmount(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Run starts the interactive analyzer on the terminal.
func Run(ctx context.Context, a *analyzer.Analyzer, logger *log.Logger) error {
	p := tea.NewProgram(New(ctx, a, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
