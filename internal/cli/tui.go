package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jsterling/ownerchart/pkg/errors"
	"github.com/jsterling/ownerchart/pkg/ownership"
	"github.com/jsterling/ownerchart/pkg/render/diagram"
)

// TUI styles
var (
	tuiInputFocused = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorCyan).Padding(0, 1)
	tuiInputBlurred = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	tuiSelected     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	tuiError        = lipgloss.NewStyle().Foreground(colorRed)
	tuiNotice       = lipgloss.NewStyle().Foreground(colorDim)
)

// searchState is the lifecycle of one lookup.
type searchState int

const (
	stateIdle searchState = iota
	stateLoading
	stateLoaded
	stateErrored
)

// resolveFunc performs a lookup. *ownership.Client.Resolve satisfies this;
// tests substitute fakes.
type resolveFunc func(ctx context.Context, companyName string, refresh bool) (*ownership.Response, error)

// exportFunc writes the current result's diagram in the given format and
// returns the file path.
type exportFunc func(resp *ownership.Response, format string) (string, error)

// resolveMsg carries a finished lookup back into the update loop. seq ties
// the message to the request that started it so stale responses are dropped.
type resolveMsg struct {
	seq  int
	resp *ownership.Response
	err  error
}

// tickMsg drives the loading spinner.
type tickMsg time.Time

// SearchModel is the bubbletea model for the interactive ownership browser.
type SearchModel struct {
	resolve resolveFunc
	export  exportFunc
	ctx     context.Context

	state      searchState
	input      string
	inputFocus bool

	// seq increments on every submit; a resolveMsg with an older seq belongs
	// to an abandoned lookup and is discarded.
	seq int

	query     string
	resp      *ownership.Response
	rows      []ownership.Row
	collapsed map[string]bool
	cursor    int
	errMsg    string
	notice    string
	frame     int
	height    int
}

// NewSearchModel creates the TUI model.
func NewSearchModel(ctx context.Context, resolve resolveFunc, export exportFunc) SearchModel {
	return SearchModel{
		resolve:    resolve,
		export:     export,
		ctx:        ctx,
		inputFocus: true,
		collapsed:  map[string]bool{},
		height:     24,
	}
}

func (m SearchModel) Init() tea.Cmd {
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		m.frame++
		return m, tick()

	case resolveMsg:
		if msg.seq != m.seq {
			// A newer lookup superseded this one.
			return m, nil
		}
		if msg.err != nil {
			m.state = stateErrored
			m.errMsg = errors.UserMessage(msg.err)
			return m, nil
		}
		m.state = stateLoaded
		m.resp = msg.resp
		m.rows = ownership.Outline(msg.resp.RootCompany)
		m.collapsed = map[string]bool{}
		m.cursor = 0
		m.inputFocus = false
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m SearchModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		m.inputFocus = !m.inputFocus
		return m, nil
	}

	if m.inputFocus {
		switch msg.Type {
		case tea.KeyEnter:
			return m.submit(false)
		case tea.KeyBackspace:
			if m.input != "" {
				runes := []rune(m.input)
				m.input = string(runes[:len(runes)-1])
			}
		case tea.KeySpace:
			m.input += " "
		case tea.KeyRunes:
			m.input += string(msg.Runes)
		}
		return m, nil
	}

	visible := visibleRows(m.rows, m.collapsed)
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case " ", "enter":
		if m.cursor < len(visible) && visible[m.cursor].HasChildren {
			id := visible[m.cursor].ID
			m.collapsed[id] = !m.collapsed[id]
		}
	case "r":
		if m.query != "" {
			return m.resubmit()
		}
	case "e":
		return m.doExport("pdf")
	case "s":
		return m.doExport("svg")
	case "p":
		return m.doExport("png")
	}
	return m, nil
}

// doExport writes the current result's diagram, or does nothing when no
// result is loaded yet.
func (m SearchModel) doExport(format string) (tea.Model, tea.Cmd) {
	if m.resp == nil {
		return m, nil // nothing rendered yet
	}
	path, err := m.export(m.resp, format)
	if err != nil {
		m.notice = tuiError.Render(errors.UserMessage(err))
	} else {
		m.notice = tuiNotice.Render("exported " + path)
	}
	return m, nil
}

// submit starts a lookup for the current input. An empty query is a local
// validation error and never starts a request.
func (m SearchModel) submit(refresh bool) (tea.Model, tea.Cmd) {
	name := m.input
	if err := errors.ValidateCompanyName(name); err != nil {
		m.state = stateErrored
		m.errMsg = errors.UserMessage(err)
		return m, nil
	}
	m.query = name
	return m.start(refresh)
}

// resubmit refetches the last query, bypassing the cache.
func (m SearchModel) resubmit() (tea.Model, tea.Cmd) {
	return m.start(true)
}

func (m SearchModel) start(refresh bool) (tea.Model, tea.Cmd) {
	m.seq++
	m.state = stateLoading
	m.errMsg = ""

	seq, name := m.seq, m.query
	lookup := func() tea.Msg {
		resp, err := m.resolve(m.ctx, name, refresh)
		return resolveMsg{seq: seq, resp: resp, err: err}
	}
	return m, tea.Batch(tick(), lookup)
}

// visibleRows filters the outline down to rows whose ancestors are all
// expanded.
func visibleRows(rows []ownership.Row, collapsed map[string]bool) []ownership.Row {
	var out []ownership.Row
	skipBelow := -1
	for _, r := range rows {
		if skipBelow >= 0 {
			if r.Depth > skipBelow {
				continue
			}
			skipBelow = -1
		}
		out = append(out, r)
		if r.HasChildren && collapsed[r.ID] {
			skipBelow = r.Depth
		}
	}
	return out
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Ownership structure"))
	b.WriteString("\n")
	b.WriteString(tuiNotice.Render("tab focus  ⏎ search  ↑/↓ navigate  space expand/collapse  r refresh  e/s/p export pdf/svg/png  q quit"))
	b.WriteString("\n\n")

	inputStyle := tuiInputBlurred
	if m.inputFocus {
		inputStyle = tuiInputFocused
	}
	prompt := m.input
	if m.inputFocus {
		prompt += "█"
	}
	if prompt == "" {
		prompt = tuiNotice.Render("company name")
	}
	b.WriteString(inputStyle.Render(prompt))
	b.WriteString("\n\n")

	switch m.state {
	case stateIdle:
		b.WriteString(tuiNotice.Render("Enter a company name to look up its ownership structure."))
	case stateLoading:
		frame := spinnerFrames[m.frame%len(spinnerFrames)]
		b.WriteString(styleIconSpinner.Render(frame) + " " + StyleDim.Render("Resolving "+m.query+"..."))
	case stateErrored:
		b.WriteString(tuiError.Render(iconError + " " + m.errMsg))
	case stateLoaded:
		b.WriteString(m.viewResult())
	}

	if m.notice != "" {
		b.WriteString("\n\n" + m.notice)
	}
	b.WriteString("\n")
	return b.String()
}

func (m SearchModel) viewResult() string {
	var b strings.Builder

	stats := fmt.Sprintf("%d entities · %s", m.resp.TotalNodes, ownership.FormatProcessingTime(m.resp.ProcessingTime))
	if n := len(m.resp.Errors); n > 0 {
		stats += " · " + tuiError.Render(fmt.Sprintf("%d errors", n))
	}
	if m.resp.Cached {
		stats += " · " + styleCached.Render(iconCached)
	}
	b.WriteString(StyleDim.Render(stats))
	b.WriteString("\n\n")

	visible := visibleRows(m.rows, m.collapsed)
	window := m.height - 12
	if window < 5 {
		window = 5
	}
	offset := 0
	if m.cursor >= window {
		offset = m.cursor - window + 1
	}
	end := offset + window
	if end > len(visible) {
		end = len(visible)
	}

	for i := offset; i < end; i++ {
		r := visible[i]
		marker := "  "
		if r.HasChildren {
			marker = "▾ "
			if m.collapsed[r.ID] {
				marker = "▸ "
			}
		}
		line := strings.Repeat("  ", r.Depth) + marker + entityMarker(r.Type) + " " + r.Name
		if r.Error != "" {
			line += " " + tuiError.Render("("+r.Error+")")
		}
		if i == m.cursor && !m.inputFocus {
			line = tuiSelected.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// tuiCommand creates the interactive terminal UI command.
func (c *CLI) tuiCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse ownership structures interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			client, err := c.newClient(ctx, cfg, noCache)
			if err != nil {
				return err
			}

			model := NewSearchModel(ctx, client.Resolve, exportDiagram)
			p := tea.NewProgram(model, tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable response caching")
	return cmd
}

// exportDiagram renders the result's diagram and writes it to the working
// directory as ownership-<timestamp>.<ext>.
func exportDiagram(resp *ownership.Response, format string) (string, error) {
	desc, err := diagram.Encode(resp.RootCompany)
	if err != nil {
		return "", err
	}

	var data []byte
	switch format {
	case "pdf":
		data, err = diagram.RenderPDF(desc.DOT())
	case "png":
		data, err = diagram.RenderPNG(desc.DOT(), 2.0)
	default:
		data, err = diagram.RenderSVG(desc.DOT())
		format = "svg"
	}
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("ownership-%s.%s", time.Now().Format("20060102-150405"), format)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return path, nil
}
