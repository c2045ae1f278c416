package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AditthyaSS/VulnExplain/internal/aggregator"
	"github.com/AditthyaSS/VulnExplain/internal/api"
	"github.com/AditthyaSS/VulnExplain/internal/apiclient"
	"github.com/AditthyaSS/VulnExplain/internal/counter"
	"github.com/AditthyaSS/VulnExplain/internal/disclosure"
	"github.com/AditthyaSS/VulnExplain/internal/models"
	"github.com/AditthyaSS/VulnExplain/internal/plan"
	"github.com/AditthyaSS/VulnExplain/internal/scan"
	"github.com/AditthyaSS/VulnExplain/internal/session"
	"github.com/AditthyaSS/VulnExplain/internal/storage"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Auditor submits scan targets to the audit service.
type Auditor interface {
	AuditCode(ctx context.Context, code, language string) (*models.AuditResult, error)
	AuditRepo(ctx context.Context, githubURL string) (*models.AuditResult, error)
	AuditFile(ctx context.Context, filename string, content []byte) (*models.AuditResult, error)
}

// ReportGenerator renders an audit result as a PDF document.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, result *models.AuditResult) ([]byte, error)
}

// Options configures the dashboard. Every field is optional.
type Options struct {
	Auditor Auditor
	Reports ReportGenerator

	// Storage receives downloaded reports and, when SaveResults is set,
	// every audit run from the dashboard. A preloaded Result is never
	// saved again.
	Storage     storage.Storage
	SaveResults bool

	Plan   plan.Plan
	Theme  string
	Timing scan.Timing

	// Result is shown immediately instead of the input form.
	Result   *models.AuditResult
	Previous *models.AuditResult
	History  []int

	// SavePreference persists plan and theme changes.
	SavePreference func(key, value string) error
	ReadFile       func(path string) ([]byte, error)
}

// state is the top-level screen.
type state int

const (
	stateInput state = iota
	stateScanning
	stateResults
)

// mode represents the current interaction mode of the results screen.
type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeTeam
)

const defaultTableHeight = 10

// Timer and background messages. Every timer message carries the token that
// was current when it was scheduled.
type (
	stepTickMsg    struct{ token session.Token }
	counterTickMsg struct{ token session.Token }
	graceDoneMsg   struct{ token session.Token }
	auditDoneMsg   struct {
		token  session.Token
		result *models.AuditResult
		err    error
	}
	reportSavedMsg struct {
		path string
		err  error
	}
	resultSavedMsg struct{ err error }
)

// Model is the top-level Bubble Tea model of the audit dashboard.
type Model struct {
	opts   Options
	timing scan.Timing
	state  state
	mode   mode
	plan   plan.Plan
	styles styles

	// Scanning
	form     inputForm
	spinner  spinner.Model
	progress *scan.Progress
	scans    *session.Tracker
	cancel   context.CancelFunc
	pending  *models.AuditResult

	// Results. Derived views are recomputed from result on every render.
	result     *models.AuditResult
	previous   *models.AuditResult
	counter    *counter.Counter
	counterTok session.Token
	disclosure *disclosure.State
	viewMode   models.ViewMode
	chartView  models.ChartView
	cursor     int
	filters    filterState
	filtered   []indexedVuln

	// UI
	table       table.Model
	viewport    viewport.Model
	searchInput textinput.Model
	emailInput  textinput.Model
	downloading bool
	width       int
	height      int
	statusMsg   string
	statusErr   bool
}

// New creates the dashboard model.
func New(opts Options) Model {
	if opts.Plan == "" {
		opts.Plan = plan.Default
	}
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}

	st := newStyles(opts.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.accent

	search := textinput.New()
	search.Placeholder = "search..."
	search.CharLimit = 64

	email := textinput.New()
	email.Placeholder = "Enter teammate email"
	email.CharLimit = 254

	m := Model{
		opts:        opts,
		timing:      opts.Timing.WithDefaults(),
		state:       stateInput,
		plan:        opts.Plan,
		styles:      st,
		form:        newInputForm(),
		spinner:     sp,
		progress:    &scan.Progress{},
		scans:       &session.Tracker{},
		counter:     &counter.Counter{},
		disclosure:  disclosure.New(),
		viewMode:    models.ViewGrouped,
		chartView:   models.ChartFinancial,
		table:       newTable(defaultTableHeight, st),
		viewport:    viewport.New(80, 16),
		searchInput: search,
		emailInput:  email,
		width:       80,
		height:      24,
	}
	m.form.focus()

	if opts.Result != nil {
		m.previous = opts.Previous
		// Init schedules the counter; the stored result is not saved again.
		m.publish(opts.Result)
	}

	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.result != nil {
		return counterTick(m.counterTok)
	}
	return m.form.focus()
}

func stepTick(interval time.Duration, tok session.Token) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return stepTickMsg{token: tok}
	})
}

func counterTick(tok session.Token) tea.Cmd {
	return tea.Tick(counter.Interval, func(time.Time) tea.Msg {
		return counterTickMsg{token: tok}
	})
}

func graceTick(grace time.Duration, tok session.Token) tea.Cmd {
	return tea.Tick(grace, func(time.Time) tea.Msg {
		return graceDoneMsg{token: tok}
	})
}

func auditCmd(ctx context.Context, tok session.Token, submit scan.Submitter, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		result, err := scan.Call(ctx, submit, timeout)
		return auditDoneMsg{token: tok, result: result, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state != stateScanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stepTickMsg:
		if m.progress.Advance(msg.token) {
			return m, stepTick(m.timing.Interval, msg.token)
		}
		return m, nil

	case auditDoneMsg:
		return m.handleAuditDone(msg)

	case graceDoneMsg:
		if !m.scans.Valid(msg.token) || m.pending == nil {
			return m, nil
		}
		m.progress.Finish()
		result := m.pending
		m.pending = nil
		m.release()
		return m, tea.Batch(m.publish(result), m.saveResult(result))

	case counterTickMsg:
		if applied, done := m.counter.Step(msg.token); applied && !done {
			return m, counterTick(msg.token)
		}
		return m, nil

	case reportSavedMsg:
		m.downloading = false
		if msg.err != nil {
			m.setError(fmt.Sprintf("Report generation failed: %v", msg.err))
			return m, nil
		}
		status := "Report saved to " + msg.path
		if note := plan.Note(m.plan, plan.ReportDownload); note != "" {
			status += " (" + note + ")"
		}
		m.setStatus(status)
		return m, nil

	case resultSavedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("Failed to store result: %v", msg.err))
		}
		return m, nil
	}

	return m.updateFocused(msg)
}

// updateFocused forwards other messages (cursor blink and friends) to the
// focused input.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.state == stateInput:
		m.form, cmd = m.form.update(msg)
	case m.mode == modeSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case m.mode == modeTeam:
		m.emailInput, cmd = m.emailInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.form.setWidth(width)
	m.table.SetWidth(width)

	m.viewport.Width = width
	vh := height - headerHeight - 4
	if vh < 3 {
		vh = 3
	}
	m.viewport.Height = vh
	m.syncViewport()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.state {
	case stateInput:
		return m.handleInputKey(msg)
	case stateScanning:
		return m.handleScanningKey(msg)
	}

	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeTeam:
		return m.handleTeamKey(msg)
	default:
		return m.handleNormalKey(msg)
	}
}

// quit invalidates every outstanding timer and request before exiting.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.scans.Invalidate()
	m.progress.Fail()
	m.counter.Clear()
	m.release()
	return m, tea.Quit
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Submit):
		return m.submit()
	case msg.String() == "enter" && m.form.singleLine():
		return m.submit()
	case key.Matches(msg, keys.Source):
		return m, m.form.next()
	case key.Matches(msg, keys.Cancel):
		if m.result != nil {
			m.form.blur()
			m.state = stateResults
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) handleScanningKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()
	case key.Matches(msg, keys.Cancel):
		m.scans.Invalidate()
		m.progress.Fail()
		m.release()
		m.pending = nil
		m.state = stateInput
		m.setStatus("Audit cancelled")
		return m, m.form.focus()
	}
	return m, nil
}

// submit validates the form and starts a scan. Invalid input never leaves
// the input screen.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.opts.Auditor == nil {
		m.setError(apiclient.ErrNotConfigured.Error())
		return m, nil
	}

	req, err := m.form.request(m.opts.Auditor, m.opts.ReadFile)
	if err != nil {
		m.setError(err.Error())
		return m, nil
	}

	return m.startScan(req)
}

// startScan clears the current result and begins a new audit.
func (m Model) startScan(submit scan.Submitter) (tea.Model, tea.Cmd) {
	m.release()

	if m.result != nil {
		m.previous = m.result
	}
	m.result = nil
	m.pending = nil
	m.counter.Clear()
	m.disclosure.Reset()
	m.cursor = 0
	m.filters = filterState{}
	m.mode = modeNormal
	m.form.blur()
	m.clearStatus()

	m.state = stateScanning
	stepTok := m.progress.Begin()
	scanTok := m.scans.Next()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	return m, tea.Batch(
		m.spinner.Tick,
		stepTick(m.timing.Interval, stepTok),
		auditCmd(ctx, scanTok, submit, m.timing.Timeout),
	)
}

func (m Model) handleAuditDone(msg auditDoneMsg) (tea.Model, tea.Cmd) {
	if !m.scans.Valid(msg.token) {
		return m, nil
	}

	if msg.err != nil {
		m.scans.Invalidate()
		m.progress.Fail()
		m.release()
		m.state = stateInput
		m.setError(scan.FailureMessage(msg.err))
		return m, m.form.focus()
	}

	// The step timer is cancelled before the result is published.
	m.progress.Complete()
	m.pending = msg.result
	return m, graceTick(m.timing.Grace, msg.token)
}

// publish makes result the current result and starts the counter animation.
func (m *Model) publish(result *models.AuditResult) tea.Cmd {
	m.result = result
	m.state = stateResults
	m.mode = modeNormal
	m.disclosure.Reset()
	m.cursor = 0
	m.filters = filterState{}
	m.rebuildTable()
	m.table.SetCursor(0)
	m.viewport.SetYOffset(0)
	m.syncViewport()

	m.counterTok = m.counter.Start(result.DetailedImpact.TotalINR)
	return counterTick(m.counterTok)
}

// saveResult stores a freshly audited result when SaveResults is set.
func (m *Model) saveResult(result *models.AuditResult) tea.Cmd {
	if !m.opts.SaveResults || m.opts.Storage == nil {
		return nil
	}
	store := m.opts.Storage
	return func() tea.Msg {
		return resultSavedMsg{err: store.SaveResult(result)}
	}
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()

	case key.Matches(msg, keys.NewScan):
		m.state = stateInput
		m.clearStatus()
		return m, m.form.focus()

	case key.Matches(msg, keys.Up):
		return m.moveCursor(-1)
	case key.Matches(msg, keys.Down):
		return m.moveCursor(1)

	case key.Matches(msg, keys.Toggle):
		m.toggleSelected()
		return m, nil

	case key.Matches(msg, keys.ViewMode):
		if m.viewMode == models.ViewGrouped {
			m.viewMode = models.ViewAll
		} else {
			m.viewMode = models.ViewGrouped
		}
		m.syncViewport()
		return m, nil

	case key.Matches(msg, keys.ChartView):
		if m.chartView == models.ChartFinancial {
			m.chartView = models.ChartSeverity
		} else {
			m.chartView = models.ChartFinancial
		}
		m.syncViewport()
		return m, nil

	case key.Matches(msg, keys.Download):
		return m.download()

	case key.Matches(msg, keys.Team):
		m.mode = modeTeam
		if plan.Enabled(m.plan, plan.TeamCollaboration) {
			return m, m.emailInput.Focus()
		}
		return m, nil

	case key.Matches(msg, keys.Plan):
		m.cyclePlan()
		return m, nil

	case key.Matches(msg, keys.Theme):
		m.toggleTheme()
		return m, nil

	case key.Matches(msg, keys.Search):
		m.viewMode = models.ViewAll
		m.mode = modeSearch
		m.searchInput.SetValue(m.filters.SearchText)
		return m, m.searchInput.Focus()

	case key.Matches(msg, keys.Severity):
		m.viewMode = models.ViewAll
		m.filters.Severity = nextSeverity(m.filters.Severity)
		m.rebuildTable()
		if m.filters.Severity != "" {
			m.setStatus(fmt.Sprintf("Filter: %s", m.filters.Severity))
		} else {
			m.clearStatus()
		}
		return m, nil

	case key.Matches(msg, keys.ClearFilter):
		m.filters = filterState{}
		m.clearStatus()
		m.rebuildTable()
		return m, nil

	case msg.String() == "pgup":
		m.viewport.SetYOffset(m.viewport.YOffset - m.viewport.Height)
		return m, nil
	case msg.String() == "pgdown":
		m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height)
		return m, nil
	}

	return m, nil
}

func (m Model) moveCursor(delta int) (tea.Model, tea.Cmd) {
	if m.viewMode == models.ViewAll {
		if delta < 0 {
			m.table.MoveUp(-delta)
		} else {
			m.table.MoveDown(delta)
		}
		m.syncViewport()
		return m, nil
	}

	rows := m.groupedRows()
	m.cursor += delta
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.syncViewport()
	return m, nil
}

// toggleSelected flips the disclosure state of the row under the cursor.
func (m *Model) toggleSelected() {
	if m.result == nil {
		return
	}

	if m.viewMode == models.ViewAll {
		iv := m.selectedFinding()
		if iv == nil {
			return
		}
		m.disclosure.ToggleFinding(disclosure.FindingKey(models.ViewAll, "", iv.index))
		m.rebuildTable()
		m.syncViewport()
		return
	}

	rows := m.groupedRows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return
	}
	r := rows[m.cursor]
	if r.kind == rowGroup {
		m.disclosure.ToggleGroup(r.category)
		// keep the cursor on the group header, whose position may shift
		// when another group collapses
		for i, nr := range m.groupedRows() {
			if nr.kind == rowGroup && nr.category == r.category {
				m.cursor = i
				break
			}
		}
	} else {
		m.disclosure.ToggleFinding(r.key())
	}
	m.syncViewport()
}

func (m Model) groupedRows() []row {
	if m.result == nil {
		return nil
	}
	return groupedRows(aggregator.GroupByCategory(m.result.Vulnerabilities), m.disclosure)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filters.SearchText = m.searchInput.Value()
		m.mode = modeNormal
		m.searchInput.Blur()
		m.rebuildTable()
		return m, nil
	case "esc":
		m.mode = modeNormal
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleTeamKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.emailInput.Blur()
		return m, nil
	case "p":
		if !plan.Enabled(m.plan, plan.TeamCollaboration) {
			m.cyclePlan()
			if plan.Enabled(m.plan, plan.TeamCollaboration) {
				return m, m.emailInput.Focus()
			}
			return m, nil
		}
	case "enter":
		if !plan.Enabled(m.plan, plan.TeamCollaboration) {
			return m, nil
		}
		confirmation, err := api.ShareSummary(m.emailInput.Value())
		if err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.emailInput.SetValue("")
		m.setStatus(confirmation)
		return m, nil
	}

	if !plan.Enabled(m.plan, plan.TeamCollaboration) {
		return m, nil
	}
	var cmd tea.Cmd
	m.emailInput, cmd = m.emailInput.Update(msg)
	return m, cmd
}

// download asks the report generator for a PDF and stores it.
func (m Model) download() (tea.Model, tea.Cmd) {
	if m.result == nil {
		m.setError("Run an audit first")
		return m, nil
	}
	if m.downloading {
		return m, nil
	}
	if m.opts.Reports == nil {
		m.setError(fmt.Sprintf("Report generation failed: %v", apiclient.ErrNotConfigured))
		return m, nil
	}
	if m.opts.Storage == nil {
		m.setError("Report generation failed: no storage directory configured")
		return m, nil
	}

	m.downloading = true
	m.setStatus("Generating report...")

	reports, store, result, timeout := m.opts.Reports, m.opts.Storage, m.result, m.timing.Timeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		data, err := reports.GenerateReport(ctx, result)
		if err != nil {
			return reportSavedMsg{err: err}
		}
		path, err := store.SaveReport(data, apiclient.ReportFilename)
		return reportSavedMsg{path: path, err: err}
	}
}

func (m *Model) cyclePlan() {
	next := plan.All[0]
	for i, p := range plan.All {
		if p == m.plan && i+1 < len(plan.All) {
			next = plan.All[i+1]
		}
	}
	m.plan = next

	if err := m.savePreference("plan", string(next)); err != nil {
		m.setError(fmt.Sprintf("Plan: %s (not saved: %v)", next.Title(), err))
		return
	}
	m.setStatus(fmt.Sprintf("Plan: %s", next.Title()))
}

func (m *Model) toggleTheme() {
	theme := ThemeDark
	if m.styles.theme == ThemeDark {
		theme = ThemeLight
	}
	m.styles = newStyles(theme)
	m.spinner.Style = m.styles.accent
	applyTableStyles(&m.table, m.styles)
	m.syncViewport()

	if err := m.savePreference("theme", theme); err != nil {
		m.setError(fmt.Sprintf("Theme: %s (not saved: %v)", theme, err))
		return
	}
	m.setStatus(fmt.Sprintf("Theme: %s", theme))
}

func (m *Model) savePreference(key, value string) error {
	if m.opts.SavePreference == nil {
		return nil
	}
	return m.opts.SavePreference(key, value)
}

func (m *Model) rebuildTable() {
	if m.result == nil {
		m.filtered = nil
		m.table.SetRows(nil)
		return
	}
	m.filtered = applyFilters(m.result.Vulnerabilities, m.filters)
	m.table.SetRows(buildRows(m.filtered, func(idx int) bool {
		return m.disclosure.FindingOpen(disclosure.FindingKey(models.ViewAll, "", idx))
	}))
	if c := m.table.Cursor(); c >= len(m.filtered) && len(m.filtered) > 0 {
		m.table.SetCursor(len(m.filtered) - 1)
	}
}

func (m *Model) selectedFinding() *indexedVuln {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.filtered) {
		return nil
	}
	return &m.filtered[cursor]
}

// syncViewport refreshes the scrolling body and keeps the grouped-view
// cursor visible.
func (m *Model) syncViewport() {
	body, cursorLine := m.renderBody()
	m.viewport.SetContent(body)

	if m.viewMode != models.ViewGrouped {
		return
	}
	if cursorLine < m.viewport.YOffset {
		m.viewport.SetYOffset(cursorLine)
	} else if cursorLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(cursorLine - m.viewport.Height + 1)
	}
}

// release cancels the context of the in-flight audit, if any.
func (m *Model) release() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) setStatus(s string) {
	m.statusMsg = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.statusMsg = s
	m.statusErr = true
}

func (m *Model) clearStatus() {
	m.statusMsg = ""
	m.statusErr = false
}

// View implements tea.Model.
func (m Model) View() string {
	switch m.state {
	case stateInput:
		return m.viewInput()
	case stateScanning:
		return m.viewScanning()
	default:
		return m.viewResults()
	}
}

func (m Model) viewInput() string {
	var b strings.Builder
	b.WriteString(m.styles.header.Width(m.width).Render("VulnExplain  Security Audit"))
	b.WriteString("\n")
	b.WriteString(m.form.view(m.styles))
	b.WriteString("\n")

	help := "tab:switch input  ctrl+s:audit  ctrl+c:quit"
	if m.form.singleLine() {
		help = "tab:switch input  enter:audit  ctrl+c:quit"
	}
	if m.result != nil {
		help += "  esc:back"
	}
	b.WriteString(m.renderFooter(help))
	return b.String()
}

func (m Model) viewScanning() string {
	var b strings.Builder
	b.WriteString(m.styles.header.Width(m.width).Render("VulnExplain  Security Audit"))
	b.WriteString("\n\n")

	for i, label := range scan.Steps {
		switch {
		case i < m.progress.Step():
			b.WriteString(m.styles.muted.Render("  ✓ " + label))
		case i == m.progress.Step():
			b.WriteString(m.spinner.View() + " " + m.styles.title.Render(label))
		default:
			b.WriteString(m.styles.muted.Render("    " + label))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n%.0f%%\n\n", m.progress.Percent()*100))
	b.WriteString(m.renderFooter("esc:cancel  q:quit"))
	return b.String()
}

func (m Model) viewResults() string {
	if m.result == nil {
		return m.viewInput()
	}

	summary := aggregator.Summarize(m.result, m.chartView)
	trend := aggregator.CalculateTrend(m.result, m.previous)

	var b strings.Builder
	b.WriteString(renderHeader(summary, m.counter.Value(), trend, m.opts.History, m.plan, m.styles, m.width))
	b.WriteString("\n")

	if banner := plan.Banner(m.plan); banner != "" {
		b.WriteString(m.styles.banner.Render("★ " + banner))
		b.WriteString("\n")
	}

	switch m.mode {
	case modeTeam:
		b.WriteString(m.renderTeamPanel())
		b.WriteString("\n")
	case modeSearch:
		b.WriteString(m.styles.prompt.Render("/ "))
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
	}

	if m.mode != modeTeam {
		vp := m.viewport
		body, _ := m.renderBody()
		vp.SetContent(body)
		b.WriteString(vp.View())
		b.WriteString("\n")
	}

	help := "q:quit  ↑↓:move  enter:expand  v:view  c:chart  d:report  t:team  p:plan  T:theme  n:new"
	if m.viewMode == models.ViewAll {
		help += "  /:search  s:severity"
	}
	if m.filters.active() {
		help += "  esc:clear"
	}
	b.WriteString(m.renderFooter(help))
	return b.String()
}

// renderBody renders everything below the header. It returns the line the
// grouped-view cursor is on.
func (m Model) renderBody() (string, int) {
	if m.result == nil {
		return "", 0
	}

	summary := aggregator.Summarize(m.result, m.chartView)

	var b strings.Builder
	chart := renderChart(summary, m.styles, m.width)
	if chart != "" {
		b.WriteString(chart)
		b.WriteString("\n")
	}

	offset := strings.Count(b.String(), "\n")
	cursorLine := 0

	if m.viewMode == models.ViewAll {
		title := fmt.Sprintf("All Vulnerabilities (%d/%d)", len(m.filtered), len(m.result.Vulnerabilities))
		b.WriteString(m.styles.title.Render(title))
		b.WriteString(m.styles.muted.Render("  (v: group by category)"))
		b.WriteString("\n")
		b.WriteString(m.table.View())
		b.WriteString("\n")

		var selected *models.Vulnerability
		open := false
		if iv := m.selectedFinding(); iv != nil {
			selected = &iv.vuln
			open = m.disclosure.FindingOpen(disclosure.FindingKey(models.ViewAll, "", iv.index))
		}
		b.WriteString(renderDetail(selected, open, m.styles, m.width))
		b.WriteString("\n")
	} else {
		b.WriteString(m.styles.title.Render("Vulnerabilities by Category"))
		b.WriteString(m.styles.muted.Render("  (v: show all)"))
		b.WriteString("\n")
		list, line := renderGroupedList(m.groupedRows(), m.cursor, m.disclosure, m.styles)
		b.WriteString(list)
		cursorLine = offset + 1 + line
	}

	if p := renderPriorities(summary.Priorities, m.styles); p != "" {
		b.WriteString("\n")
		b.WriteString(p)
	}

	return b.String(), cursorLine
}

func (m Model) renderFooter(left string) string {
	right := ""
	if m.statusMsg != "" {
		right = m.statusMsg
		if m.statusErr {
			right = m.styles.errorText.Render(right)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return m.styles.footer.Render(left + strings.Repeat(" ", gap) + right)
}

// ErrNoTerminal is returned by Run when stdout is not interactive.
var ErrNoTerminal = errors.New("dashboard requires an interactive terminal")

// Run starts the Bubble Tea program. Called from the dashboard and scan
// commands.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
