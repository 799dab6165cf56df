package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicat/internal/app"
	"github.com/desertthunder/musicat/internal/shared"
	"github.com/desertthunder/musicat/internal/tasks"
	"github.com/dustin/go-humanize"
)

const maxColumnWidth = 40

// Options configures a [Model].
type Options struct {
	Logger    *log.Logger
	ExportDir string
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusError
)

type status struct {
	text string
	kind statusKind
	at   time.Time
}

// Model is the catalog TUI state.
type Model struct {
	ctx      context.Context
	app      *app.App
	bridge   *bridge
	exporter *tasks.Exporter
	logger   *log.Logger
	opts     Options

	keys  keyMap
	help  help.Model
	table table.Model
	panel table.Model

	current    app.Table
	panelTable app.Table
	panelID    int
	panelFocus bool

	width  int
	height int
	status status

	confirm   *confirmRequestMsg
	form      *formModel
	picker    *list.Model
	pickTrack int

	progressChan chan tasks.ProgressUpdate
	exportDone   chan exportCompleteMsg
	exporting    bool
}

// NewModel builds the TUI around a and routes its notifications, prompts and
// sign-out events into the event loop once [Run] attaches a program.
func NewModel(ctx context.Context, a *app.App, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	b := &bridge{}
	a.SetNotifier(b)
	a.SetConfirmer(b)
	a.OnSignedOut(b.signedOut)

	return &Model{
		ctx:      ctx,
		app:      a,
		bridge:   b,
		exporter: tasks.NewExporter(a.Client, logger),
		logger:   logger,
		opts:     opts,
		keys:     newKeyMap(),
		help:     help.New(),
		table:    table.New(table.WithFocused(true), table.WithHeight(12)),
		panel:    table.New(table.WithHeight(6)),
	}
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, a *app.App, opts Options) error {
	m := NewModel(ctx, a, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.bridge.attach(p.Send)
	_, err := p.Run()
	return err
}

// Init restores the session and reference data.
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg {
		return startedMsg{err: m.app.Start(m.ctx)}
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-16, 5))
		m.help.Width = msg.Width
		if m.picker != nil {
			m.picker.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case startedMsg:
		if errors.Is(msg.err, shared.ErrNotAuthenticated) {
			m.openForm(m.loginForm())
			return m, nil
		}
		if msg.err != nil {
			m.setError(msg.err)
		}
		return m, m.activate(app.SectionProfile)

	case sectionLoadedMsg:
		if msg.err != nil && !errors.Is(msg.err, shared.ErrNotAuthenticated) {
			m.setError(msg.err)
		}
		m.refreshTable()
		return m, nil

	case actionDoneMsg:
		switch {
		case errors.Is(msg.err, shared.ErrCancelled):
			m.setStatus("Cancelled", statusInfo)
		case msg.err != nil && !errors.Is(msg.err, shared.ErrNotAuthenticated):
			m.setError(msg.err)
		}
		m.refreshTable()
		return m, nil

	case formReadyMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.openForm(msg.form)
		return m, nil

	case formSubmittedMsg:
		return m, m.handleSubmitted(msg)

	case choicesMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		picker := newCollectionPicker(msg.collections, max(m.width-4, 40), max(m.height-8, 10))
		m.picker, m.pickTrack = &picker, msg.trackID
		return m, nil

	case confirmRequestMsg:
		m.confirm = &msg
		return m, nil

	case notifyMsg:
		m.setError(msg.err)
		return m, nil

	case informMsg:
		m.setStatus(msg.text, statusOK)
		return m, nil

	case signedOutMsg:
		m.closeOverlays()
		m.panelID, m.panelFocus = 0, false
		m.refreshTable()
		m.setStatus("Signed out", statusInfo)
		m.openForm(m.loginForm())
		return m, nil

	case progressUpdateMsg:
		m.setStatus(msg.Message, statusInfo)
		return m, m.waitForProgress()

	case exportCompleteMsg:
		m.exporting = false
		m.progressChan, m.exportDone = nil, nil
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Exported %d of %d collections to %s",
			msg.result.SuccessfulExports, msg.result.TotalCollections, msg.result.OutputDirectory), statusOK)
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.confirm != nil:
		return m, m.handleConfirmKeys(msg)
	case m.form != nil:
		return m, m.handleFormKeys(msg)
	case m.picker != nil:
		return m, m.handlePickerKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.sections):
		s := app.Sections[int(msg.Runes[0]-'1')]
		if !m.app.Router.Visible(s) {
			return m, nil
		}
		m.panelFocus = false
		return m, m.activate(s)
	case key.Matches(msg, m.keys.refresh):
		return m, m.activate(m.app.Router.Active())
	case key.Matches(msg, m.keys.logout):
		return m, m.do(m.app.Auth.Logout)
	}

	if cmd, ok := m.handleSectionKeys(msg); ok {
		return m, cmd
	}

	var cmd tea.Cmd
	if m.panelFocus {
		m.panel, cmd = m.panel.Update(msg)
	} else {
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

// handleSectionKeys runs the actions of the active section.
func (m *Model) handleSectionKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	id, selected := m.selectedID()

	switch m.app.Router.Active() {
	case app.SectionProfile:
		if key.Matches(msg, m.keys.edit) {
			m.openForm(m.profileForm())
			return nil, true
		}

	case app.SectionArtists:
		switch {
		case key.Matches(msg, m.keys.add):
			return m.artistForm(0), true
		case key.Matches(msg, m.keys.edit) && selected:
			return m.artistForm(id), true
		case key.Matches(msg, m.keys.remove) && selected:
			return m.do(func(ctx context.Context) error { return m.app.Artists.Delete(ctx, id) }), true
		}

	case app.SectionTracks:
		switch {
		case key.Matches(msg, m.keys.add):
			return m.trackForm(0), true
		case key.Matches(msg, m.keys.edit) && selected:
			return m.trackForm(id), true
		case key.Matches(msg, m.keys.remove) && selected:
			return m.do(func(ctx context.Context) error { return m.app.Tracks.Delete(ctx, id) }), true
		case key.Matches(msg, m.keys.collect) && selected:
			return m.choices(id), true
		}

	case app.SectionCollections:
		return m.handleCollectionKeys(msg, id, selected)

	case app.SectionSearch:
		switch {
		case key.Matches(msg, m.keys.enter):
			m.openForm(m.searchForm())
			return nil, true
		case key.Matches(msg, m.keys.drop):
			m.app.Search.Reset()
			m.refreshTable()
			return nil, true
		case key.Matches(msg, m.keys.collect) && selected:
			return m.choices(id), true
		}

	case app.SectionAdmin:
		if key.Matches(msg, m.keys.tab) {
			next := nextTab(m.app.Admin.Tab())
			return m.do(func(ctx context.Context) error { return m.app.Admin.SwitchTab(ctx, next) }), true
		}
	}
	return nil, false
}

func (m *Model) handleCollectionKeys(msg tea.KeyMsg, id int, selected bool) (tea.Cmd, bool) {
	if key.Matches(msg, m.keys.next) && m.panelID != 0 {
		m.panelFocus = !m.panelFocus
		m.table.Blur()
		m.panel.Blur()
		if m.panelFocus {
			m.panel.Focus()
		} else {
			m.table.Focus()
		}
		return nil, true
	}

	if m.panelFocus {
		if key.Matches(msg, m.keys.drop) {
			cursor := m.panel.Cursor()
			if cursor < 0 || cursor >= len(m.panelTable.IDs) {
				return nil, true
			}
			collectionID, trackID := m.panelID, m.panelTable.IDs[cursor]
			return m.do(func(ctx context.Context) error {
				return m.app.Association.RemoveTrack(ctx, collectionID, trackID)
			}), true
		}
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.add):
		return m.collectionForm(0), true
	case key.Matches(msg, m.keys.edit) && selected:
		return m.collectionForm(id), true
	case key.Matches(msg, m.keys.remove) && selected:
		if m.panelID == id {
			m.panelID = 0
		}
		return m.do(func(ctx context.Context) error { return m.app.Collections.Delete(ctx, id) }), true
	case key.Matches(msg, m.keys.enter) && selected:
		if m.panelID != 0 && m.panelID != id {
			m.app.Association.Collapse(m.panelID)
		}
		m.panelID = id
		return m.do(func(ctx context.Context) error { return m.app.Association.Toggle(ctx, id) }), true
	case key.Matches(msg, m.keys.export):
		return m.startExport(), true
	}
	return nil, false
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.confirm.reply <- true
		m.confirm = nil
	case key.Matches(msg, m.keys.no):
		m.confirm.reply <- false
		m.confirm = nil
	}
	return nil
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) tea.Cmd {
	f := m.form
	switch msg.String() {
	case "esc":
		m.app.Modal.Close()
		m.form = nil
		return nil
	case "tab", "down":
		f.move(1)
		return nil
	case "shift+tab", "up":
		f.move(-1)
		return nil
	case "enter":
		if f.submitting {
			return nil
		}
		f.submitting, f.err = true, nil
		ticket := f.ticket
		return func() tea.Msg {
			return formSubmittedMsg{ticket: ticket, err: m.app.Modal.Submit(m.ctx, ticket)}
		}
	}
	return f.update(msg)
}

func (m *Model) handleSubmitted(msg formSubmittedMsg) tea.Cmd {
	f := m.form
	if f == nil || f.ticket != msg.ticket {
		return nil
	}
	f.submitting = false

	switch {
	case msg.err == nil:
		m.form = nil
		m.refreshTable()
		if f.after != nil {
			return f.after()
		}
	case errors.Is(msg.err, shared.ErrCancelled):
		m.setStatus("Cancelled", statusInfo)
	case errors.Is(msg.err, shared.ErrNotAuthenticated):
	default:
		f.err = msg.err
	}
	return nil
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		m.picker = nil
		return nil
	case "enter":
		item, ok := m.picker.SelectedItem().(collectionItem)
		m.picker = nil
		if !ok {
			return nil
		}
		collectionID, trackID := item.collection.ID, m.pickTrack
		return m.do(func(ctx context.Context) error {
			return m.app.Association.AddTrack(ctx, collectionID, trackID)
		})
	}

	picker, cmd := m.picker.Update(msg)
	m.picker = &picker
	return cmd
}

// openForm registers f with the app modal, replacing any open form.
func (m *Model) openForm(f *formModel) {
	f.ticket = m.app.Modal.Open(f.title, app.FormFunc(f.submit))
	m.form = f
}

func (m *Model) closeOverlays() {
	if m.confirm != nil {
		m.confirm.reply <- false
		m.confirm = nil
	}
	m.form = nil
	m.picker = nil
}

func (m *Model) activate(s app.Section) tea.Cmd {
	return func() tea.Msg {
		return sectionLoadedMsg{section: s, err: m.app.Router.Activate(m.ctx, s)}
	}
}

func (m *Model) do(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: fn(m.ctx)}
	}
}

func (m *Model) choices(trackID int) tea.Cmd {
	return func() tea.Msg {
		collections, err := m.app.Association.AddToCollectionChoices(m.ctx)
		return choicesMsg{trackID: trackID, collections: collections, err: err}
	}
}

func (m *Model) startExport() tea.Cmd {
	if m.exporting {
		return nil
	}
	m.exporting = true
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan exportCompleteMsg, 1)
	m.progressChan, m.exportDone = progress, done

	opts := tasks.ExportOpts{Format: tasks.ExportMarkdown, OutputDir: m.opts.ExportDir}
	go func() {
		result, err := m.exporter.ExportCollections(m.ctx, progress, opts)
		done <- exportCompleteMsg{result: result, err: err}
		close(progress)
	}()
	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.exportDone
	if progress == nil {
		return nil
	}
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

func (m *Model) setStatus(text string, kind statusKind) {
	m.status = status{text: text, kind: kind, at: time.Now()}
}

func (m *Model) setError(err error) {
	m.logger.Debug("ui error", "err", err)
	m.setStatus(err.Error(), statusError)
}

func (m *Model) selectedID() (int, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.current.IDs) {
		return 0, false
	}
	return m.current.IDs[cursor], true
}

// sectionTable builds the listing of the active section from controller state.
func (m *Model) sectionTable() app.Table {
	a := m.app
	switch a.Router.Active() {
	case app.SectionTracks:
		return app.TracksTable(a.Tracks.Tracks())
	case app.SectionArtists:
		return app.ArtistsTable(a.Artists.Artists())
	case app.SectionCollections:
		return app.CollectionsTable(a.Collections.Collections())
	case app.SectionSearch:
		results, searched := a.Search.Results()
		return app.SearchTable(results, searched)
	case app.SectionAdmin:
		return a.Admin.Table()
	default:
		return app.ProfileTable(a.Session.Current())
	}
}

func (m *Model) refreshTable() {
	m.current = m.sectionTable()
	setTable(&m.table, m.current)

	if m.app.Router.Active() != app.SectionCollections || m.panelID == 0 ||
		m.app.Association.State(m.panelID) == app.Collapsed {
		m.panelID, m.panelFocus = 0, false
		m.panelTable = app.Table{}
		m.table.Focus()
		return
	}
	m.panelTable = app.PanelTable(m.app.Association.Panel(m.panelID))
	setTable(&m.panel, m.panelTable)
}

// setTable swaps the contents of a bubbles table. Rows are cleared before the
// columns change so no row is ever wider than the column set.
func setTable(t *table.Model, src app.Table) {
	lines := src.Lines()
	cols := make([]table.Column, len(src.Headers))
	for i, h := range src.Headers {
		width := lipgloss.Width(h)
		for _, line := range lines {
			if i < len(line) {
				width = max(width, lipgloss.Width(line[i]))
			}
		}
		cols[i] = table.Column{Title: h, Width: min(width, maxColumnWidth)}
	}

	rows := make([]table.Row, len(lines))
	for i, line := range lines {
		rows[i] = table.Row(line)
	}

	t.SetRows(nil)
	t.SetColumns(cols)
	t.SetRows(rows)
}

func nextTab(tab app.AdminTab) app.AdminTab {
	for i, t := range app.AdminTabs {
		if t == tab {
			return app.AdminTabs[(i+1)%len(app.AdminTabs)]
		}
	}
	return app.AdminUsers
}

// View renders the navigation, the active section and any overlay.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderNav())
	b.WriteString("\n\n")

	switch {
	case m.confirm != nil:
		b.WriteString(m.renderConfirm())
	case m.form != nil:
		b.WriteString(m.form.view())
	case m.picker != nil:
		b.WriteString(m.picker.View())
	default:
		b.WriteString(m.renderSection())
	}

	b.WriteString("\n\n")
	if line := m.renderStatus(); line != "" {
		b.WriteString(line + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderNav() string {
	tabs := []string{styles.title.UnsetMarginBottom().Render("musicat")}
	for i, item := range m.app.Router.Nav() {
		if !item.Visible {
			continue
		}
		label := fmt.Sprintf("%d %s", i+1, item.Label)
		if item.Active {
			tabs = append(tabs, styles.active.Render(label))
		} else {
			tabs = append(tabs, styles.tab.Render(label))
		}
	}
	nav := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if name := m.app.Session.DisplayName(); name != "" {
		nav += "  " + styles.help.Render(name)
	}
	return nav
}

func (m *Model) renderSection() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(m.current.Title))
	b.WriteString("\n")

	switch m.app.Router.Active() {
	case app.SectionAdmin:
		b.WriteString(m.renderAdminTabs() + "\n")
	case app.SectionSearch:
		if f := m.app.Search.Filters(); !f.IsEmpty() {
			b.WriteString(styles.help.Render("Filters: "+f.Query().Encode()) + "\n")
		}
	}

	b.WriteString(m.table.View())

	if m.panelID != 0 {
		title := m.panelTable.Title
		if c, ok := m.app.Collections.Find(m.panelID); ok {
			title = c.Name
		}
		b.WriteString("\n\n" + styles.title.Render(title) + "\n")
		b.WriteString(m.panel.View())
	}
	return b.String()
}

func (m *Model) renderAdminTabs() string {
	active := m.app.Admin.Tab()
	tabs := make([]string, 0, len(app.AdminTabs))
	for _, t := range app.AdminTabs {
		if t == active {
			tabs = append(tabs, styles.active.Render(string(t)))
		} else {
			tabs = append(tabs, styles.tab.Render(string(t)))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderConfirm() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return styles.overlay.Render(fmt.Sprintf("%s\n\n%s", styles.warn.Render(m.confirm.prompt), helpView))
}

func (m *Model) renderStatus() string {
	if m.status.text == "" {
		return ""
	}
	text := fmt.Sprintf("%s (%s)", m.status.text, humanize.Time(m.status.at))
	switch m.status.kind {
	case statusOK:
		return styles.ok.Render("✓ " + text)
	case statusError:
		return styles.err.Render("✗ " + text)
	default:
		return styles.help.Render(text)
	}
}
