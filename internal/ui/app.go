package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tripbook/internal/collection"
	"github.com/five82/tripbook/internal/prefs"
	"github.com/five82/tripbook/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewBooks View = iota
	ViewPOIs
	ViewPlanner
	ViewMemos
	ViewSummary
	ViewActivity
)

var viewOrder = []View{ViewBooks, ViewPOIs, ViewPlanner, ViewMemos, ViewSummary, ViewActivity}

func (v View) String() string {
	switch v {
	case ViewPOIs:
		return "Places"
	case ViewPlanner:
		return "Planner"
	case ViewMemos:
		return "Notes"
	case ViewSummary:
		return "Summary"
	case ViewActivity:
		return "Activity"
	default:
		return "Books"
	}
}

// needsBook reports whether the view edits the current book.
func (v View) needsBook() bool {
	switch v {
	case ViewPOIs, ViewPlanner, ViewMemos, ViewSummary:
		return true
	}
	return false
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Logger    *slog.Logger
	LogPath   string
	Backend   string // label shown in the header
	ThemeName string
	PrefsPath string
	Prefs     prefs.Prefs
	Now       func() time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	logger    *slog.Logger
	logPath   string
	backend   string
	prefsPath string
	prefs     prefs.Prefs
	now       func() time.Time
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Status line
	status      string
	statusLevel statusLevel

	// Overlays
	showHelp bool
	modal    Modal

	// Books view
	bookCursor int

	// Places view
	poiCursor   int
	poiFilter   collection.Filter
	searching   bool
	searchInput textinput.Model

	// Planner view
	stopCursor  int
	routeCursor int
	routesFocus bool

	// Notes view
	memoCursor   int
	ticketCursor int
	ticketsFocus bool

	// Activity view
	logViewport viewport.Model
	logState    logState
}

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusWarning
	statusError
)

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = opts.Prefs.Theme
	}
	if themeName == "" {
		themeName = defaultThemeName
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	search := textinput.New()
	search.Placeholder = "Search places..."
	search.CharLimit = 100

	m := Model{
		ctx:         ctx,
		store:       opts.Store,
		logger:      logger,
		logPath:     opts.LogPath,
		backend:     opts.Backend,
		prefsPath:   prefsPath,
		prefs:       opts.Prefs,
		now:         now,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: ViewBooks,
		searchInput: search,
		logState:    newLogState(),
	}
	if order, ok := collection.ParseSortOrder(opts.Prefs.PlacesSort); ok {
		m.poiFilter.Sort = order
	}
	if opts.Prefs.ActivityLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(opts.Prefs.ActivityLevel)); err == nil {
			m.logState.minLevel = level
		}
	}
	m.syncSnapshot()
	if m.snapshot.HasCurrent {
		m.currentView = ViewPlanner
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(DefaultUIInterval),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		next, cmd := m.handleKey(msg)
		next.syncSnapshot()
		return next, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = m.now()
		m.clampCursors()
		return m, nil

	case saveDoneMsg:
		m.handleSaveDone(msg)
		m.syncSnapshot()
		return m, nil

	case logEntriesMsg:
		m.handleLogEntries(msg)
		return m, nil

	case statusMsg:
		m.setStatus(msg.level, msg.text)
		return m, nil

	case openedBookMsg:
		m.syncSnapshot()
		if m.isCurrent(msg.id) {
			m.handleOpenedBook(msg.id)
		}
		return m, nil
	}

	// Cursor blink and other input-internal messages.
	if m.modal != nil {
		modal, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}
	if m.searching {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.searching {
		return m.handleSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.cycleView(1)

	case key.Matches(msg, m.keys.ShiftTab):
		return m.cycleView(-1)

	case key.Matches(msg, m.keys.Escape):
		return m.switchView(ViewBooks)

	case key.Matches(msg, m.keys.Save):
		return m, m.saveNow()

	case key.Matches(msg, m.keys.Discard):
		if m.snapshot.HasCurrent && m.snapshot.Dirty {
			m.store.Discard()
			m.setStatus(statusWarning, "Unsaved changes discarded")
		}
		return m, nil

	case key.Matches(msg, m.keys.ViewBooks):
		return m.switchView(ViewBooks)
	case key.Matches(msg, m.keys.ViewPOIs):
		return m.switchView(ViewPOIs)
	case key.Matches(msg, m.keys.ViewPlanner):
		return m.switchView(ViewPlanner)
	case key.Matches(msg, m.keys.ViewMemos):
		return m.switchView(ViewMemos)
	case key.Matches(msg, m.keys.ViewSummary):
		return m.switchView(ViewSummary)
	case key.Matches(msg, m.keys.ViewActivity):
		return m.switchView(ViewActivity)
	}

	switch m.currentView {
	case ViewBooks:
		return m.handleBooksKey(msg)
	case ViewPOIs:
		return m.handlePOIsKey(msg)
	case ViewPlanner:
		return m.handlePlannerKey(msg)
	case ViewMemos:
		return m.handleMemosKey(msg)
	case ViewActivity:
		return m.handleActivityKey(msg)
	}
	return m, nil
}

// switchView changes the active view. Book views stay closed until a book
// is open.
func (m Model) switchView(v View) (Model, tea.Cmd) {
	if v.needsBook() && !m.snapshot.HasCurrent {
		m.setStatus(statusWarning, "Open a book first")
		return m, nil
	}
	m.currentView = v
	if v == ViewActivity {
		return m, m.refreshLogs()
	}
	return m, nil
}

// cycleView moves through the views in order, skipping those that need a
// book when none is open.
func (m Model) cycleView(step int) (Model, tea.Cmd) {
	idx := 0
	for i, v := range viewOrder {
		if v == m.currentView {
			idx = i
			break
		}
	}
	for range viewOrder {
		idx = (idx + step + len(viewOrder)) % len(viewOrder)
		v := viewOrder[idx]
		if v.needsBook() && !m.snapshot.HasCurrent {
			continue
		}
		return m.switchView(v)
	}
	return m, nil
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(DefaultUIInterval)}
	if m.currentView == ViewActivity && m.logState.follow {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

// syncSnapshot reads the store directly. Key handlers run mutators
// synchronously, so the view can reflect them without waiting for the
// relayed notification.
func (m *Model) syncSnapshot() {
	if m.store == nil {
		return
	}
	m.snapshot = m.store.Snapshot()
	m.lastUpdated = m.now()
	if !m.snapshot.HasCurrent && m.currentView.needsBook() {
		m.currentView = ViewBooks
	}
	m.clampCursors()
}

func (m *Model) clampCursors() {
	m.bookCursor = clampCursor(m.bookCursor, len(m.snapshot.Books))
	m.poiCursor = clampCursor(m.poiCursor, len(m.poiRows()))
	m.stopCursor = clampCursor(m.stopCursor, len(m.plannerStops()))
	m.routeCursor = clampCursor(m.routeCursor, len(m.activeItinerary().Routes))
	m.memoCursor = clampCursor(m.memoCursor, len(m.sortedMemos()))
	if m.snapshot.Current != nil {
		m.ticketCursor = clampCursor(m.ticketCursor, len(m.snapshot.Current.Tickets))
	}
}

func (m *Model) setStatus(level statusLevel, text string) {
	m.status = text
	m.statusLevel = level
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs failed", "path", m.prefsPath, "error", err)
	}
}

// saveNow commits the current book and waits for the write in a command.
func (m *Model) saveNow() tea.Cmd {
	if m.store == nil || !m.snapshot.HasCurrent {
		return nil
	}
	m.setStatus(statusInfo, "Saving...")
	return waitSaveCmd("Saved", m.store.Save(m.ctx))
}

func (m *Model) handleSaveDone(msg saveDoneMsg) {
	if msg.err != nil {
		m.setStatus(statusError, msg.label+" failed: "+msg.err.Error())
		return
	}
	m.setStatus(statusSuccess, msg.label)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + book status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: view tabs
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	// Main content
	b.WriteString(m.renderContent())
	b.WriteString("\n")

	// Status line
	b.WriteString(m.renderStatusLine())

	return b.String()
}

// contentHeight is the height left for the main box.
func (m Model) contentHeight() int {
	return maxInt(m.height-3, 3)
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewBooks:
		return m.renderBooks()
	case ViewPOIs:
		return m.renderPOIs()
	case ViewPlanner:
		return m.renderPlanner()
	case ViewMemos:
		return m.renderMemos()
	case ViewSummary:
		return m.renderSummary()
	case ViewActivity:
		return m.renderActivity()
	default:
		return ""
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type saveDoneMsg struct {
	label string
	err   error
}

type statusMsg struct {
	level statusLevel
	text  string
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func statusCmd(level statusLevel, text string) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{level: level, text: text}
	}
}

func waitSaveCmd(label string, res *state.SaveResult) tea.Cmd {
	return func() tea.Msg {
		return saveDoneMsg{label: label, err: res.Wait()}
	}
}

// relaySnapshots forwards store changes to send without blocking the
// goroutine that made the change. Observers run on whichever goroutine
// mutated the store, which is usually the Bubble Tea event loop itself, so
// a direct Send would deadlock. Bursts collapse into one latest snapshot.
func relaySnapshots(ctx context.Context, store *state.Store, send func(tea.Msg)) func() {
	wake := make(chan struct{}, 1)
	unsubscribe := store.Subscribe(func(state.Snapshot) {
		select {
		case wake <- struct{}{}:
		default:
		}
	})

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-wake:
				send(snapshotMsg(store.Snapshot()))
			}
		}
	}()

	return func() {
		unsubscribe()
		close(done)
	}
}

// Run starts the Bubble Tea program and returns when the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	opts.Context = ctx

	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if opts.Store != nil {
		stop := relaySnapshots(ctx, opts.Store, p.Send)
		defer stop()
	}

	final, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	if fm, ok := final.(Model); ok {
		fm.rememberLastBook()
	}
	return err
}

// rememberLastBook records the open book so the next start reopens it.
func (m Model) rememberLastBook() {
	last := ""
	if m.snapshot.Current != nil {
		last = m.snapshot.Current.ID
	}
	if last == m.prefs.LastBook {
		return
	}
	m.prefs.LastBook = last
	m.savePrefs()
}
