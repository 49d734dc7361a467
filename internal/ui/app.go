package ui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/comicvault/internal/comics"
	"github.com/five82/comicvault/internal/config"
	"github.com/five82/comicvault/internal/detail"
	"github.com/five82/comicvault/internal/job"
	"github.com/five82/comicvault/internal/logging"
	"github.com/five82/comicvault/internal/prefs"
	"github.com/five82/comicvault/internal/schedule"
	"github.com/five82/comicvault/internal/search"
)

// View represents the current active view.
type View int

const (
	ViewUpload View = iota
	ViewCollection
)

func (v View) String() string {
	if v == ViewCollection {
		return "Collection"
	}
	return "Upload"
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Gateway   comics.Gateway
	Config    config.Config
	Logger    *slog.Logger
	ThemeName string
	PrefsPath string
	// LastQuery seeds the collection search box.
	LastQuery string
	Observer  job.Observer
	Schedule  schedule.Func
	// Resume is a blob reference whose analysis is polled on start.
	Resume      string
	InitialView View
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	logger      *slog.Logger
	prefsPath   string
	maxAttempts int
	resume      string

	// UI state
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	theme    Theme
	view     View
	width    int
	height   int
	ready    bool
	showHelp bool

	// Views double as controller surfaces.
	upload     *uploadView
	collection *collectionView

	tracker *job.Tracker
	search  *search.Controller
	detail  *detail.Controller
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	logger := logging.OrDiscard(opts.Logger)
	cfg := opts.Config

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}
	theme := GetTheme(themeName)

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	upload := newUploadView(cfg.UploadMaxBytes)
	collection := newCollectionView(opts.LastQuery, theme)

	tracker := job.New(opts.Gateway, upload, job.Options{
		Interval:      cfg.PollInterval,
		MaxAttempts:   cfg.PollMaxAttempts,
		RedirectDelay: cfg.RedirectDelay,
		Schedule:      opts.Schedule,
		Logger:        logger,
		Observer:      opts.Observer,
	})
	searcher := search.New(opts.Gateway, collection, search.Options{
		Debounce:  cfg.SearchDebounce,
		DropStale: cfg.SearchDropStale,
		Schedule:  opts.Schedule,
		Logger:    logger,
	})
	details := detail.New(opts.Gateway, collection, detail.Options{Logger: logger})
	collection.reload = searcher.Reload

	maxAttempts := cfg.PollMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = job.DefaultMaxAttempts
	}

	m := Model{
		logger:      logger.With("component", "ui"),
		prefsPath:   prefsPath,
		maxAttempts: maxAttempts,
		resume:      opts.Resume,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		theme:       theme,
		view:        opts.InitialView,
		upload:      upload,
		collection:  collection,
		tracker:     tracker,
		search:      searcher,
		detail:      details,
	}
	if m.view == ViewUpload {
		m.upload.input.Focus()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if m.view == ViewCollection {
		cmds = append(cmds, m.search.Load(m.collection.input.Value()))
	}
	if m.resume != "" {
		cmds = append(cmds, m.tracker.Start(m.resume))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.upload.setWidth(msg.Width)
		m.collection.resize(m.theme, msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case navigateMsg:
		return m.navigate(msg.view)

	case confirmMsg:
		return m, m.detail.Confirm(msg.yes)

	case deleteRequestMsg:
		m.detail.RequestDelete(msg.id)
		return m, nil
	}

	// Controllers ignore messages they do not own.
	cmds := []tea.Cmd{
		m.tracker.Update(msg),
		m.search.Update(msg),
		m.detail.Update(msg),
	}
	var cmd tea.Cmd
	m.upload.input, cmd = m.upload.input.Update(msg)
	cmds = append(cmds, cmd)
	m.collection.input, cmd = m.collection.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.view == ViewCollection {
		if modal := m.collection.modal(); modal != nil {
			return modal.View(m.theme, m.width, m.height)
		}
	}

	return m.renderMain()
}

// navigate switches to view. Entering the collection always refreshes it.
func (m Model) navigate(view View) (tea.Model, tea.Cmd) {
	m.view = view
	m.upload.input.Blur()
	m.collection.input.Blur()
	if view == ViewUpload {
		m.detail.Abandon()
		m.upload.input.Focus()
		return m, textinput.Blink
	}
	return m, m.search.Load(m.collection.input.Value())
}

func (m Model) activeInput() *textinput.Model {
	if m.view == ViewCollection {
		return &m.collection.input
	}
	return &m.upload.input
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if key.Matches(msg, m.keys.Quit) {
		m.savePrefs()
		return m, tea.Quit
	}

	if m.view == ViewCollection {
		if handled, cmd := m.handleCollectionModal(msg); handled {
			return m, cmd
		}
	}

	if key.Matches(msg, m.keys.Tab) {
		if m.view == ViewUpload {
			return m.navigate(ViewCollection)
		}
		return m.navigate(ViewUpload)
	}

	if input := m.activeInput(); input.Focused() {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.collection.resize(m.theme, m.width, m.height)
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		return m, m.activeInput().Focus()
	}

	if m.view == ViewUpload {
		if key.Matches(msg, m.keys.Confirm) && m.upload.ready() {
			return m, m.tracker.Submit(*m.upload.image)
		}
		return m, nil
	}
	return m.handleGridKey(msg)
}

// handleCollectionModal routes keys to the topmost collection modal.
func (m Model) handleCollectionModal(msg tea.KeyMsg) (bool, tea.Cmd) {
	c := m.collection
	switch {
	case c.overlay != nil:
		next, cmd, closed := c.overlay.Update(msg, m.keys)
		c.overlay = next
		if closed {
			c.overlay = nil
		}
		return true, cmd
	case c.detail != nil:
		_, cmd, closed := c.detail.Update(msg, m.keys)
		if closed {
			c.CloseDetail()
		}
		return true, cmd
	}
	return false, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	input := m.activeInput()
	switch {
	case key.Matches(msg, m.keys.Escape):
		input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		if m.view == ViewUpload {
			if m.upload.selectFile() {
				input.Blur()
			}
			return m, nil
		}
		input.Blur()
		return m, m.search.Load(input.Value())
	}

	before := input.Value()
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	if m.view == ViewCollection && input.Value() != before {
		return m, tea.Batch(cmd, m.search.OnInput(input.Value()))
	}
	return m, cmd
}

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.collection.grid
	switch {
	case key.Matches(msg, m.keys.Up):
		g.Move(0, -1)
	case key.Matches(msg, m.keys.Down):
		g.Move(0, 1)
	case key.Matches(msg, m.keys.Left):
		g.Move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		g.Move(1, 0)
	case key.Matches(msg, m.keys.Reload):
		return m, m.search.Reload()
	case key.Matches(msg, m.keys.Confirm):
		if card, ok := g.Selected(); ok {
			return m, m.detail.ShowDetails(card.ID)
		}
	case key.Matches(msg, m.keys.Delete):
		if card, ok := g.Selected(); ok {
			m.detail.RequestDelete(card.ID)
		}
	}
	return m, nil
}

// handleMouse opens the card under a left click and scrolls on the wheel.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.view != ViewCollection || m.showHelp || m.collection.modal() != nil {
		return m, nil
	}
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	g := m.collection.grid
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		g.Move(0, -1)
	case tea.MouseButtonWheelDown:
		g.Move(0, 1)
	case tea.MouseButtonLeft:
		id, ok := g.CardAt(msg.X-gridLeft, msg.Y-gridTop)
		if !ok {
			return m, nil
		}
		g.Select(id)
		return m, m.detail.ShowDetails(id)
	}
	return m, nil
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, LastQuery: m.search.LastTerm()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", "path", m.prefsPath, "error", err)
	}
}

// renderMain renders the header, the active view and the footer.
func (m Model) renderMain() string {
	var body string
	switch m.view {
	case ViewCollection:
		body = m.renderCollection()
	default:
		body = m.renderUpload()
	}

	// Fill the space between the body and the footer.
	used := headerLines + lineCount(body) + footerLines
	pad := ""
	if gap := m.height - used; gap > 0 {
		pad = repeatLines(gap)
	}
	return m.renderHeader() + "\n\n" + body + pad + "\n" + m.renderFooter()
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
