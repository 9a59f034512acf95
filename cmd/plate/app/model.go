// Package app is the interactive terminal client for platefinder. The
// implementation is split across files:
//   - model.go: model types, construction, Init
//   - update.go: the Update loop and key handling
//   - commands.go: async tea.Cmd constructors (network actions)
//   - forms.go: form state and submission handlers
//   - view.go: rendering
package app

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"platefinder/cmd/plate/ui"
	"platefinder/internal/api"
	"platefinder/internal/config"
	"platefinder/internal/geo"
	"platefinder/internal/results"
	"platefinder/internal/router"
	"platefinder/internal/session"
	"platefinder/internal/types"
)

// toastKind mirrors the notification flavors of the web client.
type toastKind int

const (
	toastSuccess toastKind = iota
	toastError
	toastInfo
)

// toast is a transient notification. Auto-dismissed after toastDuration;
// seq guards against an old timer clearing a newer toast.
type toast struct {
	text string
	kind toastKind
	seq  int
}

// Model is the root bubbletea model.
type Model struct {
	cfg        *config.Config
	logger     *zap.Logger
	client     *api.Client
	store      *session.Store
	normalizer *results.Normalizer
	locator    *geo.Locator
	router     *router.Router
	styles     ui.Styles

	width  int
	height int

	spinner  spinner.Model
	viewport viewport.Model
	ready    bool

	// busy is an acquire/release counter: every issued network command
	// increments it and every completion message decrements it, success or
	// failure, so the indicator can never leak "stuck on".
	busy int

	// inFlight disables the submit control of the active form while its
	// action runs — the duplicate-submission guard.
	inFlight bool

	toast toast

	// forms
	homeFocus int // 0 = quick search, 1.. = questionnaire fields
	login     loginForm
	register  registerForm
	profile   profileForm
	search    textinput.Model
	filter    filterForm

	// data for the visible page
	welcome     string
	homeResults []types.RestaurantRecord
	homeTitle   string
	feedResults []types.RestaurantRecord
	feedLoaded  bool
	position    *types.Position
}

// New builds the application model.
func New(cfg *config.Config, logger *zap.Logger) (*Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := session.NewStore(cfg.StateDir, logger.Named("session"))
	if err != nil {
		return nil, err
	}
	client := api.New(cfg.API.BaseURL, cfg.APITimeout(), store, logger.Named("api"))
	locator := geo.New(cfg.Geo.LocateURL, cfg.Geo.ReverseURL, cfg.GeoTimeout(), logger.Named("geo"))
	styles := ui.NewStyles(ui.ThemeFor(cfg.Theme))

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	search := textinput.New()
	search.Placeholder = "Craving something? e.g. spicy ramen"
	search.CharLimit = 120
	search.Width = 48

	m := &Model{
		cfg:        cfg,
		logger:     logger,
		client:     client,
		store:      store,
		normalizer: results.New(logger.Named("normalize")),
		locator:    locator,
		router:     router.New(store, logger.Named("router")),
		styles:     styles,
		spinner:    sp,
		search:     search,
		login:      newLoginForm(),
		register:   newRegisterForm(),
		profile:    newProfileForm(),
		filter:     newFilterForm(),
		welcome:    renderWelcome(styles),
	}
	m.search.Focus()
	return m, nil
}

// Init kicks off the startup work: the single-shot session resume and the
// best-effort city detection. Both run as ordinary commands so the UI is
// responsive immediately.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	cmds = append(cmds, m.startOp(m.resumeCmd()))
	if m.store.DetectedCity() == "" {
		cmds = append(cmds, m.detectCityCmd())
	}
	return tea.Batch(cmds...)
}

// startOp acquires the busy indicator for a command. The paired release
// happens in Update when the command's completion message arrives.
func (m *Model) startOp(cmd tea.Cmd) tea.Cmd {
	m.busy++
	return cmd
}

// releaseOp is the unconditional counterpart of startOp.
func (m *Model) releaseOp() {
	if m.busy > 0 {
		m.busy--
	}
}

const welcomeMarkdown = `# platefinder

Find somewhere to eat, fast.

- **Quick search**: describe what you're craving and hit enter.
- **Guided filter**: answer a few questions, get tailored suggestions.
- **Feed**: log in for a personalized feed ranked to your tastes.
`

// renderWelcome renders the Home page intro. Falls back to the raw
// markdown if the renderer cannot be built for this terminal.
func renderWelcome(styles ui.Styles) string {
	style := "light"
	if styles.Theme.IsDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(76),
	)
	if err != nil {
		return welcomeMarkdown
	}
	out, err := r.Render(welcomeMarkdown)
	if err != nil {
		return welcomeMarkdown
	}
	return out
}
