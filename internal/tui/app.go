package tui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/devshelf/internal/browser"
	"github.com/matheuskafuri/devshelf/internal/config"
	"github.com/matheuskafuri/devshelf/internal/dataset"
	"github.com/matheuskafuri/devshelf/internal/filter"
	"github.com/matheuskafuri/devshelf/internal/loader"
	"github.com/matheuskafuri/devshelf/internal/update"
	"github.com/matheuskafuri/devshelf/internal/watch"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeHome mode = iota
	modeNormal
	modeSearch
	modeCategory
	modeDifficulty
	modeDetail
	modeHelp
)

type App struct {
	base    string
	loader  *loader.Loader
	watcher *watch.Watcher
	logger  *slog.Logger
	version string

	pages   map[dataset.Kind]*page
	current dataset.Kind
	focus   focusPane
	mode    mode

	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model
	md          markdown
	detail      *detail

	previewScroll int
	updateVersion string
	err           error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Cfg     *config.Config
	Loader  *loader.Loader
	Base    string
	Watcher *watch.Watcher
	Logger  *slog.Logger
	Version string
	// StartPage skips the home screen when set.
	StartPage dataset.Kind
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search title, description or tags..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		base:        opts.Base,
		loader:      opts.Loader,
		watcher:     opts.Watcher,
		logger:      logger,
		version:     opts.Version,
		searchInput: ti,
		spinner:     sp,
		md:          markdown{style: opts.Cfg.GetMarkdownStyle()},
		current:     dataset.KindNotes,
		mode:        modeHome,
		pages:       map[dataset.Kind]*page{
			dataset.KindNotes:    newPage(dataset.KindNotes, loader.Resolve(opts.Base, opts.Cfg.NotesFile), nil),
			dataset.KindPrograms: newPage(dataset.KindPrograms, loader.Resolve(opts.Base, opts.Cfg.ProgramsFile), opts.Cfg.Difficulties),
		},
	}
	if opts.StartPage != "" {
		a.current = opts.StartPage
		a.mode = modeNormal
	}
	return a
}

func (a *App) page() *page { return a.pages[a.current] }

func (a *App) Init() tea.Cmd {
	var cmds []tea.Cmd

	if a.mode == modeNormal {
		cmds = append(cmds, a.visitCmd())
	}
	if a.watcher != nil {
		cmds = append(cmds, waitForChange(a.watcher))
	}
	if a.version != "" {
		cmds = append(cmds, checkUpdateCmd(a.version))
	}

	return tea.Batch(cmds...)
}

// visitCmd loads the current page the first time it is shown.
func (a *App) visitCmd() tea.Cmd {
	p := a.page()
	if p.loaded() || p.loading {
		return nil
	}
	p.loading = true
	p.err = nil
	return tea.Batch(loadPageCmd(a.loader, p.kind, p.url), a.spinner.Tick)
}

// reloadCmd drops the cached document and fetches it again.
func (a *App) reloadCmd(p *page) tea.Cmd {
	if p.loading {
		return nil
	}
	a.loader.Clear(p.url)
	p.loading = true
	return tea.Batch(loadPageCmd(a.loader, p.kind, p.url), a.spinner.Tick)
}

func waitForChange(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		path, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return datasetChangedMsg{path: path}
	}
}

func checkUpdateCmd(version string) tea.Cmd {
	return func() tea.Msg {
		res := update.Check(context.Background(), update.ReleasesURL, version)
		if res == nil {
			return nil
		}
		return updateAvailableMsg{version: res.LatestVersion}
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.detail != nil {
			a.openDetail(a.detail.record)
		}
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case pageLoadedMsg:
		return a, a.handlePageLoaded(msg)

	case datasetChangedMsg:
		return a, a.handleDatasetChanged(msg)

	case updateAvailableMsg:
		a.updateVersion = msg.version
		return a, nil

	case openErrMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.anyLoading() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handlePageLoaded(msg pageLoadedMsg) tea.Cmd {
	p, ok := a.pages[msg.kind]
	if !ok {
		return nil
	}
	if msg.err != nil {
		a.logger.Error("could not load dataset", "page", p.kind, "url", p.url, "error", msg.err)
		p.setError(msg.err)
	} else {
		a.applyStore(p, msg.store)
	}

	// The file changed while this load was in flight; its result may predate
	// the change.
	if p.stale {
		p.stale = false
		return a.reloadCmd(p)
	}
	return nil
}

func (a *App) applyStore(p *page, store *dataset.Store) {
	p.setStore(store)
	a.logger.Info("dataset loaded", "page", p.kind, "records", store.Len(), "categories", len(store.Categories()))
	for _, d := range dataset.CheckCounts(store) {
		a.logger.Warn("category count drift", "page", p.kind, "category", d.Category.ID, "declared", d.Declared, "actual", d.Actual)
	}

	// The record shown in the overlay may have changed or disappeared.
	if a.detail != nil && a.current == p.kind {
		if r, ok := store.Lookup(a.detail.record.Meta().ID); ok {
			a.openDetail(r)
		} else {
			a.closeDetail()
		}
	}
}

func (a *App) handleDatasetChanged(msg datasetChangedMsg) tea.Cmd {
	var cmds []tea.Cmd
	if a.watcher != nil {
		cmds = append(cmds, waitForChange(a.watcher))
	}
	for _, p := range a.pages {
		if !samePath(p.url, msg.path) {
			continue
		}
		a.logger.Info("dataset changed on disk, reloading", "page", p.kind, "path", msg.path)
		a.loader.Clear(p.url)
		switch {
		case p.loading:
			p.stale = true
		case p.loaded() || p.err != nil:
			cmds = append(cmds, a.reloadCmd(p))
		}
		// A page not visited yet fetches the fresh copy on its first visit.
	}
	return tea.Batch(cmds...)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func (a *App) anyLoading() bool {
	for _, p := range a.pages {
		if p.loading {
			return true
		}
	}
	return false
}

func (a *App) switchPage(kind dataset.Kind) tea.Cmd {
	a.current = kind
	a.mode = modeNormal
	a.previewScroll = 0
	a.searchInput.SetValue(a.page().state.Search)
	return a.visitCmd()
}

func (a *App) openDetail(r dataset.Record) {
	if r == nil {
		return
	}
	d := &detail{record: r, width: detailWidth(a.width)}
	if a.detail != nil && a.detail.record.Meta().ID == r.Meta().ID {
		d.scroll = a.detail.scroll
	}
	d.body = buildDetailBody(r, &a.md, d.width)
	a.detail = d
	a.mode = modeDetail
}

func (a *App) closeDetail() {
	a.detail = nil
	a.mode = modeNormal
}

func (a *App) openInBrowser(r dataset.Record) tea.Cmd {
	id := ""
	if r != nil {
		id = r.Meta().ID.String()
	}
	url, err := browser.PageURL(a.base, string(a.current), id)
	if err != nil {
		a.err = err
		return nil
	}
	return openBrowserCmd(url)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	// Mode-specific handling
	switch a.mode {
	case modeHome:
		return a.handleHomeKey(msg)
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeCategory:
		return a.handleTabKey(msg, &a.page().categories, func(id string) filter.Event {
			return filter.SelectCategory{ID: id}
		})
	case modeDifficulty:
		return a.handleTabKey(msg, a.page().difficulties, func(id string) filter.Event {
			return filter.SelectDifficulty{Level: id}
		})
	case modeDetail:
		return a.handleDetailKey(msg)
	case modeHelp:
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "?", "esc":
			a.mode = modeNormal
		}
		return a, nil
	}

	p := a.page()

	// Normal mode
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && p.cursor < len(p.view)-1 {
			p.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && p.cursor > 0 {
			p.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "g", "home":
		p.cursor = 0
		a.previewScroll = 0
		return a, nil
	case "G", "end":
		p.cursor = max(0, len(p.view)-1)
		a.previewScroll = 0
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "enter":
		a.openDetail(p.selected())
		return a, nil
	case "o":
		return a, a.openInBrowser(p.selected())
	case "/":
		if !p.loaded() {
			return a, nil
		}
		a.mode = modeSearch
		return a, a.searchInput.Focus()
	case "f":
		if !p.loaded() {
			return a, nil
		}
		a.mode = modeCategory
		p.categories.filterMode = true
		p.categories.point(p.state.Category)
		return a, nil
	case "d":
		if !p.loaded() || p.difficulties == nil {
			return a, nil
		}
		a.mode = modeDifficulty
		p.difficulties.filterMode = true
		p.difficulties.point(p.state.Difficulty)
		return a, nil
	case "x":
		p.dispatch(filter.Reset{})
		a.searchInput.SetValue("")
		return a, nil
	case "r":
		return a, a.reloadCmd(p)
	case "n":
		return a, a.switchPage(dataset.KindNotes)
	case "p":
		return a, a.switchPage(dataset.KindPrograms)
	case "h":
		a.mode = modeHome
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n", "1":
		return a, a.switchPage(dataset.KindNotes)
	case "p", "2":
		return a, a.switchPage(dataset.KindPrograms)
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := a.page()
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		p.dispatch(filter.SetSearch{Text: ""})
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	// Recompute on every edit; cursor moves leave the state unchanged and
	// dispatch ignores them.
	p.dispatch(filter.SetSearch{Text: a.searchInput.Value()})
	return a, cmd
}

func (a *App) handleTabKey(msg tea.KeyMsg, bar *tabBar, event func(id string) filter.Event) (tea.Model, tea.Cmd) {
	p := a.page()
	if bar == nil {
		a.mode = modeNormal
		return a, nil
	}

	switch msg.String() {
	case "esc", "f", "d":
		a.mode = modeNormal
		bar.filterMode = false
		return a, nil
	case "left", "h":
		bar.left()
		return a, nil
	case "right", "l":
		bar.right()
		return a, nil
	case " ", "enter":
		p.dispatch(event(bar.current()))
		a.previewScroll = 0
		return a, nil
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '0')
		if id, ok := bar.at(idx); ok {
			bar.cursor = idx
			p.dispatch(event(id))
			a.previewScroll = 0
		}
		return a, nil
	}
	return a, nil
}

func (a *App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter", "backspace":
		a.closeDetail()
		return a, nil
	case "j", "down":
		a.detail.scroll++
		return a, nil
	case "k", "up":
		if a.detail.scroll > 0 {
			a.detail.scroll--
		}
		return a, nil
	case "o":
		return a, a.openInBrowser(a.detail.record)
	}
	return a, nil
}

func (a *App) withBottomBar(content string, hints string) string {
	bar := renderBottomBar(hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) renderHeader() string {
	var tabs []string
	for _, kind := range []dataset.Kind{dataset.KindNotes, dataset.KindPrograms} {
		p := a.pages[kind]
		if kind == a.current {
			tabs = append(tabs, pageActiveStyle.Render(p.title))
		} else {
			tabs = append(tabs, pageInactiveStyle.Render(p.title))
		}
	}
	left := headerStyle.Render("devshelf") + "  " + strings.Join(tabs, "  ")
	right := helpDimStyle.Render(a.base + " ")
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
		right = ""
	}
	return left + fmt.Sprintf("%*s", gap, "") + right
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  devshelf")
	}

	if a.mode == modeHome {
		return a.withBottomBar(renderHomeScreen(a.width, a.height, a.base, a.updateVersion), "n notes  p programs  q quit")
	}

	if a.mode == modeHelp {
		return a.withBottomBar(a.renderHelp(), "? close  q quit")
	}

	if a.mode == modeDetail && a.detail != nil {
		return a.withBottomBar(renderDetail(a.detail, a.width, a.height-1), "j/k scroll  o open on site  esc close")
	}

	p := a.page()
	header := a.renderHeader()

	// Filter bars (search replaces them while typing)
	bars := []string{p.categories.render(p.state.Category, a.width)}
	if p.difficulties != nil {
		bars = append(bars, p.difficulties.render(p.state.Difficulty, a.width))
	}
	if a.mode == modeSearch {
		bars = []string{a.searchInput.View()}
	}
	filterBars := lipgloss.JoinVertical(lipgloss.Left, bars...)

	statusHeight := 1
	contentHeight := a.height - 1 - len(bars) - statusHeight - 2 // borders
	if contentHeight < 3 {
		contentHeight = 3
	}

	var content string
	switch {
	case p.loading && !p.loaded():
		content = lipglossCenter(a.spinner.View()+" Loading "+strings.ToLower(p.title)+"...", a.width, contentHeight)
	case p.err != nil && !p.loaded():
		content = lipglossCenter(errorStyle.Render(loadErrorText(p.err)), a.width, contentHeight) +
			"\n\n" + lipglossCenter(helpDimStyle.Render("press r to retry"), a.width, 0)
	case !p.loaded():
		content = lipglossCenter("Nothing loaded yet", a.width, contentHeight)
	default:
		content = a.renderPanes(p, contentHeight)
	}

	status := renderStatusBar(statusInfo{
		shown:       len(p.view),
		total:       a.total(p),
		noun:        strings.ToLower(p.title),
		filterLabel: p.filterLabel(),
		search:      strings.TrimSpace(p.state.Search),
		mode:        a.mode,
		loading:     p.loading,
	}, a.width)
	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	} else if p.err != nil && p.loaded() {
		status = errorStyle.Render("Reload failed: " + p.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filterBars, content, status)
}

func (a *App) total(p *page) int {
	if p.store == nil {
		return 0
	}
	return p.store.Len()
}

func (a *App) renderPanes(p *page, contentHeight int) string {
	listWidth := int(float64(a.width) * 0.4)
	previewWidth := a.width - listWidth - 1 // gap

	innerListW := listWidth - 4 // border + padding
	listContent := renderList(p, contentHeight, innerListW)

	var listPane string
	if a.focus == focusList {
		listPane = listPaneActiveStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	} else {
		listPane = listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	}

	selected := p.selected()
	categoryName := ""
	if selected != nil {
		categoryName = p.store.CategoryName(selected.Meta().Category)
	}
	innerPreviewW := previewWidth - 4
	previewContent := renderPreview(selected, categoryName, innerPreviewW, contentHeight, a.previewScroll)

	var previewPane string
	if a.focus == focusPreview {
		previewPane = previewPaneActiveStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	} else {
		previewPane = previewPaneStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("devshelf")
	dim := helpDimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Move through the list\n" +
		"  g/G           First / last entry\n" +
		"  tab           Switch focus between list and preview\n" +
		"  n / p         Notes / Programs page\n\n" +
		dim.Render("Filters") + "\n" +
		"  /             Search title, description and tags\n" +
		"  f             Choose category\n" +
		"  d             Choose difficulty (programs)\n" +
		"  x             Clear all filters\n\n" +
		dim.Render("Entries") + "\n" +
		"  enter         Open full note or code\n" +
		"  o             Open on the website\n" +
		"  r             Reload the page's data\n\n" +
		dim.Render("General") + "\n" +
		"  h             Home screen\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
