package tui

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matheuskafuri/devshelf/internal/config"
	"github.com/matheuskafuri/devshelf/internal/dataset"
	"github.com/matheuskafuri/devshelf/internal/filter"
	"github.com/matheuskafuri/devshelf/internal/loader"
)

const programsJSON = `{
  "categories": [
    {"id": "python", "name": "Python", "icon": "fab fa-python", "count": 1},
    {"id": "java", "name": "Java", "icon": "fab fa-java", "count": 2}
  ],
  "programs": [
    {"id": 1, "title": "Hello World", "description": "Print a greeting", "category": "python",
     "difficulty": "beginner", "tags": ["basics"], "code": "print('hi')", "explanation": "Prints a line."},
    {"id": 2, "title": "Fibonacci", "description": "Recursive sequence", "category": "java",
     "difficulty": "intermediate", "tags": ["recursion"], "code": "int fib(int n)", "explanation": "Calls itself."},
    {"id": 3, "title": "Quick Sort", "description": "Divide and conquer", "category": "java",
     "difficulty": "advanced", "tags": ["sorting", "recursion"], "code": "void sort()", "explanation": "Partitions."}
  ]
}`

const notesJSON = `{
  "categories": [{"id": "js", "name": "JavaScript", "icon": "fab fa-js"}],
  "notes": [
    {"id": "n1", "title": "Closures", "description": "Functions capturing scope", "category": "js",
     "tags": ["functions"], "content": "# Closures\n\nA closure keeps its scope."}
  ]
}`

type fixture struct {
	app    *App
	loader *loader.Loader
	dir    string
}

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	for name, body := range map[string]string{"notes.json": notesJSON, "programs.json": programsJSON} {
		if err := os.WriteFile(filepath.Join(dir, "data", name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newFixture(t *testing.T, start dataset.Kind) *fixture {
	t.Helper()
	dir := writeSite(t)
	l := loader.New(loader.FileFetcher{})
	app := NewApp(RunOpts{
		Cfg: &config.Config{
			NotesFile:    "data/notes.json",
			ProgramsFile: "data/programs.json",
			Difficulties: []string{"beginner", "intermediate", "advanced"},
		},
		Loader:    l,
		Base:      dir,
		StartPage: start,
	})
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &fixture{app: app, loader: l, dir: dir}
}

// load runs the page's fetch synchronously and feeds the result back.
func (f *fixture) load(t *testing.T, kind dataset.Kind) {
	t.Helper()
	p := f.app.pages[kind]
	p.loading = true
	msg := loadPageCmd(f.loader, kind, p.url)()
	f.app.Update(msg)
}

func keys(a *App, ks ...string) {
	for _, k := range ks {
		a.Update(keyMsg(k))
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func titles(p *page) []string {
	out := make([]string, 0, len(p.view))
	for _, r := range p.view {
		out = append(out, r.Meta().Title)
	}
	return out
}

func TestAppStartsOnHomeScreen(t *testing.T) {
	f := newFixture(t, "")
	if f.app.mode != modeHome {
		t.Fatalf("expected home mode, got %v", f.app.mode)
	}
	view := f.app.View()
	for _, want := range []string{"Notes", "Programs", "Quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("home screen missing %q", want)
		}
	}

	_, cmd := f.app.Update(keyMsg("p"))
	if f.app.current != dataset.KindPrograms || f.app.mode != modeNormal {
		t.Errorf("expected programs page, got %v in mode %v", f.app.current, f.app.mode)
	}
	if cmd == nil {
		t.Error("first visit should start a load")
	}
	if !f.app.page().loading {
		t.Error("page should be marked loading")
	}
}

func TestAppLoadedPageShowsAllRecords(t *testing.T) {
	f := newFixture(t, dataset.KindPrograms)
	f.load(t, dataset.KindPrograms)

	p := f.app.page()
	if len(p.view) != 3 {
		t.Fatalf("expected 3 programs, got %v", titles(p))
	}
	if p.state != filter.Default() {
		t.Errorf("expected default state, got %+v", p.state)
	}
	view := f.app.View()
	if !strings.Contains(view, "3 of 3 programs") {
		t.Errorf("status bar missing counts:\n%s", view)
	}
	if !strings.Contains(view, "Java (2)") {
		t.Errorf("category tab should show declared count:\n%s", view)
	}
}

func TestAppCategoryAndDifficultyFilters(t *testing.T) {
	f := newFixture(t, dataset.KindPrograms)
	f.load(t, dataset.KindPrograms)
	p := f.app.page()

	keys(f.app, "f", "right", "right", "enter", "esc")
	if p.state.Category != "java" {
		t.Fatalf("expected java category, got %q", p.state.Category)
	}
	if got := titles(p); len(got) != 2 || got[0] != "Fibonacci" || got[1] != "Quick Sort" {
		t.Errorf("java view = %v", got)
	}

	keys(f.app, "d", "3", "esc")
	if p.state.Difficulty != "advanced" {
		t.Fatalf("expected advanced, got %q", p.state.Difficulty)
	}
	if got := titles(p); len(got) != 1 || got[0] != "Quick Sort" {
		t.Errorf("java+advanced view = %v", got)
	}

	keys(f.app, "d", "1", "esc")
	if len(p.view) != 0 {
		t.Errorf("java+beginner should be empty, got %v", titles(p))
	}
	if !strings.Contains(f.app.View(), "No programs found matching your filters.") {
		t.Error("expected empty-state message")
	}

	keys(f.app, "x")
	if p.state != filter.Default() || len(p.view) != 3 {
		t.Errorf("reset should restore all records, state %+v view %v", p.state, titles(p))
	}
}

func TestAppSearchIsLive(t *testing.T) {
	f := newFixture(t, dataset.KindPrograms)
	f.load(t, dataset.KindPrograms)
	p := f.app.page()

	keys(f.app, "/")
	if f.app.mode != modeSearch {
		t.Fatalf("expected search mode, got %v", f.app.mode)
	}
	for _, r := range "RECURSION" {
		keys(f.app, string(r))
	}
	if got := titles(p); len(got) != 2 {
		t.Errorf("search by tag = %v", got)
	}

	keys(f.app, "enter")
	if f.app.mode != modeNormal || p.state.Search != "RECURSION" {
		t.Errorf("enter should keep the search, mode %v state %+v", f.app.mode, p.state)
	}

	keys(f.app, "/", "esc")
	if p.state.Search != "" || len(p.view) != 3 {
		t.Errorf("esc should clear the search, state %+v", p.state)
	}
}

func TestAppNotesPageHasNoDifficultyFilter(t *testing.T) {
	f := newFixture(t, dataset.KindNotes)
	f.load(t, dataset.KindNotes)
	p := f.app.page()

	if p.difficulties != nil {
		t.Error("notes page should not have a difficulty bar")
	}
	keys(f.app, "d")
	if f.app.mode != modeNormal {
		t.Errorf("d on notes should do nothing, mode %v", f.app.mode)
	}
	if !strings.Contains(f.app.View(), "All Notes") {
		t.Error("notes category bar should start with All Notes")
	}

	keys(f.app, "x")
	if p.state.Difficulty != "" {
		t.Errorf("reset must keep difficulty disabled on notes, got %q", p.state.Difficulty)
	}
	if len(p.view) != 1 {
		t.Errorf("expected 1 note, got %v", titles(p))
	}
}

func TestAppPagesKeepSeparateState(t *testing.T) {
	f := newFixture(t, dataset.KindPrograms)
	f.load(t, dataset.KindPrograms)
	keys(f.app, "f", "1", "esc")

	keys(f.app, "n")
	f.load(t, dataset.KindNotes)
	if f.app.page().state.Category != filter.All {
		t.Errorf("notes page should start unfiltered, got %+v", f.app.page().state)
	}

	_, cmd := f.app.Update(keyMsg("p"))
	if cmd != nil {
		t.Error("revisiting a loaded page should not fetch again")
	}
	if f.app.page().state.Category != "python" {
		t.Errorf("programs page lost its filter: %+v", f.app.page().state)
	}
}

func TestAppDetailOverlay(t *testing.T) {
	f := newFixture(t, dataset.KindPrograms)
	f.load(t, dataset.KindPrograms)

	keys(f.app, "j", "enter")
	if f.app.mode != modeDetail || f.app.detail == nil {
		t.Fatalf("expected detail overlay, mode %v", f.app.mode)
	}
	view := f.app.View()
	for _, want := range []string{"Fibonacci", "int fib(int n)", "Explanation:", "Calls itself."} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q:\n%s", want, view)
		}
	}

	keys(f.app, "esc")
	if f.app.mode != modeNormal || f.app.detail != nil {
		t.Error("esc should close the overlay")
	}
}

func TestAppNoteDetailRendersMarkdown(t *testing.T) {
	f := newFixture(t, dataset.KindNotes)
	f.load(t, dataset.KindNotes)

	keys(f.app, "enter")
	if f.app.detail == nil {
		t.Fatal("expected note detail")
	}
	if !strings.Contains(f.app.detail.body, "scope") {
		t.Errorf("note body not rendered:\n%s", f.app.detail.body)
	}
}

func TestAppLoadError(t *testing.T) {
	f := newFixture(t, dataset.KindPrograms)
	if err := os.Remove(filepath.Join(f.dir, "data", "programs.json")); err != nil {
		t.Fatal(err)
	}
	f.load(t, dataset.KindPrograms)

	p := f.app.page()
	var fe *loader.FetchError
	if !errors.As(p.err, &fe) {
		t.Fatalf("expected FetchError, got %v", p.err)
	}
	if !strings.Contains(f.app.View(), "Could not load data") {
		t.Error("expected error message in view")
	}
	if f.loader.Len() != 0 {
		t.Error("failures must not be cached")
	}
}

func TestAppOpenNeedsRemoteBase(t *testing.T) {
	f := newFixture(t, dataset.KindPrograms)
	f.load(t, dataset.KindPrograms)

	_, cmd := f.app.Update(keyMsg("o"))
	if cmd != nil {
		t.Error("local base should not open a browser")
	}
	if f.app.err == nil {
		t.Error("expected an error explaining the base is not http(s)")
	}
}

func TestAppReloadsChangedDataset(t *testing.T) {
	f := newFixture(t, dataset.KindPrograms)
	f.load(t, dataset.KindPrograms)
	if f.loader.Len() != 1 {
		t.Fatalf("expected one cached document, got %d", f.loader.Len())
	}

	keys(f.app, "enter")
	p := f.app.page()
	path := filepath.Join(f.dir, "data", "programs.json")
	trimmed := `{"categories": [], "programs": [
	  {"id": 2, "title": "Fibonacci", "description": "", "category": "java", "difficulty": "intermediate", "tags": []}
	]}`
	if err := os.WriteFile(path, []byte(trimmed), 0o644); err != nil {
		t.Fatal(err)
	}

	f.app.Update(datasetChangedMsg{path: path})
	if !p.loading {
		t.Fatal("change on disk should trigger a reload")
	}
	if f.loader.Len() != 0 {
		t.Error("reload should drop the cached document")
	}

	f.app.Update(loadPageCmd(f.loader, p.kind, p.url)())
	if p.store.Len() != 1 {
		t.Errorf("expected reloaded store with 1 program, got %d", p.store.Len())
	}
	// The overlay showed Hello World, which no longer exists.
	if f.app.detail != nil {
		t.Error("detail for a removed record should close")
	}
}

func TestLoadPageCmdOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/programs.json":
			w.Write([]byte(programsJSON))
		case "/data/notes.json":
			w.Write([]byte(`{"notes": "not a list"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := loader.New(loader.NewHTTPFetcher(0, "devshelf-test"))

	msg := loadPageCmd(l, dataset.KindPrograms, loader.Resolve(srv.URL, "data/programs.json"))().(pageLoadedMsg)
	if msg.err != nil || msg.store.Len() != 3 {
		t.Fatalf("unexpected result: %+v", msg)
	}

	msg = loadPageCmd(l, dataset.KindNotes, loader.Resolve(srv.URL, "data/notes.json"))().(pageLoadedMsg)
	var pe *loader.ParseError
	if !errors.As(msg.err, &pe) {
		t.Errorf("wrong shape should be a ParseError, got %v", msg.err)
	}

	msg = loadPageCmd(l, dataset.KindNotes, loader.Resolve(srv.URL, "missing.json"))().(pageLoadedMsg)
	var fe *loader.FetchError
	if !errors.As(msg.err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 FetchError, got %v", msg.err)
	}
}

func TestAppChangeDuringLoadReloadsAgain(t *testing.T) {
	f := newFixture(t, dataset.KindPrograms)
	f.load(t, dataset.KindPrograms)
	p := f.app.page()

	keys(f.app, "r")
	if !p.loading {
		t.Fatal("r should start a reload")
	}
	// This load reads the file before it changes.
	inFlight := loadPageCmd(f.loader, p.kind, p.url)()

	path := filepath.Join(f.dir, "data", "programs.json")
	trimmed := `{"categories": [], "programs": [
	  {"id": 9, "title": "Binary Search", "description": "", "category": "go", "difficulty": "beginner", "tags": []}
	]}`
	if err := os.WriteFile(path, []byte(trimmed), 0o644); err != nil {
		t.Fatal(err)
	}
	f.app.Update(datasetChangedMsg{path: path})
	if f.loader.Len() != 0 {
		t.Error("a change must drop the cached document even while loading")
	}

	_, cmd := f.app.Update(inFlight)
	if cmd == nil || !p.loading {
		t.Fatal("the outdated result should be followed by another load")
	}
	if f.loader.Len() != 0 {
		t.Error("the outdated document must not stay cached")
	}

	f.app.Update(loadPageCmd(f.loader, p.kind, p.url)())
	if got := titles(p); len(got) != 1 || got[0] != "Binary Search" {
		t.Errorf("expected the changed file's records, got %v", got)
	}
	if p.loading {
		t.Error("no further reload expected")
	}
}

func TestAppHelpKeys(t *testing.T) {
	f := newFixture(t, dataset.KindPrograms)
	f.load(t, dataset.KindPrograms)

	keys(f.app, "?")
	if f.app.mode != modeHelp {
		t.Fatalf("expected help mode, got %v", f.app.mode)
	}
	if !strings.Contains(f.app.View(), "q quit") {
		t.Error("help bottom bar should offer q quit")
	}
	keys(f.app, "esc")
	if f.app.mode != modeNormal {
		t.Errorf("esc should close help, got %v", f.app.mode)
	}

	keys(f.app, "?")
	_, cmd := f.app.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q in help should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q in help should return tea.Quit")
	}
}
