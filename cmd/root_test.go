package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matheuskafuri/devshelf/internal/dataset"
)

const testPrograms = `{
  "categories": [
    {"id": "python", "name": "Python", "count": 2},
    {"id": "java", "name": "Java", "count": 3}
  ],
  "programs": [
    {"id": 1, "title": "Hello World", "description": "Print a greeting", "category": "python",
     "difficulty": "beginner", "tags": ["basics"], "code": "print('hi')", "explanation": "Prints."},
    {"id": 2, "title": "Fibonacci", "description": "Recursive sequence", "category": "python",
     "difficulty": "intermediate", "tags": ["recursion"], "code": "def fib(n): ...", "explanation": "Recurses."},
    {"id": 3, "title": "Quick Sort", "description": "Divide and conquer", "category": "java",
     "difficulty": "advanced", "tags": ["sorting"], "code": "void sort()", "explanation": "Partitions."}
  ]
}`

const testNotes = `{
  "categories": [{"id": "js", "name": "JavaScript", "icon": "fab fa-js"}],
  "notes": [
    {"id": "n1", "title": "Closures", "description": "Functions capturing scope", "category": "js",
     "tags": ["functions"], "content": "# Closures"},
    {"id": "n2", "title": "Ownership", "description": "Borrowing rules", "category": "rust",
     "tags": [], "content": ""}
  ]
}`

func TestParsePage(t *testing.T) {
	tests := []struct {
		input      string
		allowEmpty bool
		want       dataset.Kind
		err        bool
	}{
		{"notes", false, dataset.KindNotes, false},
		{"Programs", false, dataset.KindPrograms, false},
		{" program ", false, dataset.KindPrograms, false},
		{"", true, "", false},
		{"", false, "", true},
		{"videos", true, "", true},
	}

	for _, tt := range tests {
		got, err := parsePage(tt.input, tt.allowEmpty)
		if tt.err {
			if err == nil {
				t.Errorf("parsePage(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parsePage(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePage(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func decodeStore(t *testing.T, kind dataset.Kind, raw string) *dataset.Store {
	t.Helper()
	s, err := dataset.Decode(kind, []byte(raw))
	if err != nil {
		t.Fatalf("decode %s: %v", kind, err)
	}
	return s
}

func TestPrintCards(t *testing.T) {
	store := decodeStore(t, dataset.KindPrograms, testPrograms)

	var buf bytes.Buffer
	printCards(&buf, store, store.Records()[:1])
	out := buf.String()
	for _, want := range []string{"Hello World  [Python · beginner]", "Print a greeting", "tags: basics", "1 of 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	printCards(&buf, store, nil)
	if got := strings.TrimSpace(buf.String()); got != "No programs found matching your filters." {
		t.Errorf("empty programs output = %q", got)
	}

	notes := decodeStore(t, dataset.KindNotes, testNotes)
	buf.Reset()
	printCards(&buf, notes, nil)
	if got := strings.TrimSpace(buf.String()); got != "No notes found matching your criteria." {
		t.Errorf("empty notes output = %q", got)
	}
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	if n := report(&buf, decodeStore(t, dataset.KindPrograms, testPrograms)); n != 1 {
		t.Errorf("expected 1 problem in programs, got %d:\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), `category "java" declares 3 records, found 1`) {
		t.Errorf("missing drift line:\n%s", buf.String())
	}

	buf.Reset()
	if n := report(&buf, decodeStore(t, dataset.KindNotes, testNotes)); n != 1 {
		t.Errorf("expected 1 problem in notes, got %d", n)
	}
	if !strings.Contains(buf.String(), `unknown category: "rust"`) {
		t.Errorf("missing unknown category line:\n%s", buf.String())
	}
}

// runCLI executes the root command against a temporary site checkout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	for name, body := range map[string]string{"notes.json": testNotes, "programs.json": testPrograms} {
		if err := os.WriteFile(filepath.Join(dir, "data", name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("base_url: "+dir+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEVSHELF_BASE_URL", "")

	// Flags are package state; reset them between runs.
	flagBase, flagListCategory, flagListDifficulty, flagListSearch = "", "", "", ""
	flagListPage, flagListJSON = "programs", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", cfgPath))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	out, err := runCLI(t, "list", "--category", "python", "--search", "RECURS")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Fibonacci") || strings.Contains(out, "Hello World") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	out, err = runCLI(t, "list", "--category", "java", "--difficulty", "beginner")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No programs found matching your filters.") {
		t.Errorf("expected empty message:\n%s", out)
	}
}

func TestListCommandJSON(t *testing.T) {
	out, err := runCLI(t, "list", "--page", "notes", "--json")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, out)
	}
	var notes []dataset.Note
	if err := json.Unmarshal([]byte(out), &notes); err != nil {
		t.Fatalf("output is not a JSON note list: %v\n%s", err, out)
	}
	if len(notes) != 2 || notes[0].ID != "n1" {
		t.Errorf("unexpected notes: %+v", notes)
	}
}

func TestCheckCommandReportsProblems(t *testing.T) {
	out, err := runCLI(t, "check")
	if err == nil {
		t.Fatal("expected check to fail on inconsistent data")
	}
	if !strings.Contains(out, "notes: 2 records, 1 categories") {
		t.Errorf("missing notes summary:\n%s", out)
	}
	if !strings.Contains(out, "programs: 3 records, 2 categories") {
		t.Errorf("missing programs summary:\n%s", out)
	}
}
