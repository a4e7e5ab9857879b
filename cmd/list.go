package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/devshelf/internal/config"
	"github.com/matheuskafuri/devshelf/internal/dataset"
	"github.com/matheuskafuri/devshelf/internal/filter"
	"github.com/matheuskafuri/devshelf/internal/loader"
)

var (
	flagListPage       string
	flagListCategory   string
	flagListDifficulty string
	flagListSearch     string
	flagListJSON       bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the filtered cards of a page",
	Long: `Fetch one dataset and print the cards that pass the filters, in document order.

Filters combine: a card is shown only if it matches the category, the
difficulty (programs only) and the search text.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parsePage(flagListPage, false)
		if err != nil {
			return err
		}
		cfg, base, err := loadConfig()
		if err != nil {
			return err
		}

		state := filter.State{Category: filter.All, Search: flagListSearch}
		if flagListCategory != "" {
			state = state.Apply(filter.SelectCategory{ID: flagListCategory})
		}
		if kind == dataset.KindPrograms {
			state.Difficulty = filter.All
			if flagListDifficulty != "" {
				state = state.Apply(filter.SelectDifficulty{Level: flagListDifficulty})
			}
		} else if flagListDifficulty != "" {
			slog.Warn("notes have no difficulty, ignoring --difficulty", "difficulty", flagListDifficulty)
		}

		l := newLoader(cfg, slog.Default())
		store, err := fetchStore(cmd.Context(), l, kind, datasetURL(cfg, base, kind))
		if err != nil {
			return err
		}

		view := filter.ComputeView(store.Records(), state)
		slog.Debug("filtered", "page", kind, "shown", len(view), "total", store.Len(), "state", fmt.Sprintf("%+v", state))

		if flagListJSON {
			return printJSON(cmd.OutOrStdout(), view)
		}
		printCards(cmd.OutOrStdout(), store, view)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&flagListPage, "page", "programs", "page to list (notes or programs)")
	listCmd.Flags().StringVar(&flagListCategory, "category", "", "only show this category id")
	listCmd.Flags().StringVar(&flagListDifficulty, "difficulty", "", "only show this difficulty (programs)")
	listCmd.Flags().StringVarP(&flagListSearch, "search", "s", "", "case-insensitive search over title, description and tags")
	listCmd.Flags().BoolVar(&flagListJSON, "json", false, "print matching records as JSON")
}

func datasetURL(cfg *config.Config, base string, kind dataset.Kind) string {
	if kind == dataset.KindNotes {
		return loader.Resolve(base, cfg.NotesFile)
	}
	return loader.Resolve(base, cfg.ProgramsFile)
}

// fetchStore loads and decodes one dataset. A document of the wrong shape
// is reported as a parse error like malformed JSON.
func fetchStore(ctx context.Context, l *loader.Loader, kind dataset.Kind, url string) (*dataset.Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := l.Load(ctx, url)
	if err != nil {
		return nil, err
	}
	store, err := dataset.Decode(kind, raw)
	if err != nil {
		return nil, &loader.ParseError{URL: url, Err: err}
	}
	return store, nil
}

func emptyMessage(kind dataset.Kind) string {
	if kind == dataset.KindPrograms {
		return "No programs found matching your filters."
	}
	return "No notes found matching your criteria."
}

func printCards(w io.Writer, store *dataset.Store, view []dataset.Record) {
	if len(view) == 0 {
		fmt.Fprintln(w, emptyMessage(store.Kind()))
		return
	}
	for i, r := range view {
		e := r.Meta()
		if i > 0 {
			fmt.Fprintln(w)
		}
		meta := store.CategoryName(e.Category)
		if level, ok := r.Level(); ok && level != "" {
			meta += " · " + string(level)
		}
		fmt.Fprintf(w, "%s  [%s]\n", e.Title, meta)
		if e.Description != "" {
			fmt.Fprintf(w, "  %s\n", e.Description)
		}
		if len(e.Tags) > 0 {
			fmt.Fprintf(w, "  tags: %s\n", strings.Join(e.Tags, ", "))
		}
	}
	fmt.Fprintf(w, "\n%d of %d\n", len(view), store.Len())
}

func printJSON(w io.Writer, view []dataset.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
