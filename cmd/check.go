package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/devshelf/internal/dataset"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check both datasets for consistency",
	Long: `Fetch notes and programs and report problems the browser tolerates silently:
categories whose declared count disagrees with the records, and records
that reference a category the document does not list.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, base, err := loadConfig()
		if err != nil {
			return err
		}
		l := newLoader(cfg, slog.Default())

		problems := 0
		for _, kind := range []dataset.Kind{dataset.KindNotes, dataset.KindPrograms} {
			url := datasetURL(cfg, base, kind)
			store, err := fetchStore(cmd.Context(), l, kind, url)
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			problems += report(cmd.OutOrStdout(), store)
		}

		if problems > 0 {
			return fmt.Errorf("%d problem(s) found", problems)
		}
		return nil
	},
}

// report prints the consistency findings for one store and returns how
// many there were.
func report(w io.Writer, s *dataset.Store) int {
	drifts := dataset.CheckCounts(s)
	unknown := dataset.UnknownCategories(s)

	fmt.Fprintf(w, "%s: %d records, %d categories\n", s.Kind(), s.Len(), len(s.Categories()))
	for _, d := range drifts {
		fmt.Fprintf(w, "  count: %s\n", d)
	}
	for _, id := range unknown {
		fmt.Fprintf(w, "  unknown category: %q\n", id)
	}
	if len(drifts)+len(unknown) == 0 {
		fmt.Fprintln(w, "  ok")
	}
	return len(drifts) + len(unknown)
}
