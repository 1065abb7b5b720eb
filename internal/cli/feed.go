package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vodeneev/surebetbot/internal/feed"
	"github.com/Vodeneev/surebetbot/internal/pkg/storage"
)

// openOfferStorage is replaced in tests.
var openOfferStorage = func(dsn string) (storage.OfferStorage, error) {
	st, err := storage.NewPostgresOfferStorage(dsn)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// NewFeedCommand creates the feed command group
func NewFeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Manage feed data",
	}

	cmd.AddCommand(newFeedImportCommand())

	return cmd
}

func newFeedImportCommand() *cobra.Command {
	var (
		feedArg   string
		dsn       string
		keepStale bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a CSV file into the offers table read by postgres feeds",
		Long: `Read a CSV feed file and upsert its rows into the offers table under the feed name.
Rows of that source missing from the file are deleted unless --keep-stale is set.

Examples:
  surebetctl feed import --feed sts=data/sts.csv
  surebetctl feed import --feed fortuna=fortuna.csv --dsn postgres://localhost/surebet --keep-stale`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, path, ok := strings.Cut(feedArg, "=")
			if !ok || source == "" || path == "" {
				return fmt.Errorf("invalid --feed %q, expected name=path", feedArg)
			}
			if dsn == "" {
				dsn = os.Getenv("POSTGRES_DSN")
			}
			if dsn == "" {
				return fmt.Errorf("no database: set --dsn or POSTGRES_DSN")
			}

			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open feed file: %w", err)
			}
			defer file.Close()

			rows, err := feed.ReadCSV(cmd.Context(), file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			st, err := openOfferStorage(dsn)
			if err != nil {
				return err
			}
			defer st.Close()

			var staleBefore time.Time
			if !keepStale {
				staleBefore = time.Now()
			}
			stats, err := feed.Import(cmd.Context(), st, source, rows, staleBefore)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: stored %d offers, skipped %d of %d rows\n",
				source, stats.Offers, stats.Skipped(), stats.Rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&feedArg, "feed", "", "Feed as name=path to a CSV file")
	cmd.Flags().StringVar(&dsn, "dsn", "", "PostgreSQL DSN (defaults to POSTGRES_DSN)")
	cmd.Flags().BoolVar(&keepStale, "keep-stale", false, "Keep rows of the source that are not in the file")
	_ = cmd.MarkFlagRequired("feed")

	return cmd
}
