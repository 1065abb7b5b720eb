package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Vodeneev/surebetbot/internal/calculator/surebet"
	"github.com/Vodeneev/surebetbot/internal/feed"
	"github.com/Vodeneev/surebetbot/internal/pkg/config"
	"github.com/Vodeneev/surebetbot/internal/pkg/models"
)

type detectOptions struct {
	feeds           []string
	configPath      string
	taxRate         float64
	minProfit       float64
	showAll         bool
	allowSameSource bool
	allowNonBinary  bool
	format          string
	report          bool
}

// NewDetectCommand creates the detect command
func NewDetectCommand() *cobra.Command {
	opts := &detectOptions{}

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect surebets across CSV feeds",
		Long: `Load two or more feeds, run detection once and print the surebets.

Feeds come from --feed name=path flags, or from the csv feeds of --config.
Engine flags override the config engine section when set.

Examples:
  surebetctl detect --feed sts=sts.csv --feed fortuna=fortuna.csv
  surebetctl detect --feed a=a.csv --feed b=b.csv --tax 0 --show-all --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.feeds, "feed", nil, "Feed as name=path to a CSV file (repeatable)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Config file providing engine options and csv feeds")
	cmd.Flags().Float64Var(&opts.taxRate, "tax", surebet.DefaultTaxRate, "Tax rate applied to winnings, in [0,1)")
	cmd.Flags().Float64Var(&opts.minProfit, "min-profit", 0, "Minimal tax-adjusted profit in percent")
	cmd.Flags().BoolVar(&opts.showAll, "show-all", false, "Keep same-book pairs, non-binary submarkets and unprofitable pairs")
	cmd.Flags().BoolVar(&opts.allowSameSource, "allow-same-source", false, "Keep pairs quoted by one bookmaker")
	cmd.Flags().BoolVar(&opts.allowNonBinary, "allow-non-binary", false, "Pair the first two sides of submarkets with more sides")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&opts.report, "report", false, "Also print rejected submarkets")

	return cmd
}

func runDetect(cmd *cobra.Command, opts *detectOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q, use text or json", opts.format)
	}

	engine := surebet.DefaultOptions()
	var sources []feed.Source

	if opts.configPath != "" {
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		engine = surebet.Options{
			TaxRate:         cfg.Engine.TaxRate,
			MinimalProfit:   cfg.Engine.MinimalProfit,
			ForceShowAll:    cfg.Engine.ForceShowAll,
			AllowSameSource: cfg.Engine.AllowSameSource,
			AllowNonBinary:  cfg.Engine.AllowNonBinary,
		}
		for _, fc := range cfg.Feeds {
			if strings.ToLower(fc.Type) == config.FeedCSV {
				sources = append(sources, feed.NewCSVSource(fc.Name, fc.Path))
			}
		}
	}

	for _, arg := range opts.feeds {
		name, path, ok := strings.Cut(arg, "=")
		if !ok || name == "" || path == "" {
			return fmt.Errorf("invalid --feed %q, expected name=path", arg)
		}
		sources = append(sources, feed.NewCSVSource(name, path))
	}
	if len(sources) < 2 {
		return fmt.Errorf("at least two feeds are required, got %d", len(sources))
	}

	flags := cmd.Flags()
	if flags.Changed("tax") {
		engine.TaxRate = opts.taxRate
	}
	if flags.Changed("min-profit") {
		engine.MinimalProfit = opts.minProfit
	}
	if flags.Changed("show-all") {
		engine.ForceShowAll = opts.showAll
	}
	if flags.Changed("allow-same-source") {
		engine.AllowSameSource = opts.allowSameSource
	}
	if flags.Changed("allow-non-binary") {
		engine.AllowNonBinary = opts.allowNonBinary
	}
	if err := engine.Validate(); err != nil {
		return err
	}

	feeds, err := loadAll(cmd.Context(), sources)
	if err != nil {
		return err
	}

	report := surebet.DetectWithReport(engine, feeds...)
	out := cmd.OutOrStdout()
	if opts.format == "json" {
		return writeJSONReport(out, report, opts.report)
	}
	writeTextReport(out, report, engine.TaxRate, opts.report)
	return nil
}

func loadAll(ctx context.Context, sources []feed.Source) ([]models.Feed, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	feeds := make([]models.Feed, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			f, err := src.Load(ctx)
			if err != nil {
				return err
			}
			if verbose {
				slog.Info("Feed loaded", "feed", src.Name(), "events", len(f.Events), "offers", f.OfferCount(), "skipped", f.Skipped)
			}
			feeds[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return feeds, nil
}

type jsonReport struct {
	Surebets   []models.Surebet    `json:"surebets"`
	Rejections []surebet.Rejection `json:"rejections,omitempty"`
}

func writeJSONReport(w io.Writer, report surebet.Report, withRejections bool) error {
	out := jsonReport{Surebets: report.Surebets}
	if out.Surebets == nil {
		out.Surebets = []models.Surebet{}
	}
	if withRejections {
		out.Rejections = report.Rejections
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeTextReport(w io.Writer, report surebet.Report, taxRate float64, withRejections bool) {
	fmt.Fprintf(w, "Shared events: %d, submarkets: %d, surebets: %d\n",
		report.SharedEvents, report.Submarkets, len(report.Surebets))
	for _, sb := range report.Surebets {
		fmt.Fprintf(w, "\n%s | %s | %s | %+.2f%%\n", sb.MatchID, sb.MatchName, surebet.MarketLabel(sb.Submarket), sb.Profit)
		for _, bet := range sb.Bets {
			fmt.Fprintf(w, "  %s: %s @ %g (stake %.2f, return %.2f)\n",
				bet.Bookmaker, strings.ToUpper(bet.Selection), bet.Odds, bet.Stake, bet.Return)
		}
		if sb.SameSource {
			fmt.Fprintln(w, "  warning: same bookmaker on both sides")
		}
	}
	if withRejections && len(report.Rejections) > 0 {
		fmt.Fprintf(w, "\nRejected (tax %.2f%%):\n", taxRate*100)
		for _, rej := range report.Rejections {
			fmt.Fprintf(w, "  %s %s: %s\n", rej.MatchID, rej.Submarket, rej.Reason)
		}
	}
}
