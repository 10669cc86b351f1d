// Command combine-report renders one dashboard selection to the terminal and
// can export the position table it was computed from.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"combinepulse/internal/config"
	"combinepulse/internal/dashboard"
	"combinepulse/internal/dataset"
	"combinepulse/internal/exporter"
	"combinepulse/internal/infrastructure"
	"combinepulse/internal/repository/postgres"
	"combinepulse/pkg/contracts/domain"
)

type options struct {
	configPath   string
	dataPath     string
	sheet        string
	position     string
	test         string
	round        int
	value        float64
	format       string
	exportPath   string
	skipSentinel bool
	logLevel     string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "configuration file (defaults to the usual locations)")
	flag.StringVar(&opts.dataPath, "data", "", "combine CSV or XLSX file; overrides the configured source")
	flag.StringVar(&opts.sheet, "sheet", "", "worksheet to read from an XLSX file")
	flag.StringVar(&opts.position, "position", "QB", "position code or name")
	flag.StringVar(&opts.test, "test", "Forty", "combine test")
	flag.IntVar(&opts.round, "round", 1, "draft round (1-7)")
	flag.Float64Var(&opts.value, "value", 0, "candidate result to rank; 0 means none")
	flag.StringVar(&opts.format, "format", "text", "output format: text or json")
	flag.StringVar(&opts.exportPath, "export", "", "also write the position table of the round to this .csv or .xlsx file")
	flag.BoolVar(&opts.skipSentinel, "skip-sentinel", false, "leave out the percentile when no value is given")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	flag.Parse()

	logger := infrastructure.NewLogger(os.Stderr, opts.logLevel)

	if err := run(context.Background(), opts, os.Stdout, logger); err != nil {
		logger.Error("report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer, logger *slog.Logger) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown output format %q", opts.format)
	}

	pos, err := domain.ParsePosition(opts.position)
	if err != nil {
		return err
	}
	test, err := domain.ParseTest(opts.test)
	if err != nil {
		return err
	}
	state := dashboard.State{Position: pos, Test: test, Round: opts.round, Candidate: opts.value}
	if err := state.Validate(); err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	source, closeSource, err := openSource(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	ds, err := dataset.Load(ctx, source, logger)
	if err != nil {
		return err
	}

	policy := dashboard.Policy{
		TopPicks:               cfg.Dashboard.TopPicks,
		SkipSentinelPercentile: cfg.Dashboard.SkipSentinelPercentile || opts.skipSentinel,
	}
	view, err := dashboard.Render(ds, state, policy)
	if err != nil {
		return err
	}

	if opts.exportPath != "" {
		table, err := ds.Table(pos)
		if err != nil {
			return err
		}
		if err := exporter.ExportFile(opts.exportPath, table.FilterRound(opts.round), logger); err != nil {
			return err
		}
	}

	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	return dashboard.WriteText(out, view)
}

func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.dataPath != "" {
		cfg.Data.Source = config.SourceFile
		cfg.Data.Path = opts.dataPath
		cfg.Data.Sheet = opts.sheet
	}
	return cfg, nil
}

func openSource(cfg *config.Config, logger *slog.Logger) (dataset.Source, func(), error) {
	if cfg.Data.Source == config.SourcePostgres {
		db, err := postgres.NewConnection(cfg.Database.URL, cfg.Database.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewCombineRepository(db, logger), func() { _ = postgres.Close(db) }, nil
	}

	return &dataset.FileSource{
		Path:   cfg.Data.Path,
		Sheet:  cfg.Data.Sheet,
		Loader: dataset.NewLoader(logger),
	}, func() {}, nil
}
