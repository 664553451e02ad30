// Command nosible is a command line client for the NOSIBLE search API.
//
// Usage:
//
//	nosible search "Which central banks are buying gold?" -n 20
//	nosible bulk "gold reserves" -n 2000 --parquet gold.parquet
//	nosible visit https://example.com/article
//	nosible filter --include-netlocs bloomberg.com --publish-start 2025-01-01
//
// Settings come from the environment (NOSIBLE_API_KEY, LOG_LEVEL, CACHE_TYPE,
// DATABASE_URL, ...), optionally loaded from .env.local and .env.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kitbuilder587/nosible-go/internal/config"
)

// CLI defines the command-line interface.
type CLI struct {
	Search    SearchCmd    `cmd:"" help:"Run a fast search (up to 100 results)."`
	Batch     BatchCmd     `cmd:"" help:"Run searches from a JSON file concurrently."`
	Bulk      BulkCmd      `cmd:"" help:"Run a bulk search (1000 to 10000 results)."`
	Similar   SimilarCmd   `cmd:"" help:"Find documents similar to a URL from a previous search."`
	Visit     VisitCmd     `cmd:"" help:"Visit a URL and print the extracted page."`
	Version   VersionCmd   `cmd:"" help:"Show the API version."`
	Indexed   IndexedCmd   `cmd:"" help:"Check whether a URL is indexed."`
	Preflight PreflightCmd `cmd:"" help:"Show how a URL would be crawled."`
	Limits    LimitsCmd    `cmd:"" help:"Show the rate limits of every plan."`
	Filter    FilterCmd    `cmd:"" help:"Print the SQL filter built from filter flags."`
	Archive   ArchiveCmd   `cmd:"" help:"Browse results archived in Postgres."`

	APIKey   string `name:"api-key" help:"API key (defaults to NOSIBLE_API_KEY)."`
	LogLevel string `name:"log-level" help:"Log level (debug, info, warn, error). Defaults to LOG_LEVEL."`
	JSON     bool   `help:"Print JSON instead of text."`
}

func main() {
	if err := config.LoadEnvFiles(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "nosible: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("nosible"),
		kong.Description("Command line client for the NOSIBLE search API."),
		kong.UsageOnError(),
		kong.Writers(out, os.Stderr),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := cli.LogLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	logger, err := config.NewLogger(config.LogConfig{Level: level})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	a := &app{
		ctx:      config.ContextWithLogger(ctx, logger),
		out:      out,
		cli:      &cli,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	defer a.close()

	logger.Debug("running command", zap.String("command", kctx.Command()))
	return kctx.Run(a)
}
