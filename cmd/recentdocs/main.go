// recentdocs prints the most recently created records of one collection,
// including the email_sent / email_error status written by the mail dispatcher.
// Backends: firestore (default), postgres, clickhouse, sqlite.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recentdocs/internal/config"
	"github.com/recentdocs/internal/logging"
	"github.com/recentdocs/internal/model"
	"github.com/recentdocs/internal/runner"
)

// exitUsage is returned for bad flags or config, before any backend is touched.
const exitUsage = 2

type flags struct {
	configPath       string
	backend          string
	credentials      string
	collection       string
	orderBy          string
	limit            int
	failOnQueryError bool
	timeout          string
	verbose          bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the root command and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	code := runner.ExitOK
	cmd := newRootCmd(stdout, &code)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitUsage
	}
	return code
}

func newRootCmd(stdout io.Writer, code *int) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "recentdocs",
		Short: "List the most recent records of a collection",
		Long: `recentdocs connects to the registrations backend, lists the newest records
of one collection ordered by created_at (newest first) and prints each record's
id, created_at, email_sent, email_error and the remaining fields.

Exit status: 0 on success or a tolerated query error, 1 when credentials or the
client cannot be set up (or the query fails with --fail-on-query-error),
2 for invalid flags or configuration.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging, f.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			*code = report(cmd.Context(), cfg, stdout, logger)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "recentdocs.yaml", "YAML config file (missing file = defaults)")
	fl.StringVar(&f.backend, "backend", "", "firestore, postgres, clickhouse or sqlite")
	fl.StringVar(&f.credentials, "credentials", "", "service-account JSON key file (firestore)")
	fl.StringVar(&f.collection, "collection", "", "collection (or mirror table) to list")
	fl.StringVar(&f.orderBy, "order-by", "", "timestamp field to sort by, newest first")
	fl.IntVarP(&f.limit, "limit", "n", 0, "number of records to print")
	fl.BoolVar(&f.failOnQueryError, "fail-on-query-error", false, "exit 1 when the listing query fails")
	fl.StringVar(&f.timeout, "timeout", "", "overall deadline, e.g. 30s (default none)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging on stderr")
	return cmd
}

// loadConfig layers flags that were explicitly set over the config file and env.
func loadConfig(cmd *cobra.Command, f flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	fl := cmd.Flags()
	if fl.Changed("backend") {
		cfg.Backend = f.backend
	}
	if fl.Changed("credentials") {
		cfg.Firestore.CredentialsFile = f.credentials
	}
	if fl.Changed("collection") {
		cfg.Collection = f.collection
	}
	if fl.Changed("order-by") {
		cfg.OrderBy = f.orderBy
	}
	if fl.Changed("limit") {
		cfg.Limit = f.limit
	}
	if fl.Changed("fail-on-query-error") {
		cfg.FailOnQueryError = f.failOnQueryError
	}
	if fl.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func report(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *zap.Logger) int {
	timeout, _ := cfg.QueryTimeout() // validated
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger = logger.With(zap.String("backend", cfg.Backend))
	src := newSource(cfg, logger)
	q := model.Query{Collection: cfg.Collection, OrderBy: cfg.OrderBy, Limit: cfg.Limit}
	return runner.Run(ctx, src, q, runner.Options{FailOnQueryError: cfg.FailOnQueryError}, stdout, logger)
}
