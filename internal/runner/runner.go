package runner

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recentdocs/internal/model"
	"github.com/recentdocs/internal/report"
)

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitSetup = 1
	ExitQuery = 1
)

// Names are the labels a backend uses in its setup error lines.
type Names struct {
	App    string // "<App> init failed: ..."
	Client string // "Failed to create <Client> client: ..."
}

// Source is implemented by firestoredb, postgres, clickhouse and sqlite.
//
// Init loads credentials or opens the handle and is a no-op when the source
// already holds one. Connect builds the query client. Close releases whatever
// Init and Connect acquired and is safe to call after a failed Init.
type Source interface {
	Names() Names
	Init(ctx context.Context) error
	Connect(ctx context.Context) error
	Recent(ctx context.Context, q model.Query) ([]model.Record, error)
	Close() error
}

// Options controls exit behaviour.
type Options struct {
	// FailOnQueryError turns a failed listing query into a non-zero exit.
	FailOnQueryError bool
}

// QueryResult is the outcome of the query stage.
type QueryResult struct {
	Records []model.Record
	Err     error
}

// OK reports whether the query succeeded.
func (r QueryResult) OK() bool { return r.Err == nil }

// Query runs the single listing query against src.
func Query(ctx context.Context, src Source, q model.Query) QueryResult {
	records, err := src.Recent(ctx, q)
	if err != nil {
		return QueryResult{Err: err}
	}
	if len(records) > q.Limit {
		records = records[:q.Limit]
	}
	return QueryResult{Records: records}
}

// Run executes auth, query and print against src and returns the process exit code.
func Run(ctx context.Context, src Source, q model.Query, opts Options, out io.Writer, logger *zap.Logger) int {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("collection", q.Collection),
	)
	p := report.New(out)
	names := src.Names()
	runStart := time.Now()

	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn("close source", zap.Error(err))
		}
	}()

	logger.Debug("initialising source", zap.String("app", names.App))
	if err := src.Init(ctx); err != nil {
		logger.Error("source init failed", zap.Error(err))
		p.InitFailed(names.App, err)
		return ExitSetup
	}
	if err := src.Connect(ctx); err != nil {
		logger.Error("client construction failed", zap.Error(err))
		p.ClientFailed(names.Client, err)
		return ExitSetup
	}

	p.Header(q.Collection)
	res := Query(ctx, src, q)
	if !res.OK() {
		logger.Error("listing query failed", zap.Error(res.Err), zap.Bool("fatal", opts.FailOnQueryError))
		p.QueryFailed(res.Err)
		if opts.FailOnQueryError {
			return ExitQuery
		}
		return ExitOK
	}
	for _, r := range res.Records {
		p.Record(r)
	}

	logger.Info("run finished",
		zap.Int("records", len(res.Records)),
		zap.Int("limit", q.Limit),
		zap.String("order_by", q.OrderBy),
		zap.Duration("elapsed", time.Since(runStart)),
	)
	return ExitOK
}
