package sqlite

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/metrics"
)

// DefaultSlowQuery is the duration above which a statement is reported.
const DefaultSlowQuery = 500 * time.Millisecond

type beginKey struct{}

// Hooks reports slow and failing statements. It implements sqlhooks.Hooks
// and sqlhooks.OnErrorer.
type Hooks struct {
	Threshold time.Duration
	Out       io.Writer
}

func (h *Hooks) Before(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	return context.WithValue(ctx, beginKey{}, time.Now()), nil
}

func (h *Hooks) After(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	begin, ok := ctx.Value(beginKey{}).(time.Time)
	if !ok {
		return ctx, nil
	}
	d := time.Since(begin)
	if d >= h.threshold() {
		metrics.DBSlowQueries.Inc()
		color.New(color.FgRed).Fprintf(h.out(), "%v slow sql: %s %q took: %s\n", time.Now().Format(time.RFC3339), query, args, d)
	}
	return ctx, nil
}

func (h *Hooks) OnError(ctx context.Context, err error, query string, args ...interface{}) error {
	slog.WarnContext(ctx, "sql error", "query", query, "error", err)
	return err
}

func (h *Hooks) threshold() time.Duration {
	if h.Threshold <= 0 {
		return DefaultSlowQuery
	}
	return h.Threshold
}

func (h *Hooks) out() io.Writer {
	if h.Out == nil {
		return os.Stderr
	}
	return h.Out
}
