// Package sector evaluates Shenwan level-1 industries and A-share broad
// indices: valuation percentiles against their own history, cap-weighted
// profit growth from member financials, and screens combining the two.
package sector

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"tushare-mcp/pkg/model"
)

// Source is the subset of the Tushare API the sector analyses read
type Source interface {
	IndexClassify(ctx context.Context, level, src string) (*model.Table, error)
	SwDaily(ctx context.Context, tsCode string, start, end time.Time) (*model.Table, error)
	IndexDailyBasic(ctx context.Context, tsCode string, start, end time.Time) (*model.Table, error)
	IndexMemberAll(ctx context.Context, l1Code string) (*model.Table, error)
	DailyBasic(ctx context.Context, tradeDate string) (*model.Table, error)
	FinaIndicator(ctx context.Context, tsCode, period string) (*model.Table, error)
	LastTradeDate(ctx context.Context, date time.Time) (string, error)
}

// ProgressCallback is called with progress updates
type ProgressCallback func(done, total int)

// Analyzer runs sector analyses with a bounded number of concurrent workers
type Analyzer struct {
	src      Source
	th       Thresholds
	workers  int
	timeout  time.Duration
	progress ProgressCallback
}

// NewAnalyzer creates a new analyzer. A zero timeout means no deadline.
func NewAnalyzer(src Source, th Thresholds, workers int, timeout time.Duration) *Analyzer {
	if workers < 1 {
		workers = 1
	}
	return &Analyzer{
		src:     src,
		th:      th,
		workers: workers,
		timeout: timeout,
	}
}

// SetProgressCallback sets the function notified as each industry or
// index completes
func (a *Analyzer) SetProgressCallback(fn ProgressCallback) {
	a.progress = fn
}

// Thresholds returns the cut-offs in use
func (a *Analyzer) Thresholds() Thresholds {
	return a.th
}

// withTimeout applies the analyzer's deadline to a top-level run
func (a *Analyzer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

// run calls fn for 0..n-1 on at most a.workers goroutines. Items report
// their own failures; an error from fn or the context stops the run.
func (a *Analyzer) run(ctx context.Context, n int, progress ProgressCallback, fn func(ctx context.Context, i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	var done int64
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, i); err != nil {
				return err
			}
			count := atomic.AddInt64(&done, 1)
			if progress != nil {
				progress(int(count), n)
			}
			return nil
		})
	}
	return g.Wait()
}
