package tushare

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tushare-mcp/pkg/model"
)

type fakeQuerier struct {
	mu   sync.Mutex
	reqs []Request
	fn   func(req Request) (*model.Table, error)
}

func (f *fakeQuerier) Query(_ context.Context, req Request) (*model.Table, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return f.fn(req)
}

// querierFunc adapts a function to Querier
type querierFunc func(ctx context.Context, req Request) (*model.Table, error)

func (f querierFunc) Query(ctx context.Context, req Request) (*model.Table, error) {
	return f(ctx, req)
}

func TestFetchRangeChunksAndDedupes(t *testing.T) {
	fq := &fakeQuerier{fn: func(req Request) (*model.Table, error) {
		// each page repeats the window end date so the merge must drop duplicates
		return &model.Table{
			Fields: []string{"trade_date", "pe"},
			Items: [][]any{
				{req.Params["end_date"], 12.0},
				{req.Params["start_date"], 10.0},
				{req.Params["end_date"], 12.0},
			},
		}, nil
	}}

	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	table, err := NewAPI(fq).FetchRange(context.Background(), Request{
		API:    "sw_daily",
		Params: Params{"ts_code": "801010.SI"},
	}, start, end, "trade_date")
	require.NoError(t, err)

	require.Len(t, fq.reqs, 3)
	assert.Equal(t, "20220101", fq.reqs[0].Params["start_date"])
	assert.Equal(t, "20221231", fq.reqs[0].Params["end_date"])
	assert.Equal(t, "20230101", fq.reqs[1].Params["start_date"])
	assert.Equal(t, "20240301", fq.reqs[2].Params["end_date"])
	assert.Equal(t, "801010.SI", fq.reqs[2].Params["ts_code"])

	assert.Equal(t, 6, table.Len())
	for i := 1; i < table.Len(); i++ {
		assert.Less(t, table.String(i-1, "trade_date"), table.String(i, "trade_date"))
	}
}

func TestFetchRangeError(t *testing.T) {
	fq := &fakeQuerier{fn: func(Request) (*model.Table, error) {
		return nil, &APIError{API: "sw_daily", Code: 40101, Msg: "no permission"}
	}}

	now := time.Now()
	_, err := NewAPI(fq).FetchRange(context.Background(), Request{API: "sw_daily"}, now.AddDate(-1, 0, 0), now, "trade_date")
	require.Error(t, err)
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestFetchRangeSkipsFailedWindow(t *testing.T) {
	fq := &fakeQuerier{fn: func(req Request) (*model.Table, error) {
		if req.Params["start_date"] == "20230101" {
			return nil, &APIError{API: "sw_daily", Code: 500, Msg: "upstream timeout"}
		}
		return &model.Table{
			Fields: []string{"trade_date", "pe"},
			Items:  [][]any{{req.Params["end_date"], 12.0}},
		}, nil
	}}

	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	table, err := NewAPI(fq).FetchRange(context.Background(), Request{API: "sw_daily"}, start, end, "trade_date")
	require.NoError(t, err)
	assert.Len(t, fq.reqs, 3)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "20221231", table.String(0, "trade_date"))
	assert.Equal(t, "20240301", table.String(1, "trade_date"))
}

func TestFetchRangeStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fq := &fakeQuerier{fn: func(Request) (*model.Table, error) {
		cancel()
		return nil, context.Canceled
	}}

	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := NewAPI(fq).FetchRange(ctx, Request{API: "sw_daily"}, start, end, "trade_date")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, fq.reqs, 1)
}

func TestStkFactorProSortsRows(t *testing.T) {
	fq := &fakeQuerier{fn: func(req Request) (*model.Table, error) {
		assert.Equal(t, "stk_factor_pro", req.API)
		return &model.Table{
			Fields: []string{"ts_code", "trade_date", "close_qfq"},
			Items: [][]any{
				{"600519.SH", "20240103", 1700.0},
				{"600519.SH", "20240102", 1690.0},
			},
		}, nil
	}}

	rows, err := NewAPI(fq).StkFactorPro(context.Background(), "600519.SH", "", "20240101", "20240103")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "20240102", rows[0].TradeDate)
	assert.Equal(t, 1700.0, rows[1].Close.Value)
	assert.False(t, rows[1].MA5.Valid)
}

func TestLastTradeDate(t *testing.T) {
	fq := &fakeQuerier{fn: func(req Request) (*model.Table, error) {
		assert.Equal(t, 1, req.Params["is_open"])
		return &model.Table{
			Fields: []string{"cal_date", "is_open"},
			Items: [][]any{
				{"20241108", "1"},
				{"20241107", "1"},
				{"20241110", "0"},
			},
		}, nil
	}}

	d, err := NewAPI(fq).LastTradeDate(context.Background(), time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "20241108", d)
}

func TestSharedCollapsesConcurrentQueries(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	fq := &fakeQuerier{fn: func(Request) (*model.Table, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &model.Table{Fields: []string{"x"}, Items: [][]any{{1.0}}}, nil
	}}
	shared := NewShared(fq)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, err := shared.Query(context.Background(), Request{
				API:    "index_classify",
				Params: Params{"level": "L1", "src": "SW2021"},
			})
			assert.NoError(t, err)
			assert.Equal(t, 1, table.Len())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// nothing is retained once the call finished
	_, err := shared.Query(context.Background(), Request{API: "index_classify", Params: Params{"level": "L1", "src": "SW2021"}})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSharedOutlivesCancelledCaller(t *testing.T) {
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	q := querierFunc(func(ctx context.Context, _ Request) (*model.Table, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-release:
		}
		return &model.Table{Fields: []string{"x"}, Items: [][]any{{1.0}}}, nil
	})
	shared := NewShared(q)
	req := Request{API: "daily_basic", Params: Params{"trade_date": "20240102"}}

	first, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := shared.Query(first, req)
		firstErr <- err
	}()
	<-started

	type result struct {
		table *model.Table
		err   error
	}
	second := make(chan result, 1)
	go func() {
		table, err := shared.Query(context.Background(), req)
		second <- result{table, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, 1, got.table.Len())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
