package sector

import (
	"context"
	"errors"
	"sync"
	"time"

	"tushare-mcp/pkg/model"
)

var errUpstream = errors.New("upstream failure")

// fakeSource serves canned tables keyed by code
type fakeSource struct {
	mu sync.Mutex

	industries *model.Table
	classifyErr error

	swDaily    map[string]*model.Table
	indexBasic map[string]*model.Table
	members    map[string]*model.Table
	memberErr  map[string]error
	fina       map[string]*model.Table
	dailyBasic *model.Table
	tradeDay   string

	finaPeriods []string
	ranges      []time.Time
}

func table(fields []string, rows ...[]any) *model.Table {
	return &model.Table{Fields: fields, Items: rows}
}

func (f *fakeSource) IndexClassify(_ context.Context, level, src string) (*model.Table, error) {
	return f.industries, f.classifyErr
}

func (f *fakeSource) SwDaily(_ context.Context, tsCode string, start, end time.Time) (*model.Table, error) {
	f.mu.Lock()
	f.ranges = append(f.ranges, start, end)
	f.mu.Unlock()
	t, ok := f.swDaily[tsCode]
	if !ok {
		return nil, errUpstream
	}
	return t, nil
}

func (f *fakeSource) IndexDailyBasic(_ context.Context, tsCode string, start, end time.Time) (*model.Table, error) {
	f.mu.Lock()
	f.ranges = append(f.ranges, start, end)
	f.mu.Unlock()
	t, ok := f.indexBasic[tsCode]
	if !ok {
		return nil, errUpstream
	}
	return t, nil
}

func (f *fakeSource) IndexMemberAll(_ context.Context, l1Code string) (*model.Table, error) {
	if err := f.memberErr[l1Code]; err != nil {
		return nil, err
	}
	return f.members[l1Code], nil
}

func (f *fakeSource) DailyBasic(_ context.Context, tradeDate string) (*model.Table, error) {
	if f.dailyBasic == nil {
		return nil, errUpstream
	}
	return f.dailyBasic, nil
}

func (f *fakeSource) FinaIndicator(_ context.Context, tsCode, period string) (*model.Table, error) {
	f.mu.Lock()
	f.finaPeriods = append(f.finaPeriods, period)
	f.mu.Unlock()
	t, ok := f.fina[tsCode]
	if !ok {
		return nil, errUpstream
	}
	return t, nil
}

func (f *fakeSource) LastTradeDate(_ context.Context, date time.Time) (string, error) {
	if f.tradeDay == "" {
		return "", errUpstream
	}
	return f.tradeDay, nil
}

var (
	classifyFields = []string{"index_code", "industry_name", "level"}
	swFields       = []string{"ts_code", "trade_date", "pe", "pb"}
	indexFields    = []string{"ts_code", "trade_date", "pe_ttm", "pb"}
	memberFields   = []string{"l1_code", "ts_code", "name"}
	finaFields     = []string{"ts_code", "ann_date", "end_date", "netprofit_yoy", "dt_netprofit_yoy"}
	basicFields    = []string{"ts_code", "trade_date", "total_mv"}
)

// ratios builds a sw_daily-style table from pe/pb pairs on consecutive days
func ratios(fields []string, code string, pairs ...[2]any) *model.Table {
	t := &model.Table{Fields: fields}
	day := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range pairs {
		t.Items = append(t.Items, []any{code, model.FormatDate(day.AddDate(0, 0, i)), p[0], p[1]})
	}
	return t
}

func fina(netprofit, dt any) *model.Table {
	return table(finaFields, []any{"", "20240830", "20240630", netprofit, dt})
}
