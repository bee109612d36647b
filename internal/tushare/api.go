package tushare

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"tushare-mcp/pkg/model"
)

// chunkDays bounds each history request; long windows exceed the per-call row cap
const chunkDays = 365

// API provides typed access to the interfaces the label and sector tools use
type API struct {
	q Querier
}

// NewAPI wraps a Querier
func NewAPI(q Querier) *API {
	return &API{q: q}
}

// Query forwards a raw request
func (a *API) Query(ctx context.Context, req Request) (*model.Table, error) {
	return a.q.Query(ctx, req)
}

// StkFactorPro fetches daily technical factors for one stock
func (a *API) StkFactorPro(ctx context.Context, tsCode, tradeDate, startDate, endDate string) ([]model.FactorRow, error) {
	t, err := a.q.Query(ctx, Request{
		API: "stk_factor_pro",
		Params: Params{
			"ts_code":    tsCode,
			"trade_date": tradeDate,
			"start_date": startDate,
			"end_date":   endDate,
		},
	})
	if err != nil {
		return nil, err
	}
	rows := model.DecodeFactors(t)
	model.SortFactors(rows)
	return rows, nil
}

// IndexClassify fetches an industry classification level
func (a *API) IndexClassify(ctx context.Context, level, src string) (*model.Table, error) {
	return a.q.Query(ctx, Request{
		API:    "index_classify",
		Params: Params{"level": level, "src": src},
	})
}

// SwDaily fetches Shenwan index pe/pb history between start and end
func (a *API) SwDaily(ctx context.Context, tsCode string, start, end time.Time) (*model.Table, error) {
	return a.FetchRange(ctx, Request{
		API:    "sw_daily",
		Params: Params{"ts_code": tsCode},
		Fields: "ts_code,trade_date,pe,pb",
	}, start, end, "trade_date")
}

// IndexDailyBasic fetches broad index pe_ttm/pb history between start and end
func (a *API) IndexDailyBasic(ctx context.Context, tsCode string, start, end time.Time) (*model.Table, error) {
	return a.FetchRange(ctx, Request{
		API:    "index_dailybasic",
		Params: Params{"ts_code": tsCode},
		Fields: "ts_code,trade_date,pe_ttm,pb",
	}, start, end, "trade_date")
}

// IndexMemberAll lists current constituents of a Shenwan level-1 industry
func (a *API) IndexMemberAll(ctx context.Context, l1Code string) (*model.Table, error) {
	return a.q.Query(ctx, Request{
		API:    "index_member_all",
		Params: Params{"l1_code": l1Code, "is_new": "Y"},
	})
}

// DailyBasic fetches market-wide daily_basic rows for one trade date
func (a *API) DailyBasic(ctx context.Context, tradeDate string) (*model.Table, error) {
	return a.q.Query(ctx, Request{
		API:    "daily_basic",
		Params: Params{"trade_date": tradeDate},
		Fields: "ts_code,trade_date,total_mv",
	})
}

// FinaIndicator fetches one stock's financial indicators for a report period
func (a *API) FinaIndicator(ctx context.Context, tsCode, period string) (*model.Table, error) {
	return a.q.Query(ctx, Request{
		API:    "fina_indicator",
		Params: Params{"ts_code": tsCode, "period": period},
		Fields: "ts_code,ann_date,end_date,netprofit_yoy,dt_netprofit_yoy",
	})
}

// LastTradeDate returns the latest open SSE trading day on or before date
func (a *API) LastTradeDate(ctx context.Context, date time.Time) (string, error) {
	t, err := a.q.Query(ctx, Request{
		API: "trade_cal",
		Params: Params{
			"exchange":   "SSE",
			"start_date": model.FormatDate(date.AddDate(0, 0, -30)),
			"end_date":   model.FormatDate(date),
			"is_open":    1,
		},
		Fields: "cal_date,is_open",
	})
	if err != nil {
		return "", err
	}
	latest := ""
	for i := 0; i < t.Len(); i++ {
		if t.Float(i, "is_open").Value != 1 {
			continue
		}
		if d := t.String(i, "cal_date"); d > latest {
			latest = d
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no open trading day before %s", model.FormatDate(date))
	}
	return latest, nil
}

// FetchRange runs req over [start, end] in consecutive windows, then merges
// the pages, dropping rows that repeat key and sorting by key. A failed
// window is skipped with a warning; the call fails only when ctx is done or
// every window failed.
func (a *API) FetchRange(ctx context.Context, req Request, start, end time.Time, key string) (*model.Table, error) {
	merged := &model.Table{}
	var lastErr error
	windows, failed := 0, 0
	for from := start; !from.After(end); {
		to := from.AddDate(0, 0, chunkDays-1)
		if to.After(end) {
			to = end
		}

		params := make(Params, len(req.Params)+2)
		for k, v := range req.Params {
			params[k] = v
		}
		params["start_date"] = model.FormatDate(from)
		params["end_date"] = model.FormatDate(to)

		windows++
		page, err := a.q.Query(ctx, Request{API: req.API, Params: params, Fields: req.Fields})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			failed++
			lastErr = fmt.Errorf("fetching %s %s-%s: %w", req.API, params["start_date"], params["end_date"], err)
			log.Warn().Err(err).
				Str("api", req.API).
				Str("start", model.FormatDate(from)).
				Str("end", model.FormatDate(to)).
				Msg("Skipping failed window")
		} else {
			merged.Append(page)
		}

		from = to.AddDate(0, 0, 1)
	}
	if failed > 0 && failed == windows {
		return nil, lastErr
	}
	merged.Dedupe(key)
	merged.SortBy(key)
	return merged, nil
}
