package tools

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tushare-mcp/internal/tushare"
)

// param is one optional argument forwarded to the provider
type param struct {
	name    string
	desc    string
	integer bool
}

// endpoint is a provider interface exposed unchanged as a tool
type endpoint struct {
	api    string
	desc   string
	params []param
}

var (
	pTSCode    = param{name: "ts_code", desc: "Stock or index code, e.g. 000001.SZ"}
	pTradeDate = param{name: "trade_date", desc: "Trade date, YYYYMMDD"}
	pStartDate = param{name: "start_date", desc: "Start date, YYYYMMDD"}
	pEndDate   = param{name: "end_date", desc: "End date, YYYYMMDD"}
	pAnnDate   = param{name: "ann_date", desc: "Announcement date, YYYYMMDD"}
	pFields    = param{name: "fields", desc: "Comma-separated fields to return"}
	pDate      = param{name: "date", desc: "Date, YYYYMMDD"}
)

var endpoints = []endpoint{
	{
		api:    "stk_factor_pro",
		desc:   "Professional technical factor data for stocks (front/back adjusted indicators and daily valuation fields).",
		params: []param{pTSCode, pTradeDate, pStartDate, pEndDate, pFields},
	},
	{
		api:    "moneyflow",
		desc:   "Individual stock money flow by order size.",
		params: []param{pTSCode, pTradeDate, pStartDate, pEndDate},
	},
	{
		api:  "moneyflow_cnt_ths",
		desc: "THS concept sector money flow.",
		params: []param{pDate,
			{name: "concept_code", desc: "THS concept code"},
			{name: "concept_name", desc: "THS concept name"},
		},
	},
	{
		api:  "moneyflow_ind_ths",
		desc: "THS industry sector money flow.",
		params: []param{pDate,
			{name: "industry_code", desc: "THS industry code"},
			{name: "industry_name", desc: "THS industry name"},
		},
	},
	{
		api:    "cyq_perf",
		desc:   "Chip distribution performance: cost percentiles and winner rate.",
		params: []param{pTSCode, pTradeDate, pStartDate, pEndDate},
	},
	{
		api:  "stock_basic",
		desc: "Basic listing information for stocks.",
		params: []param{pTSCode,
			{name: "name", desc: "Stock name"},
			{name: "exchange", desc: "Exchange: SSE, SZSE or BSE"},
			{name: "list_status", desc: "L listed, D delisted, P paused"},
			{name: "market", desc: "Market board"},
			{name: "is_hs", desc: "Stock Connect: N, H or S"},
			pFields,
		},
	},
	{
		api:  "index_classify",
		desc: "Shenwan industry classification.",
		params: []param{
			{name: "level", desc: "Level: L1, L2 or L3"},
			{name: "industry", desc: "Industry name"},
			{name: "src", desc: "Source version, e.g. SW2021"},
		},
	},
	{
		api:    "fina_indicator",
		desc:   "Financial indicators from periodic reports.",
		params: []param{pTSCode, pAnnDate, pStartDate, pEndDate, {name: "period", desc: "Report period, e.g. 20231231"}, pFields},
	},
	{
		api:    "stk_holdernumber",
		desc:   "Number of shareholders.",
		params: []param{pTSCode, pAnnDate, pStartDate, pEndDate},
	},
	{
		api:    "ths_daily",
		desc:   "THS sector index daily quotes.",
		params: []param{pTSCode, pTradeDate, pStartDate, pEndDate},
	},
	{
		api:    "index_weekly",
		desc:   "Index weekly quotes.",
		params: []param{pTSCode, pStartDate, pEndDate},
	},
	{
		api:  "trade_cal",
		desc: "Exchange trading calendar.",
		params: []param{
			{name: "exchange", desc: "Exchange code: SSE, SZSE, ..."},
			pStartDate, pEndDate,
			{name: "is_open", desc: "1 for trading days, 0 for closed days", integer: true},
		},
	},
	{
		api:    "stk_auction_o",
		desc:   "Opening call auction data.",
		params: []param{pTSCode, pTradeDate, pStartDate, pEndDate},
	},
}

func (e endpoint) tool() mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(e.desc)}
	for _, p := range e.params {
		if p.integer {
			opts = append(opts, mcp.WithNumber(p.name, mcp.Description(p.desc)))
		} else {
			opts = append(opts, mcp.WithString(p.name, mcp.Description(p.desc)))
		}
	}
	return mcp.NewTool(e.api, opts...)
}

func (e endpoint) handler(q tushare.Querier) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		treq := tushare.Request{API: e.api, Params: tushare.Params{}}

		for _, p := range e.params {
			v, ok := args[p.name]
			if !ok || v == nil {
				continue
			}
			if p.integer {
				n, err := toInt(v)
				if err != nil {
					return errorResult(fmt.Errorf("%s: %w", p.name, err)), nil
				}
				treq.Params[p.name] = n
				continue
			}
			s := fmt.Sprint(v)
			if p.name == "fields" {
				treq.Fields = s
				continue
			}
			treq.Params[p.name] = s
		}

		t, err := q.Query(ctx, treq)
		if err != nil {
			return callError(err), nil
		}
		b, err := t.MarshalRecords()
		if err != nil {
			return errorResult(err), nil
		}
		return mcp.NewToolResultText(string(b)), nil
	}
}

// toInt accepts integral JSON numbers and numeric strings
func toInt(v any) (int, error) {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("expected an integer, got %v", x)
		}
		return int(x), nil
	case int:
		return x, nil
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %q", x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

func registerPassthrough(r *Registry, q tushare.Querier) {
	for _, e := range endpoints {
		r.Register(GroupData, e.tool(), e.handler(q))
	}
}
