package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"tushare-mcp/internal/sector"
	"tushare-mcp/pkg/model"
)

// chinaTime is the exchange timezone used for default dates
var chinaTime = time.FixedZone("CST", 8*60*60)

func registerSector(r *Registry, a *sector.Analyzer, now func() time.Time) {
	optDate := mcp.WithString("trade_date", mcp.Description("Trade date, YYYYMMDD; defaults to today"))

	r.Register(GroupSector, mcp.NewTool("get_sector_valuation",
		mcp.WithDescription("Shenwan level-1 industry PE/PB percentiles over five years with a valuation status per industry."),
		optDate,
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		asOf, err := dateArg(req, now)
		if err != nil {
			return errorResult(err), nil
		}
		out, err := a.SectorValuations(ctx, asOf)
		if err != nil {
			return callError(err), nil
		}
		return jsonResult(out)
	})

	r.Register(GroupSector, mcp.NewTool("get_industry_profit_growth",
		mcp.WithDescription("Market-cap weighted net profit growth for one Shenwan level-1 industry, or all of them."),
		mcp.WithString("industry_code", mcp.Description("SW level-1 index code, e.g. 801080.SI; omit for all industries")),
		optDate,
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		asOf, err := dateArg(req, now)
		if err != nil {
			return errorResult(err), nil
		}
		if code := req.GetString("industry_code", ""); code != "" {
			g, err := a.IndustryGrowth(ctx, code, asOf)
			if err != nil {
				return callError(err), nil
			}
			return jsonResult(g)
		}
		out, err := a.AllIndustryGrowth(ctx, asOf)
		if err != nil {
			return callError(err), nil
		}
		return jsonResult(out)
	})

	r.Register(GroupSector, mcp.NewTool("get_index_valuation",
		mcp.WithDescription("PE(TTM) and PB ten-year percentiles for the major broad-market indices."),
		optDate,
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		asOf, err := dateArg(req, now)
		if err != nil {
			return errorResult(err), nil
		}
		out, err := a.IndexValuations(ctx, asOf)
		if err != nil {
			return callError(err), nil
		}
		return jsonResult(out)
	})

	r.Register(GroupSector, mcp.NewTool("get_sector_screen",
		mcp.WithDescription("Combined industry valuation and profit growth screen: high growth, value growth, risk and quick screens."),
		optDate,
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		asOf, err := dateArg(req, now)
		if err != nil {
			return errorResult(err), nil
		}
		out, err := a.Screen(ctx, asOf)
		if err != nil {
			return callError(err), nil
		}
		return jsonResult(out)
	})
}

func dateArg(req mcp.CallToolRequest, now func() time.Time) (time.Time, error) {
	s := req.GetString("trade_date", "")
	if s == "" {
		t := now().In(chinaTime)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("trade_date: %w", err)
	}
	return t, nil
}
