package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tushare-mcp/internal/signals"
)

func registerLabels(r *Registry, svc *signals.Service) {
	r.Register(GroupSignal, mcp.NewTool("get_trend_signals",
		mcp.WithDescription("Trend labels from moving averages, MACD and momentum. "+
			"A single trade_date returns one object; a date range returns one object per trading day."),
		mcp.WithString("ts_code", mcp.Required(), mcp.Description("Stock code, e.g. 000001.SZ")),
		mcp.WithString("trade_date", mcp.Description("Trade date, YYYYMMDD")),
		mcp.WithString("start_date", mcp.Description("Start date, YYYYMMDD")),
		mcp.WithString("end_date", mcp.Description("End date, YYYYMMDD")),
	), trendHandler(svc))

	r.Register(GroupSignal, mcp.NewTool("get_sentiment_volume",
		mcp.WithDescription("Turnover, volume, OBV, BRAR, VR and MFI/PSY labels with an overall market sentiment verdict."),
		mcp.WithString("ts_code", mcp.Required(), mcp.Description("Stock code, e.g. 000001.SZ")),
		mcp.WithString("trade_date", mcp.Required(), mcp.Description("Trade date, YYYYMMDD")),
	), dayHandler("trade_date", svc.Sentiment))

	r.Register(GroupSignal, mcp.NewTool("get_valuation_metrics",
		mcp.WithDescription("PE, PB, PS, dividend and market-cap labels judged against five years of the stock's own history."),
		mcp.WithString("ts_code", mcp.Required(), mcp.Description("Stock code, e.g. 000001.SZ")),
		mcp.WithString("trade_date", mcp.Required(), mcp.Description("Trade date, YYYYMMDD")),
	), dayHandler("trade_date", svc.Valuation))

	r.Register(GroupSignal, mcp.NewTool("get_oscillator_signals",
		mcp.WithDescription("RSI, KDJ, Williams %R, BIAS and CCI overbought/oversold labels with a reversal signal."),
		mcp.WithString("ts_code", mcp.Required(), mcp.Description("Stock code, e.g. 000001.SZ")),
		mcp.WithString("trade_date", mcp.Required(), mcp.Description("Trade date, YYYYMMDD")),
	), dayHandler("trade_date", svc.Oscillator))

	r.Register(GroupSignal, mcp.NewTool("get_volatility_profile",
		mcp.WithDescription("ATR, Bollinger, mass index, Keltner and price-extreme labels with a volatility regime and risk warning."),
		mcp.WithString("ts_code", mcp.Required(), mcp.Description("Stock code, e.g. 000001.SZ")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Trade date, YYYYMMDD")),
	), dayHandler("date", svc.Volatility))
}

func trendHandler(svc *signals.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tsCode, err := req.RequireString("ts_code")
		if err != nil {
			return errorResult(err), nil
		}
		tradeDate := req.GetString("trade_date", "")
		start := req.GetString("start_date", "")
		end := req.GetString("end_date", "")

		out, err := svc.Trend(ctx, tsCode, tradeDate, start, end)
		if err != nil {
			return callError(err), nil
		}
		if signals.IsSingleDay(tradeDate, start, end) && len(out) == 1 {
			return jsonResult(out[0])
		}
		return jsonResult(out)
	}
}

// dayHandler adapts a single-day label function; dateArg names the date argument
func dayHandler[T any](dateArg string, fn func(ctx context.Context, tsCode, date string) (*T, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tsCode, err := req.RequireString("ts_code")
		if err != nil {
			return errorResult(err), nil
		}
		date, err := req.RequireString(dateArg)
		if err != nil {
			return errorResult(err), nil
		}

		sig, err := fn(ctx, tsCode, date)
		if err != nil {
			return callError(err), nil
		}
		return jsonResult(sig)
	}
}
