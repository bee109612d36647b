package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tushare-mcp/internal/metrics"
	"tushare-mcp/internal/tushare"
)

// Instrument logs each call with a call id and records its outcome
func Instrument(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.Params.Name
		logger := log.With().
			Str("tool", name).
			Str("call_id", uuid.NewString()).
			Logger()
		ctx = logger.WithContext(ctx)

		start := time.Now()
		res, err := next(ctx, req)
		elapsed := time.Since(start)

		outcome := metrics.OutcomeOK
		switch {
		case err != nil:
			outcome = metrics.OutcomeError
		case res != nil && res.IsError:
			outcome = metrics.OutcomeError
			if text := ResultText(res); text != "" {
				logger.Warn().Dur("elapsed", elapsed).Str("result", text).Msg("tool returned error")
			}
		}
		metrics.ObserveTool(name, outcome, elapsed)

		if err != nil {
			logger.Error().Err(err).Dur("elapsed", elapsed).Msg("tool call failed")
		} else {
			logger.Debug().Dur("elapsed", elapsed).Msg("tool call completed")
		}
		return res, err
	}
}

// Recover turns a panicking handler into an error result
func Recover(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (res *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				zerolog.Ctx(ctx).Error().Interface("panic", r).Msg("tool handler panicked")
				res, err = errorResult(fmt.Errorf("internal error in %s", req.Params.Name)), nil
			}
		}()
		return next(ctx, req)
	}
}

// callError makes provider errors readable in tool results
func callError(err error) *mcp.CallToolResult {
	if tushare.IsRateLimited(err) {
		return errorResult(fmt.Errorf("rate limited by provider, retry later: %w", err))
	}
	return errorResult(err)
}
