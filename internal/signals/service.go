// Package signals turns the indicators returned by stk_factor_pro into
// categorical labels. Each tool fetches a window of daily rows, locates the
// requested date and applies threshold rules to the row and its neighbours.
package signals

import (
	"context"
	"errors"
	"fmt"

	"tushare-mcp/pkg/model"
)

var (
	// ErrNoData is returned when the provider has no rows for the request
	ErrNoData = errors.New("no data returned")
	// ErrInvalidDate is returned for dates that are not YYYYMMDD
	ErrInvalidDate = errors.New("invalid date")
)

// FactorSource fetches stk_factor_pro rows sorted by trade date
type FactorSource interface {
	StkFactorPro(ctx context.Context, tsCode, tradeDate, startDate, endDate string) ([]model.FactorRow, error)
}

// Service computes label sets over a factor source
type Service struct {
	src FactorSource
	th  Thresholds
}

// NewService creates a signal service
func NewService(src FactorSource, th Thresholds) *Service {
	return &Service{src: src, th: th}
}

// history fetches rows from `years` calendar years before date up to date
// and returns them with the index of date's row
func (s *Service) history(ctx context.Context, tsCode, date string, years int) ([]model.FactorRow, int, error) {
	if tsCode == "" {
		return nil, -1, fmt.Errorf("ts_code is required")
	}
	d, err := model.ParseDate(date)
	if err != nil {
		return nil, -1, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	rows, err := s.src.StkFactorPro(ctx, tsCode, "", model.FormatDate(d.AddDate(-years, 0, 0)), date)
	if err != nil {
		return nil, -1, fmt.Errorf("fetching stk_factor_pro: %w", err)
	}
	if len(rows) == 0 {
		return nil, -1, fmt.Errorf("%w near %s", ErrNoData, date)
	}

	idx := model.IndexOfDate(rows, date)
	if idx < 0 {
		return nil, -1, fmt.Errorf("%w for %s", ErrNoData, date)
	}
	return rows, idx, nil
}

// previous returns the row before idx, if any
func previous(rows []model.FactorRow, idx int) (model.FactorRow, bool) {
	if idx <= 0 {
		return model.FactorRow{}, false
	}
	return rows[idx-1], true
}
