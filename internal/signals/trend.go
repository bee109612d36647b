package signals

import (
	"context"
	"fmt"
	"math"

	"tushare-mcp/pkg/model"
)

// TrendSignal is the trend label set for one trading day
type TrendSignal struct {
	TSCode         string `json:"ts_code"`
	TradeDate      string `json:"trade_date"`
	PriceVsMA5     Label  `json:"price_vs_ma5"`
	MA5VsMA20      Label  `json:"ma5_vs_ma20"`
	MACDStatus     Label  `json:"macd_status"`
	TrendDirection Label  `json:"trend_direction"`
	TrendStrength  Label  `json:"trend_strength"`
	MomentumChange Label  `json:"momentum_change"`
}

// Trend labels every row returned for the query. Rows come back in
// ascending date order.
func (s *Service) Trend(ctx context.Context, tsCode, tradeDate, startDate, endDate string) ([]TrendSignal, error) {
	if tsCode == "" {
		return nil, fmt.Errorf("ts_code is required")
	}
	for _, d := range []string{tradeDate, startDate, endDate} {
		if d == "" {
			continue
		}
		if _, err := model.ParseDate(d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
	}

	rows, err := s.src.StkFactorPro(ctx, tsCode, tradeDate, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("fetching stk_factor_pro: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return s.th.Trend.Label(rows), nil
}

// IsSingleDay reports whether a trend query asked for exactly one date
func IsSingleDay(tradeDate, startDate, endDate string) bool {
	return tradeDate != "" && startDate == "" && endDate == ""
}

// Label computes the trend labels for every row
func (th TrendThresholds) Label(rows []model.FactorRow) []TrendSignal {
	out := make([]TrendSignal, len(rows))
	for i, r := range rows {
		prev, hasPrev := previous(rows, i)
		out[i] = TrendSignal{
			TSCode:         r.TSCode,
			TradeDate:      r.TradeDate,
			PriceVsMA5:     PriceVsMA5(r, prev, hasPrev),
			MA5VsMA20:      MA5VsMA20(r),
			MACDStatus:     MACDStatus(r, prev, hasPrev),
			TrendDirection: TrendDirection(r),
			TrendStrength:  th.Strength(rows, i),
			MomentumChange: MomentumChange(r, prev, hasPrev),
		}
	}
	return out
}

// PriceVsMA5 compares close with MA5, reporting a cross when the previous
// day sat on the other side
func PriceVsMA5(r, prev model.FactorRow, hasPrev bool) Label {
	if !r.Close.Valid || !r.MA5.Valid {
		return ""
	}
	px, ma5 := r.Close.Value, r.MA5.Value
	if hasPrev && prev.Close.Valid && prev.MA5.Valid {
		switch {
		case prev.Close.Value <= prev.MA5.Value && px > ma5:
			return "crossing_up"
		case prev.Close.Value >= prev.MA5.Value && px < ma5:
			return "crossing_down"
		}
	}
	if px > ma5 {
		return "above"
	}
	return "below"
}

// MA5VsMA20 reports moving-average alignment
func MA5VsMA20(r model.FactorRow) Label {
	if !r.MA5.Valid || !r.MA20.Valid {
		return ""
	}
	if r.MA5.Value > r.MA20.Value {
		return "bullish_alignment"
	}
	return "bearish_alignment"
}

// MACDStatus classifies DIF/DEA; crosses take precedence over momentum
func MACDStatus(r, prev model.FactorRow, hasPrev bool) Label {
	if !r.DIF.Valid || !r.DEA.Valid {
		return ""
	}
	dif, dea := r.DIF.Value, r.DEA.Value
	if hasPrev && prev.DIF.Valid && prev.DEA.Valid {
		switch {
		case prev.DIF.Value <= prev.DEA.Value && dif > dea:
			return "golden_cross"
		case prev.DIF.Value >= prev.DEA.Value && dif < dea:
			return "death_cross"
		}
	}
	switch {
	case dif > dea && dif > 0:
		return "positive_momentum"
	case dif < dea && dif < 0:
		return "negative_momentum"
	default:
		return "recovering"
	}
}

// TrendDirection needs price, both averages and MACD to agree
func TrendDirection(r model.FactorRow) Label {
	if !r.Close.Valid || !r.MA5.Valid || !r.MA20.Valid || !r.DIF.Valid || !r.DEA.Valid {
		return ""
	}
	px, ma5, ma20 := r.Close.Value, r.MA5.Value, r.MA20.Value
	dif, dea := r.DIF.Value, r.DEA.Value
	switch {
	case ma5 > ma20 && px > ma5 && dif >= dea:
		return "up"
	case ma5 < ma20 && px < ma5 && dif <= dea:
		return "down"
	default:
		return "sideways"
	}
}

// relativeMACD is |macd| / close
func relativeMACD(r model.FactorRow) (float64, bool) {
	if !r.MACD.Valid || !r.Close.Valid || r.Close.Value == 0 {
		return 0, false
	}
	return math.Abs(r.MACD.Value) / r.Close.Value, true
}

// Strength ranks the current |macd|/close against the trailing window, or
// falls back to absolute ratios when the window is short
func (th TrendThresholds) Strength(rows []model.FactorRow, i int) Label {
	rel, ok := relativeMACD(rows[i])
	if !ok {
		return ""
	}

	start := i - th.StrengthWindow + 1
	if start < 0 {
		start = 0
	}
	if i-start+1 >= th.StrengthMinRows {
		window := make([]float64, 0, i-start+1)
		for _, r := range rows[start : i+1] {
			if v, ok := relativeMACD(r); ok {
				window = append(window, v)
			}
		}
		pct := PercentileRank(window, rel)
		switch {
		case pct >= th.StrongPercentile:
			return "strong"
		case pct <= th.WeakPercentile:
			return "weak"
		default:
			return "moderate"
		}
	}

	switch {
	case rel > th.StrongRatio:
		return "strong"
	case rel < th.WeakRatio:
		return "weak"
	default:
		return "moderate"
	}
}

// MomentumChange tracks MTM against the previous day
func MomentumChange(r, prev model.FactorRow, hasPrev bool) Label {
	if !r.MTM.Valid {
		return ""
	}
	cur := r.MTM.Value
	// A gap in the previous MTM is read as a first row, so a missing value
	// never reports a slowdown it cannot measure.
	if !hasPrev || !prev.MTM.Valid {
		if cur > 0 {
			return "accelerating"
		}
		return "accelerating_down"
	}

	p := prev.MTM.Value
	switch {
	case (p <= 0 && cur > 0) || (p >= 0 && cur < 0):
		return "reversing"
	case cur > 0:
		if cur > p {
			return "accelerating"
		}
		return "decelerating"
	default:
		if cur < p {
			return "accelerating_down"
		}
		return "decelerating_down"
	}
}
