package signals

import (
	"context"
	"strings"

	"tushare-mcp/pkg/model"
)

// VolatilitySignal is the volatility and risk label set for one day.
// It reports the date under "date" rather than "trade_date".
type VolatilitySignal struct {
	TSCode             string `json:"ts_code"`
	Date               string `json:"date"`
	ATRStatus          Label  `json:"atr_status"`
	BollingerStatus    Label  `json:"bollinger_status"`
	MassStatus         Label  `json:"mass_status"`
	KeltnerStatus      Label  `json:"keltner_status"`
	ExtremePriceStatus Label  `json:"extreme_price_status"`
	VolatilityRegime   Label  `json:"volatility_regime"`
	RiskWarning        Label  `json:"risk_warning"`
}

// Volatility labels ATR, bands, mass index and price extremes on date
func (s *Service) Volatility(ctx context.Context, tsCode, date string) (*VolatilitySignal, error) {
	rows, idx, err := s.history(ctx, tsCode, date, 1)
	if err != nil {
		return nil, err
	}
	sig := s.th.Volatility.Label(rows, idx)
	return &sig, nil
}

// Label computes the volatility labels for rows[idx]
func (th VolatilityThresholds) Label(rows []model.FactorRow, idx int) VolatilitySignal {
	r := rows[idx]
	prev, hasPrev := previous(rows, idx)

	sig := VolatilitySignal{
		TSCode:             r.TSCode,
		Date:               r.TradeDate,
		ATRStatus:          th.ATR(rows, idx),
		BollingerStatus:    th.Bollinger(r),
		MassStatus:         th.Mass(r.Mass, prev.Mass, hasPrev),
		KeltnerStatus:      Keltner(r),
		ExtremePriceStatus: th.ExtremePrice(rows, idx),
	}
	sig.VolatilityRegime = VolatilityRegime(sig)
	sig.RiskWarning = RiskWarning(sig)
	return sig
}

// ATR compares today's ATR with its mean over the trailing window
// (current row included) or with absolute levels when history is thin
func (th VolatilityThresholds) ATR(rows []model.FactorRow, idx int) Label {
	atr := rows[idx].ATR
	if !atr.Valid {
		return ""
	}

	hi, lo := th.ATRHigh, th.ATRLow
	if idx >= th.ATRWindow-1 {
		window := series(rows[idx-th.ATRWindow+1:idx+1], func(r model.FactorRow) model.Float { return r.ATR }, func(float64) bool { return true })
		if len(window) >= th.ATRMinValid {
			avg := Mean(window)
			hi, lo = th.ATRHighRatio*avg, th.ATRLowRatio*avg
		}
	}
	switch {
	case atr.Value > hi:
		return "high_volatility"
	case atr.Value < lo:
		return "low_volatility"
	default:
		return "normal_volatility"
	}
}

// Bollinger combines price position within the bands with band width
func (th VolatilityThresholds) Bollinger(r model.FactorRow) Label {
	if !r.Close.Valid || !r.BollUpper.Valid || !r.BollLower.Valid || !r.BollMid.Valid || r.BollMid.Value == 0 {
		return ""
	}
	px, upper, lower, mid := r.Close.Value, r.BollUpper.Value, r.BollLower.Value, r.BollMid.Value

	width := (upper - lower) / mid
	wide, narrow := width > th.BandWide, width < th.BandNarrow

	switch {
	case px >= upper:
		switch {
		case wide:
			return "above_upper_with_wide_band"
		case narrow:
			return "above_upper_with_narrow_band"
		}
		return "above_upper_band"
	case px <= lower:
		switch {
		case wide:
			return "below_lower_with_wide_band"
		case narrow:
			return "below_lower_with_narrow_band"
		}
		return "below_lower_band"
	case px > mid:
		if narrow {
			return "upper_half_narrow_band"
		}
		return "upper_half"
	default:
		if narrow {
			return "lower_half_narrow_band"
		}
		return "lower_half"
	}
}

// Mass flags the classic reversal bulge: the index falling back through
// MassHigh after being above it
func (th VolatilityThresholds) Mass(cur, prev model.Float, hasPrev bool) Label {
	if !cur.Valid {
		return ""
	}
	if hasPrev && prev.Valid && prev.Value >= th.MassHigh && cur.Value < th.MassHigh {
		return "mass_reversal_signal"
	}
	switch {
	case cur.Value > th.MassHigh:
		return "high_mass"
	case cur.Value < th.MassLow:
		return "low_mass"
	default:
		return "reversal_zone"
	}
}

// Keltner places the close relative to the Keltner channel
func Keltner(r model.FactorRow) Label {
	if !r.Close.Valid || !r.KtnUpper.Valid || !r.KtnDown.Valid {
		return ""
	}
	switch {
	case r.Close.Value >= r.KtnUpper.Value:
		return "above_keltner_upper"
	case r.Close.Value <= r.KtnDown.Value:
		return "below_keltner_lower"
	default:
		return "within_keltner_channel"
	}
}

// ExtremePrice prefers the provider's topdays/lowdays counters and
// otherwise compares today's range with the prior lookback rows
func (th VolatilityThresholds) ExtremePrice(rows []model.FactorRow, idx int) Label {
	r := rows[idx]
	if r.TopDays.Valid || r.LowDays.Valid {
		switch {
		case r.TopDays.Valid && r.TopDays.Value >= th.ExtremeDays:
			return "recent_new_high"
		case r.LowDays.Valid && r.LowDays.Value >= th.ExtremeDays:
			return "recent_new_low"
		default:
			return "no_extreme_price"
		}
	}

	if idx < th.ExtremeLookback {
		return "no_extreme_price"
	}
	var maxHigh, minLow model.Float
	for _, h := range rows[idx-th.ExtremeLookback : idx] {
		if h.High.Valid && (!maxHigh.Valid || h.High.Value > maxHigh.Value) {
			maxHigh = h.High
		}
		if h.Low.Valid && (!minLow.Valid || h.Low.Value < minLow.Value) {
			minLow = h.Low
		}
	}

	switch {
	case r.High.Valid && maxHigh.Valid && r.High.Value > maxHigh.Value:
		return "recent_new_high"
	case r.Low.Valid && minLow.Valid && r.Low.Value < minLow.Value:
		return "recent_new_low"
	case r.High.Valid && maxHigh.Valid && r.High.Value >= maxHigh.Value*th.NearHighRatio:
		return "near_new_high"
	default:
		return "no_extreme_price"
	}
}

// VolatilityRegime summarises whether volatility is expanding or compressed
func VolatilityRegime(s VolatilitySignal) Label {
	boll := string(s.BollingerStatus)
	switch {
	case s.ATRStatus == "high_volatility" &&
		strings.Contains(boll, "wide_band") &&
		oneOf(s.ExtremePriceStatus, "recent_new_high", "recent_new_low"):
		return "elevated_volatility"
	case (strings.Contains(boll, "narrow_band") || s.MassStatus == "low_mass") &&
		s.ATRStatus == "low_volatility":
		return "compression_before_breakout"
	default:
		return "normal_volatility"
	}
}

// RiskWarning flags stretched moves and quiet consolidations
func RiskWarning(s VolatilitySignal) Label {
	boll := string(s.BollingerStatus)
	switch {
	case strings.HasPrefix(boll, "above_upper") &&
		s.ExtremePriceStatus == "recent_new_high" &&
		s.ATRStatus == "high_volatility":
		return "high_short_term_risk"
	case strings.HasPrefix(boll, "below_lower") &&
		s.ExtremePriceStatus == "recent_new_low" &&
		s.ATRStatus == "high_volatility":
		return "high_short_term_opportunity"
	case strings.Contains(boll, "narrow_band") && s.ATRStatus == "low_volatility":
		return "low_risk_consolidation"
	default:
		return "none"
	}
}
