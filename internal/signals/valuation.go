package signals

import (
	"context"

	"tushare-mcp/pkg/model"
)

// ValuationSignal is the valuation label set for one day
type ValuationSignal struct {
	TSCode                 string `json:"ts_code"`
	TradeDate              string `json:"trade_date"`
	PEStatus               Label  `json:"pe_status"`
	PBStatus               Label  `json:"pb_status"`
	DividendAttractiveness Label  `json:"dividend_attractiveness"`
	PSStatus               Label  `json:"ps_status"`
	MarketCapCategory      Label  `json:"market_cap_category"`
	ValuationSummary       Label  `json:"valuation_summary"`
}

// Valuation labels PE/PB/PS against five years of the stock's own history
func (s *Service) Valuation(ctx context.Context, tsCode, tradeDate string) (*ValuationSignal, error) {
	rows, idx, err := s.history(ctx, tsCode, tradeDate, 5)
	if err != nil {
		return nil, err
	}
	sig := s.th.Valuation.Label(rows, idx)
	return &sig, nil
}

// Label computes the valuation labels for rows[idx]; only rows before idx
// count as history
func (th ValuationThresholds) Label(rows []model.FactorRow, idx int) ValuationSignal {
	r := rows[idx]
	hist := rows[:idx]

	sig := ValuationSignal{
		TSCode:                 r.TSCode,
		TradeDate:              r.TradeDate,
		PEStatus:               th.PE(r, hist),
		PBStatus:               th.PB(r, hist),
		DividendAttractiveness: th.Dividend(r.DVTTM, r.DVRatio),
		PSStatus:               th.PS(r, hist),
		MarketCapCategory:      th.MarketCap(r.TotalMV),
	}
	sig.ValuationSummary = ValuationSummary(sig)
	return sig
}

// series collects a field from rows, keeping values accepted by keep
func series(rows []model.FactorRow, field func(model.FactorRow) model.Float, keep func(float64) bool) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if f := field(r); f.Valid && keep(f.Value) {
			out = append(out, f.Value)
		}
	}
	return out
}

func positive(v float64) bool    { return v > 0 }
func nonNegative(v float64) bool { return v >= 0 }

// PE classifies TTM PE (falling back to static PE) against history
func (th ValuationThresholds) PE(r model.FactorRow, hist []model.FactorRow) Label {
	pe := r.PETTM.Or(r.PE)
	if !pe.Valid {
		return ""
	}
	if pe.Value <= 0 {
		return "unprofitable"
	}

	values := series(hist, func(r model.FactorRow) model.Float { return r.PETTM }, positive)
	if len(values) < th.MinHistory {
		values = series(hist, func(r model.FactorRow) model.Float { return r.PE }, positive)
	}

	if len(values) >= th.MinHistory {
		switch {
		case pe.Value > Percentile(values, th.HighPercentile):
			return "expensive"
		case pe.Value < Percentile(values, th.LowPercentile):
			return "cheap"
		default:
			return "fair"
		}
	}
	switch {
	case pe.Value > th.PEExpensive:
		return "expensive"
	case pe.Value < th.PECheap:
		return "cheap"
	default:
		return "fair"
	}
}

// PB classifies price-to-book; the absolute extremes win over percentiles
func (th ValuationThresholds) PB(r model.FactorRow, hist []model.FactorRow) Label {
	if !r.PB.Valid {
		return ""
	}
	pb := r.PB.Value

	values := series(hist, func(r model.FactorRow) model.Float { return r.PB }, nonNegative)
	if len(values) >= th.MinHistory {
		switch {
		case pb < th.PBDeepDiscount:
			return "deep_discount"
		case pb > th.PBExtremePremium:
			return "extreme_premium"
		case pb > Percentile(values, th.HighPercentile):
			return "high_premium"
		case pb < Percentile(values, th.LowPercentile):
			return "discount"
		default:
			return "reasonable"
		}
	}
	switch {
	case pb < th.PBDeepDiscount:
		return "deep_discount"
	case pb > th.PBHighPremium:
		return "high_premium"
	case pb < th.PBDiscount:
		return "discount"
	default:
		return "reasonable"
	}
}

// Dividend classifies TTM dividend yield, falling back to the static ratio
func (th ValuationThresholds) Dividend(ttm, ratio model.Float) Label {
	dv := ttm.Or(ratio)
	if !dv.Valid {
		return "no_dividend"
	}
	switch {
	case dv.Value >= th.DividendVeryAttractive:
		return "very_attractive"
	case dv.Value >= th.DividendAttractive:
		return "attractive"
	case dv.Value >= th.DividendModerate:
		return "moderate"
	default:
		return "low_yield"
	}
}

// PS classifies TTM price-to-sales (falling back to static PS) against history
func (th ValuationThresholds) PS(r model.FactorRow, hist []model.FactorRow) Label {
	ps := r.PSTTM.Or(r.PS)
	if !ps.Valid {
		return ""
	}

	values := series(hist, func(r model.FactorRow) model.Float { return r.PSTTM }, nonNegative)
	if len(values) < th.MinHistory {
		values = series(hist, func(r model.FactorRow) model.Float { return r.PS }, nonNegative)
	}

	if len(values) >= th.MinHistory {
		switch {
		case ps.Value > Percentile(values, th.HighPercentile):
			return "overvalued_revenue"
		case ps.Value < Percentile(values, th.LowPercentile):
			return "undervalued_revenue"
		default:
			return "fair_revenue"
		}
	}
	switch {
	case ps.Value > th.PSExtreme:
		return "extremely_high"
	case ps.Value < th.PSReasonable:
		return "reasonable_revenue"
	default:
		return "fair_revenue"
	}
}

// MarketCap buckets total market value (万元)
func (th ValuationThresholds) MarketCap(totalMV model.Float) Label {
	if !totalMV.Valid {
		return "unknown"
	}
	switch {
	case totalMV.Value >= th.LargeCap:
		return "large_cap"
	case totalMV.Value >= th.MidCap:
		return "mid_cap"
	default:
		return "small_cap"
	}
}

// ValuationSummary picks the first matching verdict in priority order:
// unprofitable, undervalued, overvalued, growth_priced, speculative, neutral
func ValuationSummary(s ValuationSignal) Label {
	hasDividend := oneOf(s.DividendAttractiveness, "attractive", "very_attractive", "moderate")
	cheapAny := s.PEStatus == "cheap" ||
		oneOf(s.PBStatus, "discount", "deep_discount") ||
		s.PSStatus == "undervalued_revenue"

	switch {
	case s.PEStatus == "unprofitable":
		return "unprofitable"
	case cheapAny && hasDividend && s.MarketCapCategory != "small_cap":
		return "undervalued"
	case (s.PEStatus == "expensive" && oneOf(s.PBStatus, "high_premium", "extreme_premium")) ||
		(s.PSStatus == "overvalued_revenue" && s.MarketCapCategory == "small_cap"):
		return "overvalued"
	case s.PEStatus == "expensive" &&
		oneOf(s.PSStatus, "fair_revenue", "reasonable_revenue") &&
		oneOf(s.MarketCapCategory, "large_cap", "mid_cap"):
		return "growth_priced"
	case s.MarketCapCategory == "small_cap" &&
		s.PEStatus == "expensive" &&
		oneOf(s.DividendAttractiveness, "low_yield", "no_dividend"):
		return "speculative"
	default:
		return "neutral"
	}
}
