package signals

import (
	"context"

	"tushare-mcp/pkg/model"
)

// OscillatorSignal is the overbought/oversold label set for one day
type OscillatorSignal struct {
	TSCode          string `json:"ts_code"`
	TradeDate       string `json:"trade_date"`
	RSIStatus       Label  `json:"rsi_status"`
	KDJStatus       Label  `json:"kdj_status"`
	WilliamsRStatus Label  `json:"williams_r_status"`
	BiasStatus      Label  `json:"bias_status"`
	CCIStatus       Label  `json:"cci_status"`
	ReversalSignal  Label  `json:"reversal_signal"`
}

// Oscillator labels RSI, KDJ, Williams %R, BIAS and CCI on tradeDate
func (s *Service) Oscillator(ctx context.Context, tsCode, tradeDate string) (*OscillatorSignal, error) {
	rows, idx, err := s.history(ctx, tsCode, tradeDate, 1)
	if err != nil {
		return nil, err
	}
	sig := s.th.Oscillator.Label(rows, idx)
	return &sig, nil
}

// Label computes the oscillator labels for rows[idx]
func (th OscillatorThresholds) Label(rows []model.FactorRow, idx int) OscillatorSignal {
	r := rows[idx]
	prev, hasPrev := previous(rows, idx)

	sig := OscillatorSignal{
		TSCode:          r.TSCode,
		TradeDate:       r.TradeDate,
		RSIStatus:       th.RSI(r.RSI6, r.RSI12),
		KDJStatus:       th.KDJ(r, prev, hasPrev),
		WilliamsRStatus: th.WilliamsR(r.WR1, r.WR),
		BiasStatus:      th.Bias(r.Bias1, r.Bias2, r.Bias3),
		CCIStatus:       th.CCIStatus(r.CCI),
	}
	sig.ReversalSignal = th.Reversal(sig, firstValid(r.Bias1, r.Bias2, r.Bias3))
	return sig
}

func firstValid(fs ...model.Float) model.Float {
	for _, f := range fs {
		if f.Valid {
			return f
		}
	}
	return model.Null
}

// RSI uses the 6-day RSI, falling back to the 12-day one with wider bands
func (th OscillatorThresholds) RSI(rsi6, rsi12 model.Float) Label {
	var v, hi, lo float64
	switch {
	case rsi6.Valid:
		v, hi, lo = rsi6.Value, th.RSI6Overbought, th.RSI6Oversold
	case rsi12.Valid:
		v, hi, lo = rsi12.Value, th.RSI12Overbought, th.RSI12Oversold
	default:
		return ""
	}
	switch {
	case v >= hi:
		return "overbought"
	case v <= lo:
		return "oversold"
	default:
		return "neutral"
	}
}

// KDJ reports K/D crosses against the previous day, otherwise K's zone
func (th OscillatorThresholds) KDJ(r, prev model.FactorRow, hasPrev bool) Label {
	if !r.KDJK.Valid || !r.KDJD.Valid {
		return ""
	}
	k, d := r.KDJK.Value, r.KDJD.Value

	if hasPrev && prev.KDJK.Valid && prev.KDJD.Valid {
		pk, pd := prev.KDJK.Value, prev.KDJD.Value
		switch {
		case pk <= pd && k > d:
			if k < th.KDJMid {
				return "bullish_crossover_in_oversold"
			}
			return "bullish_crossover"
		case pk >= pd && k < d:
			if k > th.KDJMid {
				return "bearish_crossover_in_overbought"
			}
			return "bearish_crossover"
		}
	}

	switch {
	case k > th.KDJOverbought:
		return "overbought_risk"
	case k < th.KDJOversold:
		return "oversold_opportunity"
	default:
		return "neutral"
	}
}

// WilliamsR uses WR(6), falling back to WR(10)
func (th OscillatorThresholds) WilliamsR(wr1, wr model.Float) Label {
	w := wr1.Or(wr)
	if !w.Valid {
		return ""
	}
	switch {
	case w.Value >= th.WROverbought:
		return "overbought"
	case w.Value <= th.WROversold:
		return "oversold"
	default:
		return "neutral"
	}
}

// Bias checks the shortest available BIAS against its own band
func (th OscillatorThresholds) Bias(bias1, bias2, bias3 model.Float) Label {
	var v, band float64
	switch {
	case bias1.Valid:
		v, band = bias1.Value, th.Bias1
	case bias2.Valid:
		v, band = bias2.Value, th.Bias2
	case bias3.Valid:
		v, band = bias3.Value, th.Bias3
	default:
		return "normal_deviation"
	}
	switch {
	case v > band:
		return "high_positive_deviation"
	case v < -band:
		return "high_negative_deviation"
	default:
		return "normal_deviation"
	}
}

// CCIStatus classifies the commodity channel index
func (th OscillatorThresholds) CCIStatus(cci model.Float) Label {
	if !cci.Valid {
		return ""
	}
	switch {
	case cci.Value > th.CCI:
		return "overbought_or_breakout"
	case cci.Value < -th.CCI:
		return "oversold_or_breakdown"
	default:
		return "normal_range"
	}
}

var (
	kdjBullish = []Label{"oversold_opportunity", "bullish_crossover_in_oversold", "bullish_crossover"}
	kdjBearish = []Label{"overbought_risk", "bearish_crossover_in_overbought", "bearish_crossover"}
)

// Reversal counts extreme readings across the five oscillators and looks
// for a confirming KDJ cross. bias is the value the BIAS label was taken from.
func (th OscillatorThresholds) Reversal(s OscillatorSignal, bias model.Float) Label {
	var extremes, bullish, bearish int
	count := func(bull, bear bool) {
		switch {
		case bull:
			extremes++
			bullish++
		case bear:
			extremes++
			bearish++
		}
	}
	count(s.RSIStatus == "oversold", s.RSIStatus == "overbought")
	count(oneOf(s.KDJStatus, kdjBullish...), oneOf(s.KDJStatus, kdjBearish...))
	count(s.WilliamsRStatus == "oversold", s.WilliamsRStatus == "overbought")
	count(s.BiasStatus == "high_negative_deviation", s.BiasStatus == "high_positive_deviation")
	count(s.CCIStatus == "oversold_or_breakdown", s.CCIStatus == "overbought_or_breakout")

	if extremes < 2 {
		return "no_significant_signal"
	}

	biasExtreme := bias.Valid && bias.Value <= th.ReversalBias
	switch {
	case oneOf(s.KDJStatus, "bullish_crossover", "bullish_crossover_in_oversold") && biasExtreme:
		return "strong_bullish_reversal"
	case bullish >= 2 && biasExtreme:
		return "moderate_reversal_risk"
	case bearish >= 2 && oneOf(s.KDJStatus, "bearish_crossover", "bearish_crossover_in_overbought"):
		return "strong_bearish_reversal"
	default:
		return "moderate_reversal_risk"
	}
}
