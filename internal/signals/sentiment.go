package signals

import (
	"context"
	"math"

	"tushare-mcp/pkg/model"
)

// SentimentSignal is the volume and crowd-sentiment label set for one day
type SentimentSignal struct {
	TSCode          string `json:"ts_code"`
	TradeDate       string `json:"trade_date"`
	TurnoverStatus  Label  `json:"turnover_status"`
	VolumeStatus    Label  `json:"volume_status"`
	OBVTrend        Label  `json:"obv_trend"`
	BRARSentiment   Label  `json:"brar_sentiment"`
	VRStatus        Label  `json:"vr_status"`
	MFIPSYStatus    Label  `json:"mfi_psy_status"`
	MarketSentiment Label  `json:"market_sentiment"`
}

// Sentiment labels turnover, volume and sentiment indicators on tradeDate
func (s *Service) Sentiment(ctx context.Context, tsCode, tradeDate string) (*SentimentSignal, error) {
	rows, idx, err := s.history(ctx, tsCode, tradeDate, 1)
	if err != nil {
		return nil, err
	}
	sig := s.th.Sentiment.Label(rows, idx)
	return &sig, nil
}

// Label computes the sentiment labels for rows[idx]
func (th SentimentThresholds) Label(rows []model.FactorRow, idx int) SentimentSignal {
	r := rows[idx]
	prev, hasPrev := previous(rows, idx)

	sig := SentimentSignal{
		TSCode:         r.TSCode,
		TradeDate:      r.TradeDate,
		TurnoverStatus: th.Turnover(r.TurnoverRateF, r.TurnoverRate),
		VolumeStatus:   th.Volume(r.VolumeRatio),
		OBVTrend:       OBVTrend(r.OBV, prev.OBV, hasPrev),
		BRARSentiment:  th.BRAR(r.AR, r.BR),
		VRStatus:       th.VR(r.VR),
		MFIPSYStatus:   th.MFIPSY(r.MFI, r.PSY),
	}
	sig.MarketSentiment = MarketSentiment(sig)
	return sig
}

// Turnover uses free-float turnover, falling back to total turnover
func (th SentimentThresholds) Turnover(freeFloat, total model.Float) Label {
	t := freeFloat.Or(total)
	if !t.Valid {
		return ""
	}
	switch {
	case t.Value >= th.HighTurnover:
		return "high_turnover"
	case t.Value >= th.NormalTurnover:
		return "normal_turnover"
	default:
		return "low_turnover"
	}
}

// Volume classifies the volume ratio
func (th SentimentThresholds) Volume(ratio model.Float) Label {
	if !ratio.Valid {
		return ""
	}
	switch {
	case ratio.Value >= th.VolumeSurge:
		return "volume_surge"
	case ratio.Value >= th.NormalVolume:
		return "normal_volume"
	default:
		return "volume_dry_up"
	}
}

// OBVTrend compares on-balance volume with the previous day
func OBVTrend(cur, prev model.Float, hasPrev bool) Label {
	if !hasPrev || !cur.Valid || !prev.Valid {
		return "data_unavailable"
	}
	switch {
	case cur.Value > prev.Value:
		return "rising"
	case cur.Value < prev.Value:
		return "falling"
	default:
		return "flat"
	}
}

// BRAR classifies the AR/BR popularity pair
func (th SentimentThresholds) BRAR(ar, br model.Float) Label {
	if !ar.Valid || !br.Valid {
		return ""
	}
	a, b := ar.Value, br.Value
	switch {
	case a > th.BRARHigh && b < th.BRARLow:
		return "overly_bullish"
	case b > th.BRARHigh && a < th.BRARLow:
		return "overly_bearish"
	case math.Abs(a-b) < th.BRARNeutralBand:
		return "neutral_sentiment"
	case a > b:
		return "bullish_sentiment"
	default:
		return "bearish_sentiment"
	}
}

// VR classifies the volume ratio indicator
func (th SentimentThresholds) VR(vr model.Float) Label {
	if !vr.Valid {
		return ""
	}
	switch {
	case vr.Value > th.VRBullish:
		return "bullish_volume"
	case vr.Value < th.VRBearish:
		return "bearish_volume"
	default:
		return "neutral_volume"
	}
}

// MFIPSY combines money flow and psychological line into one label,
// e.g. mfi_overbought_psy_neutral
func (th SentimentThresholds) MFIPSY(mfi, psy model.Float) Label {
	if !mfi.Valid && !psy.Valid {
		return "mfi_psy_unavailable"
	}

	m := "mfi_na"
	if mfi.Valid {
		switch {
		case mfi.Value >= th.MFIOverbought:
			m = "mfi_overbought"
		case mfi.Value <= th.MFIOversold:
			m = "mfi_oversold"
		default:
			m = "mfi_neutral"
		}
	}

	p := "psy_na"
	if psy.Valid {
		switch {
		case psy.Value >= th.PSYOverbullish:
			p = "psy_overbullish"
		case psy.Value <= th.PSYOversold:
			p = "psy_oversold"
		default:
			p = "psy_neutral"
		}
	}
	return Label(m + "_" + p)
}

// MarketSentiment aggregates the individual labels into one verdict
func MarketSentiment(s SentimentSignal) Label {
	active := s.TurnoverStatus == "high_turnover" || s.VolumeStatus == "volume_surge"
	switch {
	case active &&
		s.OBVTrend == "rising" &&
		oneOf(s.BRARSentiment, "bullish_sentiment", "overly_bullish") &&
		s.VRStatus == "bullish_volume":
		return "strongly_bullish"
	case active &&
		s.OBVTrend == "falling" &&
		oneOf(s.BRARSentiment, "bearish_sentiment", "overly_bearish") &&
		s.VRStatus == "bearish_volume":
		return "strongly_bearish"
	case s.TurnoverStatus == "low_turnover" &&
		s.VolumeStatus == "volume_dry_up" &&
		oneOf(s.OBVTrend, "flat", "data_unavailable"):
		return "apathetic"
	default:
		return "neutral"
	}
}
