package model

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// Float is a numeric provider field that may be absent
type Float struct {
	Value float64
	Valid bool
}

// F returns a present Float
func F(v float64) Float {
	return Float{Value: v, Valid: true}
}

// Null is the absent Float
var Null = Float{}

// ToFloat converts a decoded JSON cell. NaN, Inf and non-numeric values are absent.
func ToFloat(v any) Float {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return Null
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return Null
		}
		f = p
	default:
		return Null
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null
	}
	return F(f)
}

// Or returns f if present, otherwise fallback
func (f Float) Or(fallback Float) Float {
	if f.Valid {
		return f
	}
	return fallback
}

// MarshalJSON writes null for absent values
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// FactorRow is one daily record of stk_factor_pro (front-adjusted indicators
// plus daily_basic valuation columns the endpoint also returns)
type FactorRow struct {
	TSCode    string `json:"ts_code"`
	TradeDate string `json:"trade_date"`

	// Price and trend
	Close  Float `json:"close_qfq"`
	High   Float `json:"high_qfq"`
	Low    Float `json:"low_qfq"`
	MA5    Float `json:"ma_qfq_5"`
	MA20   Float `json:"ma_qfq_20"`
	MACD   Float `json:"macd_qfq"`
	DIF    Float `json:"macd_dif_qfq"`
	DEA    Float `json:"macd_dea_qfq"`
	MTM    Float `json:"mtm_qfq"`

	// Volume and sentiment
	TurnoverRate  Float `json:"turnover_rate"`
	TurnoverRateF Float `json:"turnover_rate_f"`
	VolumeRatio   Float `json:"volume_ratio"`
	OBV           Float `json:"obv_qfq"`
	AR            Float `json:"brar_ar_qfq"`
	BR            Float `json:"brar_br_qfq"`
	VR            Float `json:"vr_qfq"`
	MFI           Float `json:"mfi_qfq"`
	PSY           Float `json:"psy_qfq"`

	// Valuation
	PE      Float `json:"pe"`
	PETTM   Float `json:"pe_ttm"`
	PB      Float `json:"pb"`
	PS      Float `json:"ps"`
	PSTTM   Float `json:"ps_ttm"`
	DVRatio Float `json:"dv_ratio"`
	DVTTM   Float `json:"dv_ttm"`
	TotalMV Float `json:"total_mv"` // 万元

	// Oscillators
	RSI6  Float `json:"rsi_qfq_6"`
	RSI12 Float `json:"rsi_qfq_12"`
	KDJK  Float `json:"kdj_k_qfq"`
	KDJD  Float `json:"kdj_d_qfq"`
	WR1   Float `json:"wr1_qfq"`
	WR    Float `json:"wr_qfq"`
	Bias1 Float `json:"bias1_qfq"`
	Bias2 Float `json:"bias2_qfq"`
	Bias3 Float `json:"bias3_qfq"`
	CCI   Float `json:"cci_qfq"`

	// Volatility
	ATR       Float `json:"atr_qfq"`
	BollUpper Float `json:"boll_upper_qfq"`
	BollMid   Float `json:"boll_mid_qfq"`
	BollLower Float `json:"boll_lower_qfq"`
	Mass      Float `json:"mass_qfq"`
	KtnUpper  Float `json:"ktn_upper_qfq"`
	KtnDown   Float `json:"ktn_down_qfq"`
	TopDays   Float `json:"topdays"`
	LowDays   Float `json:"lowdays"`
}

// columns maps provider field names to the row's slots
func (r *FactorRow) columns() map[string]*Float {
	return map[string]*Float{
		"close_qfq":       &r.Close,
		"high_qfq":        &r.High,
		"low_qfq":         &r.Low,
		"ma_qfq_5":        &r.MA5,
		"ma_qfq_20":       &r.MA20,
		"macd_qfq":        &r.MACD,
		"macd_dif_qfq":    &r.DIF,
		"macd_dea_qfq":    &r.DEA,
		"mtm_qfq":         &r.MTM,
		"turnover_rate":   &r.TurnoverRate,
		"turnover_rate_f": &r.TurnoverRateF,
		"volume_ratio":    &r.VolumeRatio,
		"obv_qfq":         &r.OBV,
		"brar_ar_qfq":     &r.AR,
		"brar_br_qfq":     &r.BR,
		"vr_qfq":          &r.VR,
		"mfi_qfq":         &r.MFI,
		"psy_qfq":         &r.PSY,
		"pe":              &r.PE,
		"pe_ttm":          &r.PETTM,
		"pb":              &r.PB,
		"ps":              &r.PS,
		"ps_ttm":          &r.PSTTM,
		"dv_ratio":        &r.DVRatio,
		"dv_ttm":          &r.DVTTM,
		"total_mv":        &r.TotalMV,
		"rsi_qfq_6":       &r.RSI6,
		"rsi_qfq_12":      &r.RSI12,
		"kdj_k_qfq":       &r.KDJK,
		"kdj_d_qfq":       &r.KDJD,
		"wr1_qfq":         &r.WR1,
		"wr_qfq":          &r.WR,
		"bias1_qfq":       &r.Bias1,
		"bias2_qfq":       &r.Bias2,
		"bias3_qfq":       &r.Bias3,
		"cci_qfq":         &r.CCI,
		"atr_qfq":         &r.ATR,
		"boll_upper_qfq":  &r.BollUpper,
		"boll_mid_qfq":    &r.BollMid,
		"boll_lower_qfq":  &r.BollLower,
		"mass_qfq":        &r.Mass,
		"ktn_upper_qfq":   &r.KtnUpper,
		"ktn_down_qfq":    &r.KtnDown,
		"topdays":         &r.TopDays,
		"lowdays":         &r.LowDays,
	}
}

// DecodeFactors converts an stk_factor_pro table into rows. Columns the
// table does not carry stay absent.
func DecodeFactors(t *Table) []FactorRow {
	rows := make([]FactorRow, t.Len())
	for i := range rows {
		r := &rows[i]
		r.TSCode = t.String(i, "ts_code")
		r.TradeDate = t.String(i, "trade_date")
		for name, slot := range r.columns() {
			*slot = t.Float(i, name)
		}
	}
	return rows
}

// SortFactors orders rows by trade date ascending
func SortFactors(rows []FactorRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TradeDate < rows[j].TradeDate
	})
}

// IndexOfDate returns the position of the row for date, or -1
func IndexOfDate(rows []FactorRow, date string) int {
	for i := range rows {
		if rows[i].TradeDate == date {
			return i
		}
	}
	return -1
}
