package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tushare-mcp/pkg/model"
)

func atrRows(n int, atr float64, last model.Float) []model.FactorRow {
	rows := make([]model.FactorRow, n)
	for i := range rows {
		rows[i].ATR = f(atr)
	}
	rows[n-1].ATR = last
	return rows
}

func TestATRRelative(t *testing.T) {
	th := DefaultThresholds().Volatility

	// trailing mean includes the current row
	assert.Equal(t, Label("high_volatility"), th.ATR(atrRows(20, 1, f(2)), 19))
	assert.Equal(t, Label("low_volatility"), th.ATR(atrRows(20, 1, f(0.5)), 19))
	assert.Equal(t, Label("normal_volatility"), th.ATR(atrRows(20, 1, f(1)), 19))
	assert.Equal(t, Label(""), th.ATR(atrRows(20, 1, null), 19))
}

func TestATRAbsolute(t *testing.T) {
	th := DefaultThresholds().Volatility

	// short history: 2.0 / 0.5 absolute levels
	assert.Equal(t, Label("high_volatility"), th.ATR(atrRows(5, 1, f(2.5)), 4))
	assert.Equal(t, Label("normal_volatility"), th.ATR(atrRows(5, 1, f(2)), 4))
	assert.Equal(t, Label("low_volatility"), th.ATR(atrRows(5, 1, f(0.4)), 4))

	// a full window with too few valid values also falls back
	rows := atrRows(20, 1, f(1.8))
	for i := 0; i < 10; i++ {
		rows[i].ATR = null
	}
	assert.Equal(t, Label("normal_volatility"), th.ATR(rows, 19))
}

func TestBollinger(t *testing.T) {
	th := DefaultThresholds().Volatility
	band := func(px, upper, mid, lower float64) model.FactorRow {
		return model.FactorRow{Close: f(px), BollUpper: f(upper), BollMid: f(mid), BollLower: f(lower)}
	}

	tests := []struct {
		name string
		row  model.FactorRow
		want Label
	}{
		{"above upper", band(10.6, 10.5, 10, 9.5), "above_upper_band"},
		{"above upper wide", band(11.2, 11, 10, 9), "above_upper_with_wide_band"},
		{"above upper narrow", band(10.4, 10.3, 10, 9.7), "above_upper_with_narrow_band"},
		{"below lower", band(9.5, 10.5, 10, 9.5), "below_lower_band"},
		{"below lower wide", band(8.5, 11, 10, 9), "below_lower_with_wide_band"},
		{"below lower narrow", band(9.6, 10.3, 10, 9.7), "below_lower_with_narrow_band"},
		{"upper half", band(10.2, 10.5, 10, 9.5), "upper_half"},
		{"upper half narrow", band(10.1, 10.3, 10, 9.7), "upper_half_narrow_band"},
		{"lower half", band(9.9, 10.5, 10, 9.5), "lower_half"},
		{"on the mid line", band(10, 10.3, 10, 9.7), "lower_half_narrow_band"},
		{"zero mid", band(1, 1, 0, -1), ""},
		{"missing", model.FactorRow{Close: f(10)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, th.Bollinger(tt.row))
		})
	}
}

func TestMass(t *testing.T) {
	th := DefaultThresholds().Volatility
	assert.Equal(t, Label("mass_reversal_signal"), th.Mass(f(26.8), f(27.5), true))
	assert.Equal(t, Label("high_mass"), th.Mass(f(27.5), f(27.2), true))
	assert.Equal(t, Label("low_mass"), th.Mass(f(26), f(26.1), true))
	assert.Equal(t, Label("reversal_zone"), th.Mass(f(26.8), null, true))
	assert.Equal(t, Label("reversal_zone"), th.Mass(f(26.8), f(28), false))
	assert.Equal(t, Label(""), th.Mass(null, f(28), true))
}

func TestKeltner(t *testing.T) {
	ch := func(px float64) model.FactorRow {
		return model.FactorRow{Close: f(px), KtnUpper: f(11), KtnDown: f(9)}
	}
	assert.Equal(t, Label("above_keltner_upper"), Keltner(ch(11)))
	assert.Equal(t, Label("below_keltner_lower"), Keltner(ch(8.5)))
	assert.Equal(t, Label("within_keltner_channel"), Keltner(ch(10)))
	assert.Equal(t, Label(""), Keltner(model.FactorRow{Close: f(10)}))
}

func TestExtremePriceCounters(t *testing.T) {
	th := DefaultThresholds().Volatility
	one := func(r model.FactorRow) Label { return th.ExtremePrice([]model.FactorRow{r}, 0) }

	assert.Equal(t, Label("recent_new_high"), one(model.FactorRow{TopDays: f(25), LowDays: f(0)}))
	assert.Equal(t, Label("recent_new_low"), one(model.FactorRow{TopDays: f(0), LowDays: f(30)}))
	assert.Equal(t, Label("no_extreme_price"), one(model.FactorRow{TopDays: f(5)}))
	assert.Equal(t, Label("no_extreme_price"), one(model.FactorRow{High: f(100)}))
}

func TestExtremePriceLookback(t *testing.T) {
	th := DefaultThresholds().Volatility
	withLast := func(high, low float64) []model.FactorRow {
		rows := make([]model.FactorRow, 21)
		for i := range rows {
			rows[i] = model.FactorRow{High: f(10), Low: f(9)}
		}
		rows[20] = model.FactorRow{High: f(high), Low: f(low)}
		return rows
	}

	assert.Equal(t, Label("recent_new_high"), th.ExtremePrice(withLast(10.5, 9.5), 20))
	assert.Equal(t, Label("recent_new_low"), th.ExtremePrice(withLast(9.5, 8.5), 20))
	assert.Equal(t, Label("near_new_high"), th.ExtremePrice(withLast(9.9, 9.5), 20))
	assert.Equal(t, Label("no_extreme_price"), th.ExtremePrice(withLast(9.5, 9.2), 20))
	assert.Equal(t, Label("no_extreme_price"), th.ExtremePrice(withLast(10.5, 9.5)[1:], 19))
}

func TestVolatilityRegime(t *testing.T) {
	assert.Equal(t, Label("elevated_volatility"), VolatilityRegime(VolatilitySignal{
		ATRStatus: "high_volatility", BollingerStatus: "above_upper_with_wide_band", ExtremePriceStatus: "recent_new_high",
	}))
	assert.Equal(t, Label("compression_before_breakout"), VolatilityRegime(VolatilitySignal{
		ATRStatus: "low_volatility", BollingerStatus: "upper_half_narrow_band",
	}))
	assert.Equal(t, Label("compression_before_breakout"), VolatilityRegime(VolatilitySignal{
		ATRStatus: "low_volatility", BollingerStatus: "lower_half", MassStatus: "low_mass",
	}))
	assert.Equal(t, Label("normal_volatility"), VolatilityRegime(VolatilitySignal{
		ATRStatus: "high_volatility", BollingerStatus: "upper_half",
	}))
	assert.Equal(t, Label("normal_volatility"), VolatilityRegime(VolatilitySignal{}))
}

func TestRiskWarning(t *testing.T) {
	assert.Equal(t, Label("high_short_term_risk"), RiskWarning(VolatilitySignal{
		ATRStatus: "high_volatility", BollingerStatus: "above_upper_band", ExtremePriceStatus: "recent_new_high",
	}))
	assert.Equal(t, Label("high_short_term_opportunity"), RiskWarning(VolatilitySignal{
		ATRStatus: "high_volatility", BollingerStatus: "below_lower_with_wide_band", ExtremePriceStatus: "recent_new_low",
	}))
	assert.Equal(t, Label("low_risk_consolidation"), RiskWarning(VolatilitySignal{
		ATRStatus: "low_volatility", BollingerStatus: "lower_half_narrow_band",
	}))
	assert.Equal(t, Label("none"), RiskWarning(VolatilitySignal{
		ATRStatus: "normal_volatility", BollingerStatus: "above_upper_band", ExtremePriceStatus: "recent_new_high",
	}))
}

func TestVolatilityLabel(t *testing.T) {
	th := DefaultThresholds().Volatility
	rows := []model.FactorRow{
		{Mass: f(27.4)},
		{
			TSCode: "600519.SH", TradeDate: "20240105",
			Close: f(11.2), ATR: f(2.4),
			BollUpper: f(11), BollMid: f(10), BollLower: f(9),
			Mass: f(26.9), KtnUpper: f(11.1), KtnDown: f(9),
			TopDays: f(60), LowDays: f(0),
		},
	}

	got := th.Label(rows, 1)
	assert.Equal(t, VolatilitySignal{
		TSCode:             "600519.SH",
		Date:               "20240105",
		ATRStatus:          "high_volatility",
		BollingerStatus:    "above_upper_with_wide_band",
		MassStatus:         "mass_reversal_signal",
		KeltnerStatus:      "above_keltner_upper",
		ExtremePriceStatus: "recent_new_high",
		VolatilityRegime:   "elevated_volatility",
		RiskWarning:        "high_short_term_risk",
	}, got)
}
