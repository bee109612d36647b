package signals

// Thresholds holds every cut-off the label rules use. The defaults are
// the long-standing heuristics; override them in config.yaml.
type Thresholds struct {
	Trend      TrendThresholds      `yaml:"trend"`
	Sentiment  SentimentThresholds  `yaml:"sentiment"`
	Valuation  ValuationThresholds  `yaml:"valuation"`
	Oscillator OscillatorThresholds `yaml:"oscillator"`
	Volatility VolatilityThresholds `yaml:"volatility"`
}

// TrendThresholds configures trend_strength
type TrendThresholds struct {
	StrengthWindow   int     `yaml:"strength_window"`   // rows, including the current one
	StrengthMinRows  int     `yaml:"strength_min_rows"` // below this the absolute ratios apply
	StrongPercentile float64 `yaml:"strong_percentile"`
	WeakPercentile   float64 `yaml:"weak_percentile"`
	StrongRatio      float64 `yaml:"strong_ratio"` // |macd| / close
	WeakRatio        float64 `yaml:"weak_ratio"`
}

// SentimentThresholds configures the sentiment/volume labels
type SentimentThresholds struct {
	HighTurnover    float64 `yaml:"high_turnover"`
	NormalTurnover  float64 `yaml:"normal_turnover"`
	VolumeSurge     float64 `yaml:"volume_surge"`
	NormalVolume    float64 `yaml:"normal_volume"`
	BRARHigh        float64 `yaml:"brar_high"`
	BRARLow         float64 `yaml:"brar_low"`
	BRARNeutralBand float64 `yaml:"brar_neutral_band"`
	VRBullish       float64 `yaml:"vr_bullish"`
	VRBearish       float64 `yaml:"vr_bearish"`
	MFIOverbought   float64 `yaml:"mfi_overbought"`
	MFIOversold     float64 `yaml:"mfi_oversold"`
	PSYOverbullish  float64 `yaml:"psy_overbullish"`
	PSYOversold     float64 `yaml:"psy_oversold"`
}

// ValuationThresholds configures the valuation labels
type ValuationThresholds struct {
	MinHistory             int     `yaml:"min_history"` // observations needed for percentile rules
	LowPercentile          float64 `yaml:"low_percentile"`
	HighPercentile         float64 `yaml:"high_percentile"`
	PEExpensive            float64 `yaml:"pe_expensive"`
	PECheap                float64 `yaml:"pe_cheap"`
	PBDeepDiscount         float64 `yaml:"pb_deep_discount"`
	PBExtremePremium       float64 `yaml:"pb_extreme_premium"`
	PBHighPremium          float64 `yaml:"pb_high_premium"`
	PBDiscount             float64 `yaml:"pb_discount"`
	PSExtreme              float64 `yaml:"ps_extreme"`
	PSReasonable           float64 `yaml:"ps_reasonable"`
	DividendVeryAttractive float64 `yaml:"dividend_very_attractive"`
	DividendAttractive     float64 `yaml:"dividend_attractive"`
	DividendModerate       float64 `yaml:"dividend_moderate"`
	LargeCap               float64 `yaml:"large_cap"` // total_mv, 万元
	MidCap                 float64 `yaml:"mid_cap"`
}

// OscillatorThresholds configures the oscillator labels
type OscillatorThresholds struct {
	RSI6Overbought  float64 `yaml:"rsi6_overbought"`
	RSI6Oversold    float64 `yaml:"rsi6_oversold"`
	RSI12Overbought float64 `yaml:"rsi12_overbought"`
	RSI12Oversold   float64 `yaml:"rsi12_oversold"`
	KDJMid          float64 `yaml:"kdj_mid"`
	KDJOverbought   float64 `yaml:"kdj_overbought"`
	KDJOversold     float64 `yaml:"kdj_oversold"`
	WROverbought    float64 `yaml:"wr_overbought"`
	WROversold      float64 `yaml:"wr_oversold"`
	Bias1           float64 `yaml:"bias1"`
	Bias2           float64 `yaml:"bias2"`
	Bias3           float64 `yaml:"bias3"`
	ReversalBias    float64 `yaml:"reversal_bias"`
	CCI             float64 `yaml:"cci"`
}

// VolatilityThresholds configures the volatility labels
type VolatilityThresholds struct {
	ATRWindow       int     `yaml:"atr_window"`
	ATRMinValid     int     `yaml:"atr_min_valid"`
	ATRHighRatio    float64 `yaml:"atr_high_ratio"`
	ATRLowRatio     float64 `yaml:"atr_low_ratio"`
	ATRHigh         float64 `yaml:"atr_high"`
	ATRLow          float64 `yaml:"atr_low"`
	BandWide        float64 `yaml:"band_wide"`
	BandNarrow      float64 `yaml:"band_narrow"`
	MassHigh        float64 `yaml:"mass_high"`
	MassLow         float64 `yaml:"mass_low"`
	ExtremeDays     float64 `yaml:"extreme_days"`
	ExtremeLookback int     `yaml:"extreme_lookback"`
	NearHighRatio   float64 `yaml:"near_high_ratio"`
}

// DefaultThresholds returns the standard cut-offs
func DefaultThresholds() Thresholds {
	return Thresholds{
		Trend: TrendThresholds{
			StrengthWindow:   20,
			StrengthMinRows:  10,
			StrongPercentile: 75,
			WeakPercentile:   25,
			StrongRatio:      0.01,
			WeakRatio:        0.001,
		},
		Sentiment: SentimentThresholds{
			HighTurnover:    5,
			NormalTurnover:  1,
			VolumeSurge:     2,
			NormalVolume:    0.8,
			BRARHigh:        150,
			BRARLow:         100,
			BRARNeutralBand: 5,
			VRBullish:       150,
			VRBearish:       70,
			MFIOverbought:   80,
			MFIOversold:     20,
			PSYOverbullish:  75,
			PSYOversold:     25,
		},
		Valuation: ValuationThresholds{
			MinHistory:             100,
			LowPercentile:          30,
			HighPercentile:         70,
			PEExpensive:            50,
			PECheap:                15,
			PBDeepDiscount:         0.5,
			PBExtremePremium:       10,
			PBHighPremium:          5,
			PBDiscount:             1,
			PSExtreme:              20,
			PSReasonable:           2,
			DividendVeryAttractive: 5,
			DividendAttractive:     3,
			DividendModerate:       1,
			LargeCap:               10_000_000,
			MidCap:                 2_000_000,
		},
		Oscillator: OscillatorThresholds{
			RSI6Overbought:  70,
			RSI6Oversold:    30,
			RSI12Overbought: 75,
			RSI12Oversold:   25,
			KDJMid:          50,
			KDJOverbought:   80,
			KDJOversold:     20,
			WROverbought:    -20,
			WROversold:      -80,
			Bias1:           5,
			Bias2:           6,
			Bias3:           7,
			ReversalBias:    -4,
			CCI:             100,
		},
		Volatility: VolatilityThresholds{
			ATRWindow:       20,
			ATRMinValid:     15,
			ATRHighRatio:    1.5,
			ATRLowRatio:     0.7,
			ATRHigh:         2.0,
			ATRLow:          0.5,
			BandWide:        0.15,
			BandNarrow:      0.08,
			MassHigh:        27,
			MassLow:         26.5,
			ExtremeDays:     20,
			ExtremeLookback: 20,
			NearHighRatio:   0.98,
		},
	}
}
