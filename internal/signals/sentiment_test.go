package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tushare-mcp/pkg/model"
)

func TestTurnover(t *testing.T) {
	th := DefaultThresholds().Sentiment
	tests := []struct {
		name      string
		freeFloat model.Float
		total     model.Float
		want      Label
	}{
		{"high", f(5), null, "high_turnover"},
		{"normal", f(1), null, "normal_turnover"},
		{"low", f(0.99), null, "low_turnover"},
		{"free float preferred", f(0.5), f(8), "low_turnover"},
		{"falls back to total", null, f(6), "high_turnover"},
		{"both missing", null, null, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, th.Turnover(tt.freeFloat, tt.total))
		})
	}
}

func TestVolume(t *testing.T) {
	th := DefaultThresholds().Sentiment
	assert.Equal(t, Label("volume_surge"), th.Volume(f(2)))
	assert.Equal(t, Label("normal_volume"), th.Volume(f(0.8)))
	assert.Equal(t, Label("volume_dry_up"), th.Volume(f(0.79)))
	assert.Equal(t, Label(""), th.Volume(null))
}

func TestOBVTrend(t *testing.T) {
	assert.Equal(t, Label("rising"), OBVTrend(f(110), f(100), true))
	assert.Equal(t, Label("falling"), OBVTrend(f(90), f(100), true))
	assert.Equal(t, Label("flat"), OBVTrend(f(100), f(100), true))
	assert.Equal(t, Label("data_unavailable"), OBVTrend(f(100), f(90), false))
	assert.Equal(t, Label("data_unavailable"), OBVTrend(f(100), null, true))
	assert.Equal(t, Label("data_unavailable"), OBVTrend(null, f(90), true))
}

func TestBRAR(t *testing.T) {
	th := DefaultThresholds().Sentiment
	tests := []struct {
		name   string
		ar, br float64
		want   Label
	}{
		{"overly bullish", 160, 90, "overly_bullish"},
		{"overly bearish", 90, 160, "overly_bearish"},
		{"neutral band", 102, 99, "neutral_sentiment"},
		{"bullish", 120, 100, "bullish_sentiment"},
		{"bearish", 100, 120, "bearish_sentiment"},
		{"band edge is directional", 105, 100, "bullish_sentiment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, th.BRAR(f(tt.ar), f(tt.br)))
		})
	}
	assert.Equal(t, Label(""), th.BRAR(f(100), null))
}

func TestVR(t *testing.T) {
	th := DefaultThresholds().Sentiment
	assert.Equal(t, Label("bullish_volume"), th.VR(f(151)))
	assert.Equal(t, Label("neutral_volume"), th.VR(f(150)))
	assert.Equal(t, Label("neutral_volume"), th.VR(f(70)))
	assert.Equal(t, Label("bearish_volume"), th.VR(f(69)))
	assert.Equal(t, Label(""), th.VR(null))
}

func TestMFIPSY(t *testing.T) {
	th := DefaultThresholds().Sentiment
	tests := []struct {
		name     string
		mfi, psy model.Float
		want     Label
	}{
		{"both extreme", f(80), f(75), "mfi_overbought_psy_overbullish"},
		{"both low", f(20), f(25), "mfi_oversold_psy_oversold"},
		{"neutral", f(50), f(50), "mfi_neutral_psy_neutral"},
		{"mfi missing", null, f(50), "mfi_na_psy_neutral"},
		{"psy missing", f(85), null, "mfi_overbought_psy_na"},
		{"both missing", null, null, "mfi_psy_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, th.MFIPSY(tt.mfi, tt.psy))
		})
	}
}

func TestMarketSentiment(t *testing.T) {
	tests := []struct {
		name string
		sig  SentimentSignal
		want Label
	}{
		{
			"strongly bullish",
			SentimentSignal{TurnoverStatus: "normal_turnover", VolumeStatus: "volume_surge", OBVTrend: "rising", BRARSentiment: "overly_bullish", VRStatus: "bullish_volume"},
			"strongly_bullish",
		},
		{
			"strongly bearish",
			SentimentSignal{TurnoverStatus: "high_turnover", VolumeStatus: "normal_volume", OBVTrend: "falling", BRARSentiment: "bearish_sentiment", VRStatus: "bearish_volume"},
			"strongly_bearish",
		},
		{
			"bearish needs activity",
			SentimentSignal{TurnoverStatus: "normal_turnover", VolumeStatus: "normal_volume", OBVTrend: "falling", BRARSentiment: "bearish_sentiment", VRStatus: "bearish_volume"},
			"neutral",
		},
		{
			"apathetic",
			SentimentSignal{TurnoverStatus: "low_turnover", VolumeStatus: "volume_dry_up", OBVTrend: "data_unavailable"},
			"apathetic",
		},
		{
			"neutral",
			SentimentSignal{TurnoverStatus: "low_turnover", VolumeStatus: "volume_dry_up", OBVTrend: "rising"},
			"neutral",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MarketSentiment(tt.sig))
		})
	}
}

func TestSentimentLabel(t *testing.T) {
	th := DefaultThresholds().Sentiment
	rows := []model.FactorRow{
		{TSCode: "000001.SZ", TradeDate: "20240112", OBV: f(1000)},
		{
			TSCode: "000001.SZ", TradeDate: "20240115",
			TurnoverRateF: f(6), VolumeRatio: f(2.5), OBV: f(1200),
			AR: f(130), BR: f(110), VR: f(180), MFI: f(60), PSY: f(50),
		},
	}

	got := th.Label(rows, 1)
	assert.Equal(t, SentimentSignal{
		TSCode:          "000001.SZ",
		TradeDate:       "20240115",
		TurnoverStatus:  "high_turnover",
		VolumeStatus:    "volume_surge",
		OBVTrend:        "rising",
		BRARSentiment:   "bullish_sentiment",
		VRStatus:        "bullish_volume",
		MFIPSYStatus:    "mfi_neutral_psy_neutral",
		MarketSentiment: "strongly_bullish",
	}, got)
}
