package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tushare-mcp/pkg/model"
)

// rising builds n history rows where set assigns 1..n to one field
func rising(n int, set func(r *model.FactorRow, v float64)) []model.FactorRow {
	rows := make([]model.FactorRow, n)
	for i := range rows {
		set(&rows[i], float64(i+1))
	}
	return rows
}

func TestPEPercentile(t *testing.T) {
	th := DefaultThresholds().Valuation
	hist := rising(100, func(r *model.FactorRow, v float64) { r.PETTM = f(v) })

	// p30 = 30.7, p70 = 70.3
	assert.Equal(t, Label("expensive"), th.PE(model.FactorRow{PETTM: f(80)}, hist))
	assert.Equal(t, Label("cheap"), th.PE(model.FactorRow{PETTM: f(20)}, hist))
	assert.Equal(t, Label("fair"), th.PE(model.FactorRow{PETTM: f(50)}, hist))
}

func TestPEFallbacks(t *testing.T) {
	th := DefaultThresholds().Valuation

	t.Run("static pe history", func(t *testing.T) {
		hist := rising(100, func(r *model.FactorRow, v float64) { r.PE = f(v) })
		assert.Equal(t, Label("cheap"), th.PE(model.FactorRow{PE: f(20)}, hist))
	})

	t.Run("absolute when history is short", func(t *testing.T) {
		hist := rising(99, func(r *model.FactorRow, v float64) { r.PETTM = f(v) })
		assert.Equal(t, Label("expensive"), th.PE(model.FactorRow{PETTM: f(80)}, hist))
		assert.Equal(t, Label("fair"), th.PE(model.FactorRow{PETTM: f(20)}, hist))
		assert.Equal(t, Label("cheap"), th.PE(model.FactorRow{PETTM: f(10)}, hist))
	})

	t.Run("negative history ignored", func(t *testing.T) {
		hist := rising(100, func(r *model.FactorRow, v float64) { r.PETTM = f(-v) })
		assert.Equal(t, Label("cheap"), th.PE(model.FactorRow{PETTM: f(10)}, hist))
	})

	t.Run("unprofitable", func(t *testing.T) {
		assert.Equal(t, Label("unprofitable"), th.PE(model.FactorRow{PETTM: f(-3)}, nil))
		assert.Equal(t, Label("unprofitable"), th.PE(model.FactorRow{PE: f(0)}, nil))
	})

	t.Run("missing", func(t *testing.T) {
		assert.Equal(t, Label(""), th.PE(model.FactorRow{}, nil))
	})
}

func TestPB(t *testing.T) {
	th := DefaultThresholds().Valuation
	hist := rising(100, func(r *model.FactorRow, v float64) { r.PB = f(v / 10) })

	tests := []struct {
		name string
		pb   float64
		hist []model.FactorRow
		want Label
	}{
		{"deep discount wins", 0.4, hist, "deep_discount"},
		{"extreme premium wins", 11, hist, "extreme_premium"},
		{"above p70", 8, hist, "high_premium"},
		{"below p30", 2, hist, "discount"},
		{"between", 5, hist, "reasonable"},
		{"absolute deep discount", 0.4, nil, "deep_discount"},
		{"absolute high premium", 6, nil, "high_premium"},
		{"absolute discount", 0.8, nil, "discount"},
		{"absolute reasonable", 3, nil, "reasonable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, th.PB(model.FactorRow{PB: f(tt.pb)}, tt.hist))
		})
	}
	assert.Equal(t, Label(""), th.PB(model.FactorRow{}, hist))
}

func TestPS(t *testing.T) {
	th := DefaultThresholds().Valuation
	hist := rising(100, func(r *model.FactorRow, v float64) { r.PSTTM = f(v) })

	assert.Equal(t, Label("overvalued_revenue"), th.PS(model.FactorRow{PSTTM: f(80)}, hist))
	assert.Equal(t, Label("undervalued_revenue"), th.PS(model.FactorRow{PSTTM: f(20)}, hist))
	assert.Equal(t, Label("fair_revenue"), th.PS(model.FactorRow{PSTTM: f(50)}, hist))

	assert.Equal(t, Label("extremely_high"), th.PS(model.FactorRow{PS: f(25)}, nil))
	assert.Equal(t, Label("reasonable_revenue"), th.PS(model.FactorRow{PS: f(1)}, nil))
	assert.Equal(t, Label("fair_revenue"), th.PS(model.FactorRow{PS: f(10)}, nil))
	assert.Equal(t, Label(""), th.PS(model.FactorRow{}, nil))
}

func TestDividend(t *testing.T) {
	th := DefaultThresholds().Valuation
	assert.Equal(t, Label("very_attractive"), th.Dividend(f(5), null))
	assert.Equal(t, Label("attractive"), th.Dividend(f(3.5), null))
	assert.Equal(t, Label("moderate"), th.Dividend(null, f(1)))
	assert.Equal(t, Label("low_yield"), th.Dividend(f(0.2), f(6)))
	assert.Equal(t, Label("no_dividend"), th.Dividend(null, null))
}

func TestMarketCap(t *testing.T) {
	th := DefaultThresholds().Valuation
	assert.Equal(t, Label("large_cap"), th.MarketCap(f(10_000_000)))
	assert.Equal(t, Label("mid_cap"), th.MarketCap(f(2_000_000)))
	assert.Equal(t, Label("small_cap"), th.MarketCap(f(500_000)))
	assert.Equal(t, Label("unknown"), th.MarketCap(null))
}

func TestValuationSummary(t *testing.T) {
	tests := []struct {
		name string
		sig  ValuationSignal
		want Label
	}{
		{
			"unprofitable first",
			ValuationSignal{PEStatus: "unprofitable", PBStatus: "deep_discount", DividendAttractiveness: "attractive", MarketCapCategory: "large_cap"},
			"unprofitable",
		},
		{
			"undervalued",
			ValuationSignal{PEStatus: "cheap", PBStatus: "reasonable", DividendAttractiveness: "attractive", PSStatus: "fair_revenue", MarketCapCategory: "large_cap"},
			"undervalued",
		},
		{
			"cheap small cap is not undervalued",
			ValuationSignal{PEStatus: "cheap", PBStatus: "reasonable", DividendAttractiveness: "attractive", PSStatus: "fair_revenue", MarketCapCategory: "small_cap"},
			"neutral",
		},
		{
			"overvalued on pe and pb",
			ValuationSignal{PEStatus: "expensive", PBStatus: "high_premium", DividendAttractiveness: "low_yield", PSStatus: "fair_revenue", MarketCapCategory: "large_cap"},
			"overvalued",
		},
		{
			"overvalued small cap on ps",
			ValuationSignal{PEStatus: "fair", PBStatus: "reasonable", DividendAttractiveness: "low_yield", PSStatus: "overvalued_revenue", MarketCapCategory: "small_cap"},
			"overvalued",
		},
		{
			"growth priced",
			ValuationSignal{PEStatus: "expensive", PBStatus: "reasonable", DividendAttractiveness: "low_yield", PSStatus: "fair_revenue", MarketCapCategory: "mid_cap"},
			"growth_priced",
		},
		{
			"speculative",
			ValuationSignal{PEStatus: "expensive", PBStatus: "reasonable", DividendAttractiveness: "no_dividend", PSStatus: "extremely_high", MarketCapCategory: "small_cap"},
			"speculative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValuationSummary(tt.sig))
		})
	}
}

func TestValuationLabelUsesPriorRowsOnly(t *testing.T) {
	th := DefaultThresholds().Valuation
	rows := rising(100, func(r *model.FactorRow, v float64) { r.PETTM = f(v) })
	rows = append(rows, model.FactorRow{
		TSCode: "600000.SH", TradeDate: "20240115",
		PETTM: f(80), PB: f(0.8), DVTTM: f(4), TotalMV: f(30_000_000),
	})

	got := th.Label(rows, len(rows)-1)
	assert.Equal(t, "600000.SH", got.TSCode)
	assert.Equal(t, "20240115", got.TradeDate)
	assert.Equal(t, Label("expensive"), got.PEStatus)
	assert.Equal(t, Label("discount"), got.PBStatus)
	assert.Equal(t, Label("attractive"), got.DividendAttractiveness)
	assert.Equal(t, Label(""), got.PSStatus)
	assert.Equal(t, Label("large_cap"), got.MarketCapCategory)
	assert.Equal(t, Label("undervalued"), got.ValuationSummary)
}
