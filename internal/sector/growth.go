package sector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"tushare-mcp/pkg/model"
)

// Data quality flags reported with industry growth
const (
	FlagNoMemberData    = "no_member_data"
	FlagMemberAPIError  = "member_api_error"
	FlagNoValidData     = "no_valid_data"
	FlagProcessingError = "processing_error"
	FlagMarketCapWeight = "used_market_cap_weight"
	FlagEqualWeight     = "used_equal_weight"
	fallbackSuffix      = "_with_netprofit_fallback"
)

// IndustryGrowth is an industry's market-cap weighted net profit growth
// for the latest published report period
type IndustryGrowth struct {
	IndustryCode      string      `json:"industry_code"`
	IndustryName      string      `json:"industry_name"`
	ProfitYoYWeighted model.Float `json:"profit_yoy_weighted"`
	ValidStockCount   int         `json:"valid_stock_count"`
	TotalStockCount   int         `json:"total_stock_count"`
	DataQualityFlag   string      `json:"data_quality_flag"`
}

// ReportPeriod picks the most recent quarter-end whose reports are
// reliably published by tradeDate
func ReportPeriod(tradeDate time.Time) string {
	y := tradeDate.Year()
	switch m := tradeDate.Month(); {
	case m <= time.March:
		return fmt.Sprintf("%d0930", y-1)
	case m <= time.June:
		return fmt.Sprintf("%d1231", y-1)
	case m <= time.September:
		return fmt.Sprintf("%d0331", y)
	default:
		return fmt.Sprintf("%d0630", y)
	}
}

// IndustryGrowth computes weighted profit growth for one industry
func (a *Analyzer) IndustryGrowth(ctx context.Context, code string, tradeDate time.Time) (*IndustryGrowth, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	ind := Index{TSCode: code, Name: a.industryName(ctx, code)}
	caps := a.marketCaps(ctx, tradeDate)

	g, err := a.industryGrowth(ctx, ind, ReportPeriod(tradeDate), caps)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// AllIndustryGrowth computes weighted profit growth for every level-1
// industry, highest growth first and missing values last
func (a *Analyzer) AllIndustryGrowth(ctx context.Context, tradeDate time.Time) ([]IndustryGrowth, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	industries, err := a.Industries(ctx)
	if err != nil {
		return nil, err
	}
	caps := a.marketCaps(ctx, tradeDate)
	period := ReportPeriod(tradeDate)

	out := make([]IndustryGrowth, len(industries))
	err = a.run(ctx, len(industries), a.progress, func(ctx context.Context, i int) error {
		g, err := a.industryGrowth(ctx, industries[i], period, caps)
		if err != nil {
			return err
		}
		out[i] = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	SortByGrowth(out)
	return out, nil
}

// SortByGrowth orders by weighted growth descending, missing values last
func SortByGrowth(gs []IndustryGrowth) {
	sort.SliceStable(gs, func(i, j int) bool {
		a, b := gs[i].ProfitYoYWeighted, gs[j].ProfitYoYWeighted
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Value > b.Value
	})
}

// marketCaps maps ts_code to total_mv on the last open day at or before
// tradeDate. On failure every member falls back to equal weight.
func (a *Analyzer) marketCaps(ctx context.Context, tradeDate time.Time) map[string]float64 {
	caps := map[string]float64{}

	day, err := a.src.LastTradeDate(ctx, tradeDate)
	if err != nil {
		log.Warn().Err(err).Msg("trade calendar unavailable, using equal weights")
		return caps
	}
	t, err := a.src.DailyBasic(ctx, day)
	if err != nil {
		log.Warn().Err(err).Str("trade_date", day).Msg("daily_basic unavailable, using equal weights")
		return caps
	}
	for i := 0; i < t.Len(); i++ {
		if mv := t.Float(i, "total_mv"); mv.Valid {
			caps[t.String(i, "ts_code")] = mv.Value
		}
	}
	return caps
}

// memberGrowth is one constituent's usable growth rate
type memberGrowth struct {
	growth   float64
	weight   float64
	fallback bool
	ok       bool
}

// industryGrowth only returns an error when the context ends; provider
// failures are reported through the data quality flag
func (a *Analyzer) industryGrowth(ctx context.Context, ind Index, period string, caps map[string]float64) (IndustryGrowth, error) {
	res := IndustryGrowth{
		IndustryCode: ind.TSCode,
		IndustryName: ind.Name,
	}

	members, err := a.src.IndexMemberAll(ctx, ind.TSCode)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		log.Warn().Err(err).Str("industry", ind.TSCode).Msg("index_member_all failed")
		res.DataQualityFlag = FlagMemberAPIError
		return res, nil
	}
	if members.Len() == 0 {
		res.DataQualityFlag = FlagNoMemberData
		return res, nil
	}
	if members.Column("ts_code") < 0 {
		res.DataQualityFlag = FlagProcessingError
		return res, nil
	}

	codes := make([]string, members.Len())
	for i := range codes {
		codes[i] = members.String(i, "ts_code")
	}
	res.TotalStockCount = len(codes)

	results := make([]memberGrowth, len(codes))
	err = a.run(ctx, len(codes), nil, func(ctx context.Context, i int) error {
		m, err := a.memberGrowth(ctx, codes[i], period)
		if err != nil {
			return err
		}
		m.weight = weight(caps, codes[i])
		results[i] = m
		return nil
	})
	if err != nil {
		return res, err
	}

	var valid []memberGrowth
	fallback := false
	for _, m := range results {
		fallback = fallback || m.fallback
		if m.ok {
			valid = append(valid, m)
		}
	}
	if len(valid) == 0 {
		res.DataQualityFlag = FlagNoValidData
		return res, nil
	}

	res.ProfitYoYWeighted = model.F(weightedMean(valid))
	res.ValidStockCount = len(valid)
	res.DataQualityFlag = qualityFlag(valid, fallback)

	log.Debug().
		Str("industry", ind.TSCode).
		Str("period", period).
		Int("members", res.TotalStockCount).
		Int("valid", res.ValidStockCount).
		Msg("industry growth computed")
	return res, nil
}

// memberGrowth reads the first fina_indicator record for the period,
// preferring growth net of non-recurring items
func (a *Analyzer) memberGrowth(ctx context.Context, tsCode, period string) (memberGrowth, error) {
	t, err := a.src.FinaIndicator(ctx, tsCode, period)
	if err != nil {
		if ctx.Err() != nil {
			return memberGrowth{}, ctx.Err()
		}
		log.Debug().Err(err).Str("ts_code", tsCode).Msg("fina_indicator failed")
		return memberGrowth{}, nil
	}
	if t.Len() == 0 {
		return memberGrowth{}, nil
	}

	m := memberGrowth{}
	switch dt, np := t.Float(0, "dt_netprofit_yoy"), t.Float(0, "netprofit_yoy"); {
	case dt.Valid:
		m.growth = dt.Value
	case np.Valid:
		m.growth, m.fallback = np.Value, true
	default:
		return memberGrowth{}, nil
	}

	if math.Abs(m.growth) > a.th.MaxAbsGrowth {
		log.Debug().Str("ts_code", tsCode).Float64("growth", m.growth).Msg("growth rate out of range")
		// the fallback still counts toward the quality flag
		return memberGrowth{fallback: m.fallback}, nil
	}
	m.ok = true
	return m, nil
}

// weight is the member's total market value, or 1 when unknown
func weight(caps map[string]float64, tsCode string) float64 {
	if mv, ok := caps[tsCode]; ok && mv > 0 && !math.IsNaN(mv) {
		return mv
	}
	return 1
}

func weightedMean(ms []memberGrowth) float64 {
	sum, total := decimal.Zero, decimal.Zero
	for _, m := range ms {
		w := decimal.NewFromFloat(m.weight)
		sum = sum.Add(decimal.NewFromFloat(m.growth).Mul(w))
		total = total.Add(w)
	}
	f, _ := sum.Div(total).Round(2).Float64()
	return f
}

// qualityFlag reports market-cap weighting when more than half the members
// carried a real market value
func qualityFlag(ms []memberGrowth, fallback bool) string {
	capped := 0
	for _, m := range ms {
		if m.weight > 1 {
			capped++
		}
	}
	flag := FlagEqualWeight
	if float64(capped) > float64(len(ms))*0.5 {
		flag = FlagMarketCapWeight
	}
	if fallback {
		flag += fallbackSuffix
	}
	return flag
}
