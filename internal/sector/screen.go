package sector

import (
	"context"
	"sort"
	"time"

	"tushare-mcp/internal/signals"
	"tushare-mcp/pkg/model"
)

// ScreenRow joins an industry's valuation with its profit growth
type ScreenRow struct {
	SectorValuation
	ProfitYoYWeighted model.Float `json:"profit_yoy_weighted"`
	ValidStockCount   int         `json:"valid_stock_count"`
	DataQualityFlag   string      `json:"data_quality_flag"`
}

// ScreenSummary describes the joined table
type ScreenSummary struct {
	TotalIndustries int            `json:"total_industries"`
	WithGrowthData  int            `json:"with_growth_data"`
	MeanGrowth      model.Float    `json:"mean_growth"`
	MedianGrowth    model.Float    `json:"median_growth"`
	StatusCounts    map[Status]int `json:"status_counts"`
}

// Screen is the combined valuation and growth view with the standard
// screens applied
type Screen struct {
	Industries                []ScreenRow   `json:"industries"`
	HighGrowth                []ScreenRow   `json:"high_growth"`
	ValueGrowth               []ScreenRow   `json:"value_growth"`
	Risk                      []ScreenRow   `json:"risk"`
	HighGrowthReasonableValue []ScreenRow   `json:"high_growth_reasonable_value"`
	SteadyGrowth              []ScreenRow   `json:"steady_growth"`
	Turnaround                []ScreenRow   `json:"turnaround"`
	Summary                   ScreenSummary `json:"summary"`
}

// Screen runs the valuation and growth analyses and combines them
func (a *Analyzer) Screen(ctx context.Context, asOf time.Time) (*Screen, error) {
	vals, err := a.SectorValuations(ctx, asOf)
	if err != nil {
		return nil, err
	}
	growth, err := a.AllIndustryGrowth(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return a.th.BuildScreen(vals, growth), nil
}

// BuildScreen left-joins growth onto valuations by industry code. Rows
// without growth never pass a growth screen.
func (th Thresholds) BuildScreen(vals []SectorValuation, growth []IndustryGrowth) *Screen {
	byCode := make(map[string]IndustryGrowth, len(growth))
	for _, g := range growth {
		byCode[g.IndustryCode] = g
	}

	s := &Screen{Industries: make([]ScreenRow, 0, len(vals))}
	for _, v := range vals {
		row := ScreenRow{SectorValuation: v}
		if g, ok := byCode[v.TSCode]; ok {
			row.ProfitYoYWeighted = g.ProfitYoYWeighted
			row.ValidStockCount = g.ValidStockCount
			row.DataQualityFlag = g.DataQualityFlag
		}
		s.Industries = append(s.Industries, row)
	}

	s.HighGrowth = filter(s.Industries, true, func(g float64, st Status) bool {
		return g > th.HighGrowth
	})
	s.ValueGrowth = filter(s.Industries, true, func(g float64, st Status) bool {
		return st == StatusUndervalued && g > 0
	})
	s.Risk = filter(s.Industries, false, func(g float64, st Status) bool {
		return st == StatusOvervalued && g < 0
	})
	s.HighGrowthReasonableValue = filter(s.Industries, true, func(g float64, st Status) bool {
		return g > th.StrongGrowth && (st == StatusUndervalued || st == StatusNeutral)
	})
	s.SteadyGrowth = filter(s.Industries, true, func(g float64, st Status) bool {
		return g > th.SteadyGrowthMin && g < th.SteadyGrowthMax && st == StatusNeutral
	})
	s.Turnaround = filter(s.Industries, true, func(g float64, st Status) bool {
		return g > 0 && st == StatusUndervalued
	})

	s.Summary = summarize(s.Industries)
	return s
}

// filter keeps rows with growth data matching keep, optionally ordered by
// growth descending
func filter(rows []ScreenRow, byGrowth bool, keep func(growth float64, st Status) bool) []ScreenRow {
	out := []ScreenRow{}
	for _, r := range rows {
		if r.ProfitYoYWeighted.Valid && keep(r.ProfitYoYWeighted.Value, r.ValuationStatus) {
			out = append(out, r)
		}
	}
	if byGrowth {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ProfitYoYWeighted.Value > out[j].ProfitYoYWeighted.Value
		})
	}
	return out
}

func summarize(rows []ScreenRow) ScreenSummary {
	sum := ScreenSummary{
		TotalIndustries: len(rows),
		StatusCounts:    map[Status]int{},
	}
	var growth []float64
	for _, r := range rows {
		sum.StatusCounts[r.ValuationStatus]++
		if r.ProfitYoYWeighted.Valid {
			growth = append(growth, r.ProfitYoYWeighted.Value)
		}
	}
	sum.WithGrowthData = len(growth)
	if len(growth) > 0 {
		sum.MeanGrowth = model.F(round(signals.Mean(growth), 2))
		sum.MedianGrowth = model.F(round(signals.Percentile(growth, 50), 2))
	}
	return sum
}
