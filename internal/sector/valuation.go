package sector

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"tushare-mcp/pkg/model"
)

// Status is a valuation verdict
type Status string

const (
	StatusOvervalued  Status = "overvalued"
	StatusNeutral     Status = "neutral"
	StatusUndervalued Status = "undervalued"
	StatusUnknown     Status = "unknown"
)

var statusOrder = map[Status]int{
	StatusOvervalued:  0,
	StatusNeutral:     1,
	StatusUndervalued: 2,
	StatusUnknown:     3,
}

// SectorValuation is one industry's latest PE/PB and where they sit in
// the industry's own history
type SectorValuation struct {
	TSCode          string      `json:"ts_code"`
	Name            string      `json:"name"`
	PELatest        model.Float `json:"pe_latest"`
	PEPercentile    model.Float `json:"pe_percentile"`
	PBLatest        model.Float `json:"pb_latest"`
	PBPercentile    model.Float `json:"pb_percentile"`
	PrimaryMetric   Metric      `json:"primary_metric"`
	ValuationStatus Status      `json:"valuation_status"`
}

// SectorValuations evaluates every level-1 industry as of asOf, ordered
// overvalued, neutral, undervalued, unknown
func (a *Analyzer) SectorValuations(ctx context.Context, asOf time.Time) ([]SectorValuation, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	industries, err := a.Industries(ctx)
	if err != nil {
		return nil, err
	}

	start := asOf.AddDate(-a.th.ValuationYears, 0, 0)
	out := make([]SectorValuation, len(industries))
	err = a.run(ctx, len(industries), a.progress, func(ctx context.Context, i int) error {
		ind := industries[i]
		t, err := a.src.SwDaily(ctx, ind.TSCode, start, asOf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Str("industry", ind.TSCode).Msg("sw_daily history unavailable")
		}
		out[i] = a.th.EvaluateSector(ind, t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	SortByStatus(out)
	return out, nil
}

// EvaluateSector classifies one industry from its sw_daily pe/pb history.
// Rows missing either ratio are ignored; the last remaining row is current.
func (th Thresholds) EvaluateSector(ind Index, t *model.Table) SectorValuation {
	v := SectorValuation{
		TSCode:          ind.TSCode,
		Name:            ind.Name,
		PrimaryMetric:   PrimaryMetric(ind.TSCode),
		ValuationStatus: StatusUnknown,
	}

	var pe, pb []float64
	for i := 0; i < t.Len(); i++ {
		p, b := t.Float(i, "pe"), t.Float(i, "pb")
		if !p.Valid || !b.Valid {
			continue
		}
		pe = append(pe, p.Value)
		pb = append(pb, b.Value)
	}
	if len(pe) == 0 {
		return v
	}

	latestPE, latestPB := pe[len(pe)-1], pb[len(pb)-1]
	v.PELatest = model.F(round(latestPE, 2))
	v.PBLatest = model.F(round(latestPB, 2))
	v.PEPercentile = model.F(percentileAtOrBelow(pe, latestPE))
	v.PBPercentile = model.F(percentileAtOrBelow(pb, latestPB))

	pct := v.PEPercentile
	if v.PrimaryMetric == MetricPB {
		pct = v.PBPercentile
	}
	switch {
	case pct.Value >= th.OvervaluedPercentile:
		v.ValuationStatus = StatusOvervalued
	case pct.Value <= th.UndervaluedPercentile:
		v.ValuationStatus = StatusUndervalued
	default:
		v.ValuationStatus = StatusNeutral
	}
	return v
}

// SortByStatus orders valuations overvalued first, keeping input order
// within a status
func SortByStatus(vs []SectorValuation) {
	sort.SliceStable(vs, func(i, j int) bool {
		return statusOrder[vs[i].ValuationStatus] < statusOrder[vs[j].ValuationStatus]
	})
}

// percentileAtOrBelow is the share of values <= v as a whole percent,
// rounding halves to even
func percentileAtOrBelow(values []float64, v float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	n := 0
	for _, x := range values {
		if x <= v {
			n++
		}
	}
	return math.RoundToEven(float64(n) / float64(len(values)) * 100)
}

// percentileBelow is the share of values < v in percent
func percentileBelow(values []float64, v float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	n := 0
	for _, x := range values {
		if x < v {
			n++
		}
	}
	return float64(n) / float64(len(values)) * 100
}

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
