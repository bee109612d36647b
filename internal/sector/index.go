package sector

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"tushare-mcp/pkg/model"
)

// IndexValuation is a broad index's current pe_ttm/pb and their standing
// over the trailing ten years
type IndexValuation struct {
	TSCode             string  `json:"ts_code"`
	Name               string  `json:"name"`
	CurrentPETTM       float64 `json:"current_pe_ttm"`
	CurrentPB          float64 `json:"current_pb"`
	PETTMPercentile10Y float64 `json:"pe_ttm_percentile_10y"`
	PBPercentile10Y    float64 `json:"pb_percentile_10y"`
	ValuationStatus    Status  `json:"valuation_status"`
}

// IndexValuations evaluates the broad indices as of asOf. Indices without
// usable history are left out.
func (a *Analyzer) IndexValuations(ctx context.Context, asOf time.Time) ([]IndexValuation, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	indices := GetUniverse(UniverseBroad)
	start := asOf.AddDate(-a.th.IndexYears, 0, 0)

	found := make([]*IndexValuation, len(indices))
	err := a.run(ctx, len(indices), a.progress, func(ctx context.Context, i int) error {
		idx := indices[i]
		t, err := a.src.IndexDailyBasic(ctx, idx.TSCode, start, asOf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Str("index", idx.TSCode).Msg("index_dailybasic history unavailable")
			return nil
		}
		if v, ok := a.th.EvaluateIndex(idx, t); ok {
			found[i] = &v
		} else {
			log.Warn().Str("index", idx.TSCode).Msg("no pe_ttm/pb history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]IndexValuation, 0, len(found))
	for _, v := range found {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

// EvaluateIndex classifies one index from its index_dailybasic history.
// Both ratios must be in the same tail for a verdict.
func (th Thresholds) EvaluateIndex(idx Index, t *model.Table) (IndexValuation, bool) {
	var pe, pb []float64
	for i := 0; i < t.Len(); i++ {
		p, b := t.Float(i, "pe_ttm"), t.Float(i, "pb")
		if !p.Valid || !b.Valid {
			continue
		}
		pe = append(pe, p.Value)
		pb = append(pb, b.Value)
	}
	if len(pe) == 0 {
		return IndexValuation{}, false
	}

	curPE, curPB := pe[len(pe)-1], pb[len(pb)-1]
	pePct, pbPct := percentileBelow(pe, curPE), percentileBelow(pb, curPB)

	v := IndexValuation{
		TSCode:             idx.TSCode,
		Name:               idx.Name,
		CurrentPETTM:       round(curPE, 2),
		CurrentPB:          round(curPB, 2),
		PETTMPercentile10Y: round(pePct, 1),
		PBPercentile10Y:    round(pbPct, 1),
		ValuationStatus:    StatusNeutral,
	}
	switch {
	case pePct < th.IndexUndervalued && pbPct < th.IndexUndervalued:
		v.ValuationStatus = StatusUndervalued
	case pePct > th.IndexOvervalued && pbPct > th.IndexOvervalued:
		v.ValuationStatus = StatusOvervalued
	}
	return v, true
}
