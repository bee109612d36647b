package sector

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tushare-mcp/pkg/model"
)

func codes(rows []ScreenRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.TSCode
	}
	return out
}

func TestBuildScreen(t *testing.T) {
	vals := []SectorValuation{
		{TSCode: "A", ValuationStatus: StatusOvervalued},
		{TSCode: "B", ValuationStatus: StatusNeutral},
		{TSCode: "E", ValuationStatus: StatusNeutral},
		{TSCode: "C", ValuationStatus: StatusUndervalued},
		{TSCode: "D", ValuationStatus: StatusUndervalued},
		{TSCode: "F", ValuationStatus: StatusUnknown},
	}
	growth := []IndustryGrowth{
		{IndustryCode: "F", ProfitYoYWeighted: model.F(40), DataQualityFlag: FlagMarketCapWeight},
		{IndustryCode: "B", ProfitYoYWeighted: model.F(20), ValidStockCount: 30},
		{IndustryCode: "C", ProfitYoYWeighted: model.F(12)},
		{IndustryCode: "E", ProfitYoYWeighted: model.F(3)},
		{IndustryCode: "A", ProfitYoYWeighted: model.F(-5)},
		{IndustryCode: "G", ProfitYoYWeighted: model.F(99)},
	}

	s := DefaultThresholds().BuildScreen(vals, growth)

	assert.Equal(t, []string{"A", "B", "E", "C", "D", "F"}, codes(s.Industries))
	assert.Equal(t, 30, s.Industries[1].ValidStockCount)
	assert.False(t, s.Industries[4].ProfitYoYWeighted.Valid)

	assert.Equal(t, []string{"F", "B", "C"}, codes(s.HighGrowth))
	assert.Equal(t, []string{"C"}, codes(s.ValueGrowth))
	assert.Equal(t, []string{"A"}, codes(s.Risk))
	assert.Equal(t, []string{"B"}, codes(s.HighGrowthReasonableValue))
	assert.Equal(t, []string{"B"}, codes(s.SteadyGrowth))
	assert.Equal(t, []string{"C"}, codes(s.Turnaround))

	assert.Equal(t, ScreenSummary{
		TotalIndustries: 6,
		WithGrowthData:  5,
		MeanGrowth:      model.F(14),
		MedianGrowth:    model.F(12),
		StatusCounts: map[Status]int{
			StatusOvervalued:  1,
			StatusNeutral:     2,
			StatusUndervalued: 2,
			StatusUnknown:     1,
		},
	}, s.Summary)
}

func TestBuildScreenEmptyListsEncodeAsArrays(t *testing.T) {
	s := DefaultThresholds().BuildScreen(nil, nil)
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, []any{}, decoded["risk"])
	assert.Nil(t, decoded["summary"].(map[string]any)["mean_growth"])
}

func TestScreenRowJSONIsFlat(t *testing.T) {
	row := ScreenRow{
		SectorValuation:   SectorValuation{TSCode: "801080.SI", Name: "电子", ValuationStatus: StatusNeutral, PrimaryMetric: MetricPE},
		ProfitYoYWeighted: model.F(12.5),
	}
	b, err := json.Marshal(row)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "801080.SI", decoded["ts_code"])
	assert.Equal(t, 12.5, decoded["profit_yoy_weighted"])
	assert.Nil(t, decoded["pe_latest"])
}

func TestScreen(t *testing.T) {
	src := growthSource()
	src.swDaily = map[string]*model.Table{
		"801080.SI": ratios(swFields, "801080.SI",
			[2]any{20.0, 1.0}, [2]any{30.0, 1.0}, [2]any{40.0, 1.0}, [2]any{50.0, 1.0}, [2]any{60.0, 1.0}, [2]any{10.0, 1.0}),
	}

	s, err := NewAnalyzer(src, DefaultThresholds(), 2, 0).Screen(context.Background(), date("20241110"))
	require.NoError(t, err)
	require.Len(t, s.Industries, 1)

	row := s.Industries[0]
	assert.Equal(t, StatusUndervalued, row.ValuationStatus)
	assert.Equal(t, model.F(12.5), row.ProfitYoYWeighted)
	assert.Equal(t, []string{"801080.SI"}, codes(s.HighGrowth))
	assert.Equal(t, []string{"801080.SI"}, codes(s.ValueGrowth))
	assert.Equal(t, []string{"801080.SI"}, codes(s.Turnaround))
}
