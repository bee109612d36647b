package sector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Index is a tradable index code with its display name
type Index struct {
	TSCode string `json:"ts_code"`
	Name   string `json:"name"`
}

// Metric is the valuation ratio an industry is judged by
type Metric string

const (
	MetricPE Metric = "PE"
	MetricPB Metric = "PB"
)

// Universe names a predefined index list
type Universe string

const (
	UniverseSWL1  Universe = "sw_l1"
	UniverseBroad Universe = "broad"
)

// GetUniverse returns the built-in list for u
func GetUniverse(u Universe) []Index {
	switch u {
	case UniverseSWL1:
		return SWLevel1
	case UniverseBroad:
		return BroadIndices
	default:
		return nil
	}
}

// BroadIndices are the A-share broad-based indices tracked by index valuation
var BroadIndices = []Index{
	{"000001.SH", "上证综指"},
	{"399001.SZ", "深证成指"},
	{"000016.SH", "上证50"},
	{"000905.SH", "中证500"},
	{"399005.SZ", "中小板指"},
	{"399006.SZ", "创业板指"},
}

// SWLevel1 is the Shenwan 2021 level-1 industry list, used when
// index_classify returns nothing
var SWLevel1 = []Index{
	{"801010.SI", "农林牧渔"}, {"801030.SI", "基础化工"}, {"801040.SI", "钢铁"},
	{"801050.SI", "有色金属"}, {"801080.SI", "电子"}, {"801110.SI", "家用电器"},
	{"801120.SI", "食品饮料"}, {"801130.SI", "纺织服饰"}, {"801140.SI", "轻工制造"},
	{"801150.SI", "医药生物"}, {"801160.SI", "公用事业"}, {"801170.SI", "交通运输"},
	{"801180.SI", "房地产"}, {"801200.SI", "商贸零售"}, {"801210.SI", "社会服务"},
	{"801230.SI", "综合"}, {"801710.SI", "建筑材料"}, {"801720.SI", "建筑装饰"},
	{"801730.SI", "电力设备"}, {"801740.SI", "国防军工"}, {"801750.SI", "计算机"},
	{"801760.SI", "传媒"}, {"801770.SI", "通信"}, {"801780.SI", "银行"},
	{"801790.SI", "非银金融"}, {"801880.SI", "汽车"}, {"801890.SI", "机械设备"},
	{"801950.SI", "煤炭"}, {"801960.SI", "石油石化"}, {"801970.SI", "环保"},
	{"801980.SI", "美容护理"},
}

// Asset-heavy, cyclical and financial industries are judged on PB;
// consumer and growth industries on PE.
var primaryMetric = map[string]Metric{
	"801030.SI": MetricPB, "801040.SI": MetricPB, "801050.SI": MetricPB,
	"801160.SI": MetricPB, "801170.SI": MetricPB, "801180.SI": MetricPB,
	"801710.SI": MetricPB, "801720.SI": MetricPB, "801780.SI": MetricPB,
	"801790.SI": MetricPB, "801890.SI": MetricPB, "801950.SI": MetricPB,
	"801960.SI": MetricPB,

	"801010.SI": MetricPE, "801080.SI": MetricPE, "801110.SI": MetricPE,
	"801120.SI": MetricPE, "801130.SI": MetricPE, "801140.SI": MetricPE,
	"801150.SI": MetricPE, "801200.SI": MetricPE, "801210.SI": MetricPE,
	"801230.SI": MetricPE, "801730.SI": MetricPE, "801740.SI": MetricPE,
	"801750.SI": MetricPE, "801760.SI": MetricPE, "801770.SI": MetricPE,
	"801880.SI": MetricPE, "801970.SI": MetricPE, "801980.SI": MetricPE,
}

// PrimaryMetric returns the ratio an industry is judged by (PE by default)
func PrimaryMetric(tsCode string) Metric {
	if m, ok := primaryMetric[tsCode]; ok {
		return m
	}
	return MetricPE
}

// Industries loads the Shenwan level-1 list from index_classify, falling
// back to the built-in list when the provider returns no rows
func (a *Analyzer) Industries(ctx context.Context) ([]Index, error) {
	t, err := a.src.IndexClassify(ctx, "L1", "SW2021")
	if err != nil {
		return nil, fmt.Errorf("loading SW level-1 industries: %w", err)
	}

	industries := make([]Index, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		code := t.String(i, "index_code")
		if code == "" {
			continue
		}
		industries = append(industries, Index{TSCode: code, Name: t.String(i, "industry_name")})
	}

	if len(industries) == 0 {
		log.Warn().Msg("index_classify returned no industries, using built-in SW level-1 list")
		return GetUniverse(UniverseSWL1), nil
	}
	return industries, nil
}

// industryName looks up code in the provider's classification
func (a *Analyzer) industryName(ctx context.Context, code string) string {
	industries, err := a.Industries(ctx)
	if err != nil {
		log.Warn().Err(err).Str("industry", code).Msg("industry name lookup failed")
		return ""
	}
	for _, ind := range industries {
		if ind.TSCode == code {
			return ind.Name
		}
	}
	return ""
}
