package sector

// Thresholds configures the sector and index valuation rules and screens
type Thresholds struct {
	ValuationYears        int     `yaml:"valuation_years"`
	OvervaluedPercentile  float64 `yaml:"overvalued_percentile"` // inclusive
	UndervaluedPercentile float64 `yaml:"undervalued_percentile"`

	IndexYears       int     `yaml:"index_years"`
	IndexOvervalued  float64 `yaml:"index_overvalued"` // exclusive, both pe_ttm and pb
	IndexUndervalued float64 `yaml:"index_undervalued"`

	MaxAbsGrowth float64 `yaml:"max_abs_growth"` // growth rates beyond this are treated as bad data

	HighGrowth      float64 `yaml:"high_growth"`
	StrongGrowth    float64 `yaml:"strong_growth"`
	SteadyGrowthMin float64 `yaml:"steady_growth_min"`
	SteadyGrowthMax float64 `yaml:"steady_growth_max"`
}

// DefaultThresholds returns the standard sector cut-offs
func DefaultThresholds() Thresholds {
	return Thresholds{
		ValuationYears:        5,
		OvervaluedPercentile:  80,
		UndervaluedPercentile: 20,
		IndexYears:            10,
		IndexOvervalued:       80,
		IndexUndervalued:      20,
		MaxAbsGrowth:          1000,
		HighGrowth:            10,
		StrongGrowth:          15,
		SteadyGrowthMin:       5,
		SteadyGrowthMax:       30,
	}
}
