package scoring

import "github.com/ftorres/b3score/internal/core"

// direction tells whether a metric scores better above or below its benchmark.
type direction int

const (
	higherIsBetter direction = iota
	lowerIsBetter
)

// metricDirections classifies every benchmarked metric. Valuation multiples
// and leverage ratios reward low readings, everything else rewards high ones.
var metricDirections = map[string]direction{
	"pe_ratio":           lowerIsBetter,
	"pb_ratio":           lowerIsBetter,
	"ev_ebitda":          lowerIsBetter,
	"roe":                higherIsBetter,
	"roa":                higherIsBetter,
	"ebitda_margin":      higherIsBetter,
	"operating_margin":   higherIsBetter,
	"revenue_growth_1y":  higherIsBetter,
	"revenue_growth_3y":  higherIsBetter,
	"earnings_growth_1y": higherIsBetter,
	"debt_to_equity":     lowerIsBetter,
	"debt_to_ebitda":     lowerIsBetter,
	"current_ratio":      higherIsBetter,
}

// sectorBenchmarks holds the reference values each Brazilian sector is scored
// against. Values reflect typical mid-cycle levels for B3 listed companies;
// sectors not listed here use the default table.
var sectorBenchmarks = map[string]map[string]float64{
	core.SectorBancos: {
		"pe_ratio":           8,
		"pb_ratio":           1.2,
		"roe":                18,
		"roa":                1.5,
		"revenue_growth_1y":  8,
		"revenue_growth_3y":  6,
		"earnings_growth_1y": 10,
		"debt_to_equity":     8, // banks are structurally leveraged
		"current_ratio":      1.0,
	},
	core.SectorPetroleo: {
		"pe_ratio":           6,
		"pb_ratio":           1.0,
		"ev_ebitda":          4,
		"roe":                15,
		"roa":                7,
		"ebitda_margin":      35,
		"operating_margin":   25,
		"revenue_growth_1y":  5,
		"revenue_growth_3y":  4,
		"earnings_growth_1y": 5,
		"debt_to_equity":     0.8,
		"debt_to_ebitda":     2.0,
		"current_ratio":      1.2,
	},
	core.SectorMineracao: {
		"pe_ratio":           7,
		"pb_ratio":           1.5,
		"ev_ebitda":          4.5,
		"roe":                18,
		"roa":                9,
		"ebitda_margin":      40,
		"operating_margin":   30,
		"revenue_growth_1y":  5,
		"revenue_growth_3y":  4,
		"earnings_growth_1y": 5,
		"debt_to_equity":     0.5,
		"debt_to_ebitda":     1.5,
		"current_ratio":      1.5,
	},
	core.SectorVarejo: {
		"pe_ratio":           15,
		"pb_ratio":           2.5,
		"ev_ebitda":          8,
		"roe":                12,
		"roa":                5,
		"ebitda_margin":      10,
		"operating_margin":   6,
		"revenue_growth_1y":  10,
		"revenue_growth_3y":  8,
		"earnings_growth_1y": 12,
		"debt_to_equity":     1.0,
		"debt_to_ebitda":     2.5,
		"current_ratio":      1.3,
	},
	core.SectorTecnologia: {
		"pe_ratio":           25,
		"pb_ratio":           4,
		"ev_ebitda":          15,
		"roe":                20,
		"roa":                10,
		"ebitda_margin":      25,
		"operating_margin":   18,
		"revenue_growth_1y":  20,
		"revenue_growth_3y":  18,
		"earnings_growth_1y": 25,
		"debt_to_equity":     0.5,
		"debt_to_ebitda":     1.5,
		"current_ratio":      1.8,
	},
	core.SectorEnergia: {
		"pe_ratio":           10,
		"pb_ratio":           1.8,
		"ev_ebitda":          7,
		"roe":                14,
		"roa":                5,
		"ebitda_margin":      45,
		"operating_margin":   30,
		"revenue_growth_1y":  6,
		"revenue_growth_3y":  5,
		"earnings_growth_1y": 7,
		"debt_to_equity":     1.2,
		"debt_to_ebitda":     3.0,
		"current_ratio":      1.1,
	},
	core.SectorConsumo: {
		"pe_ratio":           18,
		"pb_ratio":           3,
		"ev_ebitda":          10,
		"roe":                15,
		"roa":                7,
		"ebitda_margin":      18,
		"operating_margin":   12,
		"revenue_growth_1y":  8,
		"revenue_growth_3y":  7,
		"earnings_growth_1y": 10,
		"debt_to_equity":     0.8,
		"debt_to_ebitda":     2.0,
		"current_ratio":      1.4,
	},
	core.SectorSaude: {
		"pe_ratio":           20,
		"pb_ratio":           3,
		"ev_ebitda":          12,
		"roe":                16,
		"roa":                8,
		"ebitda_margin":      22,
		"operating_margin":   15,
		"revenue_growth_1y":  12,
		"revenue_growth_3y":  10,
		"earnings_growth_1y": 14,
		"debt_to_equity":     0.7,
		"debt_to_ebitda":     2.0,
		"current_ratio":      1.5,
	},
	core.SectorDefault: {
		"pe_ratio":           12,
		"pb_ratio":           2,
		"ev_ebitda":          8,
		"roe":                15,
		"roa":                6,
		"ebitda_margin":      20,
		"operating_margin":   12,
		"revenue_growth_1y":  8,
		"revenue_growth_3y":  6,
		"earnings_growth_1y": 10,
		"debt_to_equity":     1.0,
		"debt_to_ebitda":     3.0,
		"current_ratio":      1.2,
	},
}

// Benchmarks returns the benchmark table for a sector, falling back to the
// default table for unknown or empty sector names.
func Benchmarks(sector string) map[string]float64 {
	if b, ok := sectorBenchmarks[sector]; ok {
		return b
	}
	return sectorBenchmarks[core.SectorDefault]
}
