package stats

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Round2 rounds a dollar figure to cents.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Percentile picks the nearest-rank element of an ascending slice:
// index floor(n*p/100), clamped to the last element. No interpolation.
func Percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := len(sorted) * p / 100
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return Round2(sorted[idx])
}

// ConfigKey labels a configuration size, e.g. "8x".
func ConfigKey(gpuCount int) string {
	return fmt.Sprintf("%dx", gpuCount)
}

// Valid drops unpriced offerings and offerings without GPUs.
func Valid(configs []Configuration) []Configuration {
	out := make([]Configuration, 0, len(configs))
	for _, c := range configs {
		if !c.PricePerHour.Finite() || c.GPUCount <= 0 {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Aggregate summarises the priced configurations. ok is false when nothing
// priced remains.
func Aggregate(configs []Configuration) (Summary, bool) {
	valid := Valid(configs)
	if len(valid) == 0 {
		return Summary{}, false
	}

	prices := make([]float64, len(valid))
	for i, c := range valid {
		prices[i] = c.PricePerGPU()
	}
	sort.Float64s(prices)

	return Summary{
		PriceStats: PriceStats{
			Min:    Round2(prices[0]),
			P10:    Percentile(prices, 10),
			P25:    Percentile(prices, 25),
			Median: Percentile(prices, 50),
			P75:    Percentile(prices, 75),
			P90:    Percentile(prices, 90),
			Max:    Round2(prices[len(prices)-1]),
			Mean:   Round2(mean(prices)),
		},
		Availability: countAvailability(valid),
		ByProvider:   byProvider(valid),
		ByConfig:     byConfig(valid),
	}, true
}

func countAvailability(configs []Configuration) Availability {
	a := Availability{Total: len(configs)}
	for _, c := range configs {
		switch c.StockStatus {
		case StockAvailable:
			a.Available++
		case StockLow:
			a.Low++
		case StockMedium:
			a.Medium++
		case StockHigh:
			a.High++
		}
	}
	return a
}

func byProvider(configs []Configuration) map[string]ProviderStats {
	groups := make(map[string][]float64)
	for _, c := range configs {
		groups[c.Provider] = append(groups[c.Provider], c.PricePerGPU())
	}

	out := make(map[string]ProviderStats, len(groups))
	for provider, prices := range groups {
		out[provider] = ProviderStats{
			Count: len(prices),
			Min:   Round2(minOf(prices)),
			Avg:   Round2(mean(prices)),
		}
	}
	return out
}

func byConfig(configs []Configuration) map[string]ConfigStats {
	groups := make(map[int][]Configuration)
	for _, c := range configs {
		groups[c.GPUCount] = append(groups[c.GPUCount], c)
	}

	out := make(map[string]ConfigStats, len(groups))
	for count, group := range groups {
		best := group[0]
		perGPU := make([]float64, len(group))
		for i, c := range group {
			perGPU[i] = c.PricePerGPU()
			// strict less keeps the first of equal prices
			if perGPU[i] < best.PricePerGPU() {
				best = c
			}
		}
		avg := mean(perGPU)

		out[ConfigKey(count)] = ConfigStats{
			Count:     len(group),
			MinPerGPU: Round2(best.PricePerGPU()),
			AvgPerGPU: Round2(avg),
			MinTotal:  Round2(float64(best.PricePerHour)),
			AvgTotal:  Round2(avg * float64(count)),
			BestDeal: BestDeal{
				Provider: best.Provider,
				Location: best.Location,
				Socket:   best.Socket,
				Spot:     best.IsSpot,
			},
		}
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
