package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Stock statuses reported by the availability API.
const (
	StockAvailable = "Available"
	StockLow       = "Low"
	StockMedium    = "Medium"
	StockHigh      = "High"
)

// HourlyPrice is a price in $/hour. Unpriced offerings carry +Inf.
type HourlyPrice float64

// Unpriced marks an offering without a usable price.
var Unpriced = HourlyPrice(math.Inf(1))

func (p HourlyPrice) Finite() bool {
	f := float64(p)
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// MarshalJSON writes unpriced values as null since JSON has no infinity.
func (p HourlyPrice) MarshalJSON() ([]byte, error) {
	if !p.Finite() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(p))
}

func (p *HourlyPrice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", `"Infinity"`, `"inf"`:
		*p = Unpriced
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode hourly price %s: %w", data, err)
	}
	*p = HourlyPrice(f)
	return nil
}

// Configuration is one priced GPU instance offering.
type Configuration struct {
	CloudID      string      `json:"cloud_id"`
	GPUCount     int         `json:"gpu_count"`
	Socket       string      `json:"socket"`
	Provider     string      `json:"provider"`
	Location     string      `json:"location"`
	StockStatus  string      `json:"stock_status"`
	PricePerHour HourlyPrice `json:"price_per_hour"`
	IsSpot       bool        `json:"is_spot"`
	Security     string      `json:"security"`
	VCPUs        *int        `json:"vcpus"`
	MemoryGB     *int        `json:"memory_gb"`
	GPUMemoryGB  int         `json:"gpu_memory_gb"`
}

// PricePerGPU divides the hourly price across the GPUs in the offering.
func (c Configuration) PricePerGPU() float64 {
	return float64(c.PricePerHour) / float64(c.GPUCount)
}

type PriceStats struct {
	Min    float64 `json:"min"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

type Availability struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Low       int `json:"low"`
	Medium    int `json:"medium"`
	High      int `json:"high"`
}

type ProviderStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Avg   float64 `json:"avg"`
}

// BestDeal describes the cheapest-per-GPU offering of a configuration size.
type BestDeal struct {
	Provider string `json:"provider"`
	Location string `json:"location"`
	Socket   string `json:"socket"`
	Spot     bool   `json:"spot"`
}

type ConfigStats struct {
	Count     int      `json:"count"`
	MinPerGPU float64  `json:"min_per_gpu"`
	AvgPerGPU float64  `json:"avg_per_gpu"`
	MinTotal  float64  `json:"min_total"`
	AvgTotal  float64  `json:"avg_total"`
	BestDeal  BestDeal `json:"best_deal"`
}

// Summary is the aggregate of one (model, socket) set of configurations.
type Summary struct {
	PriceStats   PriceStats               `json:"price_stats"`
	Availability Availability             `json:"availability"`
	ByProvider   map[string]ProviderStats `json:"by_provider"`
	ByConfig     map[string]ConfigStats   `json:"by_config"`
}

// Snapshot is one line of a summary log.
type Snapshot struct {
	Timestamp  time.Time `json:"timestamp"`
	GPUType    string    `json:"gpu_type"`
	SocketType *string   `json:"socket_type"`
	Summary
}

// NewSnapshot stamps a summary with its run time and series identity.
func NewSnapshot(ts time.Time, gpuType, socket string, summary Summary) Snapshot {
	snap := Snapshot{
		Timestamp: ts.UTC(),
		GPUType:   gpuType,
		Summary:   summary,
	}
	if socket != "" {
		s := socket
		snap.SocketType = &s
	}
	return snap
}

// Socket returns the socket type or "" for unsplit series.
func (s Snapshot) Socket() string {
	if s.SocketType == nil {
		return ""
	}
	return *s.SocketType
}
