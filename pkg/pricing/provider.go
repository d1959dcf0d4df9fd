package pricing

import (
	"context"
	"sort"

	"github.com/tugot17/gpu-price-tracker/pkg/stats"
)

// Provider supplies GPU availability from a backing source (API, command, file).
type Provider interface {
	Availability(ctx context.Context, gpuType string) (map[string][]Offer, error)
	Source() string
}

// Offer is one availability entry as returned by the pricing API.
type Offer struct {
	CloudID     string    `json:"cloudId"`
	GPUType     string    `json:"gpuType"`
	Socket      string    `json:"socket"`
	Provider    string    `json:"provider"`
	DataCenter  string    `json:"dataCenter"`
	Country     string    `json:"country"`
	GPUCount    int       `json:"gpuCount"`
	GPUMemory   int       `json:"gpuMemory"`
	Security    string    `json:"security"`
	StockStatus string    `json:"stockStatus"`
	IsSpot      *bool     `json:"isSpot"`
	VCPU        *Resource `json:"vcpu"`
	Memory      *Resource `json:"memory"`
	Prices      Prices    `json:"prices"`
}

type Resource struct {
	DefaultCount int `json:"defaultCount"`
}

type Prices struct {
	OnDemand       *float64 `json:"onDemand"`
	CommunityPrice *float64 `json:"communityPrice"`
	Currency       string   `json:"currency"`
}

// HourlyPrice prefers the on-demand price, then the community price.
func (o Offer) HourlyPrice() stats.HourlyPrice {
	if o.Prices.OnDemand != nil {
		return stats.HourlyPrice(*o.Prices.OnDemand)
	}
	if o.Prices.CommunityPrice != nil {
		return stats.HourlyPrice(*o.Prices.CommunityPrice)
	}
	return stats.Unpriced
}

// Configuration flattens the offer into the record the aggregator consumes.
func (o Offer) Configuration() stats.Configuration {
	c := stats.Configuration{
		CloudID:      o.CloudID,
		GPUCount:     o.GPUCount,
		Socket:       orDefault(o.Socket, "N/A"),
		Provider:     orDefault(o.Provider, "unknown"),
		Location:     orDefault(o.Country, "N/A"),
		StockStatus:  o.StockStatus,
		PricePerHour: o.HourlyPrice(),
		Security:     orDefault(o.Security, "N/A"),
		GPUMemoryGB:  o.GPUMemory,
	}
	if o.IsSpot != nil {
		c.IsSpot = *o.IsSpot
	}
	if o.VCPU != nil {
		n := o.VCPU.DefaultCount
		c.VCPUs = &n
	}
	if o.Memory != nil {
		n := o.Memory.DefaultCount
		c.MemoryGB = &n
	}
	return c
}

// Configurations flattens an availability response. Keys are visited in
// sorted order so repeated runs produce the same record order.
func Configurations(availability map[string][]Offer) []stats.Configuration {
	keys := make([]string, 0, len(availability))
	for k := range availability {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []stats.Configuration
	for _, k := range keys {
		for _, offer := range availability[k] {
			out = append(out, offer.Configuration())
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
