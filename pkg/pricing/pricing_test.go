package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tugot17/gpu-price-tracker/pkg/stats"
)

const availabilityJSON = `{
  "H100_80GB": [
    {"cloudId": "h100-1", "gpuType": "H100_80GB", "socket": "SXM5", "provider": "runpod", "country": "US",
     "gpuCount": 8, "gpuMemory": 80, "security": "secure_cloud", "stockStatus": "Available", "isSpot": false,
     "vcpu": {"defaultCount": 128}, "memory": {"defaultCount": 1024}, "prices": {"onDemand": 23.92, "currency": "USD"}},
    {"cloudId": "h100-2", "gpuType": "H100_80GB", "socket": "", "provider": "", "country": "",
     "gpuCount": 1, "gpuMemory": 80, "stockStatus": "Low", "prices": {"communityPrice": 1.99}},
    {"cloudId": "h100-3", "gpuType": "H100_80GB", "socket": "PCIe", "provider": "lambda",
     "gpuCount": 1, "gpuMemory": 80, "stockStatus": "High", "prices": {}}
  ]
}`

func TestAPIProvider_Availability(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/availability/" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("gpu_type")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(availabilityJSON))
	}))
	t.Cleanup(srv.Close)

	p, err := NewAPIProvider(srv.URL+"/", "secret", 5*time.Second)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	out, err := p.Availability(context.Background(), "H100_80GB")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotQuery != "H100_80GB" {
		t.Fatalf("expected gpu_type=H100_80GB, got %q", gotQuery)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
	if got := len(out["H100_80GB"]); got != 3 {
		t.Fatalf("expected 3 offers, got %d", got)
	}
	if p.Source() != "api" {
		t.Fatalf("expected source=api, got %s", p.Source())
	}
}

func TestAPIProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	p, err := NewAPIProvider(srv.URL, "", time.Second)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := p.Availability(context.Background(), "A100_80GB"); err == nil {
		t.Fatalf("expected error for 401 response")
	}
}

func TestNewAPIProvider_RequiresBaseURL(t *testing.T) {
	if _, err := NewAPIProvider("  ", "", time.Second); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}

func TestConfigurations_Defaults(t *testing.T) {
	parsed, err := parseAvailabilityOutput(availabilityJSON)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	configs := Configurations(parsed)
	if len(configs) != 3 {
		t.Fatalf("expected 3 configurations, got %d", len(configs))
	}

	first := configs[0]
	if first.PricePerHour != 23.92 || first.Socket != "SXM5" || first.Location != "US" {
		t.Fatalf("unexpected first configuration: %+v", first)
	}
	if first.VCPUs == nil || *first.VCPUs != 128 || first.MemoryGB == nil || *first.MemoryGB != 1024 {
		t.Fatalf("expected vcpu/memory defaults, got %+v", first)
	}

	second := configs[1]
	if second.PricePerHour != 1.99 {
		t.Fatalf("expected community price fallback, got %v", second.PricePerHour)
	}
	if second.Socket != "N/A" || second.Provider != "unknown" || second.Location != "N/A" || second.Security != "N/A" {
		t.Fatalf("expected placeholder values, got %+v", second)
	}
	if second.IsSpot || second.VCPUs != nil || second.MemoryGB != nil {
		t.Fatalf("expected unset optional fields, got %+v", second)
	}

	if configs[2].PricePerHour.Finite() {
		t.Fatalf("expected unpriced offer, got %v", configs[2].PricePerHour)
	}
	if configs[2].PricePerHour != stats.Unpriced {
		t.Fatalf("expected the unpriced sentinel")
	}
}

func TestParseAvailabilityOutput_LastLine(t *testing.T) {
	raw := "fetching...\nusing cached token\n{\"A100_80GB\":[{\"provider\":\"x\",\"gpuCount\":1,\"prices\":{\"onDemand\":1.2}}]}"
	out, err := parseAvailabilityOutput(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(out["A100_80GB"]) != 1 {
		t.Fatalf("expected one offer, got %v", out)
	}

	if _, err := parseAvailabilityOutput("not json\nstill not"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestCommandProvider_AppendsGPUType(t *testing.T) {
	p := NewCommandProvider("/bin/echo", []string{`{"B200_180GB":[]}`, "#"})
	// output is `{...} # B200_180GB`, which is not JSON
	if _, err := p.Availability(context.Background(), "B200_180GB"); err == nil {
		t.Fatalf("expected error for non-JSON output")
	}

	if _, err := NewCommandProvider(" ", nil).Availability(context.Background(), "x"); err == nil {
		t.Fatalf("expected error for empty command")
	}
	if p.Source() != "command" {
		t.Fatalf("expected source=command, got %s", p.Source())
	}
}

func TestCommandProvider_ShellWrapper(t *testing.T) {
	p := NewCommandProvider("/bin/sh", []string{"-c", `echo "fetching $0" && echo '{"'"$0"'":[{"provider":"p","gpuCount":2,"prices":{"onDemand":4}}]}'`})
	out, err := p.Availability(context.Background(), "GH200_96GB")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	offers := out["GH200_96GB"]
	if len(offers) != 1 || offers[0].GPUCount != 2 {
		t.Fatalf("unexpected offers: %+v", out)
	}
}

func TestFileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "availability.json")
	doc := `{"H100_80GB": ` + availabilityJSON + `}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p := NewFileProvider(path)
	out, err := p.Availability(context.Background(), "H100_80GB")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(out["H100_80GB"]) != 3 {
		t.Fatalf("expected 3 offers, got %v", out)
	}

	missing, err := p.Availability(context.Background(), "B200_180GB")
	if err != nil || len(missing) != 0 {
		t.Fatalf("expected empty result for unknown type, got %v (%v)", missing, err)
	}

	if _, err := NewFileProvider(filepath.Join(t.TempDir(), "absent.json")).Availability(context.Background(), "x"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
