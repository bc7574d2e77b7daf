package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/adapters/connector"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/cache"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
	proxydom "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/proxy/domain"
	proxysvc "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/proxy/service"
)

// flowConnector is a scripted management API: one offer in the catalog, a
// negotiation that finalizes on the second state poll, a transfer that starts
// immediately, and a data address pointing at the given data plane
type flowConnector struct {
	dataPlaneURL string
	authToken    string

	negotiations int64
	statePolls   int64
	catalogCalls int64
}

func (f *flowConnector) handler(t *testing.T) http.Handler {
	t.Helper()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/management/v3/catalog/request", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.catalogCalls, 1)
		writeJSON(w, map[string]any{
			"@type":        "dcat:Catalog",
			"dcat:dataset": datasetDoc("asset-flow", policyDoc("offer-flow", "traceability:1.0")),
		})
	})
	mux.HandleFunc("/management/v2/edrs", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.negotiations, 1)
		writeJSON(w, map[string]any{"@id": "neg-flow"})
	})
	mux.HandleFunc("/management/v2/contractnegotiations/neg-flow/state", func(w http.ResponseWriter, r *http.Request) {
		st := "FINALIZED"
		if atomic.AddInt64(&f.statePolls, 1) == 1 {
			st = "REQUESTED"
		}
		writeJSON(w, map[string]any{"state": st})
	})
	mux.HandleFunc("/management/v2/contractnegotiations/neg-flow", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"@id":                 "neg-flow",
			"state":               "FINALIZED",
			"contractAgreementId": "agr-flow",
		})
	})
	mux.HandleFunc("/management/v2/transferprocesses", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"@id": "tp-flow"})
	})
	mux.HandleFunc("/management/v2/transferprocesses/tp-flow/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"state": "STARTED"})
	})
	mux.HandleFunc("/management/v2/edrs/tp-flow/dataaddress", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"endpoint": f.dataPlaneURL, "authorization": f.authToken})
	})
	return mux
}

// TestRequest_FullNegotiationFlow runs the whole consumer path over real HTTP:
// catalog -> negotiation -> transfer -> data address through the connector
// client, then one proxied GET carrying the issued token, then a cache hit
func TestRequest_FullNegotiationFlow(t *testing.T) {
	t.Parallel()

	var planeAuth atomic.Value
	plane := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/resource" {
			t.Errorf("data plane got %s %s", r.Method, r.URL.Path)
		}
		planeAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"flag":"raised"}`))
	}))
	defer plane.Close()

	fc := &flowConnector{dataPlaneURL: plane.URL, authToken: "tok-flow"}
	mgmt := httptest.NewServer(fc.handler(t))
	defer mgmt.Close()

	cli := connector.NewClient(connector.Options{BaseURL: mgmt.URL})
	svc := New(cli, cache.NewMemory(), nil, Config{PollInterval: time.Second, Timeout: 15 * time.Second})
	svc.sleep = func(time.Duration) {}

	proxy := proxysvc.New(svc, nil, proxysvc.Config{})
	res, err := proxy.Request(context.Background(), proxydom.ProxyInput{
		CounterParty: domain.CounterpartyInput{Address: mgmt.URL, BPN: "BPNL000000000001"},
		Asset:        domain.AssetInput{DCTType: "cx-taxo:PartTypeInformation"},
		Method:       http.MethodGet,
		Path:         "/resource",
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.Status != http.StatusOK || string(res.Body) != `{"flag":"raised"}` {
		t.Fatalf("result = %d %q", res.Status, res.Body)
	}
	if got := planeAuth.Load(); got != "tok-flow" {
		t.Fatalf("data plane Authorization = %v, want the issued token", got)
	}
	if n := atomic.LoadInt64(&fc.negotiations); n != 1 {
		t.Fatalf("negotiations initiated = %d, want 1", n)
	}
	if n := atomic.LoadInt64(&fc.statePolls); n != 2 {
		t.Fatalf("negotiation state polls = %d, want 2", n)
	}

	// same key again: the cached EDR answers, nothing new hits the connector
	edr, err := svc.Resolve(context.Background(), domain.ResolveInput{
		CounterParty: domain.CounterpartyInput{Address: mgmt.URL, BPN: "BPNL000000000001"},
		Asset:        domain.AssetInput{DCTType: "cx-taxo:PartTypeInformation"},
	})
	if err != nil {
		t.Fatalf("resolve after flow: %v", err)
	}
	if edr.AuthToken != "tok-flow" || edr.TransferID != "tp-flow" {
		t.Fatalf("cached edr = %+v", edr)
	}
	if n := atomic.LoadInt64(&fc.negotiations); n != 1 {
		t.Fatalf("negotiations after cache hit = %d, want 1", n)
	}
}
