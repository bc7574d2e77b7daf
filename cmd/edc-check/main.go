// Command edc-check probes a connector deployment from the command line:
// readiness first, then an optional catalog smoke query
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/adapters/connector"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/config"

	edrcache "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/cache"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
	edrsvc "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/service"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func must(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	var (
		connectorURL = flag.String("connector", "", "management API base URL (overrides EDC_CONNECTOR_URL)")
		apiKey       = flag.String("api-key", "", "management API key (overrides EDC_CONNECTOR_API_KEY)")
		wait         = flag.Bool("wait", false, "retry readiness until the connector is healthy")
		interval     = flag.Duration("interval", 10*time.Second, "readiness retry cadence with -wait")
		timeout      = flag.Duration("timeout", 2*time.Minute, "overall budget")
		counterparty = flag.String("counterparty", "", "counterparty control plane URL for the catalog smoke query")
		bpn          = flag.String("bpn", "", "counterparty business partner number")
		dctType      = flag.String("dct-type", "", "resolve the offer carrying this dct:type")
		assetID      = flag.String("asset-id", "", "resolve this asset id directly (wins over -dct-type)")
	)
	flag.Parse()

	mustSetEnv("EDC_CONNECTOR_URL", *connectorURL)
	mustSetEnv("EDC_CONNECTOR_API_KEY", *apiKey)

	root := config.New()
	cli := connector.NewClient(connector.FromConfig(root.Prefix("EDC_CONNECTOR_")))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *wait {
		must(cli.WaitReady(ctx, *interval))
	} else {
		must(cli.Readiness(ctx))
	}
	fmt.Println("connector ready")

	if *dctType == "" && *assetID == "" {
		return
	}
	if *counterparty == "" || *bpn == "" {
		must(fmt.Errorf("-counterparty and -bpn are required for the catalog smoke query"))
	}

	// memory-cached engine, no recorder: one resolve, then the process exits
	svc := edrsvc.New(cli, edrcache.NewMemory(), nil, edrsvc.Config{})
	offer, err := svc.ResolveOffer(ctx,
		domain.Counterparty{Address: *counterparty, BPN: *bpn},
		domain.AssetDescriptor{DCTType: *dctType, AssetID: *assetID},
		nil,
	)
	must(err)

	enc, err := json.MarshalIndent(struct {
		OfferID     string `json:"offerId"`
		AssetID     string `json:"assetId"`
		Fingerprint string `json:"policyFingerprint"`
	}{offer.OfferID, offer.AssetID, offer.Fingerprint}, "", "  ")
	must(err)
	fmt.Println(string(enc))
}
