package ch

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo describes this process to the server, so audit writers
// show up in system.query_log with their role ("edc-api", "edc-check"),
// build tag, commit, and host
func BuildClientInfo(role, tag string) clickhouse.ClientInfo {
	host, _ := os.Hostname()

	type product = struct{ Name, Version string }
	clean := func(s string) string { return strings.TrimSpace(s) }

	return clickhouse.ClientInfo{Products: []product{
		{Name: "tractusx-sdk-services", Version: clean(tag)},
		{Name: "role", Version: clean(role)},
		{Name: "go", Version: clean(runtime.Version())},
		{Name: "commit", Version: vcsShortSHA()},
		{Name: "host", Version: clean(host)},
	}}
}

// vcsShortSHA pulls the embedded vcs revision, "unknown" for builds
// outside a checkout
func vcsShortSHA() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return "unknown"
}
