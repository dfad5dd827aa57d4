// Command mock-resolver serves deterministic find and validate webhooks for
// local runs of emailfinder.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/shpitdev/email-finder-pipeline/internal/mockresolver"
)

func main() {
	addr := defaultString("MOCK_RESOLVER_ADDR", ":8080")
	slowDelay := defaultDuration("MOCK_RESOLVER_SLOW_DELAY", 2*time.Second)

	fs := flag.NewFlagSet("mock-resolver", flag.ExitOnError)
	fs.StringVar(&addr, "addr", addr, "Listen address")
	fs.DurationVar(&slowDelay, "slow-delay", slowDelay, "Response delay for domain "+mockresolver.DomainSlow)
	_ = fs.Parse(os.Args[1:])

	srv := mockresolver.New()
	srv.SetSlowDelay(slowDelay)

	_, _ = fmt.Fprintf(os.Stdout, "mock-resolver listening on %s (find: POST /find, validate: POST /validate)\n", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func defaultString(envVar string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(envVar))
	if v == "" {
		return fallback
	}
	return v
}

func defaultDuration(envVar string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(envVar)))
	if err != nil {
		return fallback
	}
	return d
}
