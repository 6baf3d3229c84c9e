package cli

import (
	"fmt"
	"log"

	"github.com/pedrokiefer/exposure/pkg/breach"
	"github.com/pedrokiefer/exposure/pkg/config"
	"github.com/pedrokiefer/exposure/pkg/ctlog"
	"github.com/pedrokiefer/exposure/pkg/dig"
	"github.com/pedrokiefer/exposure/pkg/fetch"
	"github.com/pedrokiefer/exposure/pkg/permute"
	"github.com/pedrokiefer/exposure/pkg/scan"
	"github.com/pedrokiefer/exposure/pkg/typosquat"
	"github.com/pedrokiefer/exposure/pkg/vuln"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newExchanger(cfg *config.Config) dig.Exchanger {
	if cfg.Resolver.Mode == "udp" {
		return &dig.UDPExchanger{Server: cfg.Resolver.Server}
	}
	return &dig.DoHExchanger{
		URL:    cfg.Resolver.URL,
		Client: fetch.NewClient(cfg.Resolver.Timeout),
	}
}

// buildScanner wires every check from cfg. The checks share one resolver.
func buildScanner(cfg *config.Config) *scan.Scanner {
	resolver := dig.NewClient(newExchanger(cfg), cfg.Resolver.Timeout)
	resolver.Verbose = cfg.Resolver.Verbose

	gen := permute.NewGenerator(permute.DefaultTables(), cfg.Typosquat.Candidates)
	prober := typosquat.NewProber(resolver, gen, typosquat.Options{
		BatchSize: cfg.Typosquat.BatchSize,
		MaxProbes: cfg.Typosquat.MaxProbes,
		Whois:     cfg.Typosquat.Whois,
		Liveness:  cfg.Typosquat.Liveness,
	})

	ct := ctlog.NewClient(fetch.NewClient(cfg.CT.Timeout), cfg.CT.RateLimit)
	ct.URL = cfg.CT.URL
	ct.Timeout = cfg.CT.Timeout
	analyzer := ctlog.NewAnalyzer(ct, ctlog.Options{
		WindowDays: cfg.CT.WindowDays,
		Limit:      cfg.CT.Limit,
	})

	hibp := breach.NewClient(fetch.NewClient(cfg.Breach.Timeout), cfg.Breach.RateLimit)
	hibp.URL = cfg.Breach.URL
	hibp.Timeout = cfg.Breach.Timeout
	hibp.CacheTTL = cfg.Breach.CacheTTL
	checker := breach.NewChecker(hibp)
	checker.Limit = cfg.Breach.Limit

	var subdomains []string
	if len(cfg.Dangling.Subdomains) > 0 {
		subdomains = cfg.Dangling.Subdomains
	}
	dangling := vuln.NewDanglingDNS(resolver, vuln.DanglingOptions{
		Subdomains: subdomains,
		BatchSize:  cfg.Dangling.BatchSize,
		HTTPVerify: cfg.Dangling.HTTPVerify,
	})

	if cfg.Resolver.Verbose {
		log.Printf("Resolver mode=%s typosquat candidates=%d probes=%d\n",
			cfg.Resolver.Mode, cfg.Typosquat.Candidates, cfg.Typosquat.MaxProbes)
	}

	return &scan.Scanner{
		Email:        vuln.NewEmailSpoofing(resolver),
		Typosquats:   prober,
		Certificates: analyzer,
		Breaches:     checker,
		Dangling:     dangling,
		Timeout:      cfg.Scan.Timeout,
	}
}
