package typosquat

import (
	"context"
	"log"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/pedrokiefer/exposure/pkg/fetch"
	"github.com/pedrokiefer/exposure/pkg/ping"
)

const whoisTimeout = 5 * time.Second

// seams for tests
var queryWhois = func(domain string, timeout time.Duration) (string, error) {
	return whois.NewClient().SetTimeout(timeout).Whois(domain)
}

var fetchHost = fetch.Fetch
var pingHost = ping.Check
var dialHost = fetch.CheckTCP

// enrichWhois never outlives ctx: the whois timeout is capped at the time
// left before its deadline.
func enrichWhois(ctx context.Context, rc *ResolvedCandidate) {
	if ctx.Err() != nil {
		return
	}
	timeout := whoisTimeout
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < timeout {
		timeout = time.Until(dl)
	}
	if timeout <= 0 {
		return
	}
	raw, err := queryWhois(rc.Domain, timeout)
	if err != nil {
		log.Printf("whois %s: %v\n", rc.Domain, err)
		return
	}
	info, err := whoisparser.Parse(raw)
	if err != nil {
		log.Printf("whois %s: %v\n", rc.Domain, err)
		return
	}
	if info.Registrar != nil {
		rc.Registrar = info.Registrar.Name
	}
	if info.Domain != nil {
		rc.CreatedAt = info.Domain.CreatedDate
	}
}

// reachable tries HTTP(S), then ICMP, then SMTP on the first mail exchanger.
func reachable(ctx context.Context, domain string, mx []string) bool {
	if ok, _ := fetchHost(ctx, domain); ok {
		return true
	}
	if ok, _ := pingHost(ctx, domain); ok {
		return true
	}
	if len(mx) > 0 {
		if ok, _ := dialHost(ctx, mx[0], 25); ok {
			return true
		}
	}
	return false
}
