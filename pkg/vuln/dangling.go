package vuln

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/pedrokiefer/exposure/pkg/batch"
	"github.com/pedrokiefer/exposure/pkg/dig"
	"github.com/pedrokiefer/exposure/pkg/risk"
)

type Status string

const (
	Dangling   Status = "dangling"
	Suspicious Status = "suspicious"
)

type DanglingRecord struct {
	Subdomain   string `json:"subdomain"`
	CNAMETarget string `json:"cname_target"`
	Provider    string `json:"provider"`
	Status      Status `json:"status"`
}

type DanglingFinding struct {
	SubdomainsChecked int              `json:"subdomains_checked"`
	Vulnerable        []DanglingRecord `json:"vulnerable"`
	Risk              risk.Risk        `json:"risk"`
	Penalty           int              `json:"penalty"`
	Details           string           `json:"details"`
}

// Fingerprint maps a hostname suffix to the hosting provider behind it.
// Bucket marks object storage endpoints that answer NoSuchBucket for
// unclaimed names. Regional suffixes are followed by a region, as in
// ".s3-website.eu-west-1.amazonaws.com" or ".s3-website-us-east-1.amazonaws.com".
type Fingerprint struct {
	Suffix   string
	Provider string
	Bucket   bool
	Regional bool
}

func (fp Fingerprint) Match(target string) bool {
	if strings.HasSuffix(target, fp.Suffix) {
		return true
	}
	if !fp.Regional {
		return false
	}
	return strings.Contains(target, fp.Suffix+".") || strings.Contains(target, fp.Suffix+"-")
}

var DefaultSubdomains = []string{
	"www", "mail", "api", "admin", "vpn", "dev", "staging", "test",
	"blog", "shop", "store", "app", "portal", "support", "help", "docs",
	"status", "cdn", "static", "assets", "media", "images", "files", "download",
	"beta", "demo", "login", "auth", "sso", "m", "mobile", "careers",
	"jobs", "events", "news", "marketing", "info", "community", "forum", "wiki",
}

func DefaultFingerprints() []Fingerprint {
	return []Fingerprint{
		{Suffix: ".s3.amazonaws.com", Provider: "AWS S3", Bucket: true},
		{Suffix: ".s3-website", Provider: "AWS S3", Bucket: true, Regional: true},
		{Suffix: ".cloudfront.net", Provider: "AWS CloudFront"},
		{Suffix: ".elasticbeanstalk.com", Provider: "AWS Elastic Beanstalk"},
		{Suffix: ".herokuapp.com", Provider: "Heroku"},
		{Suffix: ".herokudns.com", Provider: "Heroku"},
		{Suffix: ".github.io", Provider: "GitHub Pages"},
		{Suffix: ".azurewebsites.net", Provider: "Azure App Service"},
		{Suffix: ".cloudapp.azure.com", Provider: "Azure Cloud"},
		{Suffix: ".trafficmanager.net", Provider: "Azure Traffic Manager"},
		{Suffix: ".blob.core.windows.net", Provider: "Azure Blob Storage"},
		{Suffix: ".azureedge.net", Provider: "Azure CDN"},
		{Suffix: ".azurefd.net", Provider: "Azure Front Door"},
		{Suffix: ".netlify.app", Provider: "Netlify"},
		{Suffix: ".firebaseapp.com", Provider: "Firebase"},
		{Suffix: ".web.app", Provider: "Firebase"},
		{Suffix: ".appspot.com", Provider: "Google App Engine"},
		{Suffix: ".fly.dev", Provider: "Fly.io"},
		{Suffix: ".ghost.io", Provider: "Ghost"},
		{Suffix: ".myshopify.com", Provider: "Shopify"},
		{Suffix: ".pantheonsite.io", Provider: "Pantheon"},
		{Suffix: ".surge.sh", Provider: "Surge.sh"},
		{Suffix: ".bitbucket.io", Provider: "Bitbucket"},
		{Suffix: ".zendesk.com", Provider: "Zendesk"},
		{Suffix: ".helpscoutdocs.com", Provider: "HelpScout"},
		{Suffix: ".statuspage.io", Provider: "Statuspage"},
		{Suffix: ".wordpress.com", Provider: "WordPress.com"},
		{Suffix: ".webflow.io", Provider: "Webflow"},
		{Suffix: ".readthedocs.io", Provider: "ReadTheDocs"},
	}
}

type DanglingOptions struct {
	Subdomains   []string
	Fingerprints []Fingerprint
	BatchSize    int
	// HTTPVerify fetches bucket endpoints that still resolve and treats a
	// NoSuchBucket answer as dangling.
	HTTPVerify bool
}

// DanglingDNS looks for common subdomains whose CNAME points at an
// unclaimed cloud resource.
type DanglingDNS struct {
	resolver dig.Resolver
	opts     DanglingOptions
}

func NewDanglingDNS(r dig.Resolver, opts DanglingOptions) *DanglingDNS {
	if opts.Subdomains == nil {
		opts.Subdomains = DefaultSubdomains
	}
	if opts.Fingerprints == nil {
		opts.Fingerprints = DefaultFingerprints()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	return &DanglingDNS{resolver: r, opts: opts}
}

func (d *DanglingDNS) fingerprint(target string) (Fingerprint, bool) {
	for _, fp := range d.opts.Fingerprints {
		if fp.Match(target) {
			return fp, true
		}
	}
	return Fingerprint{}, false
}

// labels returns the configured subdomains followed by extra, without
// duplicates.
func (d *DanglingDNS) labels(extra []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, l := range append(append([]string{}, d.opts.Subdomains...), extra...) {
		l = strings.Trim(strings.ToLower(strings.TrimSpace(l)), ".")
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// Check probes every label under domain. extra adds labels for this call
// only.
func (d *DanglingDNS) Check(ctx context.Context, domain string, extra ...string) DanglingFinding {
	labels := d.labels(extra)

	outcomes := batch.Run(ctx, labels, d.opts.BatchSize, func(ctx context.Context, label string) (*DanglingRecord, error) {
		return d.probe(ctx, label+"."+domain)
	})

	records := []DanglingRecord{}
	for _, r := range batch.Values(outcomes) {
		if r != nil {
			records = append(records, *r)
		}
	}

	return classify(len(labels), records)
}

func (d *DanglingDNS) probe(ctx context.Context, sub string) (*DanglingRecord, error) {
	cnames := d.resolver.Resolve(ctx, sub, "CNAME")
	if len(cnames) == 0 {
		return nil, nil
	}
	target := strings.ToLower(strings.TrimSuffix(cnames[0], "."))
	fp, ok := d.fingerprint(target)
	if !ok {
		return nil, nil
	}

	rec := &DanglingRecord{Subdomain: sub, CNAMETarget: target, Provider: fp.Provider}

	if len(d.resolver.Resolve(ctx, target, "A")) == 0 {
		rec.Status = Dangling
		log.Printf("%s %s has a CNAME to %s %s but the target does not resolve\n", VULN, sub, fp.Provider, target)
		return rec, nil
	}

	if fp.Bucket && d.opts.HTTPVerify {
		nok, err := checkNoSuchBucket(ctx, target)
		if err != nil {
			checkError(err, sub, target)
		}
		if nok {
			rec.Status = Dangling
			log.Printf("%s %s has a CNAME to %s but the bucket does not exist\n", VULN, sub, target)
			return rec, nil
		}
	}

	if len(d.resolver.Resolve(ctx, sub, "A")) == 0 {
		rec.Status = Suspicious
		log.Printf("%s %s has a CNAME to %s %s but does not resolve itself\n", MISCONFIG, sub, fp.Provider, target)
		return rec, nil
	}
	return nil, nil
}

func classify(checked int, records []DanglingRecord) DanglingFinding {
	f := DanglingFinding{
		SubdomainsChecked: checked,
		Vulnerable:        records,
		Risk:              risk.Low,
	}

	dangling, suspicious := 0, 0
	for _, r := range records {
		switch r.Status {
		case Dangling:
			dangling++
		case Suspicious:
			suspicious++
		}
	}

	switch {
	case dangling >= 3:
		f.Risk, f.Penalty = risk.Critical, 25
	case dangling >= 1:
		f.Risk, f.Penalty = risk.High, 20
	case suspicious >= 1:
		f.Risk, f.Penalty = risk.Medium, 10
	}

	if len(records) == 0 {
		f.Details = fmt.Sprintf("No dangling CNAME records across %d subdomains", checked)
	} else {
		f.Details = fmt.Sprintf("%d dangling and %d suspicious CNAME records across %d subdomains", dangling, suspicious, checked)
	}
	return f
}
