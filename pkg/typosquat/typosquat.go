// Package typosquat resolves lookalike domains and grades how many of them
// are registered and able to send mail.
package typosquat

import (
	"context"
	"log"

	"github.com/fatih/color"
	"github.com/pedrokiefer/exposure/pkg/batch"
	"github.com/pedrokiefer/exposure/pkg/dig"
	"github.com/pedrokiefer/exposure/pkg/permute"
	"github.com/pedrokiefer/exposure/pkg/risk"
	"inet.af/netaddr"
)

var VULN = color.RedString("[VULN]")

type ResolvedCandidate struct {
	Domain    string           `json:"domain"`
	HasMX     bool             `json:"has_mx"`
	HasWeb    bool             `json:"has_web"`
	Strategy  permute.Strategy `json:"strategy,omitempty"`
	Sinkholed bool             `json:"sinkholed,omitempty"`
	Reachable bool             `json:"reachable,omitempty"`
	Registrar string           `json:"registrar,omitempty"`
	CreatedAt string           `json:"created_at,omitempty"`
}

type Finding struct {
	TotalPermutations int                 `json:"total_permutations"`
	Registered        []ResolvedCandidate `json:"registered"`
	Risk              risk.Risk           `json:"risk"`
	Penalty           int                 `json:"penalty"`
}

type Options struct {
	BatchSize int
	MaxProbes int
	// Whois looks up registrar and creation date of registered candidates.
	Whois bool
	// Liveness checks whether registered candidates answer HTTP, ICMP or SMTP.
	Liveness bool
}

type Prober struct {
	resolver dig.Resolver
	gen      *permute.Generator
	opts     Options
}

func NewProber(r dig.Resolver, gen *permute.Generator, opts Options) *Prober {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.MaxProbes <= 0 {
		opts.MaxProbes = 40
	}
	return &Prober{resolver: r, gen: gen, opts: opts}
}

// Check generates candidates for domain and probes the first MaxProbes of
// them. Only candidates with an A record are kept.
func (p *Prober) Check(ctx context.Context, domain string) Finding {
	candidates := p.gen.Generate(domain)
	probed := candidates
	if len(probed) > p.opts.MaxProbes {
		probed = probed[:p.opts.MaxProbes]
	}

	outcomes := batch.Run(ctx, probed, p.opts.BatchSize, p.probe)

	registered := []ResolvedCandidate{}
	for _, rc := range batch.Values(outcomes) {
		if rc != nil {
			registered = append(registered, *rc)
		}
	}

	f := grade(len(candidates), registered)
	if f.Risk != risk.Low {
		log.Printf("%s %s has %d registered lookalike domains\n", VULN, domain, len(registered))
	}
	return f
}

func (p *Prober) probe(ctx context.Context, c permute.Candidate) (*ResolvedCandidate, error) {
	a := p.resolver.Resolve(ctx, c.Domain, "A")
	if len(a) == 0 {
		return nil, nil
	}
	mx := p.resolver.Resolve(ctx, c.Domain, "MX")

	rc := &ResolvedCandidate{
		Domain:    c.Domain,
		HasMX:     len(mx) > 0,
		HasWeb:    true,
		Strategy:  c.Strategy,
		Sinkholed: sinkholed(a),
	}
	if p.opts.Whois {
		enrichWhois(ctx, rc)
	}
	if p.opts.Liveness {
		rc.Reachable = reachable(ctx, rc.Domain, mx)
	}
	return rc, nil
}

func grade(total int, registered []ResolvedCandidate) Finding {
	f := Finding{
		TotalPermutations: total,
		Registered:        registered,
		Risk:              risk.Low,
	}

	weaponized := 0
	for _, rc := range registered {
		if rc.HasMX {
			weaponized++
		}
	}

	switch {
	case weaponized >= 3:
		f.Risk, f.Penalty = risk.Critical, 30
	case weaponized >= 1:
		f.Risk, f.Penalty = risk.High, 20
	case len(registered) >= 3:
		f.Risk, f.Penalty = risk.Medium, 10
	}
	return f
}

// sinkholed reports whether every address points nowhere routable.
func sinkholed(addrs []string) bool {
	if len(addrs) == 0 {
		return false
	}
	for _, a := range addrs {
		ip, err := netaddr.ParseIP(a)
		if err != nil {
			return false
		}
		if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
			return false
		}
	}
	return true
}
