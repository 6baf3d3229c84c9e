package dns

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"

	rtypes "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/olekukonko/tablewriter"
)

const (
	SourceZone       = "zone"
	SourceRegistered = "registered"
)

// Target is a domain owned by an account that can be scanned.
type Target struct {
	Domain string
	Source string
	ZoneID string
	// Labels are CNAME names found in the zone, relative to Domain.
	Labels []string
}

type ZoneLister interface {
	ListHostedZones(ctx context.Context) ([]Zone, error)
	GetResourceRecords(ctx context.Context, zoneID string) ([]rtypes.ResourceRecordSet, error)
}

type DomainLister interface {
	ListRegisteredDomains(ctx context.Context) ([]string, error)
}

// Discover collects the public hosted zones and registered domains of an
// account. Registered domains without a zone are still returned. Missing
// Route53 Domains permissions are logged and skipped.
func Discover(ctx context.Context, zones ZoneLister, domains DomainLister) ([]Target, error) {
	hz, err := zones.ListHostedZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing hosted zones: %w", err)
	}

	byDomain := map[string]*Target{}
	for _, z := range hz {
		if z.Private {
			continue
		}
		name := strings.ToLower(DenormalizeDomain(z.Name))
		if _, ok := byDomain[name]; ok {
			log.Printf("Zone %s (%s) duplicates an existing zone, skipping", name, z.ID)
			continue
		}
		records, err := zones.GetResourceRecords(ctx, z.ID)
		if err != nil {
			return nil, fmt.Errorf("listing records for %s: %w", name, err)
		}
		byDomain[name] = &Target{
			Domain: name,
			Source: SourceZone,
			ZoneID: z.ID,
			Labels: CNAMELabels(name, records),
		}
	}

	if domains != nil {
		registered, err := domains.ListRegisteredDomains(ctx)
		switch {
		case IsAccessDenied(err):
			log.Printf("No access to registered domains, using hosted zones only")
		case err != nil:
			return nil, fmt.Errorf("listing registered domains: %w", err)
		}
		for _, d := range registered {
			name := strings.ToLower(DenormalizeDomain(d))
			if _, ok := byDomain[name]; ok {
				continue
			}
			byDomain[name] = &Target{Domain: name, Source: SourceRegistered}
		}
	}

	targets := make([]Target, 0, len(byDomain))
	for _, t := range byDomain {
		targets = append(targets, *t)
	}
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].Domain < targets[j].Domain
	})
	return targets, nil
}

func PrintTargets(w io.Writer, targets []Target) {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Domain", "Source", "Zone", "CNAMEs"})
	for _, t := range targets {
		table.Append([]string{t.Domain, t.Source, t.ZoneID, strconv.Itoa(len(t.Labels))})
	}
	table.Render()
}
