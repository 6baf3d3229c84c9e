package vuln

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/pedrokiefer/exposure/pkg/dig"
	"github.com/pedrokiefer/exposure/pkg/risk"
)

type EmailSpoofingFinding struct {
	DMARCRecord string    `json:"dmarc_record"`
	DMARCPolicy string    `json:"dmarc_policy"`
	SPFRecord   string    `json:"spf_record"`
	SPFStrict   bool      `json:"spf_strict"`
	Risk        risk.Risk `json:"risk"`
	Details     string    `json:"details"`
	Penalty     int       `json:"penalty"`
}

// EmailSpoofing grades the DMARC and SPF posture of a domain.
type EmailSpoofing struct {
	resolver dig.Resolver
}

func NewEmailSpoofing(r dig.Resolver) *EmailSpoofing {
	return &EmailSpoofing{resolver: r}
}

func (e *EmailSpoofing) Check(ctx context.Context, domain string) EmailSpoofingFinding {
	dmarcTXT := e.resolver.Resolve(ctx, "_dmarc."+domain, "TXT")
	rootTXT := e.resolver.Resolve(ctx, domain, "TXT")

	f := Evaluate(dmarcTXT, rootTXT)
	if f.Risk != risk.Low {
		log.Printf("%s %s email spoofing risk %s: %s\n", VULN, domain, f.Risk, f.Details)
	}
	return f
}

// Evaluate scores the TXT answers of _dmarc.<domain> and <domain>.
func Evaluate(dmarcTXT, rootTXT []string) EmailSpoofingFinding {
	f := EmailSpoofingFinding{Risk: risk.Low}
	issues := []string{}

	dmarcs := filter(dmarcTXT, isDMARC)
	if len(dmarcs) == 0 {
		f.Risk = risk.Critical
		f.Penalty += 40
		issues = append(issues, "No DMARC record: spoofed mail is delivered")
	} else {
		f.DMARCRecord = strings.TrimSpace(dmarcs[0])
		if len(dmarcs) > 1 {
			issues = append(issues, "Multiple DMARC records: receivers may ignore all of them")
		}
		tags := dmarcTags(f.DMARCRecord)
		f.DMARCPolicy = strings.ToLower(tags["p"])

		switch f.DMARCPolicy {
		case "reject":
		case "quarantine":
			f.Risk = risk.Medium
			f.Penalty += 15
			issues = append(issues, "DMARC policy is quarantine: spoofed mail may still reach spam folders")
		case "none":
			f.Risk = risk.Critical
			f.Penalty += 35
			issues = append(issues, "DMARC policy is none, which allows spoofed emails")
		default:
			f.Risk = risk.Critical
			f.Penalty += 35
			issues = append(issues, fmt.Sprintf("DMARC policy %q is missing or invalid, receivers treat it as none", f.DMARCPolicy))
		}
		issues = append(issues, dmarcScan(tags)...)
	}

	spfs := filter(rootTXT, isSPF)
	if len(spfs) == 0 {
		f.Risk = f.Risk.AtLeast(risk.Medium)
		f.Penalty += 10
		issues = append(issues, "No SPF record: any host can claim to send for this domain")
	} else {
		f.SPFRecord = strings.TrimSpace(spfs[0])
		f.SPFStrict = spfAll(f.SPFRecord) == "-"
		if len(spfs) > 1 {
			issues = append(issues, "Multiple SPF records: SPF evaluation returns permerror")
		}
		if !f.SPFStrict {
			f.Penalty += 5
			issues = append(issues, "SPF does not hard fail (-all)")
		}
		issues = append(issues, spfScan(f.SPFRecord)...)
	}

	if len(issues) == 0 {
		f.Details = "DMARC reject policy and strict SPF in place"
	} else {
		f.Details = strings.Join(issues, "; ")
	}
	return f
}

func filter(values []string, keep func(string) bool) []string {
	out := []string{}
	for _, v := range values {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
