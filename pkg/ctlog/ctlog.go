// Package ctlog searches certificate transparency logs for certificates
// issued to names that imitate a domain.
package ctlog

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pedrokiefer/exposure/pkg/permute"
	"github.com/pedrokiefer/exposure/pkg/risk"
)

var WARN = color.CyanString("[WARN]")

type Searcher interface {
	Search(ctx context.Context, q string) ([]Entry, error)
}

type Certificate struct {
	Issuer     string `json:"issuer"`
	CommonName string `json:"common_name"`
	NotBefore  string `json:"not_before"`
	NotAfter   string `json:"not_after"`
}

type Finding struct {
	Certificates []Certificate `json:"certificates"`
	Risk         risk.Risk     `json:"risk"`
	Penalty      int           `json:"penalty"`
}

type Options struct {
	WindowDays int
	Limit      int
	Now        func() time.Time
}

type Analyzer struct {
	searcher Searcher
	opts     Options
}

func NewAnalyzer(s Searcher, opts Options) *Analyzer {
	if opts.WindowDays <= 0 {
		opts.WindowDays = 90
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Analyzer{searcher: s, opts: opts}
}

// Check never fails: a search error is reported as no matches.
func (a *Analyzer) Check(ctx context.Context, domain string) Finding {
	base, _ := permute.Split(domain)
	if base == "" {
		return grade(nil)
	}

	entries, err := a.searcher.Search(ctx, "%"+base+"%")
	if err != nil {
		log.Printf("%s certificate search for %s failed: %v\n", WARN, domain, err)
		return grade(nil)
	}
	return grade(a.filter(domain, base, entries))
}

type dated struct {
	cert      Certificate
	notBefore time.Time
}

func (a *Analyzer) filter(domain, base string, entries []Entry) []Certificate {
	since := a.opts.Now().AddDate(0, 0, -a.opts.WindowDays)
	wildcard := "*." + domain

	newest := map[string]dated{}
	for _, e := range entries {
		cn := strings.ToLower(strings.TrimSpace(e.CommonName))
		if cn == "" || cn == domain || cn == wildcard || !strings.Contains(cn, base) {
			continue
		}
		nb, ok := parseTime(e.NotBefore)
		if !ok || nb.Before(since) {
			continue
		}
		if cur, seen := newest[cn]; seen && !nb.After(cur.notBefore) {
			continue
		}
		na, _ := parseTime(e.NotAfter)
		newest[cn] = dated{
			cert: Certificate{
				Issuer:     e.IssuerName,
				CommonName: cn,
				NotBefore:  nb.UTC().Format(time.RFC3339),
				NotAfter:   formatTime(na),
			},
			notBefore: nb,
		}
	}

	list := make([]dated, 0, len(newest))
	for _, d := range newest {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].notBefore.Equal(list[j].notBefore) {
			return list[i].notBefore.After(list[j].notBefore)
		}
		return list[i].cert.CommonName < list[j].cert.CommonName
	})
	if len(list) > a.opts.Limit {
		list = list[:a.opts.Limit]
	}

	certs := make([]Certificate, 0, len(list))
	for _, d := range list {
		certs = append(certs, d.cert)
	}
	return certs
}

func grade(certs []Certificate) Finding {
	if certs == nil {
		certs = []Certificate{}
	}
	f := Finding{Certificates: certs, Risk: risk.Low}
	switch n := len(certs); {
	case n >= 10:
		f.Risk, f.Penalty = risk.High, 15
	case n >= 3:
		f.Risk, f.Penalty = risk.Medium, 10
	case n >= 1:
		f.Risk, f.Penalty = risk.Low, 5
	}
	return f
}

var timeLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
