// Package breach matches a domain against a public breach directory.
package breach

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/pedrokiefer/exposure/pkg/permute"
	"github.com/pedrokiefer/exposure/pkg/risk"
)

var VULN = color.RedString("[VULN]")
var WARN = color.CyanString("[WARN]")

type Directory interface {
	Breaches(ctx context.Context) ([]Breach, error)
}

type Record struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Domain      string   `json:"domain"`
	BreachDate  string   `json:"breach_date"`
	PwnCount    int64    `json:"pwn_count"`
	DataClasses []string `json:"data_classes"`
	IsVerified  bool     `json:"is_verified"`
}

type Finding struct {
	Breaches             []Record  `json:"breaches"`
	TotalExposedAccounts int64     `json:"total_exposed_accounts"`
	Risk                 risk.Risk `json:"risk"`
	Penalty              int       `json:"penalty"`
	Details              string    `json:"details"`
}

type Checker struct {
	dir   Directory
	Limit int
}

func NewChecker(d Directory) *Checker {
	return &Checker{dir: d, Limit: 15}
}

// Check never fails: a directory error is reported as no known breaches.
func (c *Checker) Check(ctx context.Context, domain string) Finding {
	list, err := c.dir.Breaches(ctx)
	if err != nil {
		log.Printf("%s breach directory unavailable for %s: %v\n", WARN, domain, err)
		return grade(nil)
	}

	f := grade(c.match(domain, list))
	if f.Risk != risk.Low {
		log.Printf("%s %s\n", VULN, f.Details)
	}
	return f
}

func (c *Checker) match(domain string, list []Breach) []Record {
	base, _ := permute.Split(domain)
	records := []Record{}
	for _, b := range list {
		bd := strings.ToLower(strings.TrimSpace(b.Domain))
		byDomain := bd != "" && (bd == domain || strings.HasSuffix(bd, "."+domain))
		byName := base != "" && strings.Contains(strings.ToLower(b.Name), base)
		if !byDomain && !byName {
			continue
		}
		dc := b.DataClasses
		if dc == nil {
			dc = []string{}
		}
		records = append(records, Record{
			Name:        b.Name,
			Title:       b.Title,
			Domain:      b.Domain,
			BreachDate:  b.BreachDate,
			PwnCount:    b.PwnCount,
			DataClasses: dc,
			IsVerified:  b.IsVerified,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PwnCount > records[j].PwnCount
	})
	limit := c.Limit
	if limit <= 0 {
		limit = 15
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records
}

func exposesPasswords(r Record) bool {
	for _, dc := range r.DataClasses {
		if strings.Contains(strings.ToLower(dc), "password") {
			return true
		}
	}
	return false
}

func grade(records []Record) Finding {
	if records == nil {
		records = []Record{}
	}
	f := Finding{Breaches: records, Risk: risk.Low}

	verified := 0
	passwords := false
	for _, r := range records {
		f.TotalExposedAccounts += r.PwnCount
		if r.IsVerified {
			verified++
		}
		if exposesPasswords(r) {
			passwords = true
		}
	}

	switch {
	case f.TotalExposedAccounts > 1_000_000 || (verified >= 2 && passwords):
		f.Risk, f.Penalty = risk.Critical, 25
	case f.TotalExposedAccounts > 100_000 || passwords:
		f.Risk, f.Penalty = risk.High, 20
	case len(records) >= 1:
		f.Risk, f.Penalty = risk.Medium, 10
	}

	if len(records) == 0 {
		f.Details = "No known breaches"
	} else {
		f.Details = fmt.Sprintf("%d breaches exposed %d accounts", len(records), f.TotalExposedAccounts)
		if passwords {
			f.Details += ", including passwords"
		}
	}
	return f
}
