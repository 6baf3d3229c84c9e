package permute

import (
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const DefaultLimit = 60

type Strategy string

const (
	Homoglyph     Strategy = "homoglyph"
	Omission      Strategy = "omission"
	Duplication   Strategy = "duplication"
	Transposition Strategy = "transposition"
	Affix         Strategy = "affix"
	TLD           Strategy = "tld"
)

type Candidate struct {
	Domain   string   `json:"domain"`
	Strategy Strategy `json:"strategy"`
}

// Tables holds the lookup data used by the mutation strategies.
type Tables struct {
	Homoglyphs    map[string][]string
	Affixes       []string
	AlternateTLDs []string
}

func DefaultTables() Tables {
	return Tables{
		Homoglyphs: map[string][]string{
			"o":  {"0"},
			"0":  {"o"},
			"i":  {"1", "l"},
			"l":  {"1", "i"},
			"1":  {"l", "i"},
			"e":  {"3"},
			"a":  {"4"},
			"s":  {"5"},
			"g":  {"9"},
			"m":  {"rn"},
			"rn": {"m"},
			"w":  {"vv"},
			"vv": {"w"},
			"d":  {"cl"},
			"cl": {"d"},
		},
		Affixes:       []string{"login", "secure", "support", "portal", "account", "verify"},
		AlternateTLDs: []string{
			"com", "net", "org", "co", "io", "info", "biz", "app", "xyz", "online",
			"site", "us", "cc", "me", "tv", "dev", "shop", "store", "tech", "live",
			"club", "top", "ai", "email", "mobi", "cloud",
		},
	}
}

type Generator struct {
	Tables Tables
	Limit  int
}

func NewGenerator(t Tables, limit int) *Generator {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Generator{Tables: t, Limit: limit}
}

// Split separates the registrable part of domain into its leftmost label and
// public suffix: "shop.example.co.uk" gives ("example", "co.uk").
func Split(domain string) (name, suffix string) {
	domain = strings.TrimSuffix(strings.ToLower(domain), ".")
	registrable, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		i := strings.LastIndex(domain, ".")
		if i < 0 {
			return domain, ""
		}
		registrable = domain
		if j := strings.LastIndex(domain[:i], "."); j >= 0 {
			registrable = domain[j+1:]
		}
	}
	i := strings.Index(registrable, ".")
	if i < 0 {
		return registrable, ""
	}
	return registrable[:i], registrable[i+1:]
}

// Generate returns lookalike candidates for domain in strategy order. The
// result is deduplicated, never contains the input and holds at most Limit
// entries.
func (g *Generator) Generate(domain string) []Candidate {
	domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
	name, suffix := Split(domain)
	if name == "" || suffix == "" {
		return []Candidate{}
	}

	limit := g.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	out := []Candidate{}
	seen := map[string]bool{
		domain:              true,
		name + "." + suffix: true,
	}
	add := func(s Strategy, label, tld string) bool {
		if len(out) >= limit {
			return false
		}
		if !validLabel(label) {
			return true
		}
		d := label + "." + tld
		if seen[d] {
			return true
		}
		seen[d] = true
		out = append(out, Candidate{Domain: d, Strategy: s})
		return len(out) < limit
	}

	for _, label := range g.homoglyphs(name) {
		if !add(Homoglyph, label, suffix) {
			return out
		}
	}
	for i := range name {
		if !add(Omission, name[:i]+name[i+1:], suffix) {
			return out
		}
	}
	for i := range name {
		if !add(Duplication, name[:i+1]+name[i:], suffix) {
			return out
		}
	}
	for i := 0; i+1 < len(name); i++ {
		if name[i] == name[i+1] {
			continue
		}
		swapped := name[:i] + string(name[i+1]) + string(name[i]) + name[i+2:]
		if !add(Transposition, swapped, suffix) {
			return out
		}
	}
	for _, a := range g.Tables.Affixes {
		if !add(Affix, a+"-"+name, suffix) {
			return out
		}
		if !add(Affix, name+"-"+a, suffix) {
			return out
		}
	}
	for _, tld := range g.Tables.AlternateTLDs {
		if tld == suffix {
			continue
		}
		if !add(TLD, name, tld) {
			return out
		}
	}
	return out
}

// homoglyphs applies one substitution at a time, scanning positions left to
// right and table keys in sorted order.
func (g *Generator) homoglyphs(name string) []string {
	keys := make([]string, 0, len(g.Tables.Homoglyphs))
	for k := range g.Tables.Homoglyphs {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	labels := []string{}
	for i := range name {
		for _, k := range keys {
			if !strings.HasPrefix(name[i:], k) {
				continue
			}
			for _, sub := range g.Tables.Homoglyphs[k] {
				labels = append(labels, name[:i]+sub+name[i+len(k):])
			}
		}
	}
	return labels
}

func validLabel(label string) bool {
	if label == "" || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, c := range label {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
	}
	return true
}
