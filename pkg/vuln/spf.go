package vuln

import (
	"strings"
)

func isSPF(v string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(v)), "v=spf1")
}

// spfAll returns the qualifier of the record's all mechanism, or "" when the
// record has none.
func spfAll(spf string) string {
	for _, term := range strings.Fields(strings.ToLower(spf)) {
		switch term {
		case "all", "+all":
			return "+"
		case "-all":
			return "-"
		case "~all":
			return "~"
		case "?all":
			return "?"
		}
	}
	return ""
}

func spfScan(spf string) []string {
	switch spfAll(spf) {
	case "+":
		return []string{"SPF all mechanism uses the pass qualifier, any host may send as this domain"}
	case "?":
		return []string{"SPF all mechanism is neutral"}
	case "":
		return []string{"SPF record has no all mechanism"}
	}
	return nil
}
