package vuln

import (
	"fmt"
	"strconv"
	"strings"
)

var policyStrength = map[string]int{
	"none":       0,
	"quarantine": 1,
	"reject":     2,
}

func isDMARC(v string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(v)), "v=dmarc1")
}

// dmarcTags splits a DMARC record into its tag=value pairs. Tag names are
// lowercased, values keep their case.
func dmarcTags(dmarc string) map[string]string {
	tags := map[string]string{}
	for _, term := range strings.Split(dmarc, ";") {
		term = strings.TrimSpace(term)
		parts := strings.SplitN(term, "=", 2)
		if len(parts) != 2 {
			continue
		}
		tag := strings.ToLower(strings.TrimSpace(parts[0]))
		if _, ok := tags[tag]; ok {
			continue
		}
		tags[tag] = strings.TrimSpace(parts[1])
	}
	return tags
}

// dmarcScan reports weaknesses that do not change the policy tier.
func dmarcScan(tags map[string]string) []string {
	var result []string
	p := strings.ToLower(tags["p"])

	if sp, ok := tags["sp"]; ok {
		sp = strings.ToLower(sp)
		if s, known := policyStrength[sp]; !known {
			result = append(result, fmt.Sprintf("DMARC subdomain policy %q is not valid", sp))
		} else if ps, known := policyStrength[p]; known && s < ps {
			result = append(result, fmt.Sprintf("DMARC subdomain policy is %s, weaker than the domain policy %s", sp, p))
		}
	}

	if pct, ok := tags["pct"]; ok {
		v, err := strconv.Atoi(pct)
		switch {
		case err != nil, v < 0, v > 100:
			result = append(result, fmt.Sprintf("DMARC policy pct has invalid value: %s", pct))
		case v < 100:
			result = append(result, fmt.Sprintf("DMARC policy is only applied to %d%% of emails", v))
		}
	}
	return result
}
