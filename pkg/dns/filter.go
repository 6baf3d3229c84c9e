package dns

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	rtypes "github.com/aws/aws-sdk-go-v2/service/route53/types"
)

func FilterResourceRecordsWithTypes(records []rtypes.ResourceRecordSet, types []rtypes.RRType) []rtypes.ResourceRecordSet {
	filtered := []rtypes.ResourceRecordSet{}
	for _, record := range records {
		if typeInList(types, record.Type) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// CNAMELabels returns the names of the zone's CNAME records relative to the
// zone apex, so "assets.cdn.example.com." in zone example.com gives
// "assets.cdn". Wildcards and the apex are skipped.
func CNAMELabels(zone string, records []rtypes.ResourceRecordSet) []string {
	suffix := "." + NormalizeDomain(strings.ToLower(zone))
	seen := map[string]bool{}
	labels := []string{}
	for _, record := range FilterResourceRecordsWithTypes(records, []rtypes.RRType{rtypes.RRTypeCname}) {
		name := NormalizeDomain(strings.ToLower(aws.ToString(record.Name)))
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		label := strings.TrimSuffix(name, suffix)
		// Route53 escapes "*" as \052
		if label == "" || strings.Contains(label, "*") || strings.Contains(label, `\052`) || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}

func typeInList(types []rtypes.RRType, t rtypes.RRType) bool {
	for _, t2 := range types {
		if t == t2 {
			return true
		}
	}
	return false
}
