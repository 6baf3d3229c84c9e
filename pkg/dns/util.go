package dns

import "strings"

func NormalizeDomain(domain string) string {
	if strings.HasSuffix(domain, ".") {
		return domain
	}
	return domain + "."
}

func DenormalizeDomain(domain string) string {
	return strings.TrimSuffix(domain, ".")
}
