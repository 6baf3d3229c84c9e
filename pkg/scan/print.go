package scan

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pedrokiefer/exposure/pkg/risk"
)

var WhiteBold = color.New(color.FgWhite, color.Bold)

func colorRisk(r risk.Risk) string {
	switch r {
	case risk.Critical:
		return color.New(color.FgRed, color.Bold).Sprint(r)
	case risk.High:
		return color.RedString(string(r))
	case risk.Medium:
		return color.YellowString(string(r))
	}
	return color.GreenString(string(r))
}

// PrintResult writes a summary table of r to w.
func PrintResult(w io.Writer, r *Result) {
	fmt.Fprintf(w, "%s  score %d  grade %s  risk %s\n",
		WhiteBold.Sprint(r.Domain), r.Score, WhiteBold.Sprint(r.Grade), colorRisk(r.OverallRisk))

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Check", "Risk", "Penalty", "Summary"})

	table.Append([]string{"Email spoofing", colorRisk(r.EmailSpoofing.Risk), fmt.Sprint(r.EmailSpoofing.Penalty), r.EmailSpoofing.Details})
	table.Append([]string{"Typosquats", colorRisk(r.Typosquats.Risk), fmt.Sprint(r.Typosquats.Penalty), typosquatSummary(r)})
	table.Append([]string{"Certificate transparency", colorRisk(r.CertificateTransparency.Risk), fmt.Sprint(r.CertificateTransparency.Penalty), certificateSummary(r)})
	table.Append([]string{"Credential exposure", colorRisk(r.CredentialExposure.Risk), fmt.Sprint(r.CredentialExposure.Penalty), r.CredentialExposure.Details})
	table.Append([]string{"Dangling DNS", colorRisk(r.DanglingDNS.Risk), fmt.Sprint(r.DanglingDNS.Penalty), danglingSummary(r)})

	table.Render()
}

// PrintSummary writes one row per result, worst score first.
func PrintSummary(w io.Writer, results []*Result) {
	sorted := append([]*Result(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score < sorted[j].Score
	})

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Domain", "Score", "Grade", "Risk"})
	for _, r := range sorted {
		table.Append([]string{r.Domain, fmt.Sprint(r.Score), r.Grade, colorRisk(r.OverallRisk)})
	}
	table.Render()
}

func typosquatSummary(r *Result) string {
	lines := []string{fmt.Sprintf("%d registered of %d generated", len(r.Typosquats.Registered), r.Typosquats.TotalPermutations)}
	for _, rc := range r.Typosquats.Registered {
		if rc.HasMX {
			lines = append(lines, rc.Domain+" (mail)")
		} else {
			lines = append(lines, rc.Domain)
		}
	}
	return strings.Join(lines, "\n")
}

func certificateSummary(r *Result) string {
	lines := []string{fmt.Sprintf("%d lookalike certificates", len(r.CertificateTransparency.Certificates))}
	for _, c := range r.CertificateTransparency.Certificates {
		lines = append(lines, c.CommonName)
	}
	return strings.Join(lines, "\n")
}

func danglingSummary(r *Result) string {
	lines := []string{r.DanglingDNS.Details}
	for _, d := range r.DanglingDNS.Vulnerable {
		lines = append(lines, fmt.Sprintf("%s -> %s (%s, %s)", d.Subdomain, d.CNAMETarget, d.Provider, d.Status))
	}
	return strings.Join(lines, "\n")
}
