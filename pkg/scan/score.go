package scan

import "github.com/pedrokiefer/exposure/pkg/risk"

// Score subtracts the penalties from 100, floored at 0.
func Score(penalties ...int) int {
	total := 0
	for _, p := range penalties {
		total += p
	}
	if total >= 100 {
		return 0
	}
	if total < 0 {
		return 100
	}
	return 100 - total
}

func Grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 55:
		return "D"
	}
	return "F"
}

// Penalties returns the penalty of each check, in report order.
func (r *Result) Penalties() []int {
	return []int{
		r.EmailSpoofing.Penalty,
		r.Typosquats.Penalty,
		r.CertificateTransparency.Penalty,
		r.CredentialExposure.Penalty,
		r.DanglingDNS.Penalty,
	}
}

func (r *Result) Risks() []risk.Risk {
	return []risk.Risk{
		r.EmailSpoofing.Risk,
		r.Typosquats.Risk,
		r.CertificateTransparency.Risk,
		r.CredentialExposure.Risk,
		r.DanglingDNS.Risk,
	}
}

// grade fills Score, Grade and OverallRisk from the five findings.
func (r *Result) grade() {
	r.Score = Score(r.Penalties()...)
	r.Grade = Grade(r.Score)
	r.OverallRisk = risk.Max(r.Risks()...)
}
