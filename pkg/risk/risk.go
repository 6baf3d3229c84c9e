package risk

// Risk is the severity tier reported by every check.
type Risk string

const (
	Low      Risk = "low"
	Medium   Risk = "medium"
	High     Risk = "high"
	Critical Risk = "critical"
)

// Severity orders tiers, low < medium < high < critical. Unknown tiers sort below low.
func (r Risk) Severity() int {
	switch r {
	case Low:
		return 1
	case Medium:
		return 2
	case High:
		return 3
	case Critical:
		return 4
	}
	return 0
}

// AtLeast returns the worse of r and min.
func (r Risk) AtLeast(min Risk) Risk {
	if min.Severity() > r.Severity() {
		return min
	}
	return r
}

// Max returns the most severe tier in rs, or Low when rs is empty.
func Max(rs ...Risk) Risk {
	max := Low
	for _, r := range rs {
		if r.Severity() > max.Severity() {
			max = r
		}
	}
	return max
}
