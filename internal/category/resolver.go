// Package category resolves heterogeneous upstream category labels onto the
// five canonical KMFI performance components.
package category

import (
	"regexp"
	"strings"
)

// Code is a canonical performance component.
type Code string

const (
	PMS  Code = "PMS"  // People Management Systems
	PCII Code = "PCII" // Production, Continuous Improvement & Innovation
	PIM  Code = "PIM"  // Procurement & Inputs Management
	PE   Code = "PE"   // Public Engagement
	GLC  Code = "GLC"  // Governance & Leadership Culture
)

// All lists the canonical codes in display order.
var All = []Code{PMS, PCII, PIM, PE, GLC}

// aliases maps lowercase-trimmed category labels seen in historical data to
// canonical codes. Checked after the exact code match, before the regex
// heuristics.
var aliases = map[string]Code{
	"people management systems":                        PMS,
	"people management":                                PMS,
	"personnel management systems":                     PMS,
	"production, continuous improvement & innovation":  PCII,
	"production continuous improvement and innovation": PCII,
	"continuous improvement & innovation":              PCII,
	"procurement and suppliers":                        PIM,
	"procurement & inputs management":                  PIM,
	"procurement and inputs management":                PIM,
	"public engagement":                                PE,
	"sat public engagement":                            PE,
	"governance & leadership culture":                  GLC,
	"governance and leadership culture":                GLC,
	"governance leadership culture":                    GLC,
}

// heuristics are ordered regex fallbacks over the lowercased label. First
// match wins, so the more distinctive patterns come first.
var heuristics = []struct {
	re   *regexp.Regexp
	code Code
}{
	{regexp.MustCompile(`\bpms\b`), PMS},
	{regexp.MustCompile(`\bpcii\b|continuous improve`), PCII},
	{regexp.MustCompile(`\bpim\b|procurement|supplier`), PIM},
	{regexp.MustCompile(`\bpe\b|public engagement`), PE},
	{regexp.MustCompile(`\bglc\b|governance|leadership culture`), GLC},
}

// Resolve maps a raw category label or code onto a canonical Code. The
// second return is false when the label cannot be resolved; such records are
// excluded from all aggregates rather than treated as errors.
func Resolve(raw string) (Code, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	// 1. Exact canonical code, case-insensitive.
	upper := strings.ToUpper(trimmed)
	for _, c := range All {
		if upper == string(c) {
			return c, true
		}
	}

	// 2. Alias table.
	lower := strings.ToLower(trimmed)
	if c, ok := aliases[lower]; ok {
		return c, true
	}

	// 3. Ordered regex heuristics.
	for _, h := range heuristics {
		if h.re.MatchString(lower) {
			return h.code, true
		}
	}

	return "", false
}
