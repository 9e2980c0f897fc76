package analysis

import (
	"regexp"
	"strings"

	"github.com/phishguard/phishguard/internal/core"
)

var dottedQuadPattern = regexp.MustCompile(`\d+\.\d+\.\d+\.\d+`)

// analyzeURLs scores each link independently and aggregates by taking the
// maximum per-URL risk: one malicious link is decisive, and averaging would
// dilute it among benign ones.
func (a *Analyzer) analyzeURLs(email *core.NormalizedEmail) core.URLAnalysis {
	result := core.URLAnalysis{Indicators: []string{}, URLs: []core.URLRisk{}}

	maxRisk := 0.0
	for _, u := range email.URLs {
		domain := strings.ToLower(u.Domain)
		risk := 0.0
		indicators := []string{}

		if _, known := a.rules.MaliciousDomains[domain]; known {
			risk += 0.9
			indicators = append(indicators, "known_malicious_domain")
		}

		for _, tld := range a.rules.SuspiciousTLDs {
			if strings.HasSuffix(domain, tld) {
				risk += 0.3
				indicators = append(indicators, "suspicious_tld")
				break
			}
		}

		// Exact or subdomain match only: a substring check would let
		// "t.co" fire on any domain ending in "t.com".
		for _, shortener := range a.rules.Shorteners {
			if domain == shortener || strings.HasSuffix(domain, "."+shortener) {
				risk += 0.2
				indicators = append(indicators, "url_shortener")
				break
			}
		}

		if dottedQuadPattern.MatchString(u.Raw) {
			risk += 0.4
			indicators = append(indicators, "ip_address_url")
		}

		if len(strings.Split(domain, ".")) > 4 {
			risk += 0.15
			indicators = append(indicators, "excessive_subdomains")
		}

		if a.looksHomograph(domain) {
			risk += 0.3
			indicators = append(indicators, "potential_homograph")
		}

		risk = clamp01(risk)
		result.URLs = append(result.URLs, core.URLRisk{
			URL:        u.Raw,
			Domain:     domain,
			Score:      risk,
			Indicators: indicators,
		})
		result.Indicators = appendUnique(result.Indicators, indicators...)
		if risk > maxRisk {
			maxRisk = risk
		}
	}

	result.Score = clamp01(maxRisk)
	return result
}

// looksHomograph flags domains that mix lookalike substitution characters
// with a targeted brand substring.
func (a *Analyzer) looksHomograph(domain string) bool {
	brand := false
	for _, b := range a.rules.HomographBrands {
		if strings.Contains(domain, b) {
			brand = true
			break
		}
	}
	if !brand {
		return false
	}
	for _, c := range a.rules.HomographChars {
		if strings.Contains(domain, c) {
			return true
		}
	}
	return false
}

// appendUnique appends the given values to list, skipping ones already there.
func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		seen := false
		for _, existing := range list {
			if existing == v {
				seen = true
				break
			}
		}
		if !seen {
			list = append(list, v)
		}
	}
	return list
}
