package analysis

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/phishguard/phishguard/internal/core"
)

// domainFolder strips combining marks after compatibility decomposition so
// that confusable spellings like "pâypal" compare equal to "paypal".
var domainFolder = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// analyzeSenderDomain scores the sender's domain against disposable-provider
// and brand-impersonation lists plus shape heuristics.
func (a *Analyzer) analyzeSenderDomain(email *core.NormalizedEmail) core.DomainAnalysis {
	domain := email.SenderDomain()
	result := core.DomainAnalysis{Indicators: []string{}, SenderDomain: domain}
	if domain == "" {
		return result
	}

	score := 0.0

	if _, disposable := a.rules.DisposableDomains[domain]; disposable {
		score += 0.4
		result.Indicators = append(result.Indicators, "temporary_email_domain")
	}

	// A near-match to a real brand domain is treated as impersonation.
	// Only the first matching brand counts.
	folded := foldDomain(domain)
	for _, brand := range a.rules.BrandDomains {
		if domain == brand {
			continue
		}
		if strings.Contains(strings.ReplaceAll(folded, ".", ""), strings.ReplaceAll(brand, ".", "")) {
			score += 0.6
			result.Indicators = append(result.Indicators, "domain_spoofing_attempt")
			break
		}
	}

	label := domain
	if dot := strings.Index(domain, "."); dot >= 0 {
		label = domain[:dot]
	}
	if strings.ContainsAny(label, "0123456789") {
		score += 0.15
		result.Indicators = append(result.Indicators, "numbers_in_domain")
	}
	if len(label) > 20 {
		score += 0.10
		result.Indicators = append(result.Indicators, "unusually_long_domain")
	}

	result.Score = clamp01(score)
	return result
}

func foldDomain(domain string) string {
	folded, _, err := transform.String(domainFolder, domain)
	if err != nil {
		return domain
	}
	return folded
}
