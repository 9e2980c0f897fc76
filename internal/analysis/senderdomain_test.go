package analysis

import (
	"testing"

	"github.com/phishguard/phishguard/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSenderDomainEmpty(t *testing.T) {
	a := newTestAnalyzer()

	result := a.analyzeSenderDomain(&core.NormalizedEmail{SenderEmail: "no-domain-here"})

	assert.Zero(t, result.Score)
	assert.Empty(t, result.SenderDomain)
}

func TestAnalyzeSenderDomainDisposable(t *testing.T) {
	a := newTestAnalyzer()

	result := a.analyzeSenderDomain(&core.NormalizedEmail{SenderEmail: "alice@mailinator.com"})

	assert.InDelta(t, 0.4, result.Score, 0.001)
	assert.Contains(t, result.Indicators, "temporary_email_domain")
}

func TestAnalyzeSenderDomainSpoofing(t *testing.T) {
	a := newTestAnalyzer()

	result := a.analyzeSenderDomain(&core.NormalizedEmail{SenderEmail: "support@secure-paypal.com"})

	assert.InDelta(t, 0.6, result.Score, 0.001)
	assert.Contains(t, result.Indicators, "domain_spoofing_attempt")
}

func TestAnalyzeSenderDomainAccentedSpoof(t *testing.T) {
	a := newTestAnalyzer()

	// Combining marks must not hide the impersonated brand.
	result := a.analyzeSenderDomain(&core.NormalizedEmail{SenderEmail: "support@pâypal.com"})

	assert.Contains(t, result.Indicators, "domain_spoofing_attempt")
}

func TestAnalyzeSenderDomainExactBrandNotSpoof(t *testing.T) {
	a := newTestAnalyzer()

	result := a.analyzeSenderDomain(&core.NormalizedEmail{SenderEmail: "service@paypal.com"})

	assert.NotContains(t, result.Indicators, "domain_spoofing_attempt")
	assert.Zero(t, result.Score)
}

func TestAnalyzeSenderDomainNumbers(t *testing.T) {
	a := newTestAnalyzer()

	result := a.analyzeSenderDomain(&core.NormalizedEmail{SenderEmail: "info@accounts123.com"})

	assert.InDelta(t, 0.15, result.Score, 0.001)
	assert.Contains(t, result.Indicators, "numbers_in_domain")
}

func TestAnalyzeSenderDomainLongLabel(t *testing.T) {
	a := newTestAnalyzer()

	result := a.analyzeSenderDomain(&core.NormalizedEmail{
		SenderEmail: "x@averyveryverylongdomainlabel.com",
	})

	assert.InDelta(t, 0.10, result.Score, 0.001)
	assert.Contains(t, result.Indicators, "unusually_long_domain")
}

func TestAnalyzeSenderDomainOrdinary(t *testing.T) {
	a := newTestAnalyzer()

	result := a.analyzeSenderDomain(&core.NormalizedEmail{SenderEmail: "bob@example.com"})

	assert.Zero(t, result.Score)
	assert.Empty(t, result.Indicators)
}
