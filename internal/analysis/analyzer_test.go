package analysis

import (
	"sync"
	"testing"

	"github.com/phishguard/phishguard/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeEmptyEmailIsClean(t *testing.T) {
	a := newTestAnalyzer()

	assessment := a.Analyze(&core.NormalizedEmail{
		SPFResult:   core.AuthPass,
		DKIMResult:  core.AuthPass,
		DMARCResult: core.AuthPass,
	})

	assert.Zero(t, assessment.Score)
	assert.Equal(t, core.LevelClean, assessment.Level)
	assert.Equal(t, core.ActionAllow, assessment.Action)
	assert.False(t, assessment.IsPhishing)
	assert.False(t, assessment.IsSpam)
	assert.False(t, assessment.IsMalware)
	assert.InDelta(t, 0.6, assessment.Confidence, 0.001)
	assert.Equal(t, "rules", assessment.EngineUsed)
}

func TestAnalyzeNilEmail(t *testing.T) {
	a := newTestAnalyzer()

	assessment := a.Analyze(nil)

	require.NotNil(t, assessment)
	assert.Equal(t, core.LevelClean, assessment.Level)
}

func TestAnalyzeObviousPhishing(t *testing.T) {
	a := newTestAnalyzer()

	assessment := a.Analyze(&core.NormalizedEmail{
		Subject:     "URGENT: Verify your account now!!!!",
		SenderEmail: "security@10minutemail.com",
		BodyText: "Your PayPal account is suspended. Click the link to verify " +
			"your password immediately or your account will expire.",
		URLs: []core.URL{
			{Raw: "http://credential-harvest.com/login", Domain: "credential-harvest.com"},
		},
		Attachments: []core.Attachment{
			{Filename: "invoice.pdf.exe", ContentType: "application/octet-stream"},
		},
		SPFResult:   core.AuthFail,
		DKIMResult:  core.AuthFail,
		DMARCResult: core.AuthFail,
	})

	assert.GreaterOrEqual(t, assessment.Score, 0.8)
	assert.LessOrEqual(t, assessment.Score, 1.0)
	assert.Equal(t, core.LevelCritical, assessment.Level)
	assert.Equal(t, core.ActionQuarantine, assessment.Action)
	assert.True(t, assessment.IsPhishing)
	assert.True(t, assessment.IsSpam)
	assert.True(t, assessment.IsMalware)
	assert.InDelta(t, 0.9, assessment.Confidence, 0.001)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	a := newTestAnalyzer()
	email := &core.NormalizedEmail{
		Subject:     "Verify your bank account urgently",
		SenderEmail: "alerts@secure-paypal.com",
		BodyText:    "Click http://bit.ly/x to confirm your password",
		URLs:        []core.URL{{Raw: "http://bit.ly/x", Domain: "bit.ly"}},
	}

	first := a.Analyze(email)
	second := a.Analyze(email)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Indicators, second.Indicators)
	assert.Equal(t, first.Details.Heuristic.MatchedKeywords, second.Details.Heuristic.MatchedKeywords)
}

func TestAnalyzeAddingMaliciousURLNeverLowersScore(t *testing.T) {
	a := newTestAnalyzer()

	base := &core.NormalizedEmail{
		Subject:  "Verify your account",
		BodyText: "please confirm",
	}
	withURL := &core.NormalizedEmail{
		Subject:  base.Subject,
		BodyText: base.BodyText,
		URLs: []core.URL{
			{Raw: "http://fake-bank.com/x", Domain: "fake-bank.com"},
		},
	}

	assert.GreaterOrEqual(t, a.Analyze(withURL).Score, a.Analyze(base).Score)
}

func TestAnalyzeSpamFlagNeedsMoreThanThreeKeywords(t *testing.T) {
	a := newTestAnalyzer()

	three := a.Analyze(&core.NormalizedEmail{BodyText: "verify account login"})
	four := a.Analyze(&core.NormalizedEmail{BodyText: "verify account login password"})

	assert.False(t, three.IsSpam)
	assert.True(t, four.IsSpam)
}

func TestAnalyzeConfidenceBounds(t *testing.T) {
	a := newTestAnalyzer()

	emails := []*core.NormalizedEmail{
		{},
		{Subject: "hello"},
		{Subject: "URGENT verify account password bank paypal!!!!",
			URLs: []core.URL{{Raw: "http://fake-bank.com", Domain: "fake-bank.com"}}},
	}
	for _, email := range emails {
		assessment := a.Analyze(email)
		assert.GreaterOrEqual(t, assessment.Confidence, 0.6)
		assert.LessOrEqual(t, assessment.Confidence, 0.9)
	}
}

func TestAnalyzeIndicatorsAreUnique(t *testing.T) {
	a := newTestAnalyzer()

	assessment := a.Analyze(&core.NormalizedEmail{
		URLs: []core.URL{
			{Raw: "http://example.tk", Domain: "example.tk"},
			{Raw: "http://other.tk", Domain: "other.tk"},
		},
	})

	seen := make(map[string]int)
	for _, indicator := range assessment.Indicators {
		seen[indicator]++
	}
	for indicator, count := range seen {
		assert.Equal(t, 1, count, "indicator %q repeated", indicator)
	}
}

func TestSafeRunRecoversPanic(t *testing.T) {
	a := newTestAnalyzer()

	var wg sync.WaitGroup
	var failure string
	a.safeRun(&wg, "heuristic", &failure, func() { panic("boom") })
	wg.Wait()

	assert.Equal(t, "extractor_error:heuristic", failure)
}
