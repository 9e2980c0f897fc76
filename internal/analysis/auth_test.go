package analysis

import (
	"testing"

	"github.com/phishguard/phishguard/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestAnalyzeAuthentication(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name       string
		spf        core.AuthVerdict
		dkim       core.AuthVerdict
		dmarc      core.AuthVerdict
		score      float64
		indicators []string
	}{
		{
			name: "all pass", spf: core.AuthPass, dkim: core.AuthPass, dmarc: core.AuthPass,
			score: 0, indicators: []string{},
		},
		{
			name: "spf fail", spf: core.AuthFail, dkim: core.AuthPass, dmarc: core.AuthPass,
			score: 0.4, indicators: []string{"spf_fail"},
		},
		{
			name: "spf softfail", spf: core.AuthSoftFail, dkim: core.AuthPass, dmarc: core.AuthPass,
			score: 0.4, indicators: []string{"spf_softfail"},
		},
		{
			name: "dkim fail", spf: core.AuthPass, dkim: core.AuthFail, dmarc: core.AuthPass,
			score: 0.3, indicators: []string{"dkim_fail"},
		},
		{
			name: "dmarc fail", spf: core.AuthPass, dkim: core.AuthPass, dmarc: core.AuthFail,
			score: 0.5, indicators: []string{"dmarc_fail"},
		},
		{
			name: "all missing", spf: "", dkim: "", dmarc: "",
			score: 0.3, indicators: []string{"spf_missing", "dkim_missing", "dmarc_missing"},
		},
		{
			name: "all fail clamps", spf: core.AuthFail, dkim: core.AuthFail, dmarc: core.AuthFail,
			score: 1.0, indicators: []string{"spf_fail", "dkim_fail", "dmarc_fail"},
		},
		{
			name: "neutral scores nothing", spf: core.AuthNeutral, dkim: core.AuthNeutral, dmarc: core.AuthNeutral,
			score: 0, indicators: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := a.analyzeAuthentication(&core.NormalizedEmail{
				SPFResult:   tt.spf,
				DKIMResult:  tt.dkim,
				DMARCResult: tt.dmarc,
			})

			assert.InDelta(t, tt.score, result.Score, 0.001)
			assert.Equal(t, tt.indicators, result.Indicators)
		})
	}
}

func TestAnalyzeAuthenticationDefaultsEmptyToNone(t *testing.T) {
	a := newTestAnalyzer()

	result := a.analyzeAuthentication(&core.NormalizedEmail{})

	assert.Equal(t, core.AuthNone, result.SPF)
	assert.Equal(t, core.AuthNone, result.DKIM)
	assert.Equal(t, core.AuthNone, result.DMARC)
}
