package analysis

import (
	"github.com/phishguard/phishguard/internal/core"
)

// analyzeAuthentication scores the SPF/DKIM/DMARC verdicts reported by the
// upstream infrastructure. A DMARC failure weighs heaviest: it reflects
// policy alignment and is the strongest spoofing signal of the three.
func (a *Analyzer) analyzeAuthentication(email *core.NormalizedEmail) core.AuthAnalysis {
	result := core.AuthAnalysis{
		Indicators: []string{},
		SPF:        defaultVerdict(email.SPFResult),
		DKIM:       defaultVerdict(email.DKIMResult),
		DMARC:      defaultVerdict(email.DMARCResult),
	}

	score := 0.0

	switch result.SPF {
	case core.AuthFail, core.AuthSoftFail:
		score += 0.4
		result.Indicators = append(result.Indicators, "spf_"+string(result.SPF))
	case core.AuthNone:
		score += 0.1
		result.Indicators = append(result.Indicators, "spf_missing")
	}

	switch result.DKIM {
	case core.AuthFail:
		score += 0.3
		result.Indicators = append(result.Indicators, "dkim_fail")
	case core.AuthNone:
		score += 0.1
		result.Indicators = append(result.Indicators, "dkim_missing")
	}

	switch result.DMARC {
	case core.AuthFail:
		score += 0.5
		result.Indicators = append(result.Indicators, "dmarc_fail")
	case core.AuthNone:
		score += 0.1
		result.Indicators = append(result.Indicators, "dmarc_missing")
	}

	result.Score = clamp01(score)
	return result
}

func defaultVerdict(v core.AuthVerdict) core.AuthVerdict {
	if v == "" {
		return core.AuthNone
	}
	return v
}
