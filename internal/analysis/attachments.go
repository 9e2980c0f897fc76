package analysis

import (
	"strings"

	"github.com/phishguard/phishguard/internal/core"
)

// analyzeAttachments scores each attachment independently and aggregates by
// taking the maximum risk, mirroring the URL extractor: one dangerous
// attachment is decisive.
func (a *Analyzer) analyzeAttachments(email *core.NormalizedEmail) core.AttachmentAnalysis {
	result := core.AttachmentAnalysis{Indicators: []string{}, Attachments: []core.AttachmentRisk{}}

	maxRisk := 0.0
	for _, att := range email.Attachments {
		filename := strings.ToLower(att.Filename)
		risk := 0.0
		indicators := []string{}

		// Dangerous extensions take precedence over the macro-capable
		// ones, which only apply when nothing worse matched.
		if hasAnySuffix(filename, a.rules.DangerousExtensions) {
			risk += 0.8
			indicators = append(indicators, "dangerous_file_extension")
		} else if hasAnySuffix(filename, a.rules.MacroExtensions) {
			risk += 0.3
			indicators = append(indicators, "suspicious_file_extension")
		}

		if strings.Count(filename, ".") > 1 {
			risk += 0.25
			indicators = append(indicators, "double_extension")
		}

		if strings.HasSuffix(filename, ".pdf") && !strings.Contains(att.ContentType, "pdf") {
			risk += 0.4
			indicators = append(indicators, "content_type_mismatch")
		}

		for _, lure := range a.rules.LureAttachmentNames {
			if strings.Contains(filename, lure) {
				risk += 0.2
				indicators = append(indicators, "suspicious_filename")
				break
			}
		}

		risk = clamp01(risk)
		result.Attachments = append(result.Attachments, core.AttachmentRisk{
			Filename:   filename,
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

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
