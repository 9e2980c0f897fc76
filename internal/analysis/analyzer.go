package analysis

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/core"
)

// Analyzer is the rule-based threat scoring engine. It holds no mutable
// state: every Analyze call is a pure function of its input and the rule
// tables fixed at construction, so one Analyzer serves concurrent callers.
type Analyzer struct {
	rules  *RuleSet
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer from the given rule tables. A nil rules
// argument selects the default production tables.
func NewAnalyzer(rules *RuleSet, logger *zap.Logger) *Analyzer {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	return &Analyzer{rules: rules, logger: logger}
}

// Analyze runs the five extractors over the email and combines their
// sub-scores into a single assessment. The extractors have no data
// dependency on each other and run concurrently; a panicking extractor
// contributes a zero sub-score and an extractor_error indicator instead of
// aborting the assessment.
func (a *Analyzer) Analyze(email *core.NormalizedEmail) *core.ThreatAssessment {
	if email == nil {
		email = &core.NormalizedEmail{}
	}

	var details core.AnalysisDetails
	failures := make([]string, 5)

	var wg sync.WaitGroup
	a.safeRun(&wg, "heuristic", &failures[0], func() { details.Heuristic = a.analyzeContent(email) })
	a.safeRun(&wg, "url", &failures[1], func() { details.URL = a.analyzeURLs(email) })
	a.safeRun(&wg, "attachment", &failures[2], func() { details.Attachment = a.analyzeAttachments(email) })
	a.safeRun(&wg, "auth", &failures[3], func() { details.Auth = a.analyzeAuthentication(email) })
	a.safeRun(&wg, "domain", &failures[4], func() { details.Domain = a.analyzeSenderDomain(email) })
	wg.Wait()

	// The weights sum past 1.0 on purpose; clamp after summing rather
	// than renormalizing so correlated weak signals can still saturate.
	score := clamp01(
		details.Heuristic.Score*a.rules.HeuristicWeight +
			details.URL.Score*a.rules.URLWeight +
			details.Attachment.Score*a.rules.AttachmentWeight +
			details.Auth.Score*a.rules.AuthWeight +
			details.Domain.Score*a.rules.DomainWeight,
	)

	indicators := []string{}
	indicators = appendUnique(indicators, details.Heuristic.Indicators...)
	indicators = appendUnique(indicators, details.URL.Indicators...)
	indicators = appendUnique(indicators, details.Attachment.Indicators...)
	indicators = appendUnique(indicators, details.Auth.Indicators...)
	indicators = appendUnique(indicators, details.Domain.Indicators...)
	for _, failure := range failures {
		if failure != "" {
			indicators = appendUnique(indicators, failure)
		}
	}

	assessment := &core.ThreatAssessment{
		Score:      score,
		Level:      core.LevelForScore(score),
		Action:     core.ActionForScore(score),
		Confidence: confidence(score, len(indicators)),
		Indicators: indicators,
		Details:    details,
		EngineUsed: "rules",
		AnalyzedAt: time.Now(),

		IsPhishing: details.Heuristic.Score > 0.4 ||
			len(details.Heuristic.Indicators) > 2 ||
			details.URL.Score > 0.5,
		IsSpam:    len(details.Heuristic.MatchedKeywords) > 3,
		IsMalware: details.Attachment.Score > 0.6,
	}
	return assessment
}

// safeRun executes one extractor in its own goroutine, converting a panic
// into a diagnostic indicator so a broken extractor degrades the assessment
// instead of failing it.
func (a *Analyzer) safeRun(wg *sync.WaitGroup, name string, failure *string, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				*failure = "extractor_error:" + name
				if a.logger != nil {
					a.logger.Error("Extractor panicked",
						zap.String("extractor", name),
						zap.Any("panic", r))
				}
			}
		}()
		fn()
	}()
}

// confidence floors at 0.6 even with zero indicators and caps at 0.9:
// heuristics alone are never fully certain.
func confidence(score float64, indicatorCount int) float64 {
	return math.Min(0.9, 0.6+0.05*float64(indicatorCount)+0.3*score)
}
