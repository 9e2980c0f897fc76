package analysis

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/phishguard/phishguard/internal/core"
)

// sortedKeys gives a stable iteration order over the keyword table so that
// repeated analyses of the same email report keywords identically.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// analyzeContent scores the subject plus body text against the keyword,
// urgency, financial, capitalization and punctuation heuristics. Keywords are
// counted once each regardless of repetition and their combined contribution
// is capped so no single signal saturates the score.
func (a *Analyzer) analyzeContent(email *core.NormalizedEmail) core.HeuristicAnalysis {
	result := core.HeuristicAnalysis{Indicators: []string{}, MatchedKeywords: []string{}}

	text := strings.TrimSpace(email.Subject + " " + email.BodyText)
	if text == "" {
		return result
	}
	folded := strings.ToLower(text)

	score := 0.0

	keywordScore := 0.0
	for _, kw := range sortedKeys(a.rules.PhishingKeywords) {
		if strings.Contains(folded, kw) {
			keywordScore += a.rules.PhishingKeywords[kw]
			result.MatchedKeywords = append(result.MatchedKeywords, kw)
		}
	}
	if keywordScore > a.rules.KeywordCeiling {
		keywordScore = a.rules.KeywordCeiling
	}
	score += keywordScore
	if n := len(result.MatchedKeywords); n > 0 {
		result.Indicators = append(result.Indicators, "phishing_keywords_"+strconv.Itoa(n))
	}

	urgency := 0
	for _, word := range a.rules.UrgencyWords {
		if strings.Contains(folded, word) {
			urgency++
		}
	}
	result.UrgencyCount = urgency
	if urgency > 0 {
		score += float64(urgency) * a.rules.UrgencyWeight
		result.Indicators = append(result.Indicators, "urgency_indicators")
	}

	money := 0
	for _, word := range a.rules.MoneyWords {
		if strings.Contains(folded, word) {
			money++
		}
	}
	if money > 2 {
		score += a.rules.FinancialBonus
		result.Indicators = append(result.Indicators, "financial_request")
	}

	// Capitalization is measured on the raw text, before case folding.
	upper := 0
	for _, r := range text {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if ratio := float64(upper) / float64(len([]rune(text))); ratio > a.rules.CapsRatioLimit {
		score += a.rules.CapsBonus
		result.Indicators = append(result.Indicators, "excessive_caps")
	}

	if strings.Count(text, "!") > a.rules.BangLimit {
		score += a.rules.BangBonus
		result.Indicators = append(result.Indicators, "excessive_punctuation")
	}

	result.Score = clamp01(score)
	return result
}
