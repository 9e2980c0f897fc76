package core

import (
	"strings"
	"time"
)

// AuthVerdict is the outcome of an SPF, DKIM or DMARC check as reported by
// the upstream mail infrastructure. The engine never computes these itself.
type AuthVerdict string

const (
	AuthPass     AuthVerdict = "pass"
	AuthFail     AuthVerdict = "fail"
	AuthSoftFail AuthVerdict = "softfail"
	AuthNeutral  AuthVerdict = "neutral"
	AuthNone     AuthVerdict = "none"
)

// ParseAuthVerdict normalizes a raw verdict string, defaulting to "none" for
// anything unrecognized or absent.
func ParseAuthVerdict(s string) AuthVerdict {
	switch AuthVerdict(strings.ToLower(strings.TrimSpace(s))) {
	case AuthPass:
		return AuthPass
	case AuthFail:
		return AuthFail
	case AuthSoftFail:
		return AuthSoftFail
	case AuthNeutral:
		return AuthNeutral
	default:
		return AuthNone
	}
}

// URL is a link extracted from an email body together with its parsed domain.
type URL struct {
	Raw    string `json:"url"`
	Domain string `json:"domain"`
}

// Attachment describes a single email attachment.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Headers is a case-insensitive header map.
type Headers map[string][]string

// Get returns the first value for the given header key, ignoring case.
func (h Headers) Get(key string) string {
	for k, v := range h {
		if strings.EqualFold(k, key) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// NormalizedEmail is the parsed, normalized representation of an inbound
// message handed to the scoring engine. MIME parsing happens upstream; the
// engine treats this value as read-only input.
type NormalizedEmail struct {
	Subject        string       `json:"subject"`
	SenderEmail    string       `json:"sender_email"`
	SenderName     string       `json:"sender_name"`
	RecipientEmail string       `json:"recipient_email"`
	RecipientName  string       `json:"recipient_name"`
	BodyText       string       `json:"body_text"`
	BodyHTML       string       `json:"body_html"`
	Headers        Headers      `json:"headers,omitempty"`
	URLs           []URL        `json:"urls"`
	Attachments    []Attachment `json:"attachments"`
	SPFResult      AuthVerdict  `json:"spf_result"`
	DKIMResult     AuthVerdict  `json:"dkim_result"`
	DMARCResult    AuthVerdict  `json:"dmarc_result"`
}

// SenderDomain returns the lowercased domain part of the sender address, or
// an empty string when the address has no domain.
func (e *NormalizedEmail) SenderDomain() string {
	at := strings.LastIndex(e.SenderEmail, "@")
	if at < 0 || at == len(e.SenderEmail)-1 {
		return ""
	}
	return strings.ToLower(e.SenderEmail[at+1:])
}

// ThreatLevel is the discrete bucket derived from the continuous threat score.
type ThreatLevel string

const (
	LevelClean    ThreatLevel = "clean"
	LevelLow      ThreatLevel = "low"
	LevelMedium   ThreatLevel = "medium"
	LevelHigh     ThreatLevel = "high"
	LevelCritical ThreatLevel = "critical"
)

// LevelForScore maps a threat score to its level. Bounds are inclusive lower
// bounds, so the mapping is monotonic in the score.
func LevelForScore(score float64) ThreatLevel {
	switch {
	case score >= 0.8:
		return LevelCritical
	case score >= 0.6:
		return LevelHigh
	case score >= 0.4:
		return LevelMedium
	case score >= 0.2:
		return LevelLow
	default:
		return LevelClean
	}
}

// Rank orders threat levels from clean (0) to critical (4).
func (l ThreatLevel) Rank() int {
	switch l {
	case LevelCritical:
		return 4
	case LevelHigh:
		return 3
	case LevelMedium:
		return 2
	case LevelLow:
		return 1
	default:
		return 0
	}
}

// Action is the recommended response policy for an assessed email.
type Action string

const (
	ActionAllow      Action = "allow"
	ActionFlag       Action = "flag"
	ActionQuarantine Action = "quarantine"
	ActionBlock      Action = "block"
)

// ActionForScore maps a threat score to the recommended action. The cut
// points are tuned independently of the level thresholds.
func ActionForScore(score float64) Action {
	switch {
	case score >= 0.7:
		return ActionQuarantine
	case score >= 0.4:
		return ActionFlag
	default:
		return ActionAllow
	}
}

// Rank orders actions from allow (0) to block (3).
func (a Action) Rank() int {
	switch a {
	case ActionBlock:
		return 3
	case ActionQuarantine:
		return 2
	case ActionFlag:
		return 1
	default:
		return 0
	}
}

// URLRisk is the per-URL breakdown produced by the URL extractor.
type URLRisk struct {
	URL        string   `json:"url"`
	Domain     string   `json:"domain"`
	Score      float64  `json:"risk_score"`
	Indicators []string `json:"indicators"`
}

// AttachmentRisk is the per-attachment breakdown produced by the attachment
// extractor.
type AttachmentRisk struct {
	Filename   string   `json:"filename"`
	Score      float64  `json:"risk_score"`
	Indicators []string `json:"indicators"`
}

// HeuristicAnalysis holds the content extractor's result.
type HeuristicAnalysis struct {
	Score           float64  `json:"heuristic_score"`
	Indicators      []string `json:"indicators"`
	MatchedKeywords []string `json:"matched_keywords"`
	UrgencyCount    int      `json:"urgency_level"`
}

// URLAnalysis holds the URL extractor's result.
type URLAnalysis struct {
	Score      float64   `json:"url_threat_score"`
	Indicators []string  `json:"indicators"`
	URLs       []URLRisk `json:"url_analysis"`
}

// AttachmentAnalysis holds the attachment extractor's result.
type AttachmentAnalysis struct {
	Score       float64          `json:"attachment_threat_score"`
	Indicators  []string         `json:"indicators"`
	Attachments []AttachmentRisk `json:"attachment_analysis"`
}

// AuthAnalysis holds the authentication extractor's result.
type AuthAnalysis struct {
	Score      float64     `json:"auth_threat_score"`
	Indicators []string    `json:"indicators"`
	SPF        AuthVerdict `json:"spf_status"`
	DKIM       AuthVerdict `json:"dkim_status"`
	DMARC      AuthVerdict `json:"dmarc_status"`
}

// DomainAnalysis holds the sender-domain extractor's result.
type DomainAnalysis struct {
	Score        float64  `json:"domain_threat_score"`
	Indicators   []string `json:"indicators"`
	SenderDomain string   `json:"sender_domain"`
}

// AnalysisDetails retains each extractor's full result for audit.
type AnalysisDetails struct {
	Heuristic  HeuristicAnalysis  `json:"heuristic_analysis"`
	URL        URLAnalysis        `json:"url_analysis"`
	Attachment AttachmentAnalysis `json:"attachment_analysis"`
	Auth       AuthAnalysis       `json:"auth_analysis"`
	Domain     DomainAnalysis     `json:"domain_analysis"`
}

// TextClassification is the verdict produced by the optional ML text
// classifier capability.
type TextClassification struct {
	Label       string    `json:"label"` // "spam" or "ham"
	Probability float64   `json:"probability"`
	ModelUsed   string    `json:"model_used"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
}

// IsSpam reports whether the classifier labeled the text as spam.
func (c *TextClassification) IsSpam() bool {
	return c != nil && c.Label == "spam"
}

// ThreatAssessment is the engine's verdict for a single email. It is
// constructed once per analysis call and immutable afterwards; the caller
// owns persistence and any downstream threat-record lifecycle.
type ThreatAssessment struct {
	Score      float64         `json:"threat_score"`
	Level      ThreatLevel     `json:"threat_level"`
	IsPhishing bool            `json:"is_phishing"`
	IsSpam     bool            `json:"is_spam"`
	IsMalware  bool            `json:"is_malware"`
	Confidence float64         `json:"confidence_score"`
	Action     Action          `json:"recommended_action"`
	Indicators []string        `json:"threat_indicators"`
	Details    AnalysisDetails `json:"analysis_details"`

	// ML carries the raw classifier verdict when one was consulted.
	ML *TextClassification `json:"ml_prediction,omitempty"`

	EngineUsed string    `json:"engine_used"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// StoredAssessment is the persisted summary of an assessment, as written by
// an AssessmentStore.
type StoredAssessment struct {
	ID         int64       `json:"id"`
	Subject    string      `json:"subject"`
	Sender     string      `json:"sender_email"`
	Score      float64     `json:"threat_score"`
	Level      ThreatLevel `json:"threat_level"`
	Action     Action      `json:"recommended_action"`
	IsPhishing bool        `json:"is_phishing"`
	IsSpam     bool        `json:"is_spam"`
	IsMalware  bool        `json:"is_malware"`
	Indicators []string    `json:"threat_indicators"`
	CreatedAt  time.Time   `json:"created_at"`
}

// IndicatorCount is one entry of an indicator frequency ranking.
type IndicatorCount struct {
	Indicator string `json:"indicator"`
	Count     int64  `json:"count"`
}

// AssessmentStats summarizes stored assessments for dashboards.
type AssessmentStats struct {
	TotalEmails   int64                 `json:"total_emails"`
	LevelCounts   map[ThreatLevel]int64 `json:"threat_distribution"`
	ActionCounts  map[Action]int64      `json:"action_distribution"`
	TopIndicators []IndicatorCount      `json:"top_indicators"`
}
