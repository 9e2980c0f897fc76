package analysis

// RuleSet is the immutable configuration data driving the extractors:
// keyword weights, domain lists and the aggregation weights. A RuleSet is
// built once at construction time and never mutated afterwards, so a single
// instance can be shared by concurrent analyses.
type RuleSet struct {
	// Content heuristics.
	PhishingKeywords map[string]float64
	KeywordCeiling   float64
	UrgencyWords     []string
	UrgencyWeight    float64
	MoneyWords       []string
	FinancialBonus   float64
	CapsRatioLimit   float64
	CapsBonus        float64
	BangLimit        int
	BangBonus        float64

	// URL heuristics.
	MaliciousDomains map[string]struct{}
	SuspiciousTLDs   []string
	Shorteners       []string
	HomographChars   []string
	HomographBrands  []string

	// Attachment heuristics.
	DangerousExtensions []string
	MacroExtensions     []string
	LureAttachmentNames []string

	// Sender-domain heuristics.
	DisposableDomains map[string]struct{}
	BrandDomains      []string

	// Aggregation. The weights intentionally sum to more than 1.0: the
	// sender-domain signal reinforces the others rather than being an
	// independent axis, and the final sum is clamped instead of
	// renormalized so that multi-signal agreement saturates to critical
	// faster than any single extractor could.
	HeuristicWeight  float64
	URLWeight        float64
	AttachmentWeight float64
	AuthWeight       float64
	DomainWeight     float64
}

// DefaultRuleSet returns the production rule tables.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		PhishingKeywords: map[string]float64{
			"urgent": 0.15, "verify": 0.15, "suspend": 0.2, "account": 0.1, "click": 0.1,
			"login": 0.12, "password": 0.15, "paypal": 0.2, "bank": 0.2, "credit": 0.15,
			"social security": 0.25, "tax": 0.15, "refund": 0.15, "winner": 0.2,
			"prize": 0.2, "lottery": 0.25, "inheritance": 0.25, "congratulations": 0.1,
			"expire": 0.15, "limited time": 0.15, "act now": 0.2, "confirm": 0.12, "validate": 0.12,
		},
		KeywordCeiling: 0.6,
		UrgencyWords:   []string{"urgent", "immediate", "expires", "deadline", "asap", "emergency", "within 24 hours"},
		UrgencyWeight:  0.08,
		MoneyWords:     []string{"money", "payment", "transfer", "wire", "bitcoin", "cryptocurrency", "$", "€", "£"},
		FinancialBonus: 0.15,
		CapsRatioLimit: 0.3,
		CapsBonus:      0.10,
		BangLimit:      3,
		BangBonus:      0.05,

		MaliciousDomains: stringSet(
			"malware-site.org", "phishing-test.com", "suspicious-domain.net",
			"fake-bank.com", "credential-harvest.com", "scam-site.net",
			"phish-example.org", "malicious-download.com",
		),
		SuspiciousTLDs:  []string{".tk", ".ml", ".ga", ".cf", ".click", ".download"},
		Shorteners:      []string{"bit.ly", "tinyurl.com", "t.co", "goo.gl", "ow.ly", "short.link"},
		HomographChars:  []string{"0", "1", "l", "o", "rn", "vv"},
		HomographBrands: []string{"bank", "paypal"},

		DangerousExtensions: []string{
			".exe", ".scr", ".bat", ".cmd", ".com", ".pif", ".vbs", ".js",
			".jar", ".zip", ".rar", ".7z", ".msi", ".deb", ".dmg",
		},
		MacroExtensions:     []string{".docm", ".xlsm", ".pptm", ".pdf"},
		LureAttachmentNames: []string{"invoice", "receipt", "statement", "refund", "payment"},

		DisposableDomains: stringSet(
			"tempmail.com", "10minutemail.com", "guerrillamail.com",
			"mailinator.com", "throwaway.email", "temp-mail.org",
		),
		BrandDomains: []string{"paypal.com", "amazon.com", "microsoft.com", "google.com", "apple.com"},

		HeuristicWeight:  0.40,
		URLWeight:        0.25,
		AttachmentWeight: 0.20,
		AuthWeight:       0.10,
		DomainWeight:     0.25,
	}
}

func stringSet(items ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
