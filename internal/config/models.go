package config

// ClassifierConfig represents the configuration for the ML classifier boundary
type ClassifierConfig struct {
	Provider string
}

// BayesConfig represents the configuration for the native naive-Bayes classifier
type BayesConfig struct {
	DatasetPath string
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// SMTPConfig represents the configuration for the SMTP filter front end
type SMTPConfig struct {
	Enabled          bool
	ListenAddress    string
	BlockQuarantined bool
	StatusHeader     string
	ScoreHeader      string
	LevelHeader      string
	IndicatorsHeader string
	RelayEnabled     bool
	RelayAddress     string
	RelayPort        int
}

// ServerConfig represents the configuration for the HTTP API server
type ServerConfig struct {
	ListenAddress string
	ReadTimeout   string
	WriteTimeout  string
}

// StoreConfig represents the configuration for the assessment store
type StoreConfig struct {
	Type             string
	Retention        string
	CleanupFrequency string
	SQLitePath       string
	MySQLDSN         string
}

// EngineConfig represents the configuration for the scoring engine
type EngineConfig struct {
	TrustedDomains []string
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Provider: c.GetString("classifier.provider"),
	}
}

// GetBayes returns the naive-Bayes classifier configuration
func (c *Config) GetBayes() BayesConfig {
	return BayesConfig{
		DatasetPath: c.GetString("bayes.dataset_path"),
		MaxBodySize: c.GetInt("bayes.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetSMTP returns the SMTP filter configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Enabled:          c.GetBool("smtp.enabled"),
		ListenAddress:    c.GetString("smtp.listen_address"),
		BlockQuarantined: c.GetBool("smtp.block_quarantined"),
		StatusHeader:     c.GetString("smtp.headers.status"),
		ScoreHeader:      c.GetString("smtp.headers.score"),
		LevelHeader:      c.GetString("smtp.headers.level"),
		IndicatorsHeader: c.GetString("smtp.headers.indicators"),
		RelayEnabled:     c.GetBool("smtp.relay.enabled"),
		RelayAddress:     c.GetString("smtp.relay.address"),
		RelayPort:        c.GetInt("smtp.relay.port"),
	}
}

// GetServer returns the HTTP API server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
		ReadTimeout:   c.GetString("server.read_timeout"),
		WriteTimeout:  c.GetString("server.write_timeout"),
	}
}

// GetStore returns the assessment store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:             c.GetString("store.type"),
		Retention:        c.GetString("store.retention"),
		CleanupFrequency: c.GetString("store.cleanup_frequency"),
		SQLitePath:       c.GetString("store.sqlite_path"),
		MySQLDSN:         c.GetString("store.mysql_dsn"),
	}
}

// GetEngine returns the scoring engine configuration
func (c *Config) GetEngine() EngineConfig {
	return EngineConfig{
		TrustedDomains: c.GetStringSlice("engine.trusted_domains"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}
