package config

import (
	"fmt"
	"time"
)

// LLMConfig represents the configuration for the LLM provider.
// A RateLimit of zero leaves model calls unthrottled.
type LLMConfig struct {
	Provider  string
	RateLimit float64
	RateBurst int
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
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// AnthropicConfig represents the configuration for Anthropic Claude
type AnthropicConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	MaxBodySize int
}

// ServerConfig represents the configuration for the HTTP API
type ServerConfig struct {
	ListenAddress   string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// IsDevelopment reports whether error details may be exposed to clients
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development"
}

// TriageConfig represents the configuration for batch triage
type TriageConfig struct {
	Concurrency int
	Timeout     time.Duration
	MaxBodySize int
}

// DatasetConfig represents the configuration for the CSV dataset
type DatasetConfig struct {
	Path        string
	LoadOnStart bool
}

// StoreConfig represents the configuration for the record store
type StoreConfig struct {
	Type        string
	SQLitePath  string
	MySQLDSN    string
	PostgresDSN string
	PebblePath  string
}

// SMTPIntakeConfig represents the configuration for the SMTP intake server
type SMTPIntakeConfig struct {
	Enabled         bool
	ListenAddress   string
	Domain          string
	MaxMessageBytes int64
}

// IMAPIntakeConfig represents the configuration for the IMAP poller
type IMAPIntakeConfig struct {
	Enabled      bool
	Address      string
	Username     string
	Password     string
	Mailbox      string
	PollInterval time.Duration
	Schedule     string
}

// MailerConfig represents the configuration for outbound replies. Provider
// selects smtp, resend or sendgrid; the API providers use APIKey and an
// optional BaseURL.
type MailerConfig struct {
	Enabled  bool
	Provider string
	Address  string
	Port     int
	From     string
	APIKey   string
	BaseURL  string
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:  c.GetString("llm.provider"),
		RateLimit: c.GetFloat64("llm.rate_limit"),
		RateBurst: c.GetInt("llm.rate_burst"),
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

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetAnthropic returns the Anthropic configuration
func (c *Config) GetAnthropic() AnthropicConfig {
	return AnthropicConfig{
		APIKey:      c.GetString("anthropic.api_key"),
		BaseURL:     c.GetString("anthropic.base_url"),
		ModelName:   c.GetString("anthropic.model_name"),
		MaxTokens:   c.GetInt("anthropic.max_tokens"),
		Temperature: float32(c.GetFloat64("anthropic.temperature")),
		MaxBodySize: c.GetInt("anthropic.max_body_size"),
	}
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		Environment:     c.GetString("server.environment"),
		ReadTimeout:     c.durationOr("server.read_timeout", 15*time.Second),
		WriteTimeout:    c.durationOr("server.write_timeout", 60*time.Second),
		ShutdownTimeout: c.durationOr("server.shutdown_timeout", 10*time.Second),
	}
}

// GetTriage returns the triage configuration. MaxBodySize follows the
// active provider's max_body_size.
func (c *Config) GetTriage() TriageConfig {
	maxBody := 4096
	if provider := c.GetLLM().Provider; c.v.IsSet(provider + ".max_body_size") {
		maxBody = c.GetInt(provider + ".max_body_size")
	}

	concurrency := c.GetInt("triage.concurrency")
	if concurrency < 1 {
		concurrency = 1
	}

	return TriageConfig{
		Concurrency: concurrency,
		Timeout:     c.durationOr("triage.timeout", 30*time.Second),
		MaxBodySize: maxBody,
	}
}

// GetDataset returns the dataset configuration
func (c *Config) GetDataset() DatasetConfig {
	return DatasetConfig{
		Path:        c.GetString("dataset.path"),
		LoadOnStart: c.GetBool("dataset.load_on_start"),
	}
}

// GetSupportKeywords returns the subject keywords that mark a support message
func (c *Config) GetSupportKeywords() []string {
	return c.GetStringSlice("inbox.support_keywords")
}

// GetStore returns the record store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:        c.GetString("store.type"),
		SQLitePath:  c.GetString("store.sqlite_path"),
		MySQLDSN:    c.GetString("store.mysql_dsn"),
		PostgresDSN: c.GetString("store.postgres_dsn"),
		PebblePath:  c.GetString("store.pebble_path"),
	}
}

// GetSMTPIntake returns the SMTP intake configuration
func (c *Config) GetSMTPIntake() SMTPIntakeConfig {
	return SMTPIntakeConfig{
		Enabled:         c.GetBool("intake.smtp.enabled"),
		ListenAddress:   c.GetString("intake.smtp.listen_address"),
		Domain:          c.GetString("intake.smtp.domain"),
		MaxMessageBytes: int64(c.GetInt("intake.smtp.max_message_bytes")),
	}
}

// GetIMAPIntake returns the IMAP intake configuration
func (c *Config) GetIMAPIntake() IMAPIntakeConfig {
	return IMAPIntakeConfig{
		Enabled:      c.GetBool("intake.imap.enabled"),
		Address:      c.GetString("intake.imap.address"),
		Username:     c.GetString("intake.imap.username"),
		Password:     c.GetString("intake.imap.password"),
		Mailbox:      c.GetString("intake.imap.mailbox"),
		PollInterval: c.durationOr("intake.imap.poll_interval", 5*time.Minute),
		Schedule:     c.GetString("intake.imap.schedule"),
	}
}

// GetMailer returns the outbound mailer configuration
func (c *Config) GetMailer() MailerConfig {
	return MailerConfig{
		Enabled:  c.GetBool("mailer.enabled"),
		Provider: c.GetString("mailer.provider"),
		Address:  c.GetString("mailer.address"),
		Port:     c.GetInt("mailer.port"),
		From:     c.GetString("mailer.from"),
		APIKey:   c.GetString("mailer.api_key"),
		BaseURL:  c.GetString("mailer.base_url"),
	}
}

// MailerAddress returns the host:port of the outbound relay
func (m MailerConfig) MailerAddress() string {
	return fmt.Sprintf("%s:%d", m.Address, m.Port)
}

// durationOr parses key as a duration, falling back when it is unset or invalid
func (c *Config) durationOr(key string, fallback time.Duration) time.Duration {
	d, err := c.GetDuration(key)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
