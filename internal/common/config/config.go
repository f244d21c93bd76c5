// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Assessment    AssessmentConfig        `mapstructure:"assessment"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Integrations  IntegrationConfig       `mapstructure:"integrations"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the public HTTP API settings.
type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	MetricsPort     int      `mapstructure:"metrics_port"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	AllowedHosts    []string `mapstructure:"allowed_hosts"`
	RateLimit       struct {
		Requests int `mapstructure:"requests"`
		Window   int `mapstructure:"window"` // milliseconds
	} `mapstructure:"rate_limit"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	EnquiryProcess string `mapstructure:"enquiry_process"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// Configured reports whether enough settings are present to open a connection.
func (p PostgresConfig) Configured() bool {
	return p.Host != "" && p.Database != "" && p.User != ""
}

type ElasticsearchConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	SSLEnabled   bool     `mapstructure:"ssl_enabled"`
	URL          string   `mapstructure:"url"` // Single URL for backwards compatibility
	ContentIndex string   `mapstructure:"content_index"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AssessmentConfig drives question graph traversal and caching.
type AssessmentConfig struct {
	// FanOutQuestionIDs lists multi-select questions whose chosen options
	// each open their own branch.
	FanOutQuestionIDs     []int    `mapstructure:"fan_out_question_ids"`
	ClosingSectionOrdinal int      `mapstructure:"closing_section_ordinal"`
	VisaTypes             []string `mapstructure:"visa_types"`
	QuestionCacheTTL      int      `mapstructure:"question_cache_ttl"` // seconds
	SessionTTL            int      `mapstructure:"session_ttl"`        // seconds
	ReportTitle           string   `mapstructure:"report_title"`
}

// QuestionCacheDuration returns the question set cache TTL.
func (a AssessmentConfig) QuestionCacheDuration() time.Duration {
	return time.Duration(a.QuestionCacheTTL) * time.Second
}

// SessionDuration returns the walker session TTL.
func (a AssessmentConfig) SessionDuration() time.Duration {
	return time.Duration(a.SessionTTL) * time.Second
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Security Configuration ---
type CaptchaConfig struct {
	Expiry      int `mapstructure:"expiry"` // seconds
	MaxAttempts int `mapstructure:"max_attempts"`
}

// IntegrationConfig holds settings for CRM, Email, and other external services.
type IntegrationConfig struct {
	Zoho struct {
		BaseURL   string `mapstructure:"base_url"`
		APIKey    string `mapstructure:"api_key"`
		AuthToken string `mapstructure:"oauth_token"`
	} `mapstructure:"zoho"`

	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled            bool   `mapstructure:"enabled"`
			DefaultSMSSenderID string `mapstructure:"default_sms_sender_id"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`

	Captcha CaptchaConfig `mapstructure:"captcha"`
}

// NotificationConfig holds settings for the send-enquiry-notification worker.
type NotificationConfig struct {
	Email struct {
		Enabled     bool   `mapstructure:"enabled"`
		FromEmail   string `mapstructure:"from_email"`
		OfficeEmail string `mapstructure:"office_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled     bool   `mapstructure:"enabled"`
		OfficePhone string `mapstructure:"office_phone"`
	} `mapstructure:"sms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
