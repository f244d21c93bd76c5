package crmleadcreate

import (
	"fmt"
	"time"

	"visa-portal/internal/common/config"
)

type Config struct {
	Enabled        bool          `mapstructure:"enabled"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ZohoBaseURL    string        `mapstructure:"zoho_base_url"`
	ZohoOAuthToken string        `mapstructure:"zoho_oauth_token"`
	LeadSource     string        `mapstructure:"lead_source"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:     true,
		Timeout:     10 * time.Second,
		ZohoBaseURL: "https://www.zohoapis.com/crm/v2",
		LeadSource:  "Website Enquiry",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Enabled && c.ZohoBaseURL == "" {
		return fmt.Errorf("zoho_base_url is required")
	}
	return nil
}

// createConfigFromAppConfig layers the application config over the defaults.
// A custom config wins outright.
func createConfigFromAppConfig(appCfg *config.Config, custom *Config) *Config {
	if custom != nil {
		return custom
	}
	cfg := DefaultConfig()
	if appCfg == nil {
		return cfg
	}

	wcfg := config.GetWorkerConfig(appCfg, TaskType)
	cfg.Enabled = wcfg.Enabled
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	if appCfg.Integrations.Zoho.BaseURL != "" {
		cfg.ZohoBaseURL = appCfg.Integrations.Zoho.BaseURL
	}
	cfg.ZohoOAuthToken = appCfg.Integrations.Zoho.AuthToken
	return cfg
}
