package generatereport

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	Title       string        `mapstructure:"title"`
	CompanyName string        `mapstructure:"company_name"`
	ContactLine string        `mapstructure:"contact_line"`
	Compress    bool          `mapstructure:"compress"`
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:     10 * time.Second,
		Title:       "Visa Assessment Report",
		CompanyName: "Visa Portal",
		ContactLine: "Book a consultation with our advisors to review your case.",
		Compress:    true,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.CompanyName == "" {
		return fmt.Errorf("company_name is required")
	}
	return nil
}
