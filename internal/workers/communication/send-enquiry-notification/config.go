// internal/workers/communication/send-enquiry-notification/config.go
package sendenquirynotification

import (
	"time"

	"visa-portal/internal/common/config"
)

type Config struct {
	EmailEnabled        bool
	SMSEnabled          bool
	FromEmail           string
	OfficeEmail         string
	OfficePhone         string
	SendAcknowledgement bool
	Timeout             time.Duration
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled:        true,
		SendAcknowledgement: true,
		Timeout:             10 * time.Second,
	}
}

// ConfigFromApp reads the notifications section.
func ConfigFromApp(cfg *config.Config) *Config {
	c := LoadConfig()
	if cfg == nil {
		return c
	}
	c.EmailEnabled = cfg.Notifications.Email.Enabled
	c.FromEmail = cfg.Notifications.Email.FromEmail
	if c.FromEmail == "" {
		c.FromEmail = cfg.Integrations.AWS.SES.FromEmail
	}
	c.OfficeEmail = cfg.Notifications.Email.OfficeEmail
	c.SMSEnabled = cfg.Notifications.SMS.Enabled
	c.OfficePhone = cfg.Notifications.SMS.OfficePhone
	if wcfg := config.GetWorkerConfig(cfg, TaskType); wcfg.Timeout > 0 {
		c.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return c
}
