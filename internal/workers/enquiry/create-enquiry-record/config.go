package createenquiryrecord

import "time"

type Config struct {
	Timeout time.Duration
	// DuplicateWindow is how far back an identical email and message pair
	// counts as a resubmission.
	DuplicateWindow time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         10 * time.Second,
		DuplicateWindow: 24 * time.Hour,
	}
}
