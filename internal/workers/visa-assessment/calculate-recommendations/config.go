package calculaterecommendations

import "time"

type Config struct {
	Timeout time.Duration
	// UseFallback serves the embedded recommendation rows when the backend
	// cannot be queried.
	UseFallback bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     10 * time.Second,
		UseFallback: true,
	}
}
