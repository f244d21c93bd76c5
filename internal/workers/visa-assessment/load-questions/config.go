package loadquestions

import "time"

type Config struct {
	Timeout time.Duration
	// CacheTTL bounds how long a backend question set is served from Redis.
	CacheTTL time.Duration
	// FanOutQuestionIDs are multi-select questions whose options each open
	// their own branch.
	FanOutQuestionIDs []int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           10 * time.Second,
		CacheTTL:          5 * time.Minute,
		FanOutQuestionIDs: []int{50},
	}
}
