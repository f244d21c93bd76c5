// internal/workers/data-access/query-elasticsearch/config.go
package queryelasticsearch

import "time"

type Config struct {
	Timeout time.Duration
	// Index is used when the job does not name one.
	Index string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Index:   "site_content",
	}
}
