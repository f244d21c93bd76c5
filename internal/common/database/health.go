package database

import (
	"context"
	"time"
)

// Pinger is implemented by every backend client in this package.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckAll pings every configured backend and reports "ok" or the error text
// per name. Nil pingers are reported as "not configured".
func CheckAll(ctx context.Context, timeout time.Duration, backends map[string]Pinger) (map[string]string, bool) {
	status := make(map[string]string, len(backends))
	healthy := true

	for name, p := range backends {
		if p == nil {
			status[name] = "not configured"
			continue
		}
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err := p.Ping(pingCtx)
		cancel()
		if err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}

	return status, healthy
}
