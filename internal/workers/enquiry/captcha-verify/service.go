// Package captchaverify issues and checks the arithmetic challenge shown on
// the enquiry form. Challenges live in Redis and expire with the key.
package captchaverify

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"visa-portal/internal/common/logger"
)

const keyPrefix = "captcha:"

var ErrStoreNotConfigured = errors.New("BACKEND_NOT_CONFIGURED")

// incrExisting bumps a challenge field only while the challenge key still
// exists, so a key that expired mid-verify is never re-created without a TTL.
// Returns -1 for a missing key.
var incrExisting = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return -1
end
return redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
`)

type Service struct {
	config *Config
	logger logger.Logger
	redis  *redis.Client
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		config: config,
		logger: log.WithFields(map[string]interface{}{"service": "captcha-verify"}),
		redis:  deps.Redis,
	}
}

func (s *Service) Enabled() bool {
	return s.config.Enabled
}

// Issue stores a new challenge bound to clientIP.
func (s *Service) Issue(ctx context.Context, clientIP string) (*Challenge, error) {
	if s.redis == nil {
		return nil, ErrStoreNotConfigured
	}

	a, b := rand.IntN(9)+1, rand.IntN(9)+1
	id := "cap_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	ttl := time.Duration(s.config.ExpiryMinutes) * time.Minute

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, keyPrefix+id, map[string]interface{}{
			"value":    strconv.Itoa(a + b),
			"attempts": 0,
			"clientIp": clientIP,
		})
		pipe.Expire(ctx, keyPrefix+id, ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store captcha: %w", err)
	}

	return &Challenge{
		CaptchaID: id,
		Question:  fmt.Sprintf("What is %d plus %d?", a, b),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !strings.HasPrefix(input.CaptchaID, "cap_") {
		return &Output{Valid: false, Message: "Invalid captcha ID format", Reason: ReasonInvalidFormat}, nil
	}
	if s.redis == nil {
		return nil, ErrStoreNotConfigured
	}

	key := keyPrefix + input.CaptchaID
	data, err := s.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("load captcha: %w", err)
	}
	if len(data) == 0 {
		return expired(), nil
	}
	if data["used"] != "" {
		return &Output{Valid: false, Message: "Captcha has already been used", Reason: ReasonAlreadyUsed}, nil
	}

	attempts, _ := strconv.Atoi(data["attempts"])
	if attempts >= s.config.MaxAttempts {
		s.redis.Del(ctx, key)
		return &Output{Valid: false, Message: "Maximum verification attempts exceeded", Reason: ReasonMaxAttemptsExceeded}, nil
	}

	if s.config.VerifyClientIP && data["clientIp"] != "" && data["clientIp"] != input.ClientIP {
		left, ok, err := s.recordFailure(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return expired(), nil
		}
		return &Output{Valid: false, Message: "Client IP mismatch", Reason: ReasonIPMismatch, AttemptsRemaining: left}, nil
	}

	if strings.TrimSpace(input.CaptchaValue) != data["value"] {
		left, ok, err := s.recordFailure(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return expired(), nil
		}
		return &Output{Valid: false, Message: "Incorrect captcha value", Reason: ReasonIncorrectValue, AttemptsRemaining: left}, nil
	}

	// the first HINCRBY wins; a concurrent verify sees used > 1
	used, err := incrExisting.Run(ctx, s.redis, []string{key}, "used").Int64()
	if err != nil {
		return nil, fmt.Errorf("consume captcha: %w", err)
	}
	if used < 0 {
		return expired(), nil
	}
	if used > 1 {
		return &Output{Valid: false, Message: "Captcha has already been used", Reason: ReasonAlreadyUsed}, nil
	}

	s.logger.Info("captcha verification successful", map[string]interface{}{
		"captchaId": input.CaptchaID,
		"clientIp":  input.ClientIP,
	})

	return &Output{Valid: true, Message: "Captcha verified successfully", Reason: ReasonSuccess}, nil
}

// recordFailure counts a failed attempt. ok is false when the challenge
// expired before the attempt could be recorded.
func (s *Service) recordFailure(ctx context.Context, key string) (left int, ok bool, err error) {
	attempts, err := incrExisting.Run(ctx, s.redis, []string{key}, "attempts").Int64()
	if err != nil {
		return 0, false, fmt.Errorf("record captcha attempt: %w", err)
	}
	if attempts < 0 {
		return 0, false, nil
	}
	left = s.config.MaxAttempts - int(attempts)
	if left <= 0 {
		s.redis.Del(ctx, key)
		left = 0
	}
	return left, true, nil
}

func expired() *Output {
	return &Output{Valid: false, Message: "Captcha not found or expired", Reason: ReasonNotFound}
}
