package captchaverify

import (
	"time"

	"github.com/redis/go-redis/v9"

	"visa-portal/internal/common/logger"
)

// Reasons reported in Output.Reason.
const (
	ReasonSuccess             = "SUCCESS"
	ReasonInvalidFormat       = "INVALID_FORMAT"
	ReasonNotFound            = "NOT_FOUND"
	ReasonAlreadyUsed         = "ALREADY_USED"
	ReasonMaxAttemptsExceeded = "MAX_ATTEMPTS_EXCEEDED"
	ReasonIPMismatch          = "IP_MISMATCH"
	ReasonIncorrectValue      = "INCORRECT_VALUE"
)

type Input struct {
	CaptchaID    string `json:"captchaId"`
	CaptchaValue string `json:"captchaValue"`
	ClientIP     string `json:"clientIp"`
}

type Output struct {
	Valid             bool   `json:"valid"`
	Message           string `json:"message"`
	Reason            string `json:"reason,omitempty"`
	AttemptsRemaining int    `json:"attemptsRemaining,omitempty"`
}

// Challenge is what the enquiry form shows the visitor.
type Challenge struct {
	CaptchaID string    `json:"captchaId"`
	Question  string    `json:"challenge"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ServiceDependencies struct {
	Logger logger.Logger
	Redis  *redis.Client
}
