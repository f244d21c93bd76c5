// internal/workers/communication/send-enquiry-notification/handler_test.go
package sendenquirynotification

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	commonaws "visa-portal/internal/common/aws"
	"visa-portal/internal/common/config"
	apperrors "visa-portal/internal/common/errors"
	"visa-portal/internal/common/logger"
)

// ==========================
// Mocks
// ==========================

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, email commonaws.Email) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) SendSMS(ctx context.Context, phone, message string) (string, error) {
	args := m.Called(ctx, phone, message)
	return args.String(0), args.Error(1)
}

type mockSESAPI struct {
	mock.Mock
}

func (m *mockSESAPI) SendEmail(ctx context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

func createTestConfig() *Config {
	return &Config{
		EmailEnabled:        true,
		SMSEnabled:          true,
		FromEmail:           "no-reply@example.com",
		OfficeEmail:         "office@example.com",
		OfficePhone:         "+15550000000",
		SendAcknowledgement: true,
	}
}

func createTestInput() *Input {
	return &Input{
		EnquiryID: "enq-1",
		Name:      "Lena <script>",
		Email:     "lena@example.com",
		Phone:     "+15551234567",
		VisaType:  "study",
		Message:   "Need help with my application.",
	}
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_AllChannels(t *testing.T) {
	email := new(MockEmailSender)
	email.On("Send", mock.Anything, mock.MatchedBy(func(e commonaws.Email) bool {
		return e.To[0] == "office@example.com"
	})).Return("m-1", nil).Run(func(args mock.Arguments) {
		e := args.Get(1).(commonaws.Email)
		assert.Equal(t, "New enquiry from Lena <script> (study visa)", e.Subject)
		assert.Equal(t, []string{"lena@example.com"}, e.ReplyTo)
		assert.Contains(t, e.TextBody, "Phone: +15551234567")
		assert.NotContains(t, e.TextBody, "Country:")
		assert.Contains(t, e.HTMLBody, "Lena &lt;script&gt;")
	})
	email.On("Send", mock.Anything, mock.MatchedBy(func(e commonaws.Email) bool {
		return e.To[0] == "lena@example.com"
	})).Return("m-2", nil)

	sms := new(MockSMSSender)
	sms.On("SendSMS", mock.Anything, "+15550000000", "New enquiry enq-1 from Lena <script>, +15551234567").Return("s-1", nil)

	h := NewHandler(createTestConfig(), email, sms, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, []string{ChannelOfficeEmail, ChannelAcknowledgement, ChannelOfficeSMS}, out.Channels)
	assert.NotEmpty(t, out.NotificationID)
	email.AssertExpectations(t)
	sms.AssertExpectations(t)
}

func TestExecute_OfficeEmailFailureIsRetryable(t *testing.T) {
	email := new(MockEmailSender)
	email.On("Send", mock.Anything, mock.Anything).Return("", errors.New("throttled"))

	h := NewHandler(createTestConfig(), email, nil, logger.NewTestLogger(t))
	_, err := h.Execute(context.Background(), createTestInput())

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotificationSendFailed))
	assert.True(t, apperrors.Normalize(err).Retryable)
}

func TestExecute_BestEffortChannels(t *testing.T) {
	email := new(MockEmailSender)
	email.On("Send", mock.Anything, mock.MatchedBy(func(e commonaws.Email) bool {
		return e.To[0] == "office@example.com"
	})).Return("m-1", nil)
	email.On("Send", mock.Anything, mock.Anything).Return("", errors.New("bounced"))

	sms := new(MockSMSSender)
	sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("opted out"))

	h := NewHandler(createTestConfig(), email, sms, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, []string{ChannelOfficeEmail}, out.Channels)
}

func TestExecute_NothingConfigured(t *testing.T) {
	h := NewHandler(&Config{EmailEnabled: true}, nil, nil, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, out.Status)
	assert.Empty(t, out.Channels)
}

func TestExecute_ThroughSESClient(t *testing.T) {
	api := new(mockSESAPI)
	api.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == "no-reply@example.com"
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil)

	cfg := createTestConfig()
	cfg.SMSEnabled = false
	h := NewHandler(cfg, commonaws.NewSESClientWithAPI(api), nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Len(t, out.Channels, 2)
	api.AssertNumberOfCalls(t, "SendEmail", 2)
}

func TestConfigFromApp(t *testing.T) {
	appCfg := &config.Config{}
	appCfg.Notifications.Email.Enabled = true
	appCfg.Notifications.Email.OfficeEmail = "office@example.com"
	appCfg.Integrations.AWS.SES.FromEmail = "ses@example.com"
	appCfg.Notifications.SMS.Enabled = true
	appCfg.Notifications.SMS.OfficePhone = "+1555"

	cfg := ConfigFromApp(appCfg)
	assert.True(t, cfg.EmailEnabled)
	assert.Equal(t, "ses@example.com", cfg.FromEmail)
	assert.Equal(t, "office@example.com", cfg.OfficeEmail)
	assert.True(t, cfg.SMSEnabled)
	assert.Equal(t, "+1555", cfg.OfficePhone)
}
