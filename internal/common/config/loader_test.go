package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  redis:
    address: localhost:6379
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "visa-portal", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []int{50}, cfg.Assessment.FanOutQuestionIDs)
	assert.Equal(t, 3, cfg.Assessment.ClosingSectionOrdinal)
	assert.Equal(t, []string{"visit", "study"}, cfg.Assessment.VisaTypes)
	assert.Equal(t, 5*time.Minute, cfg.Assessment.QuestionCacheDuration())
	assert.Equal(t, 2*time.Hour, cfg.Assessment.SessionDuration())
	assert.Equal(t, "site_content", cfg.Database.Elasticsearch.ContentIndex)
	assert.Equal(t, "visa-enquiry-intake", cfg.Camunda.EnquiryProcess)
	assert.False(t, cfg.Database.Postgres.Configured())
}

func TestLoadFromFile_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_PG_HOST", "db.internal")
	path := writeConfig(t, `
database:
  postgres:
    host: ${TEST_PG_HOST}
    database: visa
    user: portal
  redis:
    address: localhost:6379
assessment:
  fan_out_question_ids: [50, 61]
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.True(t, cfg.Database.Postgres.Configured())
	assert.Equal(t, []int{50, 61}, cfg.Assessment.FanOutQuestionIDs)
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "host=db.internal")
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing redis",
			body:    "app:\n  name: x\n",
			wantErr: "database.redis.address is required",
		},
		{
			name: "camunda enabled without broker",
			body: `
camunda:
  enabled: true
database:
  redis:
    address: localhost:6379
`,
			wantErr: "camunda.broker_address",
		},
		{
			name: "negative fan-out id",
			body: `
database:
  redis:
    address: localhost:6379
assessment:
  fan_out_question_ids: [-4]
`,
			wantErr: "invalid id -4",
		},
		{
			name: "unsupported visa type",
			body: `
database:
  redis:
    address: localhost:6379
assessment:
  visa_types: [visit, work]
`,
			wantErr: `unsupported type "work"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REDIS_ADDRESS", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"crm-lead-create": {Enabled: false, Timeout: 1000},
	}}

	assert.Equal(t, 1000, GetWorkerConfig(cfg, "crm-lead-create").Timeout)
	assert.Equal(t, 30000, GetWorkerConfig(cfg, "unknown").Timeout)
	assert.False(t, IsWorkerEnabled(cfg, "crm-lead-create"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
