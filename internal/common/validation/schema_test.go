package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	require.NoError(t, err)
	return v
}

func TestNewValidator_CompilesAllSchemas(t *testing.T) {
	v := newValidator(t)
	for _, name := range []string{SchemaCalculate, SchemaDownloadPDF, SchemaSessionStart, SchemaSessionAnswer, SchemaEnquiry} {
		assert.Contains(t, v.schemas, name)
	}
}

func TestValidateJSON_Calculate(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name      string
		body      string
		wantValid bool
		wantText  string
	}{
		{
			name:      "valid",
			body:      `{"visaType":"study","answers":[{"questionId":1,"optionId":2}],"multiSelectAnswers":[]}`,
			wantValid: true,
		},
		{
			name:      "unknown visa type",
			body:      `{"visaType":"work","answers":[]}`,
			wantText:  "visaType",
		},
		{
			name:      "answer without option",
			body:      `{"visaType":"visit","answers":[{"questionId":1}]}`,
			wantText:  "optionId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.ValidateJSON(SchemaCalculate, []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid, res.Summary())
			if tt.wantText != "" {
				assert.Contains(t, res.Summary(), tt.wantText)
			}
		})
	}
}

func TestValidateJSON_SessionAnswerRequiresExactlyOneSelection(t *testing.T) {
	v := newValidator(t)

	res, err := v.ValidateJSON(SchemaSessionAnswer, []byte(`{"questionId":3,"optionId":4}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = v.ValidateJSON(SchemaSessionAnswer, []byte(`{"questionId":3,"optionIds":[4,5]}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = v.ValidateJSON(SchemaSessionAnswer, []byte(`{"questionId":3,"optionId":4,"optionIds":[5]}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)

	res, err = v.ValidateJSON(SchemaSessionAnswer, []byte(`{"questionId":3}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestValidateValue_Enquiry(t *testing.T) {
	v := newValidator(t)

	res, err := v.ValidateValue(SchemaEnquiry, map[string]interface{}{
		"name":         "Asha Rao",
		"email":        "not-an-email",
		"message":      "Need help with a student visa",
		"captchaId":    "c1",
		"captchaValue": "7",
	})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Summary(), "email")
}

func TestValidate_UnknownSchema(t *testing.T) {
	_, err := newValidator(t).ValidateJSON("nope", []byte(`{}`))
	assert.Error(t, err)
}
