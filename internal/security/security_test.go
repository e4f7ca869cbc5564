package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterCheck(t *testing.T) {
	f := NewFilter()

	tests := []struct {
		name    string
		text    string
		blocked bool
		reasons []Reason
	}{
		{"plain command", "open hackerone", false, nil},
		{"hinglish command", "Chrome kholo", false, nil},
		{"password with otp digits", "my password is 482913", true, []Reason{ReasonCredential, ReasonOTP}},
		{"otp keyword", "the OTP is 5521", true, []Reason{ReasonCredential, ReasonOTP}},
		{"devanagari keyword", "मेरा पासवर्ड सुनो", true, []Reason{ReasonCredential}},
		{"phishing script", "please share your otp to verify", true, []Reason{ReasonPhishing, ReasonCredential}},
		{"card number", "type 4111 1111 1111 1111", true, []Reason{ReasonCardNumber}},
		{"ten digit phone is fine", "call 9876543210", false, nil},
		{"keyword inside another word", "open the spinner app", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := f.Check(tt.text)
			assert.Equal(t, tt.blocked, v.Blocked)
			assert.Equal(t, tt.reasons, v.Reasons)
		})
	}
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "my password is [REDACTED]", Redact("my password is hunter2"))
	assert.Equal(t, "otp [REDACTED]", Redact("otp 123456"))
	assert.Equal(t, "call [REDACTED]", Redact("call 9876543210"))
	assert.Equal(t, "open chrome", Redact("open chrome"))
}
