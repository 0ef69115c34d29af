package core

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigErrorFormat(t *testing.T) {
	err := &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: "Missing required configuration: API_KEY",
		Action:  "Set API_KEY in your .env file",
	}
	got := err.Error()
	if !strings.Contains(got, "API_KEY") || !strings.Contains(got, "Set API_KEY") {
		t.Errorf("Error() = %q, want message and action", got)
	}

	noAction := &ConfigError{Code: ErrCodeInvalidValue, Message: "bad value"}
	if noAction.Error() != "bad value" {
		t.Errorf("Error() = %q, want %q", noAction.Error(), "bad value")
	}
}

func TestIsConfigError(t *testing.T) {
	cfgErr := ErrMissingConfig("API_KEY")
	if _, ok := IsConfigError(cfgErr); !ok {
		t.Error("IsConfigError = false for *ConfigError")
	}
	if _, ok := IsConfigError(errors.New("plain")); ok {
		t.Error("IsConfigError = true for plain error")
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := GetErrorCode(ErrPlaceholderValue("API_KEY")); got != ErrCodePlaceholderValue {
		t.Errorf("GetErrorCode = %q, want %q", got, ErrCodePlaceholderValue)
	}
	if got := GetErrorCode(errors.New("plain")); got != "" {
		t.Errorf("GetErrorCode = %q, want empty", got)
	}
}

func TestConstructorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigError
		code string
	}{
		{"missing", ErrMissingConfig("X"), ErrCodeMissingConfig},
		{"placeholder", ErrPlaceholderValue("X"), ErrCodePlaceholderValue},
		{"invalid", ErrInvalidValue("X", "reason"), ErrCodeInvalidValue},
		{"env file", ErrEnvFileMissing(".env"), ErrCodeEnvFileMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Action == "" {
				t.Error("Action is empty, want remediation text")
			}
		})
	}
}
