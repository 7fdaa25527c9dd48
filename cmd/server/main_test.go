package main

import (
	"testing"

	"konterhp/backend/internal/config"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "short", OwnerPIN: "123456"})
	if err == nil {
		t.Fatalf("expected weak security config to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef", OwnerPIN: "739154"})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestValidatePINStrength(t *testing.T) {
	weak := []string{"123456", "654321", "000000", "777777", "234567", "987654", "112233"}
	for _, pin := range weak {
		if err := validatePINStrength(pin); err == nil {
			t.Fatalf("expected pin %s to be rejected as weak", pin)
		}
	}

	strong := []string{"739154", "280461", "905372"}
	for _, pin := range strong {
		if err := validatePINStrength(pin); err != nil {
			t.Fatalf("expected pin %s to pass, got %v", pin, err)
		}
	}
}
