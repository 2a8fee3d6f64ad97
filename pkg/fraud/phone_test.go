package fraud_test

import (
	"fmt"
	"testing"

	"github.com/bh1mart/bh1mart/pkg/fraud"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain number", "9812345670", "9812345670"},
		{"spaces and dashes", "98-123 456 70", "9812345670"},
		{"country prefix dropped", "919812345670", "9812345670"},
		{"plus and prefix", "+91 98123 45670", "9812345670"},
		{"prefix kept when short", "9181234567", "9181234567"},
		{"empty input", "", ""},
		{"letters stripped", "98abc12345670xyz", "9812345670"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fraud.NormalizePhone(tt.input))
		})
	}
}

func TestValidatePhone_FormatFailuresAreSoft(t *testing.T) {
	tests := []string{
		"12345",        // too short
		"98123456701",  // too long after normalization
		"5812345670",   // starts with 5
		"0812345670",   // starts with 0
		"",             // empty
		"hello",        // no digits at all
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			v := fraud.ValidatePhone(input)
			assert.False(t, v.Valid)
			assert.Equal(t, fraud.SeveritySoft, v.Severity)
		})
	}

	// Every first digit outside 6-9 is a format failure, not fraud.
	for d := 0; d <= 5; d++ {
		input := fmt.Sprintf("%d812345670", d)
		v := fraud.ValidatePhone(input)
		assert.False(t, v.Valid, input)
		assert.Equal(t, fraud.SeveritySoft, v.Severity, input)
	}
}

func TestValidatePhone_KnownFakeNumbers(t *testing.T) {
	for _, phone := range []string{"9876543210", "9123456789", "7000000000"} {
		v := fraud.ValidatePhone(phone)
		assert.False(t, v.Valid, phone)
		assert.Equal(t, fraud.SeverityHard, v.Severity, phone)
	}
}

func TestValidatePhone_RepeatedDigitsAreHard(t *testing.T) {
	// All same-digit numbers that pass the format check.
	for _, d := range []string{"6", "7", "8", "9"} {
		phone := ""
		for i := 0; i < 10; i++ {
			phone += d
		}
		v := fraud.ValidatePhone(phone)
		assert.False(t, v.Valid, phone)
		assert.Equal(t, fraud.SeverityHard, v.Severity, phone)
	}
}

func TestValidatePhone_StructuralPatterns(t *testing.T) {
	tests := []struct {
		name  string
		phone string
	}{
		{"alternating pair", "6767676767"},
		{"three digit block", "6786786786"},
		{"four digit block", "6789678967"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := fraud.ValidatePhone(tt.phone)
			assert.False(t, v.Valid)
			assert.Equal(t, fraud.SeverityHard, v.Severity)
		})
	}
}

func TestValidatePhone_LowDiversity(t *testing.T) {
	// 3 unique digits, no structural pattern match.
	v := fraud.ValidatePhone("6667776667")
	assert.False(t, v.Valid)
	assert.Equal(t, fraud.SeverityHard, v.Severity)
}

func TestValidatePhone_AcceptsRealisticNumbers(t *testing.T) {
	for _, phone := range []string{"9812345670", "7042318596", "8837291045"} {
		v := fraud.ValidatePhone(phone)
		assert.True(t, v.Valid, phone)
		assert.Equal(t, fraud.SeverityNone, v.Severity, phone)
		assert.Equal(t, phone, v.Normalized, phone)
	}
}

func TestValidatePhone_NormalizedReturnedOnFailure(t *testing.T) {
	v := fraud.ValidatePhone("+91 99999 99999")
	assert.False(t, v.Valid)
	assert.Equal(t, "9999999999", v.Normalized)
}
