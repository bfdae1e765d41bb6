package endpoint

import (
	"errors"
	"testing"

	"github.com/finleyb/convexbridge/internal/autherr"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare deployment root",
			input:    "https://app.example.com",
			expected: "https://app.example.com/api/auth",
		},
		{
			name:     "trailing slash",
			input:    "https://app.example.com/",
			expected: "https://app.example.com/api/auth",
		},
		{
			name:     "already normalized",
			input:    "https://app.example.com/api/auth",
			expected: "https://app.example.com/api/auth",
		},
		{
			name:     "already normalized with trailing slash",
			input:    "https://app.example.com/api/auth/",
			expected: "https://app.example.com/api/auth",
		},
		{
			name:     "mixed case auth root preserved",
			input:    "https://app.example.com/Api/Auth",
			expected: "https://app.example.com/Api/Auth",
		},
		{
			name:     "sub-path deployment",
			input:    "https://example.com/tenant/demo",
			expected: "https://example.com/tenant/demo/api/auth",
		},
		{
			name:     "port and http scheme",
			input:    "http://localhost:3000",
			expected: "http://localhost:3000/api/auth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"https://app.example.com",
		"https://app.example.com/api/auth",
		"https://example.com/tenant/demo/",
		"http://localhost:3000/API/AUTH",
	}

	for _, input := range inputs {
		once, err := Normalize(input)
		if err != nil {
			t.Fatalf("Normalize(%q) failed: %v", input, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(%q) failed: %v", once, err)
		}
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestNormalize_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "no scheme", input: "app.example.com"},
		{name: "scheme only", input: "https://"},
		{name: "garbage", input: "://\x7f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.input)
			if !errors.Is(err, autherr.ErrInvalidEndpoint) {
				t.Errorf("expected ErrInvalidEndpoint, got %v", err)
			}
		})
	}
}
