package translator

import "testing"

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "http://localhost:2342", expected: "http://localhost:2342/v1"},
		{input: "http://localhost:2342/", expected: "http://localhost:2342/v1"},
		{input: "http://localhost:2342/v1", expected: "http://localhost:2342/v1"},
		{input: "http://localhost:2342/v1/", expected: "http://localhost:2342/v1"},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		if got := normalizeBaseURL(tt.input); got != tt.expected {
			t.Errorf("normalizeBaseURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
