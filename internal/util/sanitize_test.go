package util

import "testing"

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "clean agent name",
			input:    "Web-Server-01",
			expected: "Web-Server-01",
		},
		{
			name:     "multiline alert payload",
			input:    "Oct 27 10:00:00 sshd[123]:\nInvalid user admin",
			expected: "Oct 27 10:00:00 sshd[123]: Invalid user admin",
		},
		{
			name:     "windows line endings",
			input:    "line1\r\nline2",
			expected: "line1 line2",
		},
		{
			name:     "embedded control bytes",
			input:    "agent\x00\x01\x1Fname",
			expected: "agent name",
		},
		{
			name:     "DEL character",
			input:    "agent\x7Fname",
			expected: "agent name",
		},
		{
			name:     "tab separated fields",
			input:    "rule\t5710",
			expected: "rule 5710",
		},
		{
			name:     "only control chars",
			input:    "\x00\x01\x02\x1F\x7F",
			expected: " ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeForLog(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeForLog(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
