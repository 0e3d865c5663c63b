package sanitize

import (
	"strings"
	"testing"
)

func TestValidatePrompt(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		minLen  int
		maxLen  int
		wantErr bool
	}{
		{"valid", "write a parser", 1, 100, false},
		{"trimmed", "  hello world  ", 1, 100, false},
		{"empty", "", 1, 100, true},
		{"too short", "hi", 10, 100, true},
		{"too long", strings.Repeat("a", 101), 1, 100, true},
		{"null byte", "hello\x00world", 1, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePrompt(tt.prompt, tt.minLen, tt.maxLen)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePrompt(%q) error = %v, wantErr %v", tt.prompt, err, tt.wantErr)
			}
			if err == nil && got != strings.TrimSpace(tt.prompt) {
				t.Errorf("expected trimmed prompt, got %q", got)
			}
		})
	}
}

func TestCleanResponse(t *testing.T) {
	in := "\x1b[31mred\x1b[0m text\x07 with\tkept\nnewline"
	got := CleanResponse(in, 0)
	want := "red text with\tkept\nnewline"
	if got != want {
		t.Errorf("CleanResponse = %q, want %q", got, want)
	}
}

func TestCleanResponseTruncates(t *testing.T) {
	got := CleanResponse(strings.Repeat("x", 50), 10)
	if !strings.HasPrefix(got, "xxxxxxxxxx") || !strings.Contains(got, "truncated") {
		t.Errorf("expected truncated output, got %q", got)
	}
}

func TestSafeDecode(t *testing.T) {
	got := SafeDecode([]byte{'o', 'k', 0xff, '!'})
	if !strings.Contains(got, "ok") || !strings.Contains(got, "!") {
		t.Errorf("SafeDecode mangled valid bytes: %q", got)
	}
	if strings.Contains(got, "\xff") {
		t.Errorf("invalid byte survived: %q", got)
	}
}

func TestCleanLogMessage(t *testing.T) {
	got := CleanLogMessage("line1\nline2\r\x1b[1mbold", 0)
	if strings.ContainsAny(got, "\n\r\x1b") {
		t.Errorf("control characters survived: %q", got)
	}
}

func TestValidateOutputPath(t *testing.T) {
	base := t.TempDir()

	if _, err := ValidateOutputPath("results/out", base); err != nil {
		t.Errorf("relative path inside base rejected: %v", err)
	}
	if _, err := ValidateOutputPath("../escape", base); err == nil {
		t.Error("expected error for path escaping base")
	}
	if _, err := ValidateOutputPath("", base); err == nil {
		t.Error("expected error for empty path")
	}
}
