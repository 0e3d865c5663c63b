// Package sanitize validates prompts and cleans provider output before it
// is persisted or interpolated into follow-up prompts.
package sanitize

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Limits applied when the caller passes zero values.
const (
	DefaultMaxPromptLen   = 4000
	DefaultMaxResponseLen = 100000
)

// ansiEscapeRe matches ANSI terminal escape sequences.
var ansiEscapeRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// controlCharRe matches C0 control characters (except \t, \n, \r) and DEL.
var controlCharRe = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

// ValidatePrompt checks a user prompt against length limits and rejects
// NUL bytes. It returns the trimmed prompt.
func ValidatePrompt(prompt string, minLen, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxPromptLen
	}
	if minLen <= 0 {
		minLen = 1
	}
	prompt = strings.TrimSpace(prompt)
	if len(prompt) < minLen {
		return "", fmt.Errorf("prompt too short (minimum %d characters)", minLen)
	}
	if len(prompt) > maxLen {
		return "", fmt.Errorf("prompt too long (maximum %d characters)", maxLen)
	}
	if strings.ContainsRune(prompt, 0) {
		return "", fmt.Errorf("prompt contains null bytes")
	}
	return prompt, nil
}

// CleanResponse strips ANSI escapes and control characters from provider
// output and caps it at maxLen bytes, appending a truncation marker when
// content is dropped.
func CleanResponse(content string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxResponseLen
	}
	content = ansiEscapeRe.ReplaceAllString(content, "")
	content = controlCharRe.ReplaceAllString(content, "")
	if len(content) > maxLen {
		cut := maxLen
		// Do not split a multi-byte rune.
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut] + "\n[... truncated ...]"
	}
	return content
}

// SafeDecode converts raw process output to a valid UTF-8 string,
// replacing invalid sequences.
func SafeDecode(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

// CleanLogMessage flattens a message onto one line and strips escapes so
// provider errors cannot forge log entries.
func CleanLogMessage(message string, maxLen int) string {
	if message == "" {
		return ""
	}
	if maxLen <= 0 {
		maxLen = 1000
	}
	message = ansiEscapeRe.ReplaceAllString(message, "")
	message = controlCharRe.ReplaceAllString(message, "")
	message = strings.ReplaceAll(message, "\n", " ")
	message = strings.ReplaceAll(message, "\r", " ")
	if len(message) > maxLen {
		message = message[:maxLen] + "... (truncated)"
	}
	return message
}

// ValidateOutputPath resolves path and verifies it does not escape base.
// It returns the absolute path.
func ValidateOutputPath(path, base string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolving base %q: %w", base, err)
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(absBase, path)
	}
	abs = filepath.Clean(abs)
	rel, err := filepath.Rel(absBase, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes base directory %q", path, base)
	}
	return abs, nil
}
