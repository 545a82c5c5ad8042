package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

var (
	fenceRegex      = regexp.MustCompile("```json\\s*|\\s*```")
	leadingBrace    = regexp.MustCompile(`^\s*{\s*`)
	trailingBrace   = regexp.MustCompile(`\s*}\s*$`)
	truncatedMarker = "\n[... Content truncated due to size limits ...]"
)

// TextProcessor provides utilities for processing text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]

	// Drop bytes of a rune cut in half by the byte limit
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + truncatedMarker
}

// SanitizeUTF8 drops invalid UTF-8 bytes from text
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 1 {
				continue
			}
		}
		result = append(result, r)
	}

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(string(result))))

	return string(result)
}

// ProcessText truncates and sanitizes text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.SanitizeUTF8(tp.TruncateText(text, maxSize))
}

// CleanCompletion normalizes a raw model completion before it is parsed.
// Markdown fences are removed and whitespace hugging the outer braces is
// collapsed. The result is not guaranteed to be valid JSON.
func (tp *TextProcessor) CleanCompletion(raw string) string {
	cleaned := fenceRegex.ReplaceAllString(raw, "")
	cleaned = leadingBrace.ReplaceAllString(cleaned, "{")
	cleaned = trailingBrace.ReplaceAllString(cleaned, "}")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned != raw {
		tp.logger.Debug("Completion cleaned",
			zap.Int("raw_size", len(raw)),
			zap.Int("cleaned_size", len(cleaned)))
	}
	return cleaned
}
