package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxSourceSize   = 64 * 1024 // sandbox buffer
	MaxQuestionSize = 4 * 1024  // prompt or choice text
	MaxQueryLength  = 256       // search query
)

// Length and count limits
const (
	MaxIDLength        = 128
	MaxSlugLength      = 96
	MaxQuestions       = 100
	MaxChoices         = 12
	MinChoices         = 2
	MaxLanguageLength  = 32
	MaxFileNameLength  = 128
	MaxInstructionSize = 2048
)

var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// ToolIDPattern allows alphanumeric, hyphens, underscores, and dots (for service.tool format)
	ToolIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	// SlugPattern allows lowercase words joined by hyphens
	SlugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	// FileNamePattern allows a single path element with an extension
	FileNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateToolID validates a tool ID field (allows dots for service.tool format)
func ValidateToolID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !ToolIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, dots, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateSlug validates a lesson slug
func ValidateSlug(slug string, required bool) error {
	if err := ValidateString(slug, "slug", 1, MaxSlugLength, required); err != nil {
		return err
	}
	if slug != "" && !SlugPattern.MatchString(slug) {
		return fmt.Errorf("slug must be lowercase words joined by hyphens")
	}
	return nil
}

// ValidateSource validates sandbox source text against a byte limit.
// Empty source is allowed: clearing the editor is a valid edit.
func ValidateSource(source string, maxBytes int) error {
	if maxBytes <= 0 {
		maxBytes = MaxSourceSize
	}
	if len(source) > maxBytes {
		return fmt.Errorf("source size %d bytes exceeds maximum %d bytes", len(source), maxBytes)
	}
	if !utf8.ValidString(source) {
		return fmt.Errorf("source is not valid UTF-8")
	}
	if strings.Contains(source, "\x00") {
		return fmt.Errorf("source contains invalid characters")
	}
	return nil
}

// ValidateFileName validates the display file name of a sandbox
func ValidateFileName(name string) error {
	if err := ValidateString(name, "file_name", 1, MaxFileNameLength, false); err != nil {
		return err
	}
	if name != "" && !FileNamePattern.MatchString(name) {
		return fmt.Errorf("file_name contains invalid characters")
	}
	return nil
}

// ValidateQuery validates a search query
func ValidateQuery(query string) error {
	return ValidateString(query, "query", 0, MaxQueryLength, false)
}

// ValidateQuestion validates one multiple-choice question
func ValidateQuestion(prompt string, choices []string, correct int) error {
	if err := ValidateString(prompt, "prompt", 1, MaxQuestionSize, true); err != nil {
		return err
	}
	if len(choices) < MinChoices || len(choices) > MaxChoices {
		return fmt.Errorf("question must have between %d and %d choices, got %d", MinChoices, MaxChoices, len(choices))
	}
	for i, choice := range choices {
		if err := ValidateString(choice, fmt.Sprintf("choices[%d]", i), 1, MaxQuestionSize, true); err != nil {
			return err
		}
	}
	if correct < 0 || correct >= len(choices) {
		return fmt.Errorf("correct choice %d out of range [0, %d)", correct, len(choices))
	}
	return nil
}
