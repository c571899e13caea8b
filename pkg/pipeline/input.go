package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"scoreahack/pkg/devpost"
	"scoreahack/pkg/errors"
)

// Idea text bounds, in characters
const (
	IdeaMinLength = 300
	IdeaMaxLength = 1200
)

// ValidateIdea checks free-text idea input: 300 to 1200 characters and no
// links.
func ValidateIdea(text string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	switch {
	case n < IdeaMinLength:
		return errors.New(errors.ErrorTypeValidation,
			fmt.Sprintf("idea must be at least %d characters (got %d)", IdeaMinLength, n))
	case n > IdeaMaxLength:
		return errors.New(errors.ErrorTypeValidation,
			fmt.Sprintf("idea must be at most %d characters (got %d)", IdeaMaxLength, n))
	case strings.Contains(text, "http://") || strings.Contains(text, "https://"):
		return errors.New(errors.ErrorTypeValidation, "idea must not contain links")
	}
	return nil
}

// ProjectID resolves CLI or API input to a project id. Devpost URLs are
// reduced to their id; anything else that is not a URL is taken as an id.
func ProjectID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New(errors.ErrorTypeValidation, "project id or URL is required")
	}

	if strings.Contains(input, "://") {
		if !devpost.IsProjectURL(input) {
			return "", errors.New(errors.ErrorTypeValidation, "invalid Devpost URL format")
		}
		id, ok := devpost.ProjectIDFromURL(input)
		if !ok {
			return "", errors.New(errors.ErrorTypeValidation, "invalid Devpost URL format")
		}
		return id, nil
	}

	if strings.ContainsAny(input, " /?#") {
		return "", errors.New(errors.ErrorTypeValidation, fmt.Sprintf("invalid project id %q", input))
	}
	return input, nil
}
