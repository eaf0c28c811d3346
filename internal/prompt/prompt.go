// Package prompt turns user text into viewer commands: a list of model
// filenames to load, or one of the reset/quit/help keywords.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidInput is the parent of every input rejection.
var ErrInvalidInput = errors.New("invalid input")

// Specific input rejections. Both match ErrInvalidInput with errors.Is.
var (
	ErrEmptyInput       = fmt.Errorf("%w: empty", ErrInvalidInput)
	ErrNoValidFilenames = fmt.Errorf("%w: no valid filenames", ErrInvalidInput)
)

// InputError carries the message shown to the user for a rejected input.
type InputError struct {
	Kind    error
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Unwrap() error { return e.Kind }

// ParseFilenames splits input on commas and whitespace and keeps the names
// ending in ext (case-insensitive). At most max names are returned; when
// more were given, warning says so. max <= 0 means no limit.
func ParseFilenames(input, ext string, max int) (names []string, warning string, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, "", &InputError{Kind: ErrEmptyInput, Message: "Please enter at least one filename."}
	}

	ext = strings.ToLower(ext)
	for _, f := range strings.FieldsFunc(input, isSeparator) {
		if strings.HasSuffix(strings.ToLower(f), ext) {
			names = append(names, f)
		}
	}
	if len(names) == 0 {
		label := strings.ToUpper(strings.TrimPrefix(ext, "."))
		return nil, "", &InputError{
			Kind:    ErrNoValidFilenames,
			Message: fmt.Sprintf("Please enter valid %s filenames ending with %s", label, ext),
		}
	}

	if max > 0 && len(names) > max {
		names = names[:max]
		warning = fmt.Sprintf("Only the first %d models will be loaded.", max)
	}
	return names, warning, nil
}

func isSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}
