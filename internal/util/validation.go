package util

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// ValidateFieldName checks that a field name is usable in a selection list.
// Names must be non-empty and free of whitespace and commas, since commas
// separate names in query parameters and command-line flags.
func ValidateFieldName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: field name cannot be empty", ErrInvalidInput)
	}

	if strings.ContainsRune(name, ',') {
		return fmt.Errorf("%w: field name %q contains a comma", ErrInvalidInput, name)
	}

	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: field name %q contains whitespace", ErrInvalidInput, name)
	}

	return nil
}

// ValidateFieldNames validates every name and returns the first failure.
func ValidateFieldNames(names []string) error {
	for _, name := range names {
		if err := ValidateFieldName(name); err != nil {
			return err
		}
	}
	return nil
}

// SplitList splits a comma separated list, trimming blanks and dropping
// empty items.
func SplitList(s string) []string {
	return lo.Compact(lo.Map(strings.Split(s, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	}))
}
