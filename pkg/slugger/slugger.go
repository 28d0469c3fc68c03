// Package slugger builds URL tokens that stay unique across a table.
package slugger

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

var ErrEmptySlug = errors.New("invalid_slug")

// maxAttempts bounds the suffix search; hitting it means the exists callback is broken.
const maxAttempts = 10000

// Make slugifies the non-empty parts joined by "-".
func Make(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return slug.Make(strings.Join(kept, "-"))
}

// Unique returns base, or base-1, base-2, ... for the first candidate that
// exists reports as free.
func Unique(base string, exists func(candidate string) (bool, error)) (string, error) {
	base = strings.Trim(base, "-")
	if base == "" {
		return "", ErrEmptySlug
	}
	candidate := base
	for i := 1; i <= maxAttempts; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return "", errors.New("slug_exhausted")
}
