package common

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const maxSlugLength = 60

var (
	ErrEmptySlug = errors.New("slug cannot be empty")
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify lower-cases input and collapses everything that is not [a-z0-9]
// into single dashes. fallback is used when input has no usable characters.
func Slugify(input, fallback string) (string, error) {
	slug := slugify(input)
	if slug == "" {
		slug = slugify(fallback)
	}
	if slug == "" {
		return "", ErrEmptySlug
	}
	return slug, nil
}

// WithSuffix returns base for n <= 1 and "base-n" otherwise, keeping the
// result within the slug length limit.
func WithSuffix(base string, n int) string {
	if n <= 1 {
		return base
	}
	suffix := fmt.Sprintf("-%d", n)
	if len(base)+len(suffix) > maxSlugLength {
		base = strings.TrimRight(base[:maxSlugLength-len(suffix)], "-")
	}
	return base + suffix
}

func slugify(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	slug := strings.Trim(nonSlugChars.ReplaceAllString(lower, "-"), "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}
