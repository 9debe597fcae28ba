package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9-]{3,24}$`)

var reservedSlugs = map[string]struct{}{
	"admin":         {},
	"api":           {},
	"auth":          {},
	"settings":      {},
	"dreams":        {},
	"users":         {},
	"comments":      {},
	"feed":          {},
	"tags":          {},
	"learning":      {},
	"notifications": {},
	"media":         {},
	"ws":            {},
	"metrics":       {},
	"login":         {},
	"signup":        {},
}

// ValidateSlug validates slug format and reserved names for tag and
// learning-path identifiers.
func ValidateSlug(slug string) error {
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("slug must be 3-24 characters and contain only lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}

	if _, exists := reservedSlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}

	return nil
}
