package notion

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// ErrInvalidReference is returned when a reference string contains no page ID.
// It is terminal: callers surface it to the user instead of retrying.
var ErrInvalidReference = errors.New("could not extract page ID from reference")

// PageID is the dash-grouped UUID form Notion's API expects.
type PageID string

// Patterns are tried in order; the first match wins.
var pageIDPatterns = []*regexp.Regexp{
	// Workspace URL: notion.so/<workspace>/<slug>-<id>
	regexp.MustCompile(`notion\.so/[^/]+/[^-]+-([a-f0-9]{32})`),
	// Bare 32-char hex run anywhere in the string
	regexp.MustCompile(`([a-f0-9]{32})`),
}

// ParsePageID extracts the 32-digit page ID from a Notion URL or raw token
// and formats it as a dashed UUID.
func ParsePageID(reference string) (PageID, error) {
	for _, pattern := range pageIDPatterns {
		match := pattern.FindStringSubmatch(reference)
		if match == nil {
			continue
		}
		raw := match[1]
		id := fmt.Sprintf("%s-%s-%s-%s-%s", raw[:8], raw[8:12], raw[12:16], raw[16:20], raw[20:])
		if _, err := uuid.Parse(id); err != nil {
			return "", fmt.Errorf("malformed page ID %q: %w", raw, err)
		}
		return PageID(id), nil
	}
	return "", ErrInvalidReference
}
