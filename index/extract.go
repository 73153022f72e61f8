package index

import (
	"fmt"
	"strings"

	"github.com/janvogt/notion-qa-mcp/notion"
)

// Candidate fields holding a block's text, tried in order.
var textFields = []string{"text", "rich_text", "title", "content"}

// richText extracts plain text from a field that may hold a rich-text span
// list, a single span object, or a bare string. Shape mismatches and missing
// fields degrade to the empty string: most block types legitimately carry no
// text in most fields.
func richText(payload map[string]any, field string) string {
	switch value := payload[field].(type) {
	case []any:
		parts := make([]string, 0, len(value))
		for _, span := range value {
			if m, ok := span.(map[string]any); ok {
				text, _ := m["plain_text"].(string)
				parts = append(parts, text)
			} else {
				parts = append(parts, fmt.Sprint(span))
			}
		}
		return strings.Join(parts, " ")
	case map[string]any:
		text, _ := value["plain_text"].(string)
		return text
	case string:
		return value
	default:
		return ""
	}
}

// blockText returns the first non-empty text found in a block's candidate
// fields. Child pages keep their display name directly under the payload's
// title attribute instead of a rich-text field.
func blockText(block notion.Block) string {
	blockType := block.Type()
	if blockType == "" {
		return ""
	}
	payload := block.Payload()
	for _, field := range textFields {
		if text := richText(payload, field); text != "" {
			return text
		}
	}
	if blockType == notion.TypeChildPage {
		title, _ := payload["title"].(string)
		return title
	}
	return ""
}
