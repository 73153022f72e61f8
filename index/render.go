package index

import (
	"strings"

	"github.com/janvogt/notion-qa-mcp/notion"
)

// renderBlock maps a block to its line-oriented markup fragment. Blocks
// without extractable text render to the empty string. Child pages and child
// databases are structural and handled by the walk, not here.
func renderBlock(block notion.Block) string {
	blockType := block.Type()
	if blockType == "" {
		return ""
	}
	text := blockText(block)
	if strings.TrimSpace(text) == "" {
		return ""
	}

	switch blockType {
	case notion.TypeHeading1:
		return "\n# " + text + "\n"
	case notion.TypeHeading2:
		return "\n## " + text + "\n"
	case notion.TypeHeading3:
		return "\n### " + text + "\n"
	case notion.TypeBulletedListItem, notion.TypeNumberedListItem:
		return "• " + text
	case notion.TypeParagraph:
		return text
	case notion.TypeToggle:
		return "▶ " + text
	case notion.TypeToDo:
		if checked, _ := block.Payload()["checked"].(bool); checked {
			return "[x] " + text
		}
		return "[ ] " + text
	case notion.TypeCode:
		language, _ := block.Payload()["language"].(string)
		return "\n```" + language + "\n" + text + "\n```\n"
	case notion.TypeQuote:
		return "> " + text
	case notion.TypeCallout:
		return calloutEmoji(block.Payload()) + " " + text
	}
	return text
}

func calloutEmoji(payload map[string]any) string {
	icon, _ := payload["icon"].(map[string]any)
	emoji, _ := icon["emoji"].(string)
	return emoji
}
