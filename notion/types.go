package notion

// Block types returned by the Notion API. The set is open; anything not
// listed here falls through the renderer as plain text.
const (
	TypeHeading1         = "heading_1"
	TypeHeading2         = "heading_2"
	TypeHeading3         = "heading_3"
	TypeBulletedListItem = "bulleted_list_item"
	TypeNumberedListItem = "numbered_list_item"
	TypeParagraph        = "paragraph"
	TypeToggle           = "toggle"
	TypeToDo             = "to_do"
	TypeCode             = "code"
	TypeQuote            = "quote"
	TypeCallout          = "callout"
	TypeBookmark         = "bookmark"
	TypeChildPage        = "child_page"
	TypeChildDatabase    = "child_database"
)

// Block is one structural unit of page content. The API's block objects are
// heterogeneous, with the payload keyed by the block's own type, so they are
// kept as raw maps and accessed through the helpers below.
type Block map[string]any

func (b Block) ID() string {
	id, _ := b["id"].(string)
	return id
}

func (b Block) Type() string {
	t, _ := b["type"].(string)
	return t
}

// Payload returns the type-specific content object, e.g. block["paragraph"]
// for a paragraph block.
func (b Block) Payload() map[string]any {
	payload, _ := b[b.Type()].(map[string]any)
	return payload
}

func (b Block) HasChildren() bool {
	has, _ := b["has_children"].(bool)
	return has
}

// Page is a page object: either a retrieved page or a database query result
// row. Database rows carry their display name in a title-typed property.
type Page map[string]any

func (p Page) ID() string {
	id, _ := p["id"].(string)
	return id
}

func (p Page) Properties() map[string]any {
	props, _ := p["properties"].(map[string]any)
	return props
}

// BlockChildren is one page of a block-children listing.
type BlockChildren struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

// DatabaseEntries is one page of a database query.
type DatabaseEntries struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}
