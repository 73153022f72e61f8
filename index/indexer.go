package index

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/janvogt/notion-qa-mcp/notion"
	"github.com/janvogt/notion-qa-mcp/scrape"
	"go.uber.org/zap"
)

// pageSize is the listing page size used for every store call.
const pageSize = 100

// Progress receives incremental counts while a walk runs: one unit per
// nested page and one per database entry, never for ordinary blocks or the
// root container.
type Progress func(n int)

// Store is the document source the indexer walks.
type Store interface {
	GetPage(ctx context.Context, id notion.PageID) (notion.Page, error)
	GetBlockChildren(ctx context.Context, blockID, cursor string, pageSize int) (*notion.BlockChildren, error)
	QueryDatabase(ctx context.Context, databaseID, cursor string, pageSize int) (*notion.DatabaseEntries, error)
}

// Indexer recursively flattens a page subtree into a linear text corpus.
type Indexer struct {
	store         Store
	logger        *zap.Logger
	httpClient    *http.Client
	clipBookmarks bool
}

type Option func(*Indexer)

// WithBookmarkClips enables fetching the web pages bookmark blocks point at
// and inlining them into the corpus.
func WithBookmarkClips(httpClient *http.Client) Option {
	return func(ix *Indexer) {
		ix.clipBookmarks = true
		ix.httpClient = httpClient
	}
}

func New(store Store, logger *zap.Logger, opts ...Option) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	ix := &Indexer{
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Index resolves a reference and flattens the referenced page's whole
// subtree, joining fragments with blank lines. The visited set lives for
// exactly this call: nothing is cached between invocations, so an identical
// question re-walks the source from scratch every time.
func (ix *Indexer) Index(ctx context.Context, reference string, onProgress Progress) (string, error) {
	id, err := notion.ParsePageID(reference)
	if err != nil {
		return "", err
	}

	page, err := ix.store.GetPage(ctx, id)
	if err != nil {
		// Integrations may lack metadata access while block-level content
		// is still readable. Not fatal.
		ix.logger.Warn("could not retrieve page metadata",
			zap.String("pageID", string(id)),
			zap.Error(err))
	} else {
		ix.logger.Info("accessed page", zap.String("title", pageTitle(page)))
	}

	visited := make(map[string]struct{})
	fragments, err := ix.walkBlocks(ctx, string(id), visited, onProgress)
	if err != nil && len(fragments) == 0 {
		return "", fmt.Errorf("failed to list blocks of %s: %w", id, err)
	}
	if err != nil {
		ix.logger.Error("traversal truncated",
			zap.String("blockID", string(id)),
			zap.Error(err))
	}
	return strings.Join(fragments, "\n\n"), nil
}

// walkBlocks pages through a container's child blocks, rendering them in
// source order. Adjacent paragraph and list fragments collect into an open
// group joined with single spaces on flush; the group never spans a
// pagination boundary. The returned error reports the listing failure that
// truncated this container, with whatever was accumulated before it —
// recursive call sites keep going with the partial result.
func (ix *Indexer) walkBlocks(ctx context.Context, blockID string, visited map[string]struct{}, onProgress Progress) ([]string, error) {
	if _, seen := visited[blockID]; seen {
		return nil, nil
	}
	visited[blockID] = struct{}{}

	var content []string
	var group []string
	flush := func() {
		if len(group) > 0 {
			content = append(content, strings.Join(group, " "))
			group = group[:0]
		}
	}

	cursor := ""
	for {
		children, err := ix.store.GetBlockChildren(ctx, blockID, cursor, pageSize)
		if err != nil {
			ix.logger.Error("failed to list block children",
				zap.String("blockID", blockID),
				zap.Error(err))
			return content, err
		}

		for _, block := range children.Results {
			switch block.Type() {
			case notion.TypeChildPage:
				flush()
				title := "Untitled"
				if t, ok := block.Payload()["title"].(string); ok {
					title = t
				}
				content = append(content, "\n### "+title+"\n")
				report(onProgress, 1)
				childContent, _ := ix.walkBlocks(ctx, block.ID(), visited, onProgress)
				content = append(content, childContent...)
				continue

			case notion.TypeChildDatabase:
				flush()
				title := "Database"
				if t, ok := block.Payload()["title"].(string); ok {
					title = t
				}
				content = append(content, "\n### Database: "+title+"\n")
				entries, _ := ix.walkDatabase(ctx, block.ID(), visited, onProgress)
				content = append(content, entries...)
				continue

			case notion.TypeBookmark:
				if ix.clipBookmarks {
					flush()
					if clip := ix.clipBookmark(ctx, block); clip != "" {
						content = append(content, clip)
					}
					continue
				}
			}

			rendered := renderBlock(block)
			if rendered != "" {
				switch block.Type() {
				case notion.TypeHeading1, notion.TypeHeading2, notion.TypeHeading3:
					flush()
					content = append(content, rendered)
				case notion.TypeBulletedListItem, notion.TypeNumberedListItem, notion.TypeParagraph:
					group = append(group, rendered)
				default:
					flush()
					content = append(content, rendered)
				}
			}

			// A block can render its own text and still own nested blocks.
			if block.HasChildren() {
				flush()
				childContent, _ := ix.walkBlocks(ctx, block.ID(), visited, onProgress)
				content = append(content, childContent...)
			}
		}

		flush()

		if !children.HasMore {
			break
		}
		cursor = children.NextCursor
	}
	return content, nil
}

// walkDatabase pages through a database's entries. Each entry contributes a
// level-4 heading with its title property and then its own block content,
// exactly like a nested page.
func (ix *Indexer) walkDatabase(ctx context.Context, databaseID string, visited map[string]struct{}, onProgress Progress) ([]string, error) {
	if _, seen := visited[databaseID]; seen {
		return nil, nil
	}
	visited[databaseID] = struct{}{}

	var content []string
	cursor := ""
	for {
		entries, err := ix.store.QueryDatabase(ctx, databaseID, cursor, pageSize)
		if err != nil {
			ix.logger.Error("failed to query database",
				zap.String("databaseID", databaseID),
				zap.Error(err))
			return content, err
		}

		for _, entry := range entries.Results {
			content = append(content, "\n#### "+pageTitle(entry)+"\n")
			report(onProgress, 1)
			entryContent, _ := ix.walkBlocks(ctx, entry.ID(), visited, onProgress)
			content = append(content, entryContent...)
		}

		if !entries.HasMore {
			break
		}
		cursor = entries.NextCursor
	}
	return content, nil
}

func (ix *Indexer) clipBookmark(ctx context.Context, block notion.Block) string {
	rawURL, _ := block.Payload()["url"].(string)
	if rawURL == "" {
		return ""
	}
	title, markdown, err := scrape.Clip(ctx, ix.httpClient, rawURL)
	if err != nil {
		ix.logger.Debug("bookmark clip failed",
			zap.String("url", rawURL),
			zap.Error(err))
		return "> " + rawURL
	}
	if title == "" {
		title = rawURL
	}
	return "\n### Bookmark: " + title + "\n\n" + markdown
}

// pageTitle reads the display name from whichever property is typed as a
// title, defaulting to Untitled.
func pageTitle(page notion.Page) string {
	title := ""
	for _, prop := range page.Properties() {
		p, ok := prop.(map[string]any)
		if !ok {
			continue
		}
		if t, _ := p["type"].(string); t != "title" {
			continue
		}
		title = richText(p, "title")
		break
	}
	if strings.TrimSpace(title) == "" {
		return "Untitled"
	}
	return title
}

func report(onProgress Progress, n int) {
	if onProgress != nil {
		onProgress(n)
	}
}
