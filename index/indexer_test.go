package index

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/janvogt/notion-qa-mcp/notion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	rootRef = "1234567890abcdef1234567890abcdef"
	rootID  = "12345678-90ab-cdef-1234-567890abcdef"
)

// fakeStore serves canned blocks and entries, optionally split into
// fetch pages of chunk results to exercise cursor pagination.
type fakeStore struct {
	pages       map[string]notion.Page
	children    map[string][]notion.Block
	entries     map[string][]notion.Page
	listErrors  map[string]error
	queryErrors map[string]error
	chunk       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pages:       map[string]notion.Page{},
		children:    map[string][]notion.Block{},
		entries:     map[string][]notion.Page{},
		listErrors:  map[string]error{},
		queryErrors: map[string]error{},
	}
}

func (f *fakeStore) GetPage(_ context.Context, id notion.PageID) (notion.Page, error) {
	if page, ok := f.pages[string(id)]; ok {
		return page, nil
	}
	return nil, &notion.APIError{Status: 404, Code: "object_not_found", Message: "page not found"}
}

func (f *fakeStore) GetBlockChildren(_ context.Context, blockID, cursor string, pageSize int) (*notion.BlockChildren, error) {
	if err := f.listErrors[blockID]; err != nil {
		return nil, err
	}
	blocks := f.children[blockID]
	start, end := f.window(cursor, len(blocks))
	return &notion.BlockChildren{
		Results:    blocks[start:end],
		HasMore:    end < len(blocks),
		NextCursor: strconv.Itoa(end),
	}, nil
}

func (f *fakeStore) QueryDatabase(_ context.Context, databaseID, cursor string, pageSize int) (*notion.DatabaseEntries, error) {
	if err := f.queryErrors[databaseID]; err != nil {
		return nil, err
	}
	entries := f.entries[databaseID]
	start, end := f.window(cursor, len(entries))
	return &notion.DatabaseEntries{
		Results:    entries[start:end],
		HasMore:    end < len(entries),
		NextCursor: strconv.Itoa(end),
	}, nil
}

func (f *fakeStore) window(cursor string, total int) (int, int) {
	start := 0
	if cursor != "" {
		start, _ = strconv.Atoi(cursor)
	}
	end := total
	if f.chunk > 0 && start+f.chunk < total {
		end = start + f.chunk
	}
	return start, end
}

func paragraph(id, text string) notion.Block {
	return notion.Block{
		"id":   id,
		"type": notion.TypeParagraph,
		"paragraph": map[string]any{
			"rich_text": []any{map[string]any{"plain_text": text}},
		},
	}
}

func heading(id, text string) notion.Block {
	return notion.Block{
		"id":   id,
		"type": notion.TypeHeading1,
		"heading_1": map[string]any{
			"rich_text": []any{map[string]any{"plain_text": text}},
		},
	}
}

func childPage(id, title string) notion.Block {
	return notion.Block{
		"id":         id,
		"type":       notion.TypeChildPage,
		"child_page": map[string]any{"title": title},
	}
}

func childDatabase(id, title string) notion.Block {
	return notion.Block{
		"id":             id,
		"type":           notion.TypeChildDatabase,
		"child_database": map[string]any{"title": title},
	}
}

func entry(id, title string) notion.Page {
	return notion.Page{
		"id": id,
		"properties": map[string]any{
			"Name": map[string]any{
				"type":  "title",
				"title": []any{map[string]any{"plain_text": title}},
			},
		},
	}
}

func TestIndexGroupsAdjacentParagraphs(t *testing.T) {
	store := newFakeStore()
	store.children[rootID] = []notion.Block{
		heading("h1", "Intro"),
		paragraph("p1", "A."),
		paragraph("p2", "B."),
	}

	corpus, err := New(store, zap.NewNop()).Index(context.Background(), rootRef, nil)
	require.NoError(t, err)
	assert.Equal(t, "\n# Intro\n\n\nA. B.", corpus)
}

func TestIndexHeadingFlushesOpenGroup(t *testing.T) {
	store := newFakeStore()
	store.children[rootID] = []notion.Block{
		paragraph("p1", "A."),
		heading("h1", "Later"),
		paragraph("p2", "B."),
	}

	corpus, err := New(store, zap.NewNop()).Index(context.Background(), rootRef, nil)
	require.NoError(t, err)
	assert.Equal(t, "A.\n\n\n# Later\n\n\nB.", corpus)
}

func TestIndexEmptyPage(t *testing.T) {
	store := newFakeStore()
	store.children[rootID] = nil

	calls := 0
	corpus, err := New(store, zap.NewNop()).Index(context.Background(), rootRef, func(int) { calls++ })
	require.NoError(t, err)
	assert.Empty(t, corpus)
	assert.Zero(t, calls)
}

func TestIndexPaginationBoundaryFlushesGroup(t *testing.T) {
	store := newFakeStore()
	store.children[rootID] = []notion.Block{
		paragraph("p1", "A."),
		paragraph("p2", "B."),
	}

	// Single fetch: the paragraphs merge into one group.
	corpus, err := New(store, zap.NewNop()).Index(context.Background(), rootRef, nil)
	require.NoError(t, err)
	assert.Equal(t, "A. B.", corpus)

	// One block per fetch: the group flushes at each page boundary.
	store.chunk = 1
	corpus, err = New(store, zap.NewNop()).Index(context.Background(), rootRef, nil)
	require.NoError(t, err)
	assert.Equal(t, "A.\n\nB.", corpus)
}

func TestIndexNestedPage(t *testing.T) {
	store := newFakeStore()
	store.children[rootID] = []notion.Block{
		paragraph("p1", "before"),
		childPage("sub-1", "Sub Page"),
	}
	store.children["sub-1"] = []notion.Block{
		paragraph("p2", "inside"),
	}

	progress := 0
	corpus, err := New(store, zap.NewNop()).Index(context.Background(), rootRef, func(n int) { progress += n })
	require.NoError(t, err)
	assert.Equal(t, "before\n\n\n### Sub Page\n\n\ninside", corpus)
	assert.Equal(t, 1, progress)
}

func TestIndexDatabase(t *testing.T) {
	store := newFakeStore()
	store.children[rootID] = []notion.Block{
		childDatabase("db-1", "Tasks"),
	}
	store.entries["db-1"] = []notion.Page{
		entry("e1", "First"),
		entry("e2", ""),
	}
	store.children["e1"] = []notion.Block{paragraph("p1", "task body")}

	progress := 0
	corpus, err := New(store, zap.NewNop()).Index(context.Background(), rootRef, func(n int) { progress += n })
	require.NoError(t, err)
	assert.Equal(t, "\n### Database: Tasks\n\n\n#### First\n\n\ntask body\n\n\n#### Untitled\n", corpus)
	assert.Equal(t, 2, progress)
}

func TestIndexProgressCountsPagesAndEntries(t *testing.T) {
	store := newFakeStore()
	store.children[rootID] = []notion.Block{
		paragraph("p1", "ordinary"),
		childPage("sub-1", "One"),
		childPage("sub-2", "Two"),
		childDatabase("db-1", "Tasks"),
	}
	store.entries["db-1"] = []notion.Page{
		entry("e1", "A"), entry("e2", "B"), entry("e3", "C"),
	}

	progress := 0
	_, err := New(store, zap.NewNop()).Index(context.Background(), rootRef, func(n int) { progress += n })
	require.NoError(t, err)
	assert.Equal(t, 5, progress)
}

func TestIndexCycleTerminates(t *testing.T) {
	store := newFakeStore()
	store.children[rootID] = []notion.Block{
		childPage("sub-1", "Sub"),
	}
	// The subpage links back to the root.
	store.children["sub-1"] = []notion.Block{
		childPage(rootID, "Root Again"),
		paragraph("p1", "deep"),
	}

	progress := 0
	corpus, err := New(store, zap.NewNop()).Index(context.Background(), rootRef, func(n int) { progress += n })
	require.NoError(t, err)
	// The back reference still emits a heading and a progress tick, but its
	// content is not walked again.
	assert.Equal(t, "\n### Sub\n\n\n### Root Again\n\n\ndeep", corpus)
	assert.Equal(t, 2, progress)
}

func TestWalkBlocksRevisitIsNoOp(t *testing.T) {
	store := newFakeStore()
	store.children[rootID] = []notion.Block{paragraph("p1", "content")}

	ix := New(store, zap.NewNop())
	visited := map[string]struct{}{}

	first, err := ix.walkBlocks(context.Background(), rootID, visited, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"content"}, first)

	second, err := ix.walkBlocks(context.Background(), rootID, visited, nil)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestIndexNestedChildrenOfRenderedBlock(t *testing.T) {
	store := newFakeStore()
	toggle := notion.Block{
		"id":           "t1",
		"type":         notion.TypeToggle,
		"has_children": true,
		"toggle": map[string]any{
			"rich_text": []any{map[string]any{"plain_text": "click to expand"}},
		},
	}
	store.children[rootID] = []notion.Block{toggle}
	store.children["t1"] = []notion.Block{paragraph("p1", "hidden detail")}

	corpus, err := New(store, zap.NewNop()).Index(context.Background(), rootRef, nil)
	require.NoError(t, err)
	assert.Equal(t, "▶ click to expand\n\nhidden detail", corpus)
}

func TestIndexDeepErrorReturnsPartialResult(t *testing.T) {
	store := newFakeStore()
	store.children[rootID] = []notion.Block{
		paragraph("p1", "intact"),
		childPage("broken", "Broken Page"),
		paragraph("p2", "also intact"),
	}
	store.listErrors["broken"] = &notion.APIError{Status: 403, Code: "restricted", Message: "no access"}

	corpus, err := New(store, zap.NewNop()).Index(context.Background(), rootRef, nil)
	require.NoError(t, err)
	// The broken subtree is truncated; its heading and the siblings survive.
	assert.Equal(t, "intact\n\n\n### Broken Page\n\n\nalso intact", corpus)
}

func TestIndexRootListingErrorAborts(t *testing.T) {
	store := newFakeStore()
	store.listErrors[rootID] = &notion.APIError{Status: 404, Code: "object_not_found", Message: "gone"}

	_, err := New(store, zap.NewNop()).Index(context.Background(), rootRef, nil)
	require.Error(t, err)

	var apiErr *notion.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestIndexInvalidReference(t *testing.T) {
	store := newFakeStore()
	_, err := New(store, zap.NewNop()).Index(context.Background(), "not a page", nil)
	require.ErrorIs(t, err, notion.ErrInvalidReference)
}

func TestIndexDatabaseCycleTerminates(t *testing.T) {
	store := newFakeStore()
	store.children[rootID] = []notion.Block{
		childDatabase("db-1", "Loop"),
	}
	store.entries["db-1"] = []notion.Page{entry("e1", "Entry")}
	// The entry embeds the same database again.
	store.children["e1"] = []notion.Block{childDatabase("db-1", "Loop")}

	progress := 0
	corpus, err := New(store, zap.NewNop()).Index(context.Background(), rootRef, func(n int) { progress += n })
	require.NoError(t, err)
	assert.Equal(t, "\n### Database: Loop\n\n\n#### Entry\n\n\n### Database: Loop\n", corpus)
	assert.Equal(t, 1, progress)
}
