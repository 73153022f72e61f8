package notion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBlockChildren(t *testing.T) {
	var gotRequest *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequest = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": [
				{"id": "b1", "type": "paragraph", "has_children": false,
				 "paragraph": {"rich_text": [{"plain_text": "hello"}]}}
			],
			"has_more": true,
			"next_cursor": "cursor-2"
		}`))
	}))
	defer ts.Close()

	client := NewClient("secret-token", WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	children, err := client.GetBlockChildren(context.Background(), "block-1", "", 100)
	require.NoError(t, err)

	assert.Equal(t, "/blocks/block-1/children", gotRequest.URL.Path)
	assert.Equal(t, "100", gotRequest.URL.Query().Get("page_size"))
	assert.Empty(t, gotRequest.URL.Query().Get("start_cursor"))
	assert.Equal(t, "Bearer secret-token", gotRequest.Header.Get("Authorization"))
	assert.Equal(t, apiVersion, gotRequest.Header.Get("Notion-Version"))

	require.Len(t, children.Results, 1)
	assert.Equal(t, "paragraph", children.Results[0].Type())
	assert.Equal(t, "b1", children.Results[0].ID())
	assert.True(t, children.HasMore)
	assert.Equal(t, "cursor-2", children.NextCursor)

	_, err = client.GetBlockChildren(context.Background(), "block-1", "cursor-2", 100)
	require.NoError(t, err)
	assert.Equal(t, "cursor-2", gotRequest.URL.Query().Get("start_cursor"))
}

func TestGetBlockChildrenLastPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// next_cursor is null on the final page
		_, _ = w.Write([]byte(`{"results": [], "has_more": false, "next_cursor": null}`))
	}))
	defer ts.Close()

	client := NewClient("token", WithBaseURL(ts.URL))
	children, err := client.GetBlockChildren(context.Background(), "block-1", "", 100)
	require.NoError(t, err)
	assert.False(t, children.HasMore)
	assert.Empty(t, children.NextCursor)
}

func TestQueryDatabase(t *testing.T) {
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{
			"results": [{"id": "entry-1", "properties": {}}],
			"has_more": false,
			"next_cursor": null
		}`))
	}))
	defer ts.Close()

	client := NewClient("token", WithBaseURL(ts.URL))
	entries, err := client.QueryDatabase(context.Background(), "db-1", "abc", 100)
	require.NoError(t, err)

	assert.Equal(t, float64(100), gotBody["page_size"])
	assert.Equal(t, "abc", gotBody["start_cursor"])
	require.Len(t, entries.Results, 1)
	assert.Equal(t, "entry-1", entries.Results[0].ID())
}

func TestAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code": "object_not_found", "message": "Could not find block"}`))
	}))
	defer ts.Close()

	client := NewClient("token", WithBaseURL(ts.URL))
	_, err := client.GetPage(context.Background(), "12345678-90ab-cdef-1234-567890abcdef")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "object_not_found", apiErr.Code)
	assert.Contains(t, apiErr.Message, "Could not find block")
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	client := NewClient("token", WithBaseURL("http://127.0.0.1:1"))
	_, err := client.GetPage(context.Background(), "12345678-90ab-cdef-1234-567890abcdef")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
