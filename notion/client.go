package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"
)

// APIError is a structured rejection from the Notion API, as opposed to a
// transport failure. Callers use errors.As to tell the two apart.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion API error %d (%s): %s", e.Status, e.Code, e.Message)
}

// Client is a minimal Notion REST client covering page retrieval, block
// children listing and database queries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    defaultBaseURL,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPage retrieves page metadata by ID.
func (c *Client) GetPage(ctx context.Context, id PageID) (Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/pages/"+string(id), nil, nil, &page); err != nil {
		return nil, err
	}
	return page, nil
}

// GetBlockChildren lists one page of a block's children. An empty cursor
// starts from the beginning.
func (c *Client) GetBlockChildren(ctx context.Context, blockID, cursor string, pageSize int) (*BlockChildren, error) {
	query := url.Values{}
	query.Set("page_size", strconv.Itoa(pageSize))
	if cursor != "" {
		query.Set("start_cursor", cursor)
	}
	var children BlockChildren
	if err := c.do(ctx, http.MethodGet, "/blocks/"+blockID+"/children", query, nil, &children); err != nil {
		return nil, err
	}
	return &children, nil
}

// QueryDatabase lists one page of a database's entries.
func (c *Client) QueryDatabase(ctx context.Context, databaseID, cursor string, pageSize int) (*DatabaseEntries, error) {
	body := map[string]any{
		"page_size": pageSize,
	}
	if cursor != "" {
		body["start_cursor"] = cursor
	}
	var entries DatabaseEntries
	if err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", nil, body, &entries); err != nil {
		return nil, err
	}
	return &entries, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{}
		if err := json.Unmarshal(respBody, apiErr); err != nil {
			apiErr.Message = string(respBody)
		}
		// HTTP status wins over whatever the payload claims.
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
