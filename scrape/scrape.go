package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// contentTags are tried in order when picking the part of a page worth
// keeping. Falling back to body means navigation noise may leak in.
var contentTags = []string{"article", "main", "body"}

// Clip downloads a public web page and converts its main content to
// markdown. Used to enrich bookmark blocks with the content they point at.
func Clip(ctx context.Context, client *http.Client, pageURL string) (title string, markdown string, err error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to download page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	content := selectContent(doc)
	if content == nil {
		return "", "", fmt.Errorf("no content element found in %s", pageURL)
	}

	markdownBytes, err := htmltomarkdown.ConvertNode(content)
	if err != nil {
		return "", "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}

	return extractTitle(doc), strings.TrimSpace(string(markdownBytes)), nil
}

// selectContent returns the first matching content element, preferring
// semantic containers over the whole body.
func selectContent(doc *html.Node) *html.Node {
	for _, tag := range contentTags {
		if node := findNodeByTag(doc, tag); node != nil {
			return node
		}
	}
	return nil
}

func findNodeByTag(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findNodeByTag(c, tag); result != nil {
			return result
		}
	}
	return nil
}

func extractTitle(doc *html.Node) string {
	node := findNodeByTag(doc, "title")
	if node == nil || node.FirstChild == nil || node.FirstChild.Type != html.TextNode {
		return ""
	}
	return strings.TrimSpace(node.FirstChild.Data)
}
