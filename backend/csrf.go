package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// csrfTokenTTL bounds how long a scraped token is replayed before a
// fresh page fetch.
const csrfTokenTTL = time.Minute

type tokenCache struct {
	tokens *expirable.LRU[string, string]
}

func newTokenCache() *tokenCache {
	return &tokenCache{
		tokens: expirable.NewLRU[string, string](1024, nil, csrfTokenTTL),
	}
}

// CSRFToken returns the anti-forgery token embedded in the given
// front-end page, serving it from the TTL cache unless noCache is set.
func (c *Client) CSRFToken(ctx context.Context, pageURL string, noCache bool) (string, error) {
	if !noCache {
		if token, ok := c.csrf.tokens.Get(pageURL); ok {
			return token, nil
		}
	}

	token, err := c.fetchCSRFToken(ctx, pageURL)
	if err != nil {
		return "", err
	}
	if !noCache {
		c.csrf.tokens.Add(pageURL, token)
	}
	return token, nil
}

// InvalidateCSRFToken drops the cached token for a page, forcing the
// next CSRFToken call to scrape a fresh one.
func (c *Client) InvalidateCSRFToken(pageURL string) {
	c.csrf.tokens.Remove(pageURL)
}

func (c *Client) fetchCSRFToken(ctx context.Context, pageURL string) (string, error) {
	doc, err := c.GetDocument(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("could not fetch page %s for csrf token: %w", pageURL, err)
	}
	token := doc.Find("meta[name=csrf-token]").AttrOr("content", "")
	if token == "" {
		return "", fmt.Errorf("could not find csrf-token meta tag at %s", pageURL)
	}
	slog.DebugContext(ctx, "scraped csrf token", "page", pageURL)
	return token, nil
}
