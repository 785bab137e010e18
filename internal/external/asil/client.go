package asil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/wonny/aptper/pkg/httputil"
	"github.com/wonny/aptper/pkg/logger"
)

// Client handles communication with the Asil apartment transaction site
// ⭐ SSOT: 아실 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Asil client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://asil.kr"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

var defaultHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	"Referer":    "https://asil.kr/",
}

// fetchBody performs a GET and returns the raw response body
func (c *Client) fetchBody(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	fullURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, defaultHeaders)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return body, resp.StatusCode, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return body, resp.StatusCode, nil
}
