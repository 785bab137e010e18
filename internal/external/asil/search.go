package asil

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ComplexResult is one search hit: an apartment complex the source knows,
// identified by its seq.
type ComplexResult struct {
	Seq         string `json:"seq"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SearchComplexes searches the source by complex name and returns candidate
// matches. 관리자 등록 플로우에서 seq와 설명을 얻는 데 쓴다.
// ⭐ SSOT: 아실 단지 검색은 이 함수에서만
func (c *Client) SearchComplexes(ctx context.Context, keyword string) ([]ComplexResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("empty search keyword")
	}

	params := url.Values{}
	params.Set("keyword", keyword)

	body, status, err := c.fetchBody(ctx, "/app/apt/search.jsp", params)
	if err != nil {
		return nil, fmt.Errorf("search %q (status %d): %w", keyword, status, err)
	}

	results, err := parseSearchHTML(body)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"keyword": keyword,
		"count":   len(results),
	}).Debug("Searched complexes")

	return results, nil
}

// parseSearchHTML extracts search hits from the result page.
// 구조: <li class="apt-item" data-seq="..."><span class="name">..</span>
// <span class="desc">..</span></li>
func parseSearchHTML(body []byte) ([]ComplexResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse search HTML: %w", err)
	}

	var results []ComplexResult
	doc.Find("li.apt-item").Each(func(i int, item *goquery.Selection) {
		seq, ok := item.Attr("data-seq")
		if !ok || strings.TrimSpace(seq) == "" {
			return
		}

		name := strings.TrimSpace(item.Find("span.name").First().Text())
		if name == "" {
			return
		}
		desc := strings.TrimSpace(item.Find("span.desc").First().Text())

		results = append(results, ComplexResult{
			Seq:         strings.TrimSpace(seq),
			Name:        name,
			Description: desc,
		})
	})

	return results, nil
}
