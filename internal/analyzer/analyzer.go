package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/avelesov/urlwords/internal/models"
)

var (
	ErrInvalidURL      = errors.New("url must start with http:// or https://")
	ErrContentTooLarge = errors.New("content exceeds maximum allowed size")
	ErrNoContent       = errors.New("no meaningful words found for analysis")
)

const DefaultTopN = 5

// wordRe extracts lowercase runs of three or more letters.
var wordRe = regexp.MustCompile(`[a-z]{3,}`)

// tags whose subtree carries no readable page content
var skipTags = map[string]struct{}{
	"script": {}, "style": {}, "meta": {}, "link": {},
	"noscript": {}, "header": {}, "footer": {}, "nav": {},
}

// Service runs the fetch -> extract -> count pipeline for one URL.
type Service struct {
	Client         *http.Client
	MaxContentSize int64
	UserAgent      string
	TopN           int
}

func New(timeout time.Duration, maxContentSize int64, userAgent string) *Service {
	return &Service{
		Client:         &http.Client{Timeout: timeout},
		MaxContentSize: maxContentSize,
		UserAgent:      userAgent,
		TopN:           DefaultTopN,
	}
}

func (s *Service) AnalyzeURL(ctx context.Context, rawURL string) (models.WordCounts, error) {
	body, err := s.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	text, err := ExtractText(body)
	if err != nil {
		return nil, err
	}
	return TopWords(text, s.TopN)
}

func (s *Service) Fetch(ctx context.Context, rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "", ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > s.MaxContentSize {
		return "", ErrContentTooLarge
	}

	// read one byte past the cap to tell "exactly at the limit" from
	// "over it" when the server sends no Content-Length
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.MaxContentSize+1))
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", rawURL, err)
	}
	if int64(len(data)) > s.MaxContentSize {
		return "", ErrContentTooLarge
	}
	return string(data), nil
}

// ExtractText strips markup and returns whitespace-normalized page
// text, skipping the subtrees of non-content tags.
func ExtractText(doc string) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, skip := skipTags[n.Data]; skip {
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return strings.Join(strings.Fields(b.String()), " "), nil
}

// TopWords counts non-stop-word tokens and returns the n most
// frequent. Ties break alphabetically so the output is deterministic.
func TopWords(text string, n int) (models.WordCounts, error) {
	if n <= 0 {
		n = DefaultTopN
	}

	counts := make(map[string]int)
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		counts[w]++
	}
	if len(counts) == 0 {
		return nil, ErrNoContent
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}

	out := make(models.WordCounts, len(words))
	for i, w := range words {
		out[i] = models.WordCount{Word: w, Count: counts[w]}
	}
	return out, nil
}
