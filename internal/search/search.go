package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/avelesov/urlwords/internal/models"
)

const analysesIndex = "url_analyses"

// Client indexes saved analyses and serves full-text search over them.
// A nil Client disables both, so the service runs without ES.
type Client struct {
	ES    *elasticsearch.Client
	Index string
}

func NewClient(url, username, password string) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("search: create client: %w", err)
	}

	res, err := es.Info()
	if err != nil {
		return nil, fmt.Errorf("search: ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search: ping: %s: %s", res.Status(), body)
	}

	return &Client{ES: es, Index: analysesIndex}, nil
}

type AnalysisDoc struct {
	ID         uint      `json:"id"`
	URL        string    `json:"url"`
	UserID     uint      `json:"user_id"`
	Words      []string  `json:"words"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

func (c *Client) IndexAnalysis(ctx context.Context, a *models.URLAnalysis) error {
	if c == nil || c.ES == nil {
		return nil
	}

	words := make([]string, len(a.TopWords))
	for i, wc := range a.TopWords {
		words[i] = wc.Word
	}
	doc := AnalysisDoc{
		ID:         a.ID,
		URL:        a.URL,
		UserID:     a.UserID,
		Words:      words,
		AnalyzedAt: a.AnalyzedAt,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("search: marshal doc: %w", err)
	}

	res, err := c.ES.Index(c.Index, bytes.NewReader(data),
		c.ES.Index.WithContext(ctx),
		c.ES.Index.WithDocumentID(strconv.FormatUint(uint64(a.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("search: index analysis %d: %w", a.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search: index analysis %d: %s", a.ID, res.Status())
	}
	return nil
}

// SearchAnalyses matches the query against the caller's own documents
// only; user_id is a hard filter, not a ranking signal.
func (c *Client) SearchAnalyses(ctx context.Context, userID uint, query string, from, size int) (int64, []AnalysisDoc, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     query,
						"fields":    []string{"words^2", "url"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"user_id": userID},
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := c.ES.Search(
		c.ES.Search.WithContext(ctx),
		c.ES.Search.WithIndex(c.Index),
		c.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: query failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: query failed: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source AnalysisDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode response: %w", err)
	}

	docs := make([]AnalysisDoc, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}
