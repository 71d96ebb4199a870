// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"content-policy-workers/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchClient wraps the Elasticsearch client
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

// NewElasticsearch creates a new Elasticsearch client. transport may be nil.
func NewElasticsearch(cfg config.ElasticsearchConfig, transport http.RoundTripper) (*ElasticsearchClient, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
		Transport: transport,
	}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticsearchClient{Client: es}, nil
}

// Ping tests the Elasticsearch connection
func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}

// decisionMapping keeps free-text fields searchable and everything else
// exact-match.
const decisionMapping = `{
  "mappings": {
    "properties": {
      "decisionId":        {"type": "keyword"},
      "contentId":         {"type": "keyword"},
      "reviewType":        {"type": "keyword"},
      "targetAgeTier":     {"type": "keyword"},
      "status":            {"type": "keyword"},
      "score":             {"type": "integer"},
      "scriptureAccurate": {"type": "boolean"},
      "categories":        {"type": "keyword"},
      "rules":             {"type": "keyword"},
      "flaggedIssues":     {"type": "text"},
      "warnings":          {"type": "text"},
      "summary":           {"type": "text"},
      "lexiconVersion":    {"type": "keyword"},
      "tierTableVersion":  {"type": "keyword"},
      "evaluatedAt":       {"type": "date"}
    }
  }
}`

// EnsureDecisionIndex creates index with the decision mapping unless it
// already exists.
func (c *ElasticsearchClient) EnsureDecisionIndex(ctx context.Context, index string) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, c.Client)
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", index, err)
	}
	exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{
		Index: index,
		Body:  strings.NewReader(decisionMapping),
	}.Do(ctx, c.Client)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", index, res.String())
	}
	return nil
}
