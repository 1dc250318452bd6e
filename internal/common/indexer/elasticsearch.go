package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/chikocharles/job-scraper/internal/domain"
)

// ElasticsearchIndexer indexes jobs into an Elasticsearch index keyed by
// the job ID.
type ElasticsearchIndexer struct {
	client    *elasticsearch.Client
	indexName string
	log       *slog.Logger
}

func NewElasticsearchIndexer(addresses []string, indexName string, log *slog.Logger) (*ElasticsearchIndexer, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("es error: %s", res.Status())
	}

	if log == nil {
		log = slog.Default()
	}
	return &ElasticsearchIndexer{client: client, indexName: indexName, log: log}, nil
}

// Index indexes a single job.
func (i *ElasticsearchIndexer) Index(ctx context.Context, job *domain.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.indexName,
		DocumentID: job.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index error: %s", res.Status())
	}
	return nil
}

// BulkIndex sends all jobs in one bulk request. Item-level failures are
// logged; only a failed request as a whole is an error.
func (i *ElasticsearchIndexer) BulkIndex(ctx context.Context, jobs []*domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, job := range jobs {
		meta := map[string]any{
			"index": map[string]any{
				"_index": i.indexName,
				"_id":    job.ID,
			},
		}
		metaBytes, _ := json.Marshal(meta)
		buf.Write(metaBytes)
		buf.WriteByte('\n')

		docBytes, err := json.Marshal(job)
		if err != nil {
			i.log.Error("marshal job", "id", job.ID, "error", err)
			continue
		}
		buf.Write(docBytes)
		buf.WriteByte('\n')
	}

	res, err := i.client.Bulk(bytes.NewReader(buf.Bytes()), i.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk error: %s", res.Status())
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string `json:"_id"`
				Status int    `json:"status"`
				Error  struct {
					Type   string `json:"type"`
					Reason string `json:"reason"`
				} `json:"error"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return fmt.Errorf("parse bulk response: %w", err)
	}
	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			if item.Index.Status >= 400 {
				i.log.Error("bulk index item failed",
					"id", item.Index.ID,
					"type", item.Index.Error.Type,
					"reason", item.Index.Error.Reason)
			}
		}
	}
	return nil
}

// Close is a no-op; the underlying HTTP client needs no teardown.
func (i *ElasticsearchIndexer) Close() error {
	return nil
}

// EnsureIndex creates the index with the job mapping if it doesn't exist.
func (i *ElasticsearchIndexer) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.indexName})
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	mapping := `{
		"mappings": {
			"properties": {
				"id": {"type": "keyword"},
				"title": {
					"type": "text",
					"fields": {"keyword": {"type": "keyword"}}
				},
				"company": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"location": {"type": "keyword"},
				"expiry": {"type": "date"},
				"description": {"type": "text"},
				"category": {"type": "keyword"},
				"source": {"type": "keyword"},
				"url": {"type": "keyword"},
				"apply_email": {"type": "keyword"},
				"scraped_at": {"type": "date"}
			}
		}
	}`

	res, err = i.client.Indices.Create(
		i.indexName,
		i.client.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
		i.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index error: %s", res.Status())
	}
	return nil
}
