package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const BooksIndexName = "books"

var keywordSubField = map[string]interface{}{
	"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256},
}

// BooksMapping returns the mapping of the books index. Filter fields are keywords
// matched exactly; title and description are analyzed for free-text queries.
func BooksMapping() map[string]interface{} {
	return map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":       map[string]interface{}{"type": "text", "fields": keywordSubField},
				"slug":        map[string]interface{}{"type": "keyword"},
				"description": map[string]interface{}{"type": "text"},
				"subject":     map[string]interface{}{"type": "keyword"},
				"class_level": map[string]interface{}{"type": "keyword"},
				"board":       map[string]interface{}{"type": "keyword"},
				"condition":   map[string]interface{}{"type": "keyword"},
				"city":        map[string]interface{}{"type": "keyword"},
				"area":        map[string]interface{}{"type": "keyword"},
				"donor_uid":   map[string]interface{}{"type": "keyword"},
				"available":   map[string]interface{}{"type": "boolean"},
				"created_at":  map[string]interface{}{"type": "date"},
			},
		},
	}
}

// CreateIndexIfNotExists creates index with mapping unless it already exists.
func CreateIndexIfNotExists(ctx context.Context, client *ESClientWrapper, index string, mapping map[string]interface{}, logger *zap.Logger) error {
	log := logger.Named("elasticsearch_index_setup")

	res, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error checking if index exists", zap.String("index_name", index), zap.Error(err))
		return fmt.Errorf("error checking if index %s exists: %w", index, err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Info("Index already exists", zap.String("index_name", index))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("error checking if index %s exists: status %s", index, res.Status())
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("error marshalling %s mapping: %w", index, err)
	}

	createRes, err := esapi.IndicesCreateRequest{Index: index, Body: bytes.NewReader(body)}.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error creating index", zap.Error(err), zap.String("index_name", index))
		return fmt.Errorf("error creating index %s: %w", index, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		log.Error("Failed to create index",
			zap.String("status", createRes.Status()),
			zap.String("body", responseBodyToString(createRes)),
			zap.String("index_name", index),
		)
		return fmt.Errorf("failed to create index %s: status %s", index, createRes.Status())
	}

	log.Info("Index created successfully", zap.String("index_name", index))
	return nil
}

// IndexDocument stores doc under id, replacing any previous version.
func (c *ESClientWrapper) IndexDocument(ctx context.Context, index, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshalling document %s: %w", id, err)
	}
	res, err := esapi.IndexRequest{Index: index, DocumentID: id, Body: bytes.NewReader(body)}.Do(ctx, c.Client)
	if err != nil {
		return fmt.Errorf("error indexing document %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("error indexing document %s: status %s: %s", id, res.Status(), responseBodyToString(res))
	}
	return nil
}

// SearchIDs runs query against index and returns matching document IDs in score order
// together with the total hit count.
func (c *ESClientWrapper) SearchIDs(ctx context.Context, index string, query map[string]interface{}) ([]string, int64, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, 0, fmt.Errorf("error marshalling search query: %w", err)
	}
	res, err := c.Search(
		c.Search.WithContext(ctx),
		c.Search.WithIndex(index),
		c.Search.WithBody(bytes.NewReader(body)),
		c.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("error searching %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, fmt.Errorf("error searching %s: status %s: %s", index, res.Status(), responseBodyToString(res))
	}

	var parsed searchResponse
	if err := decodeResponse(res, &parsed); err != nil {
		return nil, 0, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, parsed.Hits.Total.Value, nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// BulkDocument is one entry of a bulk index request.
type BulkDocument struct {
	ID  string
	Doc interface{}
}

// BuildBulkBody encodes docs as an NDJSON bulk index request. Documents that fail to
// encode are skipped and returned by ID.
func BuildBulkBody(index string, docs []BulkDocument) (string, []string) {
	var b strings.Builder
	var failed []string
	for _, d := range docs {
		src, err := json.Marshal(d.Doc)
		if err != nil {
			failed = append(failed, d.ID)
			continue
		}
		action, _ := json.Marshal(map[string]interface{}{
			"index": map[string]string{"_index": index, "_id": d.ID},
		})
		b.Write(action)
		b.WriteByte('\n')
		b.Write(src)
		b.WriteByte('\n')
	}
	return b.String(), failed
}

// BulkIndex indexes docs and reports how many were stored and the IDs that failed.
func (c *ESClientWrapper) BulkIndex(ctx context.Context, index string, docs []BulkDocument, refresh string, logger *zap.Logger) (int, []string, error) {
	body, failed := BuildBulkBody(index, docs)
	if body == "" {
		return 0, failed, nil
	}

	res, err := esapi.BulkRequest{Body: strings.NewReader(body), Refresh: refresh}.Do(ctx, c.Client)
	if err != nil {
		return 0, failed, fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, failed, fmt.Errorf("bulk request returned %s: %s", res.Status(), responseBodyToString(res))
	}

	var bulkResponse struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string                 `json:"_id"`
				Status int                    `json:"status"`
				Error  map[string]interface{} `json:"error,omitempty"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := decodeResponse(res, &bulkResponse); err != nil {
		return 0, failed, err
	}

	synced := 0
	for _, item := range bulkResponse.Items {
		if item.Index.Error != nil {
			logger.Error("Failed to index document in bulk batch",
				zap.String("id", item.Index.ID),
				zap.Any("error", item.Index.Error),
				zap.Int("status", item.Index.Status),
			)
			failed = append(failed, item.Index.ID)
			continue
		}
		synced++
	}
	return synced, failed, nil
}
