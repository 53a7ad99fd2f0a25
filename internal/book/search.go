package book

import (
	"context"
	"fmt"
	"strings"
	"time"

	"educycle_backend/internal/common"
	es "educycle_backend/internal/platform/elasticsearch"

	"github.com/google/uuid"
)

// SearchIndex is the full-text book index. The service falls back to SQL when it is nil.
type SearchIndex interface {
	Index(ctx context.Context, b *Book) error
	Search(ctx context.Context, query SearchQuery) ([]uuid.UUID, int64, error)
}

// searchDoc is the Elasticsearch representation of a book.
type searchDoc struct {
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Subject     string    `json:"subject"`
	ClassLevel  string    `json:"class_level"`
	Board       string    `json:"board"`
	Condition   string    `json:"condition"`
	City        string    `json:"city"`
	Area        string    `json:"area"`
	DonorUID    string    `json:"donor_uid"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
}

func (b *Book) toSearchDoc() searchDoc {
	return searchDoc{
		Title:       b.Title,
		Slug:        b.Slug,
		Description: b.Description,
		Subject:     b.Subject,
		ClassLevel:  b.ClassLevel,
		Board:       b.Board,
		Condition:   b.Condition,
		City:        b.City,
		Area:        b.Area,
		DonorUID:    b.DonorUID,
		Available:   b.Available,
		CreatedAt:   b.CreatedAt,
	}
}

type esIndex struct {
	client *es.ESClientWrapper
}

// NewSearchIndex returns an Elasticsearch-backed index, or nil when client is nil.
func NewSearchIndex(client *es.ESClientWrapper) SearchIndex {
	if client == nil {
		return nil
	}
	return &esIndex{client: client}
}

func (i *esIndex) Index(ctx context.Context, b *Book) error {
	return i.client.IndexDocument(ctx, es.BooksIndexName, b.ID.String(), b.toSearchDoc())
}

func (i *esIndex) Search(ctx context.Context, query SearchQuery) ([]uuid.UUID, int64, error) {
	raw, total, err := i.client.SearchIDs(ctx, es.BooksIndexName, buildSearchQuery(query))
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, 0, fmt.Errorf("index returned invalid book id %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, total, nil
}

// buildSearchQuery turns filters into term clauses and q into a multi_match on title and description.
func buildSearchQuery(query SearchQuery) map[string]interface{} {
	filter := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"available": true}},
	}
	for col, v := range query.filters() {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{col: v}})
	}
	boolQuery := map[string]interface{}{"filter": filter}

	sort := []interface{}{map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}}}
	if q := strings.TrimSpace(query.Q); q != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":     q,
					"fields":    []string{"title^3", "description"},
					"fuzziness": "AUTO",
				},
			},
		}
		sort = append([]interface{}{"_score"}, sort...)
	}

	return map[string]interface{}{
		"from":    query.Offset(),
		"size":    query.Limit(),
		"query":   map[string]interface{}{"bool": boolQuery},
		"sort":    sort,
		"_source": false,
	}
}

// paginationFor builds the envelope pagination for an index search.
func paginationFor(total int64, query SearchQuery) *common.Pagination {
	return common.NewPagination(total, query.Page, query.Limit())
}
