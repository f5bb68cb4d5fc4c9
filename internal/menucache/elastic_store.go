package menucache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"dinefine-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const menuIndexMapping = `{
	"mappings": {
		"properties": {
			"sourceKey": {"type": "keyword"},
			"updatedAt": {"type": "date"},
			"items": {
				"properties": {
					"name": {"type": "text"},
					"category": {"type": "keyword"},
					"ingredients": {"type": "text"},
					"containsRestricted": {"type": "keyword"}
				}
			}
		}
	}
}`

// ElasticStore keeps one document per source, addressed by a hash of the
// source key so arbitrary URLs can be used as keys.
type ElasticStore struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticStore(client *elasticsearch.Client, index string) *ElasticStore {
	return &ElasticStore{client: client, index: index}
}

func documentID(sourceKey string) string {
	sum := sha256.Sum256([]byte(sourceKey))
	return hex.EncodeToString(sum[:])
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (s *ElasticStore) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{s.index}}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{
		Index: s.index,
		Body:  bytes.NewReader([]byte(menuIndexMapping)),
	}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", s.index, res.Status())
	}
	return nil
}

func (s *ElasticStore) Get(ctx context.Context, sourceKey string) (*models.CachedExtraction, error) {
	res, err := esapi.GetRequest{
		Index:      s.index,
		DocumentID: documentID(sourceKey),
	}.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("get menu document: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("get menu document: %s", res.Status())
	}

	var doc struct {
		Found  bool                    `json:"found"`
		Source models.CachedExtraction `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode menu document: %w", err)
	}
	if !doc.Found {
		return nil, nil
	}
	return &doc.Source, nil
}

func (s *ElasticStore) Put(ctx context.Context, entry models.CachedExtraction) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode menu document: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: documentID(entry.SourceKey),
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index menu document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index menu document: %s", res.Status())
	}
	return nil
}
