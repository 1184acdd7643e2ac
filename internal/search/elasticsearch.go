package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"venuehub/internal/config"
	"venuehub/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchClient indexes venues for full-text search
type ElasticsearchClient struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

func NewElasticsearchClient(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &ElasticsearchClient{
		client: es,
		config: cfg,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := client.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	mappingJSON, err := json.Marshal(venueIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  bytes.NewReader(mappingJSON),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

func venueIndexMapping() map[string]interface{} {
	text := func() map[string]interface{} {
		return map[string]interface{}{
			"type":     "text",
			"analyzer": "venue_analyzer",
			"fields": map[string]interface{}{
				"keyword": map[string]interface{}{
					"type":         "keyword",
					"normalizer":   "lowercase_normalizer",
					"ignore_above": 256,
				},
			},
		}
	}
	keyword := map[string]interface{}{"type": "keyword"}

	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]interface{}{
				"analyzer": map[string]interface{}{
					"venue_analyzer": map[string]interface{}{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "english_stop", "english_stemmer"},
					},
				},
				"normalizer": map[string]interface{}{
					"lowercase_normalizer": map[string]interface{}{
						"type":   "custom",
						"filter": []string{"lowercase"},
					},
				},
				"filter": map[string]interface{}{
					"english_stop": map[string]interface{}{
						"type":      "stop",
						"stopwords": "_english_",
					},
					"english_stemmer": map[string]interface{}{
						"type":     "stemmer",
						"language": "english",
					},
				},
			},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":          keyword,
				"ownerId":     keyword,
				"name":        text(),
				"description": map[string]interface{}{"type": "text", "analyzer": "venue_analyzer"},
				"city":        text(),
				"state":       text(),
				"type":        keyword,
				"status":      keyword,
				"amenities":   map[string]interface{}{"type": "text", "analyzer": "venue_analyzer"},
				"capacityMax": map[string]interface{}{"type": "integer"},
				"price":       map[string]interface{}{"type": "scaled_float", "scaling_factor": 100},
				"available":   map[string]interface{}{"type": "boolean"},
				"featured":    map[string]interface{}{"type": "boolean"},
				"featuredUntil": map[string]interface{}{
					"type": "date",
				},
				"createdAt": map[string]interface{}{"type": "date"},
				"updatedAt": map[string]interface{}{"type": "date"},
			},
		},
	}
}

// IndexVenue upserts the venue document.
func (c *ElasticsearchClient) IndexVenue(ctx context.Context, venue *models.Venue) error {
	venueJSON, err := json.Marshal(venue)
	if err != nil {
		return fmt.Errorf("failed to marshal venue: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: venue.ID,
		Body:       bytes.NewReader(venueJSON),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index venue: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}

	return nil
}

func (c *ElasticsearchClient) DeleteVenue(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{
		Index:      c.config.Index,
		DocumentID: id,
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to delete venue: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete error: %s", res.String())
	}

	return nil
}

// Search returns one page of verified venues matching the filter and the total hit count.
func (c *ElasticsearchClient) Search(ctx context.Context, filter models.VenueFilter) ([]models.Venue, int64, error) {
	filter.Normalize()

	searchRequest := map[string]interface{}{
		"query":            buildSearchQuery(filter),
		"sort":             buildSortQuery(filter.Query),
		"from":             filter.Offset(),
		"size":             filter.PageSize,
		"track_total_hits": true,
	}

	searchJSON, err := json.Marshal(searchRequest)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(searchJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Venue `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search response: %w", err)
	}

	venues := make([]models.Venue, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		venues[i] = hit.Source
	}

	return venues, response.Hits.Total.Value, nil
}

func buildSearchQuery(filter models.VenueFilter) map[string]interface{} {
	must := []map[string]interface{}{}
	filters := []map[string]interface{}{
		{"term": map[string]interface{}{"status": models.VenueStatusVerified}},
	}

	if filter.Query != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     filter.Query,
				"fields":    []string{"name^3", "description", "city^2", "state", "amenities"},
				"fuzziness": "AUTO",
			},
		})
	}
	if filter.City != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"city.keyword": filter.City},
		})
	}
	if filter.State != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"state.keyword": filter.State},
		})
	}
	if filter.Type != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"type": filter.Type},
		})
	}

	boolQuery := map[string]interface{}{"filter": filters}
	if len(must) > 0 {
		boolQuery["must"] = must
	}

	return map[string]interface{}{"bool": boolQuery}
}

func buildSortQuery(query string) []map[string]interface{} {
	sort := []map[string]interface{}{
		{"featured": map[string]interface{}{"order": "desc"}},
	}
	if query != "" {
		sort = append(sort, map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}})
	}
	return append(sort, map[string]interface{}{"createdAt": map[string]interface{}{"order": "desc"}})
}

func (c *ElasticsearchClient) HealthCheck(ctx context.Context) error {
	req := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}

	return nil
}
