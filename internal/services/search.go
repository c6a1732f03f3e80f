package services

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/config"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

const productIndex = "products"

// ProductIndex mirrors the catalog into a full-text index.
type ProductIndex interface {
	Index(ctx context.Context, p models.Product) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]models.Product, error)
}

type ElasticIndex struct {
	client *elasticsearch.Client
}

var _ ProductIndex = (*ElasticIndex)(nil)

// ConnectElastic returns nil, nil when ELASTIC_URL is not configured.
func ConnectElastic(cfg *config.Config) (*ElasticIndex, error) {
	if cfg.ElasticURL == "" {
		zap.S().Info("⚠️ ELASTIC_URL not set, product search uses the document store")
		return nil, nil
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		return nil, errors.Wrap(err, "elastic client")
	}
	res, err := client.Info()
	if err != nil {
		return nil, errors.Wrap(err, "elastic info")
	}
	res.Body.Close()
	zap.S().Info("✅ connected to Elasticsearch")
	return &ElasticIndex{client: client}, nil
}

// indexedProduct drops the Mongo _id, a reserved field in Elasticsearch.
type indexedProduct struct {
	models.Product
	MongoID *struct{} `json:"_id,omitempty"`
}

func (e *ElasticIndex) Index(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(indexedProduct{Product: p})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      productIndex,
		DocumentID: p.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return errors.Wrap(err, "elastic index")
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.Errorf("elastic index %s: %s", p.ID, res.String())
	}
	return nil
}

func (e *ElasticIndex) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: productIndex, DocumentID: id, Refresh: "true"}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return errors.Wrap(err, "elastic delete")
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return errors.Errorf("elastic delete %s: %s", id, res.String())
	}
	return nil
}

func (e *ElasticIndex) Search(ctx context.Context, query string) ([]models.Product, error) {
	var buf bytes.Buffer
	q := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "category", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{Index: []string{productIndex}, Body: &buf}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, errors.Wrap(err, "elastic search")
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, errors.Errorf("elastic search: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "elastic decode")
	}
	out := make([]models.Product, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		out = append(out, hit.Source)
	}
	return out, nil
}
