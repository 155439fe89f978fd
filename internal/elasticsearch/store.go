package elasticsearch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/encoding/json"

	"record-ingest-backend/config"
	"record-ingest-backend/internal/model"
	"record-ingest-backend/internal/repository"
)

type elasticRecordStore struct {
	cfg      config.ElasticsearchConfig
	storeCfg config.StoreConfig
	mu       sync.RWMutex
	client   *elasticsearch.Client
}

func NewElasticRecordStore(cfg *config.Config) repository.RecordStore {
	return &elasticRecordStore{
		cfg:      cfg.Elasticsearch,
		storeCfg: cfg.Store,
	}
}

func (s *elasticRecordStore) Name() string {
	return "Elasticsearch"
}

func (s *elasticRecordStore) Connect(ctx context.Context) error {
	if len(s.cfg.Addresses) == 0 {
		log.Error().Msg("Elasticsearch addresses are not configured.")
		return errors.New("elasticsearch configuration missing")
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: time.Second * 10,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
	}
	esCfg := elasticsearch.Config{
		Addresses: s.cfg.Addresses,
		Username:  s.cfg.Username,
		Password:  s.cfg.Password,
		Transport: transport,
	}

	return repository.ConnectWithRetry(ctx, s.Name(), s.storeCfg, func(ctx context.Context) error {
		esClient, err := elasticsearch.NewClient(esCfg)
		if err != nil {
			return fmt.Errorf("create elasticsearch client: %w", err)
		}
		res, err := esClient.Info(esClient.Info.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("elasticsearch info: %w", err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("elasticsearch Info() returned error status: %s", res.Status())
		}

		s.mu.Lock()
		s.client = esClient
		s.mu.Unlock()
		log.Info().Str("index", s.cfg.Index).Msg("Elasticsearch client initialized and connection verified")
		return nil
	})
}

func (s *elasticRecordStore) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

// InsertMany indexes the records with one synchronous _bulk request. Any item
// failure fails the whole call.
func (s *elasticRecordStore) InsertMany(ctx context.Context, records []model.Record) error {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil {
		return repository.ErrNotConnected
	}
	if len(records) == 0 {
		return nil
	}

	body, err := buildBulkBody(records)
	if err != nil {
		return err
	}
	res, err := client.Bulk(
		bytes.NewReader(body),
		client.Bulk.WithContext(ctx),
		client.Bulk.WithIndex(s.cfg.Index),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch bulk returned error status: %s", res.String())
	}
	if err := parseBulkResponse(res.Body); err != nil {
		return err
	}
	log.Debug().Int("count", len(records)).Str("index", s.cfg.Index).Msg("Indexed records into Elasticsearch")
	return nil
}

func (s *elasticRecordStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	return nil
}

func buildBulkBody(records []model.Record) ([]byte, error) {
	var buf bytes.Buffer
	for i, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("marshal record %d: %w", i, err)
		}
		buf.WriteString(`{"index":{}}`)
		buf.WriteByte('\n')
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

type bulkResponse struct {
	Errors bool                  `json:"errors"`
	Items  []map[string]bulkItem `json:"items"`
}

type bulkItem struct {
	Status int `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

func parseBulkResponse(r io.Reader) error {
	var resp bulkResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return fmt.Errorf("decode elasticsearch bulk response: %w", err)
	}
	if !resp.Errors {
		return nil
	}
	var reasons []string
	for _, item := range resp.Items {
		for _, result := range item {
			if result.Error != nil {
				reasons = append(reasons, fmt.Sprintf("%d %s: %s", result.Status, result.Error.Type, result.Error.Reason))
			}
		}
	}
	return fmt.Errorf("elasticsearch bulk indexing failed for %d of %d records: %s", len(reasons), len(resp.Items), strings.Join(reasons, "; "))
}
