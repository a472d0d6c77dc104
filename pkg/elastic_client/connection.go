package elastic_client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/util"
)

const (
	TripPlansIndexPrefix     = "trip-plans"
	RouteAnalysisIndexPrefix = "routeplanner-route-analysis"

	maxRetries    = 5
	flushInterval = 15 * time.Second
)

var ErrNotConfigured = errors.New("elasticsearch address not set")

var Client *elasticsearch.Client
var bulkIndexer esutil.BulkIndexer

type Config struct {
	Address  string
	Username string
	Password string
	Insecure bool
}

func ConfigFromEnvironment() Config {
	env := util.GetEnvironmentVariables()

	return Config{
		Address:  env["TRAVIGO_ELASTICSEARCH_ADDRESS"],
		Username: env["TRAVIGO_ELASTICSEARCH_USERNAME"],
		Password: env["TRAVIGO_ELASTICSEARCH_PASSWORD"],
		Insecure: env["TRAVIGO_ELASTICSEARCH_INSECURE"] == "YES",
	}
}

// MonthlyIndex names the index that documents written at t belong to.
func MonthlyIndex(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%d-%02d", prefix, t.Year(), t.Month())
}

// IndexPattern matches every index created under prefix.
func IndexPattern(prefix string) string {
	return prefix + "-*"
}

// Connect sets up the shared client and bulk indexer. Without an address it is
// a no-op unless required is set.
func Connect(required bool) error {
	config := ConfigFromEnvironment()

	if config.Address == "" {
		if required {
			return ErrNotConfigured
		}
		log.Info().Msg("Skipping Elasticsearch setup")
		return nil
	}

	es, err := elasticsearch.NewClient(newClientConfig(config))
	if err != nil {
		return err
	}

	if _, err := es.Info(); err != nil {
		return err
	}

	bulkIndexer, err = esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        es,
		FlushInterval: flushInterval,
		OnError: func(ctx context.Context, err error) {
			log.Error().Err(err).Msg("Elasticsearch bulk flush failed")
		},
	})
	if err != nil {
		return err
	}
	Client = es

	log.Info().Str("address", config.Address).Msg("Elasticsearch client setup")

	return nil
}

func newClientConfig(config Config) elasticsearch.Config {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if config.Insecure {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true
	}

	retryBackoff := backoff.NewExponentialBackOff()

	return elasticsearch.Config{
		Addresses: []string{config.Address},
		Username:  config.Username,
		Password:  config.Password,
		Transport: transport,

		RetryOnStatus: []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusTooManyRequests},
		RetryBackoff: func(attempt int) time.Duration {
			if attempt == 1 {
				retryBackoff.Reset()
			}
			wait := retryBackoff.NextBackOff()
			log.Warn().Int("attempt", attempt).Dur("wait", wait).Msg("Retrying Elasticsearch request")
			return wait
		},
		MaxRetries: maxRetries,
	}
}

// IndexRequest queues a document on the bulk indexer. It does nothing when
// Elasticsearch is not configured.
func IndexRequest(indexName string, document io.ReadSeeker) {
	if Client == nil || bulkIndexer == nil {
		return
	}

	err := bulkIndexer.Add(
		context.Background(),
		esutil.BulkIndexerItem{
			Index:  indexName,
			Action: "index",
			Body:   document,
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				event := log.Error().Str("index", indexName)
				if err != nil {
					event = event.Err(err)
				} else {
					event = event.Int("status", res.Status).Str("type", res.Error.Type).Str("reason", res.Error.Reason)
				}
				event.Msg("Failed to index document")
			},
		},
	)
	if err != nil {
		log.Error().Err(err).Str("index", indexName).Msg("Failed to queue document")
	}
}

// WaitUntilQueueEmpty flushes and closes the bulk indexer.
func WaitUntilQueueEmpty() {
	if bulkIndexer == nil {
		return
	}

	if err := bulkIndexer.Close(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to flush Elasticsearch queue")
	}

	stats := bulkIndexer.Stats()
	log.Info().
		Uint64("indexed", stats.NumIndexed).
		Uint64("failed", stats.NumFailed).
		Msg("Elasticsearch queue flushed")

	bulkIndexer = nil
}
