package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/elastic_client"
)

const (
	stopsIndexPrefix   = "routeplanner-stops"
	DefaultSearchLimit = 10
)

var ErrSearchUnavailable = errors.New("stop search is not configured")

const stopsMapping = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 1
	},
	"mappings": {
		"properties": {
			"PrimaryIdentifier": {
				"type": "keyword"
			},
			"PrimaryName": {
				"type": "text",
				"fields": {
					"keyword": {
						"type": "keyword",
						"ignore_above": 256
					},
					"search_as_you_type": {
						"type": "search_as_you_type"
					}
				}
			},
			"Location": {
				"type": "geo_point"
			},
			"ZoneType": {
				"type": "keyword"
			},
			"Accessible": {
				"type": "boolean"
			},
			"Routes": {
				"type": "keyword"
			}
		}
	}
}`

// Catalogue is satisfied by *database.TransitNetwork.
type Catalogue interface {
	AllStops(ctx context.Context) ([]*ctdf.Stop, error)
	AllRoutes(ctx context.Context) ([]*ctdf.Route, error)
}

type StopDocument struct {
	PrimaryIdentifier string
	PrimaryName       string
	// Location is [longitude, latitude], the order a geo_point array expects.
	Location   []float64
	ZoneType   string
	Accessible bool
	Routes     []string
}

// stopDocuments builds a search document for every active stop, listing the
// codes of the active routes that call there.
func stopDocuments(stops []*ctdf.Stop, routes []*ctdf.Route) []*StopDocument {
	routesByStop := map[string][]string{}
	for _, route := range routes {
		if !route.Active {
			continue
		}

		code := route.Code
		if code == "" {
			code = route.PrimaryIdentifier
		}

		seen := map[string]bool{}
		for _, stopRef := range route.StopRefs {
			if seen[stopRef] {
				continue
			}
			seen[stopRef] = true
			routesByStop[stopRef] = append(routesByStop[stopRef], code)
		}
	}

	documents := []*StopDocument{}
	for _, stop := range stops {
		if !stop.Active || stop.Location == nil {
			continue
		}

		point := stop.Point()
		served := routesByStop[stop.PrimaryIdentifier]
		sort.Strings(served)

		documents = append(documents, &StopDocument{
			PrimaryIdentifier: stop.PrimaryIdentifier,
			PrimaryName:       stop.PrimaryName,
			Location:          []float64{point.Longitude, point.Latitude},
			ZoneType:          stop.ZoneType,
			Accessible:        stop.Accessible,
			Routes:            served,
		})
	}

	return documents
}

// IndexStops queues every active stop on a freshly created index and returns
// its name. Once the queue is flushed the previous indexes can be dropped with
// DeleteOldStopIndexes.
func IndexStops(ctx context.Context, catalogue Catalogue) (string, error) {
	stops, err := catalogue.AllStops(ctx)
	if err != nil {
		return "", err
	}
	routes, err := catalogue.AllRoutes(ctx)
	if err != nil {
		return "", err
	}

	indexName := fmt.Sprintf("%s-%d", stopsIndexPrefix, time.Now().Unix())
	if err := createIndex(ctx, indexName, stopsMapping); err != nil {
		return "", err
	}

	documents := stopDocuments(stops, routes)
	for _, document := range documents {
		jsonStop, err := json.Marshal(document)
		if err != nil {
			log.Error().Err(err).Str("stop", document.PrimaryIdentifier).Msg("Failed to encode stop")
			continue
		}

		elastic_client.IndexRequest(indexName, bytes.NewReader(jsonStop))
	}

	log.Info().Int("stops", len(documents)).Msg("Sent all index requests to queue")

	return indexName, nil
}

func DeleteOldStopIndexes(ctx context.Context, current string) error {
	return deleteOldIndexes(ctx, stopsIndexPrefix+"-*", current)
}

func stopSearchQuery(query string, limit int) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query": query,
				"type":  "bool_prefix",
				"fields": []string{
					"PrimaryName.search_as_you_type",
					"PrimaryName.search_as_you_type._2gram",
					"PrimaryName.search_as_you_type._3gram",
				},
			},
		},
	})
}

// SearchStops finds stops whose name starts with or contains query.
func SearchStops(ctx context.Context, query string, limit int) ([]*StopDocument, error) {
	if elastic_client.Client == nil {
		return nil, ErrSearchUnavailable
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	body, err := stopSearchQuery(query, limit)
	if err != nil {
		return nil, err
	}

	searchReq := esapi.SearchRequest{
		Index: []string{stopsIndexPrefix + "-*"},
		Body:  bytes.NewReader(body),
	}

	resp, err := searchReq.Do(ctx, elastic_client.Client)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("search stops: %s", resp.Status())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source *StopDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	documents := []*StopDocument{}
	for _, hit := range result.Hits.Hits {
		documents = append(documents, hit.Source)
	}

	return documents, nil
}
