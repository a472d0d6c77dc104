package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/travigo/routeplanner/pkg/elastic_client"
)

var ErrElasticsearchUnavailable = errors.New("elasticsearch is not configured")

type TripPlanStats struct {
	Searches int
	Found    int

	FoundRate  float64
	Objectives map[string]int
}

type tripPlanESResponse struct {
	Aggregations struct {
		Objectives struct {
			Buckets []struct {
				Key      string
				DocCount int `json:"doc_count"`
				Found    struct {
					Buckets []struct {
						Key         int
						DocCount    int    `json:"doc_count"`
						KeyAsString string `json:"key_as_string"`
					}
				}
			}
		}
	}
}

func tripPlanStatsQuery(timestampRange map[string]interface{}) ([]byte, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"range": map[string]interface{}{
				"Timestamp": timestampRange,
			},
		},
		"aggs": map[string]interface{}{
			"objectives": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "Objective.keyword",
					"size":  100,
				},
				"aggs": map[string]interface{}{
					"found": map[string]interface{}{
						"terms": map[string]interface{}{
							"field": "Found",
						},
					},
				},
			},
		},
	}

	return json.Marshal(query)
}

func parseTripPlanStats(response *tripPlanESResponse) TripPlanStats {
	tripPlanStats := TripPlanStats{
		Objectives: map[string]int{},
	}

	for _, objective := range response.Aggregations.Objectives.Buckets {
		tripPlanStats.Searches += objective.DocCount
		tripPlanStats.Objectives[objective.Key] = objective.DocCount

		for _, found := range objective.Found.Buckets {
			if found.KeyAsString == "true" {
				tripPlanStats.Found += found.DocCount
			}
		}
	}

	if tripPlanStats.Searches > 0 {
		tripPlanStats.FoundRate = round(float64(tripPlanStats.Found) / float64(tripPlanStats.Searches))
	}

	return tripPlanStats
}

// GetTripPlanStats summarises the trip plan searches indexed over the last day.
func GetTripPlanStats(ctx context.Context) (TripPlanStats, error) {
	if elastic_client.Client == nil {
		return TripPlanStats{}, ErrElasticsearchUnavailable
	}

	body, err := tripPlanStatsQuery(map[string]interface{}{
		"gte": "now-1d/d",
		"lt":  "now/d",
	})
	if err != nil {
		return TripPlanStats{}, err
	}

	size := 0
	searchReq := esapi.SearchRequest{
		Index: []string{elastic_client.IndexPattern(elastic_client.TripPlansIndexPrefix)},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	resp, err := searchReq.Do(ctx, elastic_client.Client)
	if err != nil {
		return TripPlanStats{}, err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return TripPlanStats{}, fmt.Errorf("query trip plans: %s", resp.Status())
	}

	var response tripPlanESResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return TripPlanStats{}, err
	}

	return parseTripPlanStats(&response), nil
}
