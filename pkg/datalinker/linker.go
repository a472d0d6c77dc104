// Package datalinker merges stops that different imports created for the same
// physical stop and repoints routes at the surviving record.
package datalinker

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/database"
	"github.com/travigo/routeplanner/pkg/geo"
	"github.com/travigo/routeplanner/pkg/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultMergeDistanceMeters = 25.0

var nameCleanRegex = regexp.MustCompile(`[^a-z0-9 ]+`)

type Catalogue interface {
	AllStops(ctx context.Context) ([]*ctdf.Stop, error)
	AllRoutes(ctx context.Context) ([]*ctdf.Route, error)
}

// MergeGroup is a set of stops that will collapse into Primary.
type MergeGroup struct {
	Primary    *ctdf.Stop
	Duplicates []*ctdf.Stop
}

type Plan struct {
	Groups        []MergeGroup
	Replacements  map[string]string
	UpdatedRoutes []*ctdf.Route
}

func normaliseName(name string) string {
	cleaned := nameCleanRegex.ReplaceAllString(strings.ToLower(name), " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

// FindDuplicateStops groups stops with the same normalised name that sit
// within maxDistance metres of another member of the group. The oldest record
// in each group is kept.
func FindDuplicateStops(stops []*ctdf.Stop, maxDistance float64) []MergeGroup {
	candidates := append([]*ctdf.Stop{}, stops...)
	util.InPlaceFilter(&candidates, func(stop *ctdf.Stop) bool {
		return stop.Location != nil && normaliseName(stop.PrimaryName) != ""
	})

	byName := map[string][]*ctdf.Stop{}
	var names []string
	for _, stop := range candidates {
		name := normaliseName(stop.PrimaryName)
		if _, ok := byName[name]; !ok {
			names = append(names, name)
		}
		byName[name] = append(byName[name], stop)
	}
	sort.Strings(names)

	var groups []MergeGroup
	for _, name := range names {
		for _, cluster := range clusterByDistance(byName[name], maxDistance) {
			if len(cluster) < 2 {
				continue
			}

			sort.SliceStable(cluster, func(i, j int) bool {
				if cluster[i].CreationDateTime.Equal(cluster[j].CreationDateTime) {
					return cluster[i].PrimaryIdentifier < cluster[j].PrimaryIdentifier
				}
				return cluster[i].CreationDateTime.Before(cluster[j].CreationDateTime)
			})

			groups = append(groups, MergeGroup{
				Primary:    cluster[0],
				Duplicates: cluster[1:],
			})
		}
	}

	return groups
}

func clusterByDistance(stops []*ctdf.Stop, maxDistance float64) [][]*ctdf.Stop {
	parent := make([]int, len(stops))
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := 0; i < len(stops); i++ {
		for j := i + 1; j < len(stops); j++ {
			if geo.HaversineDistanceMeters(stops[i].Point(), stops[j].Point()) <= maxDistance {
				parent[find(j)] = find(i)
			}
		}
	}

	clusters := map[int][]*ctdf.Stop{}
	var roots []int
	for i, stop := range stops {
		root := find(i)
		if _, ok := clusters[root]; !ok {
			roots = append(roots, root)
		}
		clusters[root] = append(clusters[root], stop)
	}

	result := make([][]*ctdf.Stop, 0, len(roots))
	for _, root := range roots {
		result = append(result, clusters[root])
	}

	return result
}

// RewriteStopRefs points route stop references at their replacements and
// returns only the routes that changed. A stop repeated back to back after the
// rewrite is collapsed.
func RewriteStopRefs(routes []*ctdf.Route, replacements map[string]string) []*ctdf.Route {
	var updated []*ctdf.Route

	for _, route := range routes {
		changed := false
		stopRefs := make([]string, 0, len(route.StopRefs))

		for _, stopRef := range route.StopRefs {
			if replacement, ok := replacements[stopRef]; ok {
				stopRef = replacement
				changed = true
			}
			if len(stopRefs) > 0 && stopRefs[len(stopRefs)-1] == stopRef {
				continue
			}
			stopRefs = append(stopRefs, stopRef)
		}

		if changed {
			routeCopy := *route
			routeCopy.StopRefs = stopRefs
			updated = append(updated, &routeCopy)
		}
	}

	return updated
}

func BuildPlan(ctx context.Context, catalogue Catalogue, maxDistance float64) (*Plan, error) {
	stops, err := catalogue.AllStops(ctx)
	if err != nil {
		return nil, err
	}
	routes, err := catalogue.AllRoutes(ctx)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Groups:       FindDuplicateStops(stops, maxDistance),
		Replacements: map[string]string{},
	}

	for _, group := range plan.Groups {
		for _, duplicate := range group.Duplicates {
			plan.Replacements[duplicate.PrimaryIdentifier] = group.Primary.PrimaryIdentifier
		}
	}
	plan.UpdatedRoutes = RewriteStopRefs(routes, plan.Replacements)

	return plan, nil
}

func (p *Plan) DuplicateIdentifiers() []string {
	var identifiers []string
	for duplicate := range p.Replacements {
		identifiers = append(identifiers, duplicate)
	}
	sort.Strings(identifiers)

	return util.RemoveDuplicateStrings(identifiers, []string{})
}

// Apply writes the route changes before removing the duplicate stops so no
// route ever references a missing stop.
func (p *Plan) Apply(ctx context.Context) error {
	if len(p.Replacements) == 0 {
		log.Info().Msg("No duplicate stops to merge")
		return nil
	}

	if len(p.UpdatedRoutes) > 0 {
		var operations []mongo.WriteModel
		for _, route := range p.UpdatedRoutes {
			updateModel := mongo.NewUpdateOneModel()
			updateModel.SetFilter(bson.M{"primaryidentifier": route.PrimaryIdentifier})
			updateModel.SetUpdate(bson.M{"$set": bson.M{"stoprefs": route.StopRefs}})
			operations = append(operations, updateModel)
		}

		_, err := database.GetCollection(database.RoutesCollection).BulkWrite(ctx, operations, &options.BulkWriteOptions{})
		if err != nil {
			return fmt.Errorf("update route stop refs: %w", err)
		}
	}

	deleteResult, err := database.GetCollection(database.StopsCollection).DeleteMany(ctx, bson.M{
		"primaryidentifier": bson.M{"$in": p.DuplicateIdentifiers()},
	})
	if err != nil {
		return fmt.Errorf("delete duplicate stops: %w", err)
	}

	log.Info().
		Int("groups", len(p.Groups)).
		Int("routes", len(p.UpdatedRoutes)).
		Int64("deleted", deleteResult.DeletedCount).
		Msg("Merged duplicate stops")

	return nil
}
