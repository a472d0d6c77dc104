// Package api serves the trip planner, the route analysis tools and the
// operational update endpoints over HTTP.
package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/routeplanner/pkg/api/routes"
	"github.com/travigo/routeplanner/pkg/auth"
	"github.com/travigo/routeplanner/pkg/planner"
	"github.com/travigo/routeplanner/pkg/routeanalysis"
	"github.com/travigo/routeplanner/pkg/transitnetwork"
)

type Server struct {
	Network       transitnetwork.Network
	Planner       *planner.Planner
	RouteAnalysis *routeanalysis.Service
	Realtime      planner.RealtimeSource
	RouteUpdates  routes.RouteUpdater
	Accounts      routes.AccountStores
	Stats         routes.StatsReader

	TokenValidator auth.TokenValidator
}

func (s *Server) NewApp() *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.PlannerRouter(group.Group("/planner"), s.Planner)
	routes.StopsRouter(group.Group("/stops"), s.Network)
	routes.RoutesRouter(group.Group("/routes"), s.Network, s.RouteAnalysis, s.Realtime)

	if s.Stats != nil {
		routes.StatsRouter(group.Group("/stats"), s.Stats)
	}

	routes.AccountRouter(group.Group("/account", EnsureValidToken(s.TokenValidator)), s.Accounts)
	routes.RealtimeRouter(group.Group("/realtime", EnsureValidToken(s.TokenValidator), RequireManager()), s.RouteUpdates)

	return webApp
}

func (s *Server) Listen(listen string) error {
	return s.NewApp().Listen(listen)
}
