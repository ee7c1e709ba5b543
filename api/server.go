// Package api assembles the hub simulator: the websocket hub double plus
// the REST lobby listing and leaderboard, on one gin engine.
package api

import (
	"Sobremesa/api/hub"
	"Sobremesa/api/routes"

	"github.com/gin-gonic/gin"
)

// NewServer builds the simulator engine. Callers run it with Run or mount
// it in an httptest server.
func NewServer() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	routes.SetupRoutes(router, hub.New())
	return router
}
