package routes

import (
	"net/http"
	"sync"

	"Sobremesa/api/hub"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// leaderboardEntry mirrors the REST body the client submits.
type leaderboardEntry struct {
	GameType        string `json:"gameType" binding:"required"`
	PlayerName      string `json:"playerName" binding:"required"`
	Score           int    `json:"score"`
	VenueCode       string `json:"venueCode"`
	DurationSeconds int    `json:"durationSeconds"`
}

// leaderboardStore is the in-memory leaderboard of the simulator.
type leaderboardStore struct {
	mu      sync.Mutex
	entries []leaderboardEntry
}

// SetupRoutes configures all routes of the hub simulator.
func SetupRoutes(router *gin.Engine, h *hub.Hub) {
	router.Use(cors.Default())

	store := &leaderboardStore{}

	router.GET("/ws", h.HandleWS)

	api := router.Group("/api/v1")
	{
		api.GET("/lobbies", func(c *gin.Context) {
			rooms := h.PublicRooms(c.Query("venue"))
			c.JSON(http.StatusOK, gin.H{"lobbies": rooms})
		})

		api.POST("/leaderboard", func(c *gin.Context) {
			var entry leaderboardEntry
			if err := c.ShouldBindJSON(&entry); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			store.mu.Lock()
			store.entries = append(store.entries, entry)
			store.mu.Unlock()
			c.JSON(http.StatusCreated, gin.H{"message": "Score recorded"})
		})

		api.GET("/leaderboard", func(c *gin.Context) {
			venue := c.Query("venue")
			store.mu.Lock()
			entries := make([]leaderboardEntry, 0, len(store.entries))
			for _, entry := range store.entries {
				if venue == "" || entry.VenueCode == venue {
					entries = append(entries, entry)
				}
			}
			store.mu.Unlock()
			c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
		})
	}
}
