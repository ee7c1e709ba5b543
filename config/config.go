package config

import (
	"log"
	"os"
	"strconv"

	game_constants "Sobremesa/constants/game"

	"github.com/joho/godotenv"
)

// Config holds everything the session layer needs to reach its external
// collaborators. Values come from the environment (optionally via a .env
// file), with defaults that point at a local hub double.
type Config struct {
	HubURL         string // websocket hub endpoint
	LeaderboardURL string // score submission endpoint
	JoinBaseURL    string // base for shareable room links / QR payloads
	VenueCode      string // venue this client is seated at
	IdentityToken  string // optional token from the identity provider
	Rounds         int    // default round count for hosted rooms
}

// Load reads the configuration from the environment. A missing .env file
// is not an error; deployments inject real env vars.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		HubURL:         getEnv("SOBREMESA_HUB_URL", "ws://localhost:8080/ws"),
		LeaderboardURL: getEnv("SOBREMESA_LEADERBOARD_URL", "http://localhost:8080/api/v1/leaderboard"),
		JoinBaseURL:    getEnv("SOBREMESA_JOIN_BASE_URL", "http://localhost:8080/join"),
		VenueCode:      getEnv("SOBREMESA_VENUE_CODE", ""),
		IdentityToken:  getEnv("SOBREMESA_IDENTITY_TOKEN", ""),
		Rounds:         GetEnvInt("SOBREMESA_ROUNDS", game_constants.DEFAULT_ROUNDS),
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvInt reads an integer env var with a fallback for malformed or
// missing values.
func GetEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("[CONFIG-ERROR] Invalid value for %s: %v, using default %d", key, err, fallback)
		return fallback
	}
	return n
}
