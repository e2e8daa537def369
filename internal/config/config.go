// Package config loads rondo settings from a .env file and environment
// variables. Environment variables take precedence over .env values, and
// CLI flags (parsed in the cmd packages) take precedence over both.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults applied when neither the environment nor flags say otherwise.
const (
	DefaultListenAddr = ":8080"
	DefaultServerURL  = "ws://localhost:8080/ws"
)

// DefaultSTUNServers are used for ICE candidate gathering. No TURN — the
// tool is designed for direct P2P connectivity with zero infrastructure
// cost.
var DefaultSTUNServers = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
}

// Config stores all parameters shared by the server and peer binaries.
type Config struct {
	ListenAddr  string   // RONDO_LISTEN — server listen address
	ServerURL   string   // RONDO_SERVER_URL — WebSocket URL the peer dials
	Room        string   // RONDO_ROOM — room name (peer only, optional)
	STUNServers []string // RONDO_STUN — comma-separated STUN URLs
}

// Load reads configuration from .env (if present) and the environment.
func Load() *Config {
	// godotenv.Load does not overwrite existing env vars.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:  DefaultListenAddr,
		ServerURL:   DefaultServerURL,
		STUNServers: DefaultSTUNServers,
	}

	if v := os.Getenv("RONDO_LISTEN"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("RONDO_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("RONDO_ROOM"); v != "" {
		cfg.Room = v
	}
	if v := os.Getenv("RONDO_STUN"); v != "" {
		var urls []string
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		if len(urls) > 0 {
			cfg.STUNServers = urls
		}
	}

	return cfg
}
