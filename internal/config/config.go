package config

import (
	"fmt"
	"os"
)

// Default configuration values.
const (
	DefaultServer = "localhost:3001"
	DefaultSTUN   = "stun:stun.l.google.com:19302"
	defaultSTUN2  = "stun:stun1.l.google.com:19302"
)

// Config holds client configuration.
type Config struct {
	// Server is the signaling server host[:port].
	Server string

	// WebSocketURL is constructed from Server.
	WebSocketURL string

	// STUNServers for ICE gathering.
	STUNServers []string
}

// Options carries CLI flag overrides.
type Options struct {
	Server     string
	STUNServer string
	Secure     bool
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	server := opts.Server
	if server == "" {
		server = os.Getenv("SIGNAL_SERVER")
	}
	if server == "" {
		server = DefaultServer
	}

	stun := opts.STUNServer
	if stun == "" {
		stun = os.Getenv("STUN_SERVER")
	}
	stunServers := []string{DefaultSTUN, defaultSTUN2}
	if stun != "" {
		stunServers = []string{stun}
	}

	scheme := "ws"
	if opts.Secure {
		scheme = "wss"
	}

	return &Config{
		Server:       server,
		WebSocketURL: fmt.Sprintf("%s://%s/ws", scheme, server),
		STUNServers:  stunServers,
	}, nil
}
