package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/grlib/chan-mcp/internal/signal"
)

// Config is read once at startup and treated as read-only afterwards.
type Config struct {
	BaostockURL         string
	BaostockTimeoutSecs int

	MCPTransport          string
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
	MCPRateLimitPerMin    int

	HTTPBind string
	HTTPPort int

	ChanSignals []string
}

func Load() *Config {
	cfg := &Config{
		MCPAuthToken: os.Getenv("MCP_AUTH_TOKEN"),
	}

	cfg.BaostockURL = strings.TrimSpace(os.Getenv("BAOSTOCK_URL"))
	if cfg.BaostockURL == "" {
		log.Println("Warning: BAOSTOCK_URL not set, defaulting to http://127.0.0.1:18080")
		cfg.BaostockURL = "http://127.0.0.1:18080"
	}

	cfg.BaostockTimeoutSecs = 15
	if v := strings.TrimSpace(os.Getenv("BAOSTOCK_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BaostockTimeoutSecs = n
		}
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = 8000
	if v := strings.TrimSpace(os.Getenv("MCP_HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPHTTPPort = n
		}
	}

	cfg.MCPRequestTimeoutSecs = 30
	if v := strings.TrimSpace(os.Getenv("MCP_REQUEST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRequestTimeoutSecs = n
		}
	}

	cfg.MCPRateLimitPerMin = 60
	if v := strings.TrimSpace(os.Getenv("MCP_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRateLimitPerMin = n
		}
	}

	cfg.HTTPBind = strings.TrimSpace(os.Getenv("HTTP_BIND"))
	if cfg.HTTPBind == "" {
		cfg.HTTPBind = "127.0.0.1"
	}

	cfg.HTTPPort = 8080
	if v := strings.TrimSpace(os.Getenv("HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	cfg.ChanSignals = parseSignalList(os.Getenv("CHAN_SIGNALS"))

	return cfg
}

// parseSignalList reads the curated signal table from the environment,
// keeping only names the extractor knows. Empty or fully unknown input
// falls back to the built-in subset.
func parseSignalList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return signal.Names()
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if _, ok := signal.Lookup(name); !ok {
			log.Printf("Warning: ignoring unknown signal %q in CHAN_SIGNALS", name)
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return signal.Names()
	}
	return out
}
