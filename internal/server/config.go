package server

import (
	"fmt"
	"slices"
	"time"

	"github.com/MeKo-Tech/mapstatic/internal/tilesource"
	"github.com/creasty/defaults"
)

// Config configures the static map HTTP server. Zero fields take the defaults below.
type Config struct {
	Addr            string        `default:"127.0.0.1:8080"`
	Timeout         time.Duration `default:"30s"`
	CacheControl    string        `default:"public, max-age=86400"`
	DefaultProvider string        `default:"osm"`
	// MaxTiles rejects requests whose viewport needs more tiles than this.
	MaxTiles int    `default:"400"`
	Version  string `default:"dev"`
	// Providers lists the provider values a request may name. Empty means the
	// registered providers. DefaultProvider is always allowed. Raw URL templates and
	// mbtiles: packs are only reachable when listed here.
	Providers []string
}

// withDefaults returns cfg with every unset field defaulted.
func (cfg Config) withDefaults() (Config, error) {
	if err := defaults.Set(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to apply server defaults: %w", err)
	}

	allowed := slices.Clone(cfg.Providers)
	if len(allowed) == 0 {
		allowed = tilesource.Providers()
	}
	if !slices.Contains(allowed, cfg.DefaultProvider) {
		allowed = append(allowed, cfg.DefaultProvider)
	}
	cfg.Providers = allowed
	return cfg, nil
}
