package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("MOVIEHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("MOVIEHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "moviehub"
	}

	hours := 24
	if ttl := os.Getenv("MOVIEHUB_JWT_TTL_HOURS"); ttl != "" {
		if n, err := strconv.Atoi(ttl); err == nil && n > 0 {
			hours = n
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: time.Duration(hours) * time.Hour,
	}
}

type TMDBConfig struct {
	APIKey  string
	BaseURL string
}

func LoadTMDBConfig() TMDBConfig {
	key := os.Getenv("TMDB_API_KEY")
	base := os.Getenv("TMDB_BASE_URL")
	if base == "" {
		base = "https://api.themoviedb.org/3"
	}
	return TMDBConfig{APIKey: key, BaseURL: base}
}

type ServerConfig struct {
	HTTPAddr string
	TCPAddr  string
	UDPAddr  string
}

func LoadServerConfig() ServerConfig {
	return ServerConfig{
		HTTPAddr: envOr("MOVIEHUB_HTTP_ADDR", ":8080"),
		TCPAddr:  envOr("MOVIEHUB_TCP_ADDR", ":7070"),
		UDPAddr:  envOr("MOVIEHUB_UDP_ADDR", ":9090"),
	}
}

// SourceSite is a configured scraper target: the name tracked in
// source_status plus where to reach it.
type SourceSite struct {
	Name    string
	BaseURL string
	Enabled bool
}

// LoadSourceSites returns the configured scraper sites. Base URLs and
// enable flags come from the environment so domain rotations don't
// need a rebuild.
func LoadSourceSites() []SourceSite {
	return []SourceSite{
		{Name: "hdhub4u", BaseURL: envOr("HDHUB4U_URL", "https://new3.hdhub4u.fo"), Enabled: envBool("HDHUB4U_ENABLED", true)},
		{Name: "skymovieshd", BaseURL: envOr("SKYMOVIESHD_URL", "https://skymovieshd.mba"), Enabled: envBool("SKYMOVIESHD_ENABLED", true)},
		{Name: "cinefreak", BaseURL: envOr("CINEFREAK_URL", "https://cinefreak.net"), Enabled: envBool("CINEFREAK_ENABLED", true)},
		{Name: "katmoviehd", BaseURL: envOr("KATMOVIEHD_URL", "https://katmoviehd.rodeo"), Enabled: envBool("KATMOVIEHD_ENABLED", true)},
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
