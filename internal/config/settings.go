package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/calcman/internal/catalog"
	"github.com/Veraticus/calcman/internal/common"
)

// Viper keys.
const (
	KeyDatabasePath      = "database.path"
	KeySitemapBaseURL    = "sitemap.base_url"
	KeySitemapChangeFreq = "sitemap.changefreq"
	KeySitemapPriority   = "sitemap.priority"
	KeyServerAddr        = "server.addr"
	KeyServerRateLimit   = "server.rate_limit"
	KeyServerBurst       = "server.burst"
	KeyServerMaxBody     = "server.max_body_bytes"
	KeyServerShutdown    = "server.shutdown_timeout"
	KeyAPIURL            = "api.url"
	KeyCMSAjaxURL        = "cms.ajax_url"
	KeyClientTimeout     = "client.timeout"
	KeyWatchDebounce     = "watch.debounce"
)

// Settings is the resolved configuration of one calcman invocation.
type Settings struct {
	Sitemap  catalog.SitemapDefaults
	Database DatabaseSettings
	Server   ServerSettings
	Client   ClientSettings
	Watch    WatchSettings
}

// DatabaseSettings locates the SQLite database.
type DatabaseSettings struct {
	Path string
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr            string
	RateLimit       float64
	Burst           int
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

// ClientSettings configures the REST and CMS clients.
type ClientSettings struct {
	APIURL  string
	AjaxURL string
	Timeout time.Duration
}

// WatchSettings configures the snapshot file watcher.
type WatchSettings struct {
	Debounce time.Duration
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	sitemap := catalog.DefaultSitemapDefaults()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeySitemapChangeFreq, sitemap.ChangeFreq)
	v.SetDefault(KeySitemapPriority, sitemap.Priority)
	v.SetDefault(KeyServerAddr, "127.0.0.1:8080")
	v.SetDefault(KeyServerRateLimit, 20.0)
	v.SetDefault(KeyServerBurst, 40)
	v.SetDefault(KeyServerMaxBody, int64(1<<20))
	v.SetDefault(KeyServerShutdown, 10*time.Second)
	v.SetDefault(KeyClientTimeout, 30*time.Second)
	v.SetDefault(KeyWatchDebounce, 250*time.Millisecond)
}

// Load resolves Settings from v and validates them.
func Load(v *viper.Viper) (Settings, error) {
	SetDefaults(v)

	s := Settings{
		Database: DatabaseSettings{
			Path: ExpandPath(v.GetString(KeyDatabasePath)),
		},
		Sitemap: catalog.SitemapDefaults{
			BaseURL:    v.GetString(KeySitemapBaseURL),
			ChangeFreq: v.GetString(KeySitemapChangeFreq),
			Priority:   v.GetFloat64(KeySitemapPriority),
		},
		Server: ServerSettings{
			Addr:            v.GetString(KeyServerAddr),
			RateLimit:       v.GetFloat64(KeyServerRateLimit),
			Burst:           v.GetInt(KeyServerBurst),
			MaxBodyBytes:    v.GetInt64(KeyServerMaxBody),
			ShutdownTimeout: v.GetDuration(KeyServerShutdown),
		},
		Client: ClientSettings{
			APIURL:  v.GetString(KeyAPIURL),
			AjaxURL: v.GetString(KeyCMSAjaxURL),
			Timeout: v.GetDuration(KeyClientTimeout),
		},
		Watch: WatchSettings{
			Debounce: v.GetDuration(KeyWatchDebounce),
		},
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings for values no component can work with.
func (s Settings) Validate() error {
	if s.Database.Path == "" {
		return fmt.Errorf("%w: %s is empty", common.ErrInvalidConfig, KeyDatabasePath)
	}
	if err := s.Sitemap.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	if s.Sitemap.BaseURL != "" {
		if err := validateURL(KeySitemapBaseURL, s.Sitemap.BaseURL); err != nil {
			return err
		}
	}
	if s.Server.RateLimit <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyServerRateLimit)
	}
	if s.Server.Burst <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyServerBurst)
	}
	if s.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyServerMaxBody)
	}
	if s.Client.Timeout < 0 || s.Watch.Debounce < 0 || s.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: durations cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}

// RequireAPIURL returns the REST base URL or an ErrMissingConfig error.
func (s Settings) RequireAPIURL() (string, error) {
	if s.Client.APIURL == "" {
		return "", fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyAPIURL)
	}
	return s.Client.APIURL, validateURL(KeyAPIURL, s.Client.APIURL)
}

// RequireAjaxURL returns the CMS endpoint or an ErrMissingConfig error.
func (s Settings) RequireAjaxURL() (string, error) {
	if s.Client.AjaxURL == "" {
		return "", fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyCMSAjaxURL)
	}
	return s.Client.AjaxURL, validateURL(KeyCMSAjaxURL, s.Client.AjaxURL)
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an absolute http(s) URL, got %q", common.ErrInvalidConfig, key, raw)
	}
	return nil
}
