package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Feed types.
const (
	FeedCSV      = "csv"
	FeedPostgres = "postgres"
	FeedBrowser  = "browser"
)

// Gap policies for profits between routing.free_max and routing.premium_min.
const (
	GapDrop    = "drop"
	GapFree    = "free"
	GapPremium = "premium"
)

type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Routing  RoutingConfig  `yaml:"routing"`
	Scanner  ScannerConfig  `yaml:"scanner"`
	Feeds    []FeedConfig   `yaml:"feeds,omitempty"`
	Browser  BrowserConfig  `yaml:"browser"`
	Telegram TelegramConfig `yaml:"telegram"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Health   HealthConfig   `yaml:"health"`
}

type EngineConfig struct {
	TaxRate         float64 `yaml:"tax_rate"`
	MinimalProfit   float64 `yaml:"minimal_profit"`
	ForceShowAll    bool    `yaml:"force_show_all"`
	AllowSameSource bool    `yaml:"allow_same_source"`
	AllowNonBinary  bool    `yaml:"allow_non_binary"`
}

type RoutingConfig struct {
	Floor      float64 `yaml:"floor"`       // profits at or below are never sent
	FreeMax    float64 `yaml:"free_max"`    // profit <= free_max goes to the free channel
	PremiumMin float64 `yaml:"premium_min"` // profit >= premium_min goes to the premium channel
	GapPolicy  string  `yaml:"gap_policy"`  // "drop", "free" or "premium"
}

type ScannerConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Autostart   bool          `yaml:"autostart"`
	DedupTTL    time.Duration `yaml:"dedup_ttl"`
	FeedTimeout time.Duration `yaml:"feed_timeout"`
}

type FeedConfig struct {
	Name        string        `yaml:"name"`
	Type        string        `yaml:"type"`            // "csv", "postgres" or "browser"
	Path        string        `yaml:"path"`            // csv
	Source      string        `yaml:"source"`          // postgres, defaults to name
	Pages       []PageConfig  `yaml:"pages,omitempty"` // browser
	RescanAfter time.Duration `yaml:"rescan_after"`
}

type PageConfig struct {
	URL          string `yaml:"url"`
	Script       string `yaml:"script"`
	WaitSelector string `yaml:"wait_selector"`
}

type BrowserConfig struct {
	Headless   bool          `yaml:"headless"`
	Timeout    time.Duration `yaml:"timeout"`
	UserAgents []string      `yaml:"user_agents,omitempty"`
	Proxies    []string      `yaml:"proxies,omitempty"`
}

type TelegramConfig struct {
	Enabled       bool          `yaml:"enabled"`
	BotToken      string        `yaml:"bot_token"`
	FreeChatID    int64         `yaml:"free_chat_id"`
	PremiumChatID int64         `yaml:"premium_chat_id"`
	AdminIDs      []int64       `yaml:"admin_ids,omitempty"`
	SendInterval  time.Duration `yaml:"send_interval"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // optional JSON log file
}

type HealthConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used for keys missing from the file.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			TaxRate: 0.12,
		},
		Routing: RoutingConfig{
			FreeMax:    2.0,
			PremiumMin: 3.0,
			GapPolicy:  GapDrop,
		},
		Scanner: ScannerConfig{
			Interval:    5 * time.Minute,
			DedupTTL:    45 * time.Minute,
			FeedTimeout: 2 * time.Minute,
		},
		Browser: BrowserConfig{
			Headless: true,
			Timeout:  60 * time.Second,
		},
		Telegram: TelegramConfig{
			SendInterval: 2 * time.Second,
		},
		Redis: RedisConfig{
			Prefix: "surebet:",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Health: HealthConfig{
			Addr: ":8080",
		},
	}
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	tmp := configPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, configPath); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Engine.TaxRate < 0 || c.Engine.TaxRate >= 1 {
		errs = append(errs, fmt.Errorf("engine.tax_rate must be in [0,1), got %v", c.Engine.TaxRate))
	}

	switch c.Routing.GapPolicy {
	case GapDrop, GapFree, GapPremium:
	default:
		errs = append(errs, fmt.Errorf("routing.gap_policy must be drop, free or premium, got %q", c.Routing.GapPolicy))
	}
	if c.Routing.PremiumMin < c.Routing.FreeMax {
		errs = append(errs, fmt.Errorf("routing.premium_min (%v) is below routing.free_max (%v)", c.Routing.PremiumMin, c.Routing.FreeMax))
	}

	if c.Scanner.Interval <= 0 {
		errs = append(errs, errors.New("scanner.interval must be positive"))
	}
	if c.Scanner.DedupTTL < 0 {
		errs = append(errs, errors.New("scanner.dedup_ttl must not be negative"))
	}

	names := make(map[string]bool)
	for i, f := range c.Feeds {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("feeds[%d]: name is required", i))
		} else if names[f.Name] {
			errs = append(errs, fmt.Errorf("feeds[%d]: duplicate name %q", i, f.Name))
		}
		names[f.Name] = true

		switch strings.ToLower(f.Type) {
		case FeedCSV:
			if f.Path == "" {
				errs = append(errs, fmt.Errorf("feeds[%d] %s: path is required for csv feeds", i, f.Name))
			}
		case FeedPostgres:
		case FeedBrowser:
			if len(f.Pages) == 0 {
				errs = append(errs, fmt.Errorf("feeds[%d] %s: browser feeds need at least one page", i, f.Name))
			}
			for j, p := range f.Pages {
				if p.URL == "" || p.Script == "" {
					errs = append(errs, fmt.Errorf("feeds[%d] %s: pages[%d] needs url and script", i, f.Name, j))
				}
			}
		default:
			errs = append(errs, fmt.Errorf("feeds[%d] %s: unknown type %q", i, f.Name, f.Type))
		}
	}

	if c.Telegram.SendInterval < 0 {
		errs = append(errs, errors.New("telegram.send_interval must not be negative"))
	}

	return errors.Join(errs...)
}

// NeedsPostgres reports whether any feed reads from PostgreSQL.
func (c *Config) NeedsPostgres() bool {
	for _, f := range c.Feeds {
		if strings.ToLower(f.Type) == FeedPostgres {
			return true
		}
	}
	return false
}

// IsAdmin reports whether a Telegram user may run admin commands.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ApplyEnv overrides secrets and endpoints from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Feeds = make([]FeedConfig, len(c.Feeds))
	for i, f := range c.Feeds {
		f.Pages = append([]PageConfig(nil), f.Pages...)
		out.Feeds[i] = f
	}
	out.Browser.UserAgents = append([]string(nil), c.Browser.UserAgents...)
	out.Browser.Proxies = append([]string(nil), c.Browser.Proxies...)
	out.Telegram.AdminIDs = append([]int64(nil), c.Telegram.AdminIDs...)
	return &out
}
