package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Bot struct {
		Token             string        `yaml:"token"`
		APIBaseURL        string        `yaml:"api_base_url"`
		AdminIDs          []int64       `yaml:"admin_ids"`
		PollTimeout       time.Duration `yaml:"poll_timeout"`
		MessagesPerSecond float64       `yaml:"messages_per_second"`
		SendBurst         int           `yaml:"send_burst"`
	} `yaml:"bot"`

	Storage struct {
		UsersFile    string `yaml:"users_file"`
		VideosFile   string `yaml:"videos_file"`
		ChannelsFile string `yaml:"channels_file"`
	} `yaml:"storage"`

	Channels struct {
		// Join buttons shown when membership confirmation is required.
		Required []ChannelLink `yaml:"required"`
		// Channel registered by /setup_special_channel.
		SpecialID    int64  `yaml:"special_id"`
		SpecialTitle string `yaml:"special_title"`
	} `yaml:"channels"`

	Links struct {
		// Invite link behind the "Videos Links" button.
		VideosChannel string `yaml:"videos_channel"`
		// Help post explaining how to pass the ad page.
		HowToOpen string `yaml:"how_to_open"`
	} `yaml:"links"`

	Shortlink struct {
		APIURL   string `yaml:"api_url"`
		APIToken string `yaml:"api_token"`
	} `yaml:"shortlink"`

	Payments struct {
		UPIID   string `yaml:"upi_id"`
		Contact string `yaml:"contact"`
	} `yaml:"payments"`

	Ops struct {
		Enabled         bool          `yaml:"enabled"`
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"ops"`

	Backup struct {
		Enabled  bool          `yaml:"enabled"`
		Dir      string        `yaml:"dir"`
		Interval time.Duration `yaml:"interval"`
		Keep     int           `yaml:"keep"`
	} `yaml:"backup"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		ServiceName string  `yaml:"service_name"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	RateLimiting struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limiting"`
}

// ChannelLink describes one channel join button.
type ChannelLink struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Bot
	if c.Bot.Token == "" {
		return fmt.Errorf("bot.token must not be empty")
	}
	if c.Bot.PollTimeout <= 0 {
		return fmt.Errorf("bot.poll_timeout must be > 0")
	}
	if c.Bot.MessagesPerSecond <= 0 {
		return fmt.Errorf("bot.messages_per_second must be > 0")
	}
	if c.Bot.SendBurst <= 0 {
		return fmt.Errorf("bot.send_burst must be > 0")
	}

	// Storage
	if c.Storage.UsersFile == "" {
		return fmt.Errorf("storage.users_file must not be empty")
	}
	if c.Storage.VideosFile == "" {
		return fmt.Errorf("storage.videos_file must not be empty")
	}
	if c.Storage.ChannelsFile == "" {
		return fmt.Errorf("storage.channels_file must not be empty")
	}

	// Ops server
	if c.Ops.Enabled {
		if c.Ops.Address == "" {
			return fmt.Errorf("ops.address must not be empty when ops.enabled=true")
		}
		if c.Ops.ReadTimeout <= 0 {
			return fmt.Errorf("ops.read_timeout must be > 0")
		}
		if c.Ops.WriteTimeout <= 0 {
			return fmt.Errorf("ops.write_timeout must be > 0")
		}
		if c.Ops.ShutdownTimeout <= 0 {
			return fmt.Errorf("ops.shutdown_timeout must be > 0")
		}
	}

	// Backup
	if c.Backup.Enabled {
		if c.Backup.Dir == "" {
			return fmt.Errorf("backup.dir must not be empty when backup.enabled=true")
		}
		if c.Backup.Interval <= 0 {
			return fmt.Errorf("backup.interval must be > 0 when backup.enabled=true")
		}
		if c.Backup.Keep <= 0 {
			return fmt.Errorf("backup.keep must be > 0 when backup.enabled=true")
		}
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when redis.enabled=true")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when redis.enabled=true")
		}
	}

	// Tracing
	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be within [0, 1]")
		}
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Burst <= 0 {
			return fmt.Errorf("rate_limiting.burst must be > 0 when rate limiting is enabled")
		}
	}

	return nil
}

// IsAdmin reports whether the given user id is a configured administrator.
// The configured list is the only source of admin authority.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Bot.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Bot.APIBaseURL = "https://api.telegram.org"
	cfg.Bot.PollTimeout = 50 * time.Second
	cfg.Bot.MessagesPerSecond = 25
	cfg.Bot.SendBurst = 5

	cfg.Storage.UsersFile = "user_data.json"
	cfg.Storage.VideosFile = "videos.json"
	cfg.Storage.ChannelsFile = "channels.json"

	cfg.Shortlink.APIURL = "https://inshorturl.com/api"

	cfg.Ops.Enabled = true
	cfg.Ops.Address = ":8080"
	cfg.Ops.ReadTimeout = 30 * time.Second
	cfg.Ops.WriteTimeout = 30 * time.Second
	cfg.Ops.ShutdownTimeout = 30 * time.Second

	cfg.Backup.Enabled = false
	cfg.Backup.Dir = "backups"
	cfg.Backup.Interval = 6 * time.Hour
	cfg.Backup.Keep = 14

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Redis.Enabled = false
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	cfg.Tracing.Enabled = false
	cfg.Tracing.ServiceName = "vidgate"
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 50
	cfg.RateLimiting.Burst = 100

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if token := os.Getenv("VIDGATE_BOT_TOKEN"); token != "" {
		c.Bot.Token = token
	}
	if level := os.Getenv("VIDGATE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if addr := os.Getenv("VIDGATE_OPS_ADDRESS"); addr != "" {
		c.Ops.Address = addr
	}
	if addr := os.Getenv("VIDGATE_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
	}
	if token := os.Getenv("VIDGATE_SHORTLINK_TOKEN"); token != "" {
		c.Shortlink.APIToken = token
	}
}
