package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"TradeGate/internal/gating"
	"TradeGate/internal/indicators"
	"TradeGate/pkg/util"
)

// Instrument is one traded instrument the engine watches.
type Instrument struct {
	Name string `yaml:"name"`
	// ExpiryWeekday is the derivatives expiry day ("thursday"); empty means
	// the instrument has no expiry distortion handling.
	ExpiryWeekday string `yaml:"expiry_weekday"`
}

type Config struct {
	Environment string `yaml:"environment"`

	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     util.Duration `yaml:"read_timeout"`
		WriteTimeout    util.Duration `yaml:"write_timeout"`
		ShutdownTimeout util.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`

	Session struct {
		Open         util.Clock    `yaml:"open"`
		Close        util.Clock    `yaml:"close"`
		Timezone     string        `yaml:"timezone"`
		PollInterval util.Duration `yaml:"poll_interval"`
		Instruments  []Instrument  `yaml:"instruments"`
	} `yaml:"session"`

	Engine     gating.Config     `yaml:"engine"`
	Indicators indicators.Config `yaml:"indicators"`

	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Topics       struct {
			Signals   string `yaml:"signals"`
			Outcomes  string `yaml:"outcomes"`
			Decisions string `yaml:"decisions"`
			Regime    string `yaml:"regime"`
		} `yaml:"topics"`
		Producer struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       util.Duration `yaml:"linger"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout util.Duration `yaml:"write_timeout"`
			ReadTimeout  util.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin util.Duration `yaml:"backoff_min"`
			BackoffMax util.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`

	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Key      string        `yaml:"key"`
		TTL      util.Duration `yaml:"ttl"`
	} `yaml:"redis"`

	Feed struct {
		BaseURL        string        `yaml:"base_url"`
		APIKey         string        `yaml:"api_key"`
		WebSocketURL   string        `yaml:"websocket_url"`
		ReconnectDelay util.Duration `yaml:"reconnect_delay"`
		PingInterval   util.Duration `yaml:"ping_interval"`
		Timeout        util.Duration `yaml:"timeout"`
		RateLimitRPS   float64       `yaml:"rate_limit_rps"`
		RateLimitBurst int           `yaml:"rate_limit_burst"`
		BreakerTrips   uint32        `yaml:"breaker_trips"`
		BreakerCooloff util.Duration `yaml:"breaker_cooloff"`
	} `yaml:"feed"`

	Advisory struct {
		Enabled bool          `yaml:"enabled"`
		URL     string        `yaml:"url"`
		Timeout util.Duration `yaml:"timeout"`
	} `yaml:"advisory"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Config{Engine: gating.DefaultConfig(), Indicators: indicators.DefaultConfig()}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("FEED_API_KEY"); v != "" {
		c.Feed.APIKey = v
	}
	if v := os.Getenv("ADVISORY_URL"); v != "" {
		c.Advisory.URL = v
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Session.Instruments) == 0 {
		return fmt.Errorf("session.instruments cannot be empty")
	}
	if c.Session.Open >= c.Session.Close {
		return fmt.Errorf("session.open %s must precede session.close %s", c.Session.Open, c.Session.Close)
	}
	if c.Session.PollInterval <= 0 {
		return fmt.Errorf("session.poll_interval must be positive")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty")
	}
	if c.Feed.BaseURL == "" {
		return fmt.Errorf("feed.base_url is required")
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

// ExpiryWeekdays resolves the configured expiry weekday per instrument.
func (c *Config) ExpiryWeekdays() map[string]time.Weekday {
	out := make(map[string]time.Weekday, len(c.Session.Instruments))
	for _, inst := range c.Session.Instruments {
		wd, ok := parseWeekday(inst.ExpiryWeekday)
		if !ok {
			continue
		}
		out[inst.Name] = wd
	}
	return out
}

// InstrumentNames returns the configured instrument names in order.
func (c *Config) InstrumentNames() []string {
	out := make([]string, 0, len(c.Session.Instruments))
	for _, inst := range c.Session.Instruments {
		out = append(out, inst.Name)
	}
	return out
}

func parseWeekday(s string) (time.Weekday, bool) {
	switch strings.ToLower(s) {
	case "sunday":
		return time.Sunday, true
	case "monday":
		return time.Monday, true
	case "tuesday":
		return time.Tuesday, true
	case "wednesday":
		return time.Wednesday, true
	case "thursday":
		return time.Thursday, true
	case "friday":
		return time.Friday, true
	case "saturday":
		return time.Saturday, true
	default:
		return 0, false
	}
}
