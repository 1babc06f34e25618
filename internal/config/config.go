package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration lets YAML carry values like "10s"; yaml.v3 cannot decode
// those into time.Duration directly.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		dd, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("invalid duration %q: %w", s, perr)
		}
		*d = Duration(dd)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return err
	}
	*d = Duration(time.Duration(n))
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type AppCfg struct {
	Env          string   `yaml:"env"`
	Port         int      `yaml:"port"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

type MongoCfg struct {
	URI                string   `yaml:"uri"`
	Database           string   `yaml:"database"`
	MembersCollection  string   `yaml:"membersCollection"`
	AdhesionCollection string   `yaml:"adhesionCollection"`
	OpTimeout          Duration `yaml:"opTimeout"`
	ConnectTimeout     Duration `yaml:"connectTimeout"`
}

type RedisCfg struct {
	Addr           string   `yaml:"addr"`
	Password       string   `yaml:"password"`
	DB             int      `yaml:"db"`
	ConnectTimeout Duration `yaml:"connectTimeout"`
}

type SessionCfg struct {
	JWTSecret        string `yaml:"jwtSecret"`
	AccessTTLMinutes int    `yaml:"accessTTLMinutes"`
	SessionTTLDays   int    `yaml:"sessionTTLDays"`
}

type SecurityCfg struct {
	PasswordHashCost        int `yaml:"passwordHashCost"`
	AuthRateLimitPerMinute  int `yaml:"authRateLimitPerMinute"`
	WriteFailureFeedEntries int `yaml:"writeFailureFeedEntries"`
}

type Config struct {
	App      AppCfg      `yaml:"app"`
	Mongo    MongoCfg    `yaml:"mongo"`
	Redis    RedisCfg    `yaml:"redis"`
	Session  SessionCfg  `yaml:"session"`
	Security SecurityCfg `yaml:"security"`
}

// Load reads the YAML config at path, then applies environment
// overrides. A .env file is honoured when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	override := func(env string, apply func(string)) {
		if v := os.Getenv(env); v != "" {
			apply(v)
		}
	}
	overrideInt := func(env string, apply func(int)) {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				apply(n)
			}
		}
	}

	override("APP_ENV", func(v string) { cfg.App.Env = v })
	overrideInt("APP_PORT", func(n int) { cfg.App.Port = n })
	override("MONGO_URI", func(v string) { cfg.Mongo.URI = v })
	override("MONGO_DB", func(v string) { cfg.Mongo.Database = v })
	override("MONGO_MEMBERS_COLLECTION", func(v string) { cfg.Mongo.MembersCollection = v })
	override("MONGO_ADHESION_COLLECTION", func(v string) { cfg.Mongo.AdhesionCollection = v })
	override("REDIS_ADDR", func(v string) { cfg.Redis.Addr = v })
	override("REDIS_PASSWORD", func(v string) { cfg.Redis.Password = v })
	overrideInt("REDIS_DB", func(n int) { cfg.Redis.DB = n })
	override("JWT_SECRET", func(v string) { cfg.Session.JWTSecret = v })
	overrideInt("JWT_ACCESS_TTL_MINUTES", func(n int) { cfg.Session.AccessTTLMinutes = n })
	overrideInt("SESSION_TTL_DAYS", func(n int) { cfg.Session.SessionTTLDays = n })
	overrideInt("PASSWORD_HASH_COST", func(n int) { cfg.Security.PasswordHashCost = n })
	overrideInt("AUTH_RATE_LIMIT_PER_MINUTE", func(n int) { cfg.Security.AuthRateLimitPerMinute = n })

	applyDefaults(cfg)

	if cfg.Mongo.URI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.Session.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required (set in .env or config.yaml)")
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 8080
	}
	if cfg.Mongo.MembersCollection == "" {
		cfg.Mongo.MembersCollection = "users"
	}
	if cfg.Mongo.AdhesionCollection == "" {
		cfg.Mongo.AdhesionCollection = "adhesion"
	}
	if cfg.Mongo.OpTimeout == 0 {
		cfg.Mongo.OpTimeout = Duration(5 * time.Second)
	}
	if cfg.Mongo.ConnectTimeout == 0 {
		cfg.Mongo.ConnectTimeout = Duration(15 * time.Second)
	}
	if cfg.Redis.ConnectTimeout == 0 {
		cfg.Redis.ConnectTimeout = Duration(5 * time.Second)
	}
	if cfg.Session.AccessTTLMinutes == 0 {
		cfg.Session.AccessTTLMinutes = 15
	}
	if cfg.Session.SessionTTLDays == 0 {
		cfg.Session.SessionTTLDays = 30
	}
	if cfg.Security.AuthRateLimitPerMinute == 0 {
		cfg.Security.AuthRateLimitPerMinute = 30
	}
	if cfg.Security.WriteFailureFeedEntries == 0 {
		cfg.Security.WriteFailureFeedEntries = 32
	}
}
