package config

import (
	"os"
	"strconv"
	"time"

	"github.com/matst80/slask-catalogue/pkg/pagination"
	"github.com/matst80/slask-catalogue/pkg/price"
	"github.com/matst80/slask-catalogue/pkg/types"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	EngineMemory   = "memory"
	EnginePostgres = "postgres"
)

type Config struct {
	ListenAddress string          `yaml:"listenAddress"`
	DataDir       string          `yaml:"dataDir"`
	Engine        string          `yaml:"engine"`
	LogLevel      string          `yaml:"logLevel"`
	RabbitURL     string          `yaml:"rabbitUrl"`
	TopicPrefix   string          `yaml:"topicPrefix"`
	Postgres      PostgresConfig  `yaml:"postgres"`
	Redis         RedisConfig     `yaml:"redis"`
	Catalogue     CatalogueConfig `yaml:"catalogue"`
}

type PostgresConfig struct {
	URL           string `yaml:"url"`
	ProductsTable string `yaml:"productsTable"`
	EventsTable   string `yaml:"eventsTable"`
}

// RedisConfig enables the aggregation cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Prefix   string        `yaml:"prefix"`
}

type CatalogueConfig struct {
	DefaultLimit    int        `yaml:"defaultLimit"`
	MaxLimit        int        `yaml:"maxLimit"`
	PriceBuckets    int        `yaml:"priceBuckets"`
	DefaultLocale   string     `yaml:"defaultLocale"`
	DefaultCurrency string     `yaml:"defaultCurrency"`
	PriceName       types.I18n `yaml:"priceName"`
	CategoryName    types.I18n `yaml:"categoryName"`
}

func Default() Config {
	return Config{
		ListenAddress: ":8080",
		DataDir:       "data",
		Engine:        EngineMemory,
		LogLevel:      "info",
		TopicPrefix:   "catalogue",
		Postgres: PostgresConfig{
			ProductsTable: "products",
			EventsTable:   "events",
		},
		Redis: RedisConfig{
			TTL:    5 * time.Minute,
			Prefix: "catalogue:",
		},
		Catalogue: CatalogueConfig{
			DefaultLimit:    pagination.DefaultLimit,
			MaxLimit:        pagination.MaxLimit,
			PriceBuckets:    price.DefaultBuckets,
			DefaultLocale:   "en",
			DefaultCurrency: "RUB",
			PriceName:       types.I18n{"en": "Price", "ru": "Цена"},
			CategoryName:    types.I18n{"en": "Category", "ru": "Категория"},
		},
	}
}

// Load reads the optional YAML file over the defaults, then applies
// environment overrides.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

func LoadWithEnv(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "failed to read config %s", path)
		}
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "failed to parse config %s", path)
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, target *string) {
		if v, ok := lookup(key); ok && v != "" {
			*target = v
		}
	}
	integer := func(key string, target *int) error {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(err, "invalid %s", key)
			}
			*target = n
		}
		return nil
	}

	str("LISTEN_ADDRESS", &c.ListenAddress)
	str("DATA_DIR", &c.DataDir)
	str("ENGINE", &c.Engine)
	str("LOG_LEVEL", &c.LogLevel)
	str("RABBIT_URL", &c.RabbitURL)
	str("TOPIC_PREFIX", &c.TopicPrefix)
	str("POSTGRES_URL", &c.Postgres.URL)
	str("REDIS_URL", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("PREFIX", &c.Redis.Prefix)
	str("DEFAULT_LOCALE", &c.Catalogue.DefaultLocale)
	str("DEFAULT_CURRENCY", &c.Catalogue.DefaultCurrency)
	if v, ok := lookup("CACHE_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "invalid CACHE_TTL")
		}
		c.Redis.TTL = ttl
	}
	for key, target := range map[string]*int{
		"DEFAULT_LIMIT": &c.Catalogue.DefaultLimit,
		"MAX_LIMIT":     &c.Catalogue.MaxLimit,
		"PRICE_BUCKETS": &c.Catalogue.PriceBuckets,
	} {
		if err := integer(key, target); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Engine {
	case EngineMemory:
	case EnginePostgres:
		if c.Postgres.URL == "" {
			return errors.New("postgres engine requires a postgres url")
		}
	default:
		return errors.Errorf("unknown engine %q", c.Engine)
	}
	if c.Catalogue.DefaultLimit <= 0 || c.Catalogue.MaxLimit < c.Catalogue.DefaultLimit {
		return errors.Errorf("invalid limits %d/%d", c.Catalogue.DefaultLimit, c.Catalogue.MaxLimit)
	}
	return nil
}
