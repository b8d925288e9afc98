package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// ErrDealerIDRequired signals the hard configuration precondition: without a
// dealer identity no feed may be produced at all.
var ErrDealerIDRequired = errors.New("JE_DEALER_ID is required")

// Config holds all application configuration loaded from environment variables.
type Config struct {
	App     AppConfig
	Scraper ScraperConfig
	Feed    FeedConfig
	Dealer  DealerConfig
	Store   StoreConfig
	Cache   CacheConfig
	Server  ServerConfig
	S3      S3Config
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"je-feed"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	OutputDir   string `envconfig:"OUTPUT_DIR" default:"."`
}

// ScraperConfig holds the source-site settings.
type ScraperConfig struct {
	BaseURL      string        `envconfig:"SCRAPER_BASE_URL" default:"https://bringatrailer.com"`
	ResultsPath  string        `envconfig:"SCRAPER_RESULTS_PATH" default:"/auctions/results/?result=unsold"`
	UserAgent    string        `envconfig:"USER_AGENT" default:"Mozilla/5.0 (+je-feed; contact: you@example.com)"`
	MaxListings  int           `envconfig:"MAX_LISTINGS" default:"120"`
	Pause        time.Duration `envconfig:"PAUSE_BETWEEN_REQUESTS" default:"900ms"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
}

// ResultsURL returns the absolute URL of the unsold-results index.
func (s *ScraperConfig) ResultsURL() string {
	return s.BaseURL + s.ResultsPath
}

// FeedConfig holds the static feed metadata.
type FeedConfig struct {
	Version     string `envconfig:"FEED_VERSION" default:"3.0"`
	Reference   string `envconfig:"FEED_REFERENCE" default:"BAT-unsold"`
	Title       string `envconfig:"FEED_TITLE" default:"BaT Unsold importer"`
	Description string `envconfig:"FEED_DESCRIPTION" default:"Automated import of unsold Bring a Trailer lots"`
}

// DealerConfig identifies the dealer the feed is published for.
type DealerConfig struct {
	ID   string `envconfig:"JE_DEALER_ID" default:""`
	Name string `envconfig:"JE_DEALER_NAME" default:""`
}

// Validate checks the dealer precondition before any export work starts.
func (d *DealerConfig) Validate() error {
	if d.ID == "" {
		return ErrDealerIDRequired
	}
	if d.Name == "" {
		return errors.New("JE_DEALER_NAME is required")
	}
	return nil
}

// OutputFilename returns the feed file name for this dealer.
func (d *DealerConfig) OutputFilename() (string, error) {
	if d.ID == "" {
		return "", ErrDealerIDRequired
	}
	return fmt.Sprintf("JamesEdition_feed_%s.xml", d.ID), nil
}

// StoreConfig holds inventory persistence settings.
type StoreConfig struct {
	Type string `envconfig:"STORE_TYPE" default:"file"` // file, sqlite, postgres, or mysql
	Path string `envconfig:"STORE_PATH" default:"./data/inventory.json"`
	// SQLite settings
	SQLitePath string `envconfig:"STORE_SQLITE_PATH" default:"./data/inventory.db"`
	// PostgreSQL settings
	Host     string `envconfig:"STORE_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"STORE_DB_PORT" default:"5432"`
	Name     string `envconfig:"STORE_DB_NAME" default:"jefeed"`
	User     string `envconfig:"STORE_DB_USER" default:"postgres"`
	Password string `envconfig:"STORE_DB_PASS" default:""`
	SSLMode  string `envconfig:"STORE_DB_SSLMODE" default:"disable"`
	// MySQL settings
	MySQLHost string `envconfig:"STORE_MYSQL_HOST" default:"localhost"`
	MySQLPort int    `envconfig:"STORE_MYSQL_PORT" default:"3306"`
	MySQLName string `envconfig:"STORE_MYSQL_NAME" default:"jefeed"`
	MySQLUser string `envconfig:"STORE_MYSQL_USER" default:"root"`
	MySQLPass string `envconfig:"STORE_MYSQL_PASS" default:""`
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *StoreConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.User, s.Password, s.Host, s.Port, s.Name, s.SSLMode)
}

// MySQLDSN returns the MySQL data source name.
func (s *StoreConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		s.MySQLUser, s.MySQLPass, s.MySQLHost, s.MySQLPort, s.MySQLName)
}

// CacheConfig holds the scraper page-cache settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"` // memory, redis, or none
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"6h"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// ServerConfig holds HTTP server settings for serve mode.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// S3Config holds the optional S3/R2 feed upload settings.
type S3Config struct {
	Bucket          string `envconfig:"S3_BUCKET" default:""`
	Prefix          string `envconfig:"S3_PREFIX" default:""`
	EndpointURL     string `envconfig:"S3_ENDPOINT_URL" default:""`
	Region          string `envconfig:"AWS_DEFAULT_REGION" default:"us-east-1"`
	AccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID" default:""`
	SecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY" default:""`
}

// Enabled reports whether upload is configured at all.
func (s *S3Config) Enabled() bool { return s.Bucket != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
