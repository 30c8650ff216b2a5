package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Ranking  RankingConfig
	Search   SearchConfig
	Log      LogConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	MigrationsDir string
	SeedDemo      bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TTL      time.Duration
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiresIn time.Duration
}

// RankingConfig selects the external ranking model. An empty Provider means
// no ranker is configured and every search uses lexical fallback scores.
type RankingConfig struct {
	Provider        string
	APIKey          string
	Model           string
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

type SearchConfig struct {
	CacheTTL         time.Duration
	PrefilterLimit   int
	SerializeWorkers int
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

const (
	defaultRedisTTL        = 600 * time.Second
	defaultAccessExpiresIn = time.Hour
	defaultRankingTimeout  = 20 * time.Second
	defaultBreakerFailures = 3
	defaultBreakerCooldown = 60 * time.Second
	defaultSearchCacheTTL  = 60 * time.Second
	defaultPrefilterLimit  = 20
	defaultWorkers         = 8
)

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE"),

		ConnectTimeout:        parseDuration(opt("DB_CONNECT_TIMEOUT"), 0),
		PoolMaxConns:          int32(parseInt(opt("DB_POOL_MAX_CONNS"), 0)),
		PoolMinConns:          int32(parseInt(opt("DB_POOL_MIN_CONNS"), 0)),
		PoolMaxConnLifetime:   parseDuration(opt("DB_POOL_MAX_CONN_LIFETIME"), 0),
		PoolMaxConnIdleTime:   parseDuration(opt("DB_POOL_MAX_CONN_IDLE_TIME"), 0),
		PoolHealthCheckPeriod: parseDuration(opt("DB_POOL_HEALTH_CHECK_PERIOD"), 0),

		MigrationsDir: opt("DB_MIGRATIONS_DIR"),
		SeedDemo:      parseBool(opt("DB_SEED_DEMO")),
	}
	if cfg.Database.DBSSLMode == "" {
		cfg.Database.DBSSLMode = "disable"
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: opt("REDIS_PASSWORD"),
		TTL:      parseSeconds(opt("REDIS_TTL"), defaultRedisTTL),
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == "" {
		cfg.Redis.Port = "6379"
	}

	cfg.JWT = JWTConfig{
		AccessSecret:    req("JWT_ACCESS_SECRET"),
		AccessExpiresIn: parseDuration(opt("JWT_ACCESS_EXPIRES_IN"), defaultAccessExpiresIn),
	}

	cfg.Ranking = RankingConfig{
		Provider:        strings.ToLower(opt("RANKING_PROVIDER")),
		APIKey:          opt("RANKING_API_KEY"),
		Model:           opt("RANKING_MODEL"),
		BaseURL:         opt("RANKING_BASE_URL"),
		Timeout:         parseDuration(opt("RANKING_TIMEOUT"), defaultRankingTimeout),
		BreakerFailures: uint32(parseInt(opt("RANKING_BREAKER_FAILURES"), defaultBreakerFailures)),
		BreakerCooldown: parseDuration(opt("RANKING_BREAKER_COOLDOWN"), defaultBreakerCooldown),
	}

	cfg.Search = SearchConfig{
		CacheTTL:         parseDuration(opt("SEARCH_CACHE_TTL"), defaultSearchCacheTTL),
		PrefilterLimit:   parseInt(opt("SEARCH_PREFILTER_LIMIT"), defaultPrefilterLimit),
		SerializeWorkers: parseInt(opt("SEARCH_SERIALIZE_WORKERS"), defaultWorkers),
	}

	cfg.Log = LogConfig{
		JSON:  parseBool(opt("LOG_JSON")),
		Debug: parseBool(opt("LOG_DEBUG")),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func parseInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func parseSeconds(raw string, def time.Duration) time.Duration {
	v := parseInt(raw, 0)
	if v == 0 {
		return def
	}
	return time.Duration(v) * time.Second
}

// parseDuration accepts Go duration strings ("30s", "1h") and bare seconds.
func parseDuration(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return parseSeconds(raw, def)
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}
