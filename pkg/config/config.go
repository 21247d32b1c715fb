package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Search    SearchConfig
	VectorAPI VectorAPIConfig
	OpenAI    OpenAIConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type JWTConfig struct {
	SecretKey string
}

// SearchConfig holds the tunables of the hybrid search engine. Weights and
// timeouts here are process defaults; per-request overrides come through the
// HTTP surface.
type SearchConfig struct {
	SemanticWeight  float64
	KeywordWeight   float64
	SemanticTimeout time.Duration
	KeywordTimeout  time.Duration
	MaxResults      int

	// which semantic backend to wire: "http" or "pgvector"
	SemanticBackend string

	MaxProfiles    int
	ProfileMaxAge  time.Duration
	HistoryCap     int
	DecayFactor    float64
	PersonalizeCap float64

	TrackingQueueSize int
	TrackingTimeout   time.Duration
}

// VectorAPIConfig points at the external vector search service used when
// SemanticBackend is "http".
type VectorAPIConfig struct {
	BaseURL string
	APIKey  string
}

type OpenAIConfig struct {
	APIKey         string
	EmbeddingModel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Agriko Search API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "agriko_search"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Search: SearchConfig{
			SemanticWeight:  getEnvFloat("SEARCH_SEMANTIC_WEIGHT", 0.5),
			KeywordWeight:   getEnvFloat("SEARCH_KEYWORD_WEIGHT", 0.5),
			SemanticTimeout: getEnvDuration("SEARCH_SEMANTIC_TIMEOUT", 3*time.Second),
			KeywordTimeout:  getEnvDuration("SEARCH_KEYWORD_TIMEOUT", 1500*time.Millisecond),
			MaxResults:      getEnvInt("SEARCH_MAX_RESULTS", 10),

			SemanticBackend: getEnv("SEMANTIC_BACKEND", "pgvector"),

			MaxProfiles:    getEnvInt("BEHAVIOR_MAX_PROFILES", 10000),
			ProfileMaxAge:  getEnvDuration("BEHAVIOR_PROFILE_MAX_AGE", 24*time.Hour),
			HistoryCap:     getEnvInt("BEHAVIOR_HISTORY_CAP", 50),
			DecayFactor:    getEnvFloat("BEHAVIOR_DECAY_FACTOR", 0.98),
			PersonalizeCap: getEnvFloat("BOOST_PERSONALIZE_CAP", 0.5),

			TrackingQueueSize: getEnvInt("TRACKING_QUEUE_SIZE", 1024),
			TrackingTimeout:   getEnvDuration("TRACKING_TIMEOUT", 2*time.Second),
		},
		VectorAPI: VectorAPIConfig{
			BaseURL: getEnv("VECTOR_API_URL", ""),
			APIKey:  getEnv("VECTOR_API_KEY", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Search.SemanticBackend == "http" && cfg.VectorAPI.BaseURL == "" {
		return nil, errors.New("missing vector api url for http semantic backend")
	}

	if cfg.Search.SemanticBackend == "pgvector" && cfg.OpenAI.APIKey == "" {
		return nil, errors.New("missing openai api key for pgvector semantic backend")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}

	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}

	return defaultVal
}
