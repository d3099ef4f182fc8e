package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"

	StorageCloudinary = "cloudinary"
	StorageS3         = "s3"
	StorageNone       = "none"

	LLMOllama = "ollama"
	LLMGemini = "gemini"
	LLMNone   = "none"
)

type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	Store struct {
		Driver string `mapstructure:"driver"`
	} `mapstructure:"store"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Mongo struct {
		URI      string `mapstructure:"uri"`
		Database string `mapstructure:"database"`
	} `mapstructure:"mongo"`
	Redis struct {
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers      []string `mapstructure:"brokers"`
		ProfileTopic string   `mapstructure:"profile_topic"`
		GroupID      string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	Storage struct {
		Provider     string `mapstructure:"provider"`
		MaxImageSize int64  `mapstructure:"max_image_size"`
	} `mapstructure:"storage"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	S3 struct {
		Endpoint        string `mapstructure:"endpoint"`
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		PublicBaseURL   string `mapstructure:"public_base_url"`
	} `mapstructure:"s3"`
	LLM struct {
		Provider string `mapstructure:"provider"`
	} `mapstructure:"llm"`
	Ollama struct {
		Host  string `mapstructure:"host"`
		Model string `mapstructure:"model"`
	} `mapstructure:"ollama"`
	Gemini struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"gemini"`
	Jaeger struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
}

var envBindings = map[string]string{
	"app.port":               "APP_PORT",
	"app.env":                "APP_ENV",
	"store.driver":           "STORE_DRIVER",
	"db.dsn":                 "DB_DSN",
	"mongo.uri":              "MONGO_URI",
	"mongo.database":         "MONGO_DATABASE",
	"redis.addr":             "REDIS_ADDR",
	"redis.password":         "REDIS_PASSWORD",
	"redis.cache_ttl":        "REDIS_CACHE_TTL",
	"kafka.brokers":          "KAFKA_BROKERS",
	"kafka.profile_topic":    "KAFKA_PROFILE_TOPIC",
	"kafka.group_id":         "KAFKA_GROUP_ID",
	"auth.jwt_secret":        "JWT_SECRET",
	"auth.token_lifespan":    "TOKEN_LIFESPAN",
	"storage.provider":       "STORAGE_PROVIDER",
	"storage.max_image_size": "STORAGE_MAX_IMAGE_SIZE",
	"cloudinary.cloud_name":  "CLOUDINARY_CLOUD_NAME",
	"cloudinary.api_key":     "CLOUDINARY_API_KEY",
	"cloudinary.api_secret":  "CLOUDINARY_API_SECRET",
	"s3.endpoint":            "S3_ENDPOINT",
	"s3.region":              "S3_REGION",
	"s3.bucket":              "S3_BUCKET",
	"s3.access_key_id":       "S3_ACCESS_KEY_ID",
	"s3.secret_access_key":   "S3_SECRET_ACCESS_KEY",
	"s3.public_base_url":     "S3_PUBLIC_BASE_URL",
	"llm.provider":           "LLM_PROVIDER",
	"ollama.host":            "OLLAMA_HOST",
	"ollama.model":           "OLLAMA_MODEL",
	"gemini.api_key":         "GEMINI_API_KEY",
	"gemini.model":           "GEMINI_MODEL",
	"jaeger.otlp_endpoint":   "JAEGER_OTLP_ENDPOINT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("store.driver", StoreDriverPostgres)
	v.SetDefault("mongo.database", "resume_builder")
	v.SetDefault("redis.cache_ttl", 10*time.Minute)
	v.SetDefault("kafka.profile_topic", "profile.events")
	v.SetDefault("kafka.group_id", "profile-processor-group")
	v.SetDefault("auth.token_lifespan", 24*time.Hour)
	v.SetDefault("storage.provider", StorageCloudinary)
	v.SetDefault("storage.max_image_size", 5<<20)
	v.SetDefault("s3.region", "auto")
	v.SetDefault("llm.provider", LLMOllama)
	v.SetDefault("ollama.model", "phi3:mini")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
}

// LoadConfig reads config.yaml from the given paths (or the working
// directory), then .env, then the process environment.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	envFiles := make([]string, 0, len(paths))
	for _, p := range paths {
		envFiles = append(envFiles, strings.TrimSuffix(p, "/")+"/.env")
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("warning: .env file not found, use environment variables.")
	}

	v := viper.New()
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("cannot read config.yaml: %w", err)
		}
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return cfg, fmt.Errorf("cannot bind %s: %w", env, err)
		}
	}

	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("cannot decode config: %w", err)
	}
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	return cfg, nil
}

// splitList flattens comma separated entries coming from env vars.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.DB.DSN == "" {
			errs = append(errs, errors.New("DB_DSN is required for the postgres store"))
		}
	case StoreDriverMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
		}
		if c.DB.DSN == "" {
			errs = append(errs, errors.New("DB_DSN is required for user identities"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	switch c.Storage.Provider {
	case StorageCloudinary, StorageS3, StorageNone:
	default:
		errs = append(errs, fmt.Errorf("unknown storage provider %q", c.Storage.Provider))
	}

	switch c.LLM.Provider {
	case LLMOllama, LLMGemini, LLMNone:
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}

	return errors.Join(errs...)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}
