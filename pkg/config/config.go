package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "INKFLOW"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "INKFLOW_DB_DSN"
	EnvDBHost = "INKFLOW_DB_HOST"
	EnvDBUser = "INKFLOW_DB_USER"
	EnvDBName = "INKFLOW_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	SigningLimit SigningRateLimitConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Uploads      UploadConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"INKFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"INKFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"INKFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"INKFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"INKFLOW_DB_DSN"`
	Driver string `envconfig:"INKFLOW_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"INKFLOW_DB_HOST"`
	Port     int    `envconfig:"INKFLOW_DB_PORT" default:"5432"`
	User     string `envconfig:"INKFLOW_DB_USER"`
	Password string `envconfig:"INKFLOW_DB_PASSWORD"`
	Name     string `envconfig:"INKFLOW_DB_NAME"`
	SSLMode  string `envconfig:"INKFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"INKFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"INKFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"INKFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"INKFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"INKFLOW_REDIS_URL"`
	Address      string        `envconfig:"INKFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"INKFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"INKFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"INKFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"INKFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"INKFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"INKFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"INKFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"INKFLOW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"INKFLOW_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"INKFLOW_JWT_EXPIRATION_MINUTES" default:"480"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"INKFLOW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"INKFLOW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"INKFLOW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"INKFLOW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"INKFLOW_ARGON_KEY_LEN" default:"32"`
}

// SigningRateLimitConfig throttles the public consent-signing surface.
type SigningRateLimitConfig struct {
	Window  time.Duration `envconfig:"INKFLOW_SIGNING_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit int           `envconfig:"INKFLOW_SIGNING_RATE_LIMIT_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"INKFLOW_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"INKFLOW_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"INKFLOW_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"INKFLOW_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"INKFLOW_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry   time.Duration `envconfig:"INKFLOW_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"INKFLOW_GCS_DOWNLOAD_URL_EXPIRY" default:"10m"`
}

// UploadConfig bounds photo-ID uploads before any storage write happens.
type UploadConfig struct {
	PhotoIDMaxMB int `envconfig:"INKFLOW_PHOTO_ID_MAX_MB" default:"5"`
}

// PhotoIDMaxBytes returns the configured photo-ID size ceiling in bytes.
func (u UploadConfig) PhotoIDMaxBytes() int64 {
	mb := u.PhotoIDMaxMB
	if mb <= 0 {
		mb = 5
	}
	return int64(mb) * 1024 * 1024
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
