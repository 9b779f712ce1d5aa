package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Admin    AdminConfig
	Flags    FlagsConfig
	GCP      GCPConfig
	GCS      GCSConfig
	Media    MediaConfig
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
	Env          string `envconfig:"SHOWROOM_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOWROOM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOWROOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOWROOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOWROOM_DB_DSN"`
	Driver string `envconfig:"SHOWROOM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOWROOM_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOWROOM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOWROOM_DB_USER"`
	LegacyPassword string `envconfig:"SHOWROOM_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOWROOM_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOWROOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOWROOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOWROOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOWROOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOWROOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOWROOM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOWROOM_REDIS_ADDR"`
	Password     string        `envconfig:"SHOWROOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOWROOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOWROOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOWROOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOWROOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOWROOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOWROOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SHOWROOM_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SHOWROOM_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SHOWROOM_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SHOWROOM_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOWROOM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOWROOM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOWROOM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOWROOM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOWROOM_ARGON_KEY_LEN" default:"32"`
}

// AdminConfig carries the single admin credential the catalog ships with.
type AdminConfig struct {
	Email        string `envconfig:"SHOWROOM_ADMIN_EMAIL" required:"true"`
	PasswordHash string `envconfig:"SHOWROOM_ADMIN_PASSWORD_HASH" required:"true"`
}

type FlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOWROOM_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SHOWROOM_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SHOWROOM_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SHOWROOM_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"SHOWROOM_GCS_BUCKET_NAME" default:"product-images"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"SHOWROOM_MAX_UPLOAD_MB" default:"20"`
}

// MaxUploadBytes converts the configured cap to bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 0
	}
	return int64(m.MaxUploadMB) * 1024 * 1024
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
