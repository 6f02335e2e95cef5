package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/xnapps/purchase-tracking/pkg/enums"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Numbering    NumberingConfig
	Editor       EditorConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Numbering.validate(cfg.Redis); err != nil {
		return nil, err
	}
	if _, err := enums.ParseSaveAction(cfg.Editor.DefaultSaveAction); err != nil {
		return nil, fmt.Errorf("%s: %w", EnvDefaultSaveAction, err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"XNTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"XNTRACK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"XNTRACK_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"XNTRACK_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"XNTRACK_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"XNTRACK_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"XNTRACK_DB_DSN"`
	Driver string `envconfig:"XNTRACK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"XNTRACK_DB_HOST"`
	LegacyPort     int    `envconfig:"XNTRACK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"XNTRACK_DB_USER"`
	LegacyPassword string `envconfig:"XNTRACK_DB_PASSWORD"`
	LegacyName     string `envconfig:"XNTRACK_DB_NAME"`
	LegacySSLMode  string `envconfig:"XNTRACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"XNTRACK_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"XNTRACK_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"XNTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"XNTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the store runs on the embedded sqlite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"XNTRACK_REDIS_URL"`
	Address      string        `envconfig:"XNTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"XNTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"XNTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"XNTRACK_REDIS_POOL_SIZE" default:"5"`
	MinIdleConns int           `envconfig:"XNTRACK_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"XNTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"XNTRACK_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"XNTRACK_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"XNTRACK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"XNTRACK_AUTO_MIGRATE" default:"false"`
}

type NumberingConfig struct {
	Strategy   string `envconfig:"XNTRACK_NUMBERING_STRATEGY" default:"max"`
	CounterKey string `envconfig:"XNTRACK_NUMBERING_COUNTER_KEY" default:"tracking_display_number"`
}

// UsesRedis reports whether display numbers come from the redis counter.
func (n NumberingConfig) UsesRedis() bool {
	return strings.EqualFold(strings.TrimSpace(n.Strategy), NumberingRedis)
}

func (n NumberingConfig) validate(redis RedisConfig) error {
	switch strings.ToLower(strings.TrimSpace(n.Strategy)) {
	case NumberingMax:
		return nil
	case NumberingRedis:
		if !redis.Enabled() {
			return fmt.Errorf("%s=%s requires %s or %s", EnvNumberingStrategy, NumberingRedis, EnvRedisURL, EnvRedisAddr)
		}
		return nil
	default:
		return fmt.Errorf("unknown numbering strategy %q", n.Strategy)
	}
}

type EditorConfig struct {
	DefaultSaveAction string `envconfig:"XNTRACK_EDITOR_DEFAULT_SAVE_ACTION" default:"add_new"`
}

// SaveAction returns the configured selector default, add_new when unset or unknown.
func (e EditorConfig) SaveAction() enums.SaveAction {
	action, err := enums.ParseSaveAction(e.DefaultSaveAction)
	if err != nil {
		return enums.SaveActionAddNew
	}
	return action
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
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
