package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Automation   AutomationConfig
	Push         PushConfig
	AdminAPI     AdminAPIConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"SUVARNA_APP_ENV" required:"true"`
	Port         string `envconfig:"SUVARNA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SUVARNA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SUVARNA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SUVARNA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SUVARNA_DB_DSN"`
	Driver string `envconfig:"SUVARNA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SUVARNA_DB_HOST"`
	LegacyPort     int    `envconfig:"SUVARNA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SUVARNA_DB_USER"`
	LegacyPassword string `envconfig:"SUVARNA_DB_PASSWORD"`
	LegacyName     string `envconfig:"SUVARNA_DB_NAME"`
	LegacySSLMode  string `envconfig:"SUVARNA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SUVARNA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SUVARNA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SUVARNA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SUVARNA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SUVARNA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SUVARNA_REDIS_ADDR"`
	Password     string        `envconfig:"SUVARNA_REDIS_PASSWORD"`
	DB           int           `envconfig:"SUVARNA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SUVARNA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SUVARNA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SUVARNA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SUVARNA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SUVARNA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// AutomationConfig drives the draft/publish/reminder pipeline. Slots are
// HH:MM wall-clock times in the configured timezone.
type AutomationConfig struct {
	Enabled             bool          `envconfig:"SUVARNA_AUTOMATION_ENABLED" default:"true"`
	Slots               []string      `envconfig:"SUVARNA_AUTOMATION_SLOTS" default:"10:00,12:00,14:00,17:00,19:00"`
	GenerateTime        string        `envconfig:"SUVARNA_AUTOMATION_GENERATE_TIME" default:"06:00"`
	PublishDelayMinutes int           `envconfig:"SUVARNA_AUTOMATION_PUBLISH_DELAY_MINUTES" default:"15"`
	ReminderLeadMinutes int           `envconfig:"SUVARNA_AUTOMATION_REMINDER_LEAD_MINUTES" default:"15"`
	RevealOffsetMinutes int           `envconfig:"SUVARNA_AUTOMATION_REVEAL_OFFSET_MINUTES" default:"15"`
	AnnounceAfter       int           `envconfig:"SUVARNA_AUTOMATION_ANNOUNCE_OFFSET_MINUTES" default:"30"`
	TickInterval        time.Duration `envconfig:"SUVARNA_AUTOMATION_TICK_INTERVAL" default:"1m"`
	Timezone            string        `envconfig:"SUVARNA_AUTOMATION_TIMEZONE" default:"Asia/Kolkata"`
}

type PushConfig struct {
	VAPIDPublicKey  string        `envconfig:"SUVARNA_PUSH_VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string        `envconfig:"SUVARNA_PUSH_VAPID_PRIVATE_KEY"`
	Subject         string        `envconfig:"SUVARNA_PUSH_SUBJECT" default:"mailto:support@suvarnachakram.com"`
	TTL             time.Duration `envconfig:"SUVARNA_PUSH_TTL" default:"24h"`
	IconPath        string        `envconfig:"SUVARNA_PUSH_ICON" default:"/icon-192.png"`
	BadgePath       string        `envconfig:"SUVARNA_PUSH_BADGE" default:"/badge-96.png"`
	ResultsURL      string        `envconfig:"SUVARNA_PUSH_RESULTS_URL" default:"/results"`
}

type AdminAPIConfig struct {
	Token string `envconfig:"SUVARNA_ADMIN_API_TOKEN"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SUVARNA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SUVARNA_AUTO_MIGRATE" default:"false"`
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
