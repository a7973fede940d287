package core

import (
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Storage engines
const (
	EngineMongo    = "mongo"
	EnginePostgres = "postgres"
	EngineMemory   = "memory"
)

type (
	Config struct {
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		DefaultFromEmail mail.Address
		RollbarToken     string
		SendgridApiKey   string
		Server           ServerConfig
		Database         DatabaseConfig
		RabbitMQ         RabbitMQConfig
		CodeGen          CodeGenConfig
	}

	ServerConfig struct {
		Address                   string
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		URI           string // mongo only
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Timeout       time.Duration
	}

	RabbitMQConfig struct {
		URL      string
		Exchange string
	}

	CodeGenConfig struct {
		MaxAttempts int
	}
)

// Address returns the "host:port" of the relational database.
func (dc DatabaseConfig) Address() string {
	return net.JoinHostPort(dc.Host, dc.Port)
}

// Enabled reports whether domain events should be published.
func (rc RabbitMQConfig) Enabled() bool {
	return rc.URL != "" && rc.Exchange != ""
}

// NewConfig loads the configuration for the current ENV (DEV by default).
// Values come from, in order of precedence: environment variables prefixed with the ENV name
// (eg: DEV_DATABASE_ENGINE), config/.env.<env> (if it exists) and defaults.
func NewConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Classwork")
	v.SetDefault("secretKey", "x9v!k2#pl0-qa7@m3&zt5$ws8^nd4*hu6(ry1)ce")
	v.SetDefault("defaultFromEmail", "Classwork <noreply@localhost>")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("database.engine", EngineMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "classwork")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.timeout", 10*time.Second)
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "")
	v.SetDefault("codeGen.maxAttempts", 10)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetDefault("testMode", env == "TEST")
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing defaultFromEmail")
	}

	conf := &Config{
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		DefaultFromEmail: *from,
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Address:                   v.GetString("server.address"),
			Host:                      v.GetString("server.host"),
			DebugHost:                 v.GetString("server.debugHost"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        strings.ToLower(v.GetString("database.engine")),
			URI:           v.GetString("database.uri"),
			Name:          v.GetString("database.name"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			Timeout:       v.GetDuration("database.timeout"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("rabbitmq.url"),
			Exchange: v.GetString("rabbitmq.exchange"),
		},
		CodeGen: CodeGenConfig{
			MaxAttempts: v.GetInt("codeGen.maxAttempts"),
		},
	}

	switch conf.Database.Engine {
	case EngineMongo, EnginePostgres, EngineMemory:
	default:
		return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
	return conf, nil
}
