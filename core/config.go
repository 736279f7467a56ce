package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type (
	Config struct {
		Env          string
		Build        string
		AppName      string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string

		Server   serverConfig
		Store    storeConfig
		Database databaseConfig
		Redis    redisConfig
		Tutor    tutorConfig
		Email    emailConfig
		Log      logConfig
	}

	serverConfig struct {
		Host                      string
		DebugHost                 string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	storeConfig struct {
		Backend     string
		Dir         string
		SeedModules bool
	}

	databaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	redisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	tutorConfig struct {
		BaseURL     string
		APIKey      string
		Model       string
		Temperature float64
		Timeout     time.Duration
	}

	emailConfig struct {
		DefaultFrom    string
		SendgridAPIKey string
	}

	logConfig struct {
		Level string
		File  string
	}
)

func (dbConf databaseConfig) Address() string {
	return net.JoinHostPort(dbConf.Host, strconv.Itoa(dbConf.Port))
}

// NewConfig reads the configuration from the environment.
// ENV selects the environment (DEV by default) and is used as the variables prefix, eg. DEV_STORE_BACKEND.
// config/.env.<env> is loaded first when it exists.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "TrackEd")
	v.SetDefault("secretKey", "kd8^f2-tracked-dev-only-(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("store.backend", StoreFile)
	v.SetDefault("store.dir", filepath.Join(userDataDir(), "tracked"))
	v.SetDefault("store.seedModules", true)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "tracked")
	v.SetDefault("database.user", "tracked")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", env == "DEV" || env == "TEST")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("tutor.baseURL", "https://api.openai.com/v1")
	v.SetDefault("tutor.apiKey", "")
	v.SetDefault("tutor.model", "gpt-4o-mini")
	v.SetDefault("tutor.temperature", 0.7)
	v.SetDefault("tutor.timeout", 60*time.Second)

	v.SetDefault("email.defaultFrom", "noreply@localhost")
	v.SetDefault("email.sendgridApiKey", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: serverConfig{
			Host:                      v.GetString("server.host"),
			DebugHost:                 v.GetString("server.debugHost"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
		},
		Store: storeConfig{
			Backend:     strings.ToLower(v.GetString("store.backend")),
			Dir:         v.GetString("store.dir"),
			SeedModules: v.GetBool("store.seedModules"),
		},
		Database: databaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Redis: redisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Tutor: tutorConfig{
			BaseURL:     v.GetString("tutor.baseURL"),
			APIKey:      v.GetString("tutor.apiKey"),
			Model:       v.GetString("tutor.model"),
			Temperature: v.GetFloat64("tutor.temperature"),
			Timeout:     v.GetDuration("tutor.timeout"),
		},
		Email: emailConfig{
			DefaultFrom:    v.GetString("email.defaultFrom"),
			SendgridAPIKey: v.GetString("email.sendgridApiKey"),
		},
		Log: logConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
	}
}

// NewTestConfig returns an in-memory configuration for tests.
func NewTestConfig() *Config {
	return &Config{
		Env:       "TEST",
		Build:     "test",
		AppName:   "TrackEd",
		TestMode:  true,
		SecretKey: "secret",
		Server: serverConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 30 * time.Minute,
			ShutdownTimeout:           time.Second,
		},
		Store: storeConfig{Backend: StoreMemory},
		Tutor: tutorConfig{Model: "test", Temperature: 0.7, Timeout: time.Second},
		Email: emailConfig{DefaultFrom: "noreply@test.test"},
		Log:   logConfig{Level: "debug"},
	}
}

func userDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return "."
}
