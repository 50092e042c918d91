package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTPPort               string
	LogLevel               string
	DBDriver               string
	DBHost                 string
	DBPort                 string
	DBUser                 string
	DBPassword             string
	DBName                 string
	DBSslMode              string
	SQLitePath             string
	KafkaHost              string
	KafkaOrderChangedTopic string
	ReportSchedule         string
	TracingExporter        string
	JaegerEndpoint         string
}

// LoadConfig reads the configuration from the environment through v.
// Variables found in envFile are loaded first without overriding ones
// already set; a missing envFile is not an error. Keys bound to flags on v
// take precedence over the environment.
func LoadConfig(v *viper.Viper, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	setDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		HTTPPort:               v.GetString("HTTP_PORT"),
		LogLevel:               v.GetString("LOG_LEVEL"),
		DBDriver:               strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:                 v.GetString("DB_HOST"),
		DBPort:                 v.GetString("DB_PORT"),
		DBUser:                 v.GetString("DB_USER"),
		DBPassword:             v.GetString("DB_PASSWORD"),
		DBName:                 v.GetString("DB_NAME"),
		DBSslMode:              v.GetString("DB_SSLMODE"),
		SQLitePath:             v.GetString("SQLITE_PATH"),
		KafkaHost:              v.GetString("KAFKA_HOST"),
		KafkaOrderChangedTopic: v.GetString("KAFKA_ORDER_CHANGED_TOPIC"),
		ReportSchedule:         v.GetString("REPORT_SCHEDULE"),
		TracingExporter:        strings.ToLower(v.GetString("TRACING_EXPORTER")),
		JaegerEndpoint:         v.GetString("OTEL_EXPORTER_JAEGER_ENDPOINT"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "orderflow.db")
	v.SetDefault("KAFKA_ORDER_CHANGED_TOPIC", "order.changed")
	v.SetDefault("REPORT_SCHEDULE", "0 * * * * *")
	v.SetDefault("TRACING_EXPORTER", tracing.ExporterNone)
}

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	var errList []error

	if c.HTTPPort == "" {
		errList = append(errList, errs.NewValueIsRequiredError("HTTP_PORT"))
	}

	switch c.DBDriver {
	case DriverPostgres:
		if c.DBHost == "" {
			errList = append(errList, errs.NewValueIsRequiredError("DB_HOST"))
		}
		if c.DBName == "" {
			errList = append(errList, errs.NewValueIsRequiredError("DB_NAME"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errList = append(errList, errs.NewValueIsRequiredError("SQLITE_PATH"))
		}
	default:
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("DB_DRIVER",
			fmt.Errorf("%q is not one of %s, %s", c.DBDriver, DriverPostgres, DriverSQLite)))
	}

	if c.KafkaHost != "" && c.KafkaOrderChangedTopic == "" {
		errList = append(errList, errs.NewValueIsRequiredError("KAFKA_ORDER_CHANGED_TOPIC"))
	}

	switch c.TracingExporter {
	case "", tracing.ExporterNone, tracing.ExporterStdout:
	case tracing.ExporterJaeger:
		if c.JaegerEndpoint == "" {
			errList = append(errList, errs.NewValueIsRequiredError("OTEL_EXPORTER_JAEGER_ENDPOINT"))
		}
	default:
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("TRACING_EXPORTER",
			fmt.Errorf("%q is not one of %s, %s, %s",
				c.TracingExporter, tracing.ExporterNone, tracing.ExporterStdout, tracing.ExporterJaeger)))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("LOG_LEVEL", err))
	}

	return errors.Join(errList...)
}

// PostgresDSN builds the connection string for gorm.io/driver/postgres.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// KafkaBrokers splits KAFKA_HOST on commas.
func (c Config) KafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaHost, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// SlogLevel returns the parsed LOG_LEVEL, info when it cannot be parsed.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
