package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	orderhttp "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/kafka"
	"orderflow/internal/adapters/out/metrics"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/sqlite"
	"orderflow/internal/core/application/services"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/statemachine"
	"orderflow/internal/core/ports"
	"orderflow/internal/jobs"
	"orderflow/internal/pkg/tracing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const serviceName = "orderflow"

// CompositionRoot owns the process-wide dependencies: the store, the
// publisher, the metrics registry, the tracer provider and the order
// service built over them.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger

	tracerProvider *sdktrace.TracerProvider

	gormDB   *gorm.DB
	sqliteDB *sql.DB

	uowFactory ports.UnitOfWorkFactory
	publisher  *kafka.StateChangedPublisher
	registry   *prometheus.Registry
	orders     *services.OrderService
}

// NewCompositionRoot opens the configured store and wires the order service.
// Call Close to release the store and the publisher and to flush spans.
func NewCompositionRoot(cfg Config, logger *slog.Logger) (*CompositionRoot, error) {
	tp, err := tracing.InitTracerProvider(tracing.Options{
		ServiceName:    serviceName,
		Exporter:       cfg.TracingExporter,
		JaegerEndpoint: cfg.JaegerEndpoint,
		Output:         os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		cfg:            cfg,
		logger:         logger,
		tracerProvider: tp,
		registry:       prometheus.NewRegistry(),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := c.openStore(); err != nil {
		_ = c.Close()
		return nil, err
	}

	orderMetrics := metrics.NewOrderMetrics(c.registry)
	publishers := commands.OrderEventPublishers{orderMetrics}
	if brokers := cfg.KafkaBrokers(); len(brokers) > 0 {
		p, err := kafka.NewStateChangedPublisher(kafka.NewWriter(brokers, cfg.KafkaOrderChangedTopic))
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.publisher = p
		publishers = append(publishers, p)
		logger.Info("publishing order state changes", "brokers", brokers, "topic", cfg.KafkaOrderChangedTopic)
	}

	c.orders = services.NewOrderService(c.uowFactory, publishers, logger,
		statemachine.NewLoggingListener(logger),
		orderMetrics,
	)

	return c, nil
}

func (c *CompositionRoot) openStore() error {
	switch c.cfg.DBDriver {
	case DriverPostgres:
		db, err := gorm.Open(gormpostgres.Open(c.cfg.PostgresDSN()), &gorm.Config{})
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		c.gormDB = db
		c.uowFactory = postgres.NewGormUnitOfWorkFactory(db)
	case DriverSQLite:
		db, err := sqlite.Open(c.cfg.SQLitePath)
		if err != nil {
			return err
		}
		c.sqliteDB = db
		c.uowFactory = sqlite.NewUnitOfWorkFactory(db)
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.cfg.DBDriver)
	}
	c.logger.Info("order store opened", "driver", c.cfg.DBDriver)
	return nil
}

// Migrate creates or upgrades the orders schema of the configured store.
func (c *CompositionRoot) Migrate() error {
	if c.gormDB != nil {
		return postgres.Migrate(c.gormDB)
	}
	return sqlite.Migrate(c.sqliteDB, c.logger)
}

// OrderService returns the order lifecycle service.
func (c *CompositionRoot) OrderService() *services.OrderService {
	return c.orders
}

// Router builds the HTTP front-end over the order service.
func (c *CompositionRoot) Router(ctx context.Context) (*echo.Echo, error) {
	doc, err := orderhttp.LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}
	server := orderhttp.NewServer(c.orders, doc, c.logger)
	return orderhttp.NewRouter(server, c.registry, c.logger), nil
}

// JobManager returns the scheduled jobs reading from the order service.
func (c *CompositionRoot) JobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.orders, c.cfg.ReportSchedule, c.logger)
}

// Close flushes the publisher, closes the store and flushes pending spans.
func (c *CompositionRoot) Close() error {
	var errList []error
	if c.publisher != nil {
		errList = append(errList, c.publisher.Close())
	}
	if c.sqliteDB != nil {
		errList = append(errList, c.sqliteDB.Close())
	}
	if c.gormDB != nil {
		if db, err := c.gormDB.DB(); err == nil {
			errList = append(errList, db.Close())
		}
	}
	if c.tracerProvider != nil {
		errList = append(errList, c.tracerProvider.Shutdown(context.Background()))
	}
	return errors.Join(errList...)
}
